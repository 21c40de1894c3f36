package export

import (
	"sort"

	"github.com/nkowalski2/imsgx/internal/chatdb"
)

// Roster resolves handle row ids to display identifiers. Handles sharing a
// person-centric id collapse onto one spelling, the identifier of the lowest
// handle row in the group.
type Roster struct {
	names     map[int64]string
	canonical map[int64]int64
	self      string
}

// NewRoster builds the lookup once; it is read-only afterwards.
func NewRoster(handles []chatdb.Handle, self string) *Roster {
	if self == "" {
		self = "Me"
	}
	canon := chatdb.DeduplicateHandles(handles)

	sorted := append([]chatdb.Handle(nil), handles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowID < sorted[j].RowID })

	first := make(map[int64]string, len(sorted))
	for _, h := range sorted {
		id := canon[h.RowID]
		if _, ok := first[id]; !ok {
			first[id] = h.ID
		}
	}

	names := make(map[int64]string, len(sorted))
	for _, h := range sorted {
		names[h.RowID] = first[canon[h.RowID]]
	}
	return &Roster{names: names, canonical: canon, self: self}
}

// Name returns the display identifier for a handle row. Messages sent from
// this account carry handle id 0 and from_me set; those show the configured
// self name.
func (r *Roster) Name(handleID int64, fromMe bool) string {
	if fromMe {
		return r.self
	}
	if name, ok := r.names[handleID]; ok && name != "" {
		return name
	}
	return "Unknown"
}

// Canonical returns the deduplicated contact id for a handle row.
func (r *Roster) Canonical(handleID int64) int64 {
	if id, ok := r.canonical[handleID]; ok {
		return id
	}
	return handleID
}

// Self returns the configured display name for this account.
func (r *Roster) Self() string { return r.self }
