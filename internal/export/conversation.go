package export

import (
	"sort"
	"strings"

	"github.com/nkowalski2/imsgx/internal/chatdb"
)

// BuildConversations groups chat rows by their deduplicated identity and
// returns one Conversation per canonical id, sorted by id. The display name
// comes from the first row carrying one, else the first row's identifier.
func BuildConversations(chats []chatdb.Chat, participants map[int64][]int64, roster *Roster) []*Conversation {
	canon := chatdb.DeduplicateChats(participants)

	// Chat rows without join-table entries still export; each gets its own
	// canonical id past the deduplicated range.
	next := int64(0)
	for _, id := range canon {
		if id >= next {
			next = id + 1
		}
	}

	sorted := append([]chatdb.Chat(nil), chats...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowID < sorted[j].RowID })

	byID := make(map[int64]*Conversation)
	var order []int64
	for i := range sorted {
		c := &sorted[i]
		id, ok := canon[c.RowID]
		if !ok {
			id = next
			next++
		}

		conv, exists := byID[id]
		if !exists {
			conv = &Conversation{
				ID:      id,
				Name:    c.Name(),
				Service: c.ServiceName.String,
			}
			conv.Participants, conv.ParticipantIDs = participantViews(participants[c.RowID], roster)
			conv.IsGroup = len(conv.Participants) > 1
			byID[id] = conv
			order = append(order, id)
		} else if !strings.EqualFold(conv.Name, c.Name()) && c.DisplayName.Valid && c.DisplayName.String != "" {
			// A duplicate row may carry the display name the first row lacks.
			conv.Name = c.DisplayName.String
		}
		conv.ChatIDs = append(conv.ChatIDs, c.RowID)
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]*Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}

// participantViews resolves a handle set to sorted unique display names and
// their canonical contact ids, kept index-aligned.
func participantViews(handles []int64, roster *Roster) ([]string, []int64) {
	type pair struct {
		name string
		id   int64
	}
	seen := make(map[int64]bool, len(handles))
	pairs := make([]pair, 0, len(handles))
	for _, h := range handles {
		id := roster.Canonical(h)
		if seen[id] {
			continue
		}
		seen[id] = true
		pairs = append(pairs, pair{name: roster.Name(h, false), id: id})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	names := make([]string, len(pairs))
	ids := make([]int64, len(pairs))
	for i, p := range pairs {
		names[i] = p.name
		ids[i] = p.id
	}
	return names, ids
}

// FilterConversations keeps conversations whose name or any participant
// identifier contains the needle, case-insensitively. An empty needle keeps
// everything.
func FilterConversations(convs []*Conversation, needle string) []*Conversation {
	if needle == "" {
		return convs
	}
	n := strings.ToLower(needle)
	var out []*Conversation
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.Name), n) {
			out = append(out, c)
			continue
		}
		for _, p := range c.Participants {
			if strings.Contains(strings.ToLower(p), n) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
