package chatdb

import "sort"

// Handles returns every handle row.
func (db *DB) Handles() ([]Handle, error) {
	rows, err := db.Query(`
		SELECT h.ROWID, h.id, h.person_centric_id
		FROM handle h
		ORDER BY h.ROWID ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var handles []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.RowID, &h.ID, &h.PersonCentricID); err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// DeduplicateHandles collapses handle rows that Messages links to one person
// through person_centric_id: a phone number and an email belonging to the
// same contact share a canonical id. Handles without a person-centric id
// stay distinct. Canonical ids count up from 0 in handle-row order.
func DeduplicateHandles(handles []Handle) map[int64]int64 {
	sorted := append([]Handle(nil), handles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowID < sorted[j].RowID })

	canonical := make(map[string]int64)
	out := make(map[int64]int64, len(sorted))
	var next int64
	for _, h := range sorted {
		if !h.PersonCentricID.Valid || h.PersonCentricID.String == "" {
			out[h.RowID] = next
			next++
			continue
		}
		id, ok := canonical[h.PersonCentricID.String]
		if !ok {
			id = next
			next++
			canonical[h.PersonCentricID.String] = id
		}
		out[h.RowID] = id
	}
	return out
}
