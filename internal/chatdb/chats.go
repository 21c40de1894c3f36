package chatdb

import (
	"sort"
	"strconv"
	"strings"
)

// Chats returns every chat row.
func (db *DB) Chats() ([]Chat, error) {
	rows, err := db.Query(`
		SELECT c.ROWID, c.guid, COALESCE(c.chat_identifier, ''), c.display_name, c.service_name
		FROM chat c
		ORDER BY c.ROWID ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.RowID, &c.GUID, &c.Identifier, &c.DisplayName, &c.ServiceName); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// ChatParticipants returns the full participant set of every chat row.
func (db *DB) ChatParticipants() (map[int64][]int64, error) {
	rows, err := db.Query(`
		SELECT chat_id, handle_id
		FROM chat_handle_join
		ORDER BY chat_id ASC, handle_id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64][]int64)
	for rows.Next() {
		var chatID, handleID int64
		if err := rows.Scan(&chatID, &handleID); err != nil {
			return nil, err
		}
		out[chatID] = append(out[chatID], handleID)
	}
	return out, rows.Err()
}

// DeduplicateChats assigns one canonical id per distinct participant set.
// Two chat rows share a canonical id exactly when their participant sets are
// equal; overlap is not enough, a subset conversation is a different
// conversation. Canonical ids count up from 0 in chat-row order, so repeated
// runs over one database agree.
func DeduplicateChats(participants map[int64][]int64) map[int64]int64 {
	chatIDs := make([]int64, 0, len(participants))
	for id := range participants {
		chatIDs = append(chatIDs, id)
	}
	sort.Slice(chatIDs, func(i, j int) bool { return chatIDs[i] < chatIDs[j] })

	canonical := make(map[string]int64, len(participants))
	out := make(map[int64]int64, len(participants))
	var next int64
	for _, chatID := range chatIDs {
		key := participantKey(participants[chatID])
		id, ok := canonical[key]
		if !ok {
			id = next
			next++
			canonical[key] = id
		}
		out[chatID] = id
	}
	return out
}

// participantKey renders a participant set in canonical order. The input is
// copied before sorting; callers keep their slices. Duplicate handles
// collapse so a malformed join table cannot split one conversation in two.
func participantKey(handles []int64) string {
	set := append([]int64(nil), handles...)
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })

	parts := make([]string, 0, len(set))
	for i, h := range set {
		if i > 0 && h == set[i-1] {
			continue
		}
		parts = append(parts, strconv.FormatInt(h, 10))
	}
	return strings.Join(parts, ",")
}
