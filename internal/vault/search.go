package vault

// Search runs a full-text query over exported text segments. The query uses
// FTS5 MATCH syntax; snippets mark hits with [ and ].
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT f.message_guid,
			m.conversation_id,
			c.name,
			m.sender,
			m.sent_at,
			snippet(segments_fts, 1, '[', ']', '…', 12)
		FROM segments_fts f
		JOIN messages m ON m.guid = f.message_guid
		JOIN conversations c ON c.id = m.conversation_id
		WHERE segments_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.MessageGUID, &r.ConversationID, &r.ConversationName,
			&r.Sender, &r.SentAt, &r.Snippet); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
