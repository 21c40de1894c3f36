package chatdb

import (
	"database/sql"
	"errors"
	"strings"
)

// messageColumns builds the SELECT list for message rows. Optional columns
// degrade to NULL/0 on older schemas so every scan sees the same shape.
func (db *DB) messageColumns() string {
	cols := []string{
		"m.ROWID",
		"m.guid",
		"m.text",
		"m.attributedBody",
		"COALESCE(m.handle_id, 0)",
		"m.service",
		"COALESCE(m.date, 0)",
		"m.date_read",
		"m.date_delivered",
		"COALESCE(m.is_from_me, 0)",
		"COALESCE(m.is_read, 0)",
		"COALESCE(m.item_type, 0)",
		"m.group_title",
		"COALESCE(m.group_action_type, 0)",
		"COALESCE(m.other_handle, 0)",
		"m.associated_message_guid",
		"COALESCE(m.associated_message_type, 0)",
		"m.balloon_bundle_id",
		"m.payload_data",
		"m.expressive_send_style_id",
	}
	if db.features.ThreadOriginator {
		cols = append(cols, "m.thread_originator_guid", "m.thread_originator_part")
	} else {
		cols = append(cols, "NULL", "NULL")
	}
	if db.features.DateEdited {
		cols = append(cols, "m.date_edited")
	} else {
		cols = append(cols, "NULL")
	}
	if db.features.DateRetracted {
		cols = append(cols, "m.date_retracted")
	} else {
		cols = append(cols, "NULL")
	}
	cols = append(cols,
		"(SELECT COUNT(*) FROM message_attachment_join maj WHERE maj.message_id = m.ROWID)")
	if db.features.ThreadOriginator {
		cols = append(cols,
			"(SELECT COUNT(*) FROM message m2 WHERE m2.thread_originator_guid = m.guid)")
	} else {
		cols = append(cols, "0")
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(s rowScanner) (*Message, error) {
	var m Message
	err := s.Scan(
		&m.RowID, &m.GUID, &m.Text, &m.AttributedBody, &m.HandleID, &m.Service,
		&m.Date, &m.DateRead, &m.DateDelivered, &m.FromMe, &m.IsRead,
		&m.ItemType, &m.GroupTitle, &m.GroupActionType, &m.OtherHandle,
		&m.AssociatedGUID, &m.AssociatedType, &m.BalloonBundleID, &m.PayloadData,
		&m.ExpressiveSendStyle, &m.ThreadOriginatorGUID, &m.ThreadOriginatorPart,
		&m.DateEdited, &m.DateRetracted, &m.NumAttachments, &m.NumReplies,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MessageRows streams message rows in date order.
type MessageRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (r *MessageRows) Next() bool { return r.rows.Next() }

// Message scans the current row.
func (r *MessageRows) Message() (*Message, error) { return scanMessage(r.rows) }

// Err returns the iteration error, if any.
func (r *MessageRows) Err() error { return r.rows.Err() }

// Close releases the underlying cursor.
func (r *MessageRows) Close() error { return r.rows.Close() }

// MessagesForChats streams the messages of one deduplicated conversation,
// which may span several raw chat rows, ordered by send date. A message
// joined to more than one of the rows appears once.
func (db *DB) MessagesForChats(chatIDs []int64, qc QueryContext) (*MessageRows, error) {
	if len(chatIDs) == 0 {
		return nil, errors.New("no chat ids")
	}
	placeholders := strings.Repeat("?,", len(chatIDs))
	placeholders = placeholders[:len(placeholders)-1]

	conds := []string{
		"m.ROWID IN (SELECT message_id FROM chat_message_join WHERE chat_id IN (" + placeholders + "))",
	}
	args := make([]interface{}, 0, len(chatIDs)+2)
	for _, id := range chatIDs {
		args = append(args, id)
	}
	conds, args = qc.dateFilter("m.date", conds, args)

	rows, err := db.Query(`
		SELECT `+db.messageColumns()+`
		FROM message m
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY m.date ASC, m.ROWID ASC`, args...)
	if err != nil {
		return nil, err
	}
	return &MessageRows{rows: rows}, nil
}

// MessageByGUID fetches a single message row. A missing GUID returns
// (nil, nil); dangling reply and reaction targets are tolerated.
func (db *DB) MessageByGUID(guid string) (*Message, error) {
	row := db.QueryRow(`
		SELECT `+db.messageColumns()+`
		FROM message m
		WHERE m.guid = ?`, guid)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RepliesTo returns the replies threaded under a message, oldest first.
// Older schemas have no thread columns; the result is empty there.
func (db *DB) RepliesTo(guid string) ([]Message, error) {
	if !db.features.ThreadOriginator {
		return nil, nil
	}
	rows, err := db.Query(`
		SELECT `+db.messageColumns()+`
		FROM message m
		WHERE m.thread_originator_guid = ?
		ORDER BY m.date ASC, m.ROWID ASC`, guid)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// AssociatedMessages returns every row carrying an associated_message_guid,
// the raw material for the reaction index.
func (db *DB) AssociatedMessages(qc QueryContext) ([]Message, error) {
	conds := []string{"m.associated_message_guid IS NOT NULL"}
	var args []interface{}
	conds, args = qc.dateFilter("m.date", conds, args)

	rows, err := db.Query(`
		SELECT `+db.messageColumns()+`
		FROM message m
		WHERE `+strings.Join(conds, " AND ")+`
		ORDER BY m.date ASC, m.ROWID ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// MessageCount counts messages inside the date bounds.
func (db *DB) MessageCount(qc QueryContext) (int64, error) {
	conds := []string{"1=1"}
	var args []interface{}
	conds, args = qc.dateFilter("m.date", conds, args)

	var n int64
	err := db.QueryRow(`
		SELECT COUNT(*) FROM message m
		WHERE `+strings.Join(conds, " AND "), args...).Scan(&n)
	return n, err
}
