package chatdb

// Diagnostics summarizes a database's health for the --diagnostics mode.
type Diagnostics struct {
	Messages    int64
	Chats       int64
	Handles     int64
	Attachments int64
	// MessagesNoContent counts rows with neither text nor a binary body,
	// usually fully unsent messages.
	MessagesNoContent int64
	// AttachmentsNoFilename counts attachment rows that can never resolve
	// to a file.
	AttachmentsNoFilename int64
	// DanglingAttachmentJoins counts join rows pointing at missing
	// attachment rows.
	DanglingAttachmentJoins int64
	// AttachmentBytes totals the stored size of all attachments.
	AttachmentBytes int64
}

// Diagnostics runs the health queries.
func (db *DB) Diagnostics() (*Diagnostics, error) {
	d := &Diagnostics{}
	counts := []struct {
		query string
		dest  *int64
	}{
		{`SELECT COUNT(*) FROM message`, &d.Messages},
		{`SELECT COUNT(*) FROM chat`, &d.Chats},
		{`SELECT COUNT(*) FROM handle`, &d.Handles},
		{`SELECT COUNT(*) FROM attachment`, &d.Attachments},
		{`SELECT COUNT(*) FROM message WHERE text IS NULL AND attributedBody IS NULL`, &d.MessagesNoContent},
		{`SELECT COUNT(*) FROM attachment WHERE filename IS NULL OR filename = ''`, &d.AttachmentsNoFilename},
		{`SELECT COUNT(*) FROM message_attachment_join maj
		  LEFT JOIN attachment a ON a.ROWID = maj.attachment_id
		  WHERE a.ROWID IS NULL`, &d.DanglingAttachmentJoins},
		{`SELECT COALESCE(SUM(total_bytes), 0) FROM attachment`, &d.AttachmentBytes},
	}
	for _, c := range counts {
		if err := db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return d, nil
}
