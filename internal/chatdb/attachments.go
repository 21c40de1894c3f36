package chatdb

// AttachmentsForMessage returns a message's attachments in join order, which
// matches the order of its body placeholders.
func (db *DB) AttachmentsForMessage(messageID int64) ([]Attachment, error) {
	rows, err := db.Query(`
		SELECT a.ROWID, a.filename, a.mime_type, a.uti, a.transfer_name,
		       COALESCE(a.total_bytes, 0), COALESCE(a.is_sticker, 0)
		FROM attachment a
		JOIN message_attachment_join maj ON maj.attachment_id = a.ROWID
		WHERE maj.message_id = ?
		ORDER BY a.ROWID ASC`, messageID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var atts []Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.RowID, &a.Filename, &a.MimeType, &a.UTI,
			&a.TransferName, &a.TotalBytes, &a.IsSticker); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}
