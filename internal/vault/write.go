package vault

import "time"

// BeginRun records run metadata before any writes.
func (db *DB) BeginRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO export_runs (id, source_path, platform, started_at, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourcePath, r.Platform, time.Now().UnixMilli(), r.StartDate, r.EndDate)
	return err
}

// FinishRun stamps the run's completion and final counts.
func (db *DB) FinishRun(r *Run) error {
	_, err := db.Exec(`
		UPDATE export_runs
		SET finished_at = ?, conversations = ?, messages = ?, attachments = ?, decode_failures = ?
		WHERE id = ?`,
		time.Now().UnixMilli(), r.Conversations, r.Messages, r.Attachments, r.DecodeFailures, r.ID)
	return err
}

// UpsertConversation inserts or refreshes a conversation row.
func (db *DB) UpsertConversation(c *Conversation) error {
	_, err := db.Exec(`
		INSERT INTO conversations (id, name, service, is_group)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			service = excluded.service,
			is_group = excluded.is_group`,
		c.ID, c.Name, c.Service, c.IsGroup)
	return err
}

// UpsertParticipant inserts or refreshes a participant row.
func (db *DB) UpsertParticipant(p *Participant) error {
	_, err := db.Exec(`
		INSERT INTO participants (id, identifier, person_centric_id)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			identifier = excluded.identifier,
			person_centric_id = excluded.person_centric_id`,
		p.ID, p.Identifier, p.PersonCentricID)
	return err
}

// LinkParticipant attaches a participant to a conversation.
func (db *DB) LinkParticipant(conversationID, participantID int64) error {
	_, err := db.Exec(`
		INSERT INTO conversation_participants (conversation_id, participant_id)
		VALUES (?, ?)
		ON CONFLICT DO NOTHING`,
		conversationID, participantID)
	return err
}

// UpsertMessage inserts or refreshes a message (idempotent on GUID).
func (db *DB) UpsertMessage(m *Message) error {
	_, err := db.Exec(`
		INSERT INTO messages (guid, conversation_id, sender, from_me, sent_at, service,
			kind, reply_to_guid, reply_to_part, edited, unsent, expressive_effect)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guid) DO UPDATE SET
			sender = excluded.sender,
			kind = excluded.kind,
			edited = excluded.edited,
			unsent = excluded.unsent`,
		m.GUID, m.ConversationID, m.Sender, m.FromMe, m.SentAt, m.Service,
		m.Kind, m.ReplyToGUID, m.ReplyToPart, m.Edited, m.Unsent, m.ExpressiveEffect)
	return err
}

// ReplaceSegments rewrites a message's segments. Replace rather than upsert:
// an edit can change the segment count, and stale trailing segments must not
// survive.
func (db *DB) ReplaceSegments(guid string, segments []Segment) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM message_segments WHERE message_guid = ?`, guid); err != nil {
		return err
	}
	for _, s := range segments {
		if _, err := tx.Exec(`
			INSERT INTO message_segments (message_guid, idx, kind, content)
			VALUES (?, ?, ?, ?)`,
			guid, s.Index, s.Kind, s.Content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertReaction records a tapback against its target segment.
func (db *DB) UpsertReaction(r *Reaction) error {
	_, err := db.Exec(`
		INSERT INTO reactions (message_guid, segment_index, kind, removed, sender, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_guid, segment_index, kind, sender) DO UPDATE SET
			removed = excluded.removed,
			sent_at = excluded.sent_at`,
		r.MessageGUID, r.SegmentIndex, r.Kind, r.Removed, r.Sender, r.SentAt)
	return err
}

// ReplaceAttachments rewrites a message's attachment references.
func (db *DB) ReplaceAttachments(guid string, atts []Attachment) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM attachments WHERE message_guid = ?`, guid); err != nil {
		return err
	}
	for _, a := range atts {
		if _, err := tx.Exec(`
			INSERT INTO attachments (message_guid, segment_index, filename, mime_type,
				media_kind, total_bytes, sticker_effect, copied_path, missing)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			guid, a.SegmentIndex, a.Filename, a.MimeType, a.MediaKind,
			a.TotalBytes, a.StickerEffect, a.CopiedPath, a.Missing); err != nil {
			return err
		}
	}
	return tx.Commit()
}
