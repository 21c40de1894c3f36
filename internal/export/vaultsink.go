package export

import (
	"fmt"
	"strings"

	"github.com/nkowalski2/imsgx/internal/message"
	"github.com/nkowalski2/imsgx/internal/vault"
)

// VaultSink writes conversations into the vault archive database instead of
// transcript files. Writes are idempotent per message GUID, so re-running an
// export refreshes the same vault.
type VaultSink struct {
	db  *vault.DB
	run *vault.Run

	convID        int64
	conversations int64
	messages      int64
	attachments   int64
}

// NewVaultSink opens the run row. The caller owns the vault handle.
func NewVaultSink(db *vault.DB, run *vault.Run) (*VaultSink, error) {
	if err := db.BeginRun(run); err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &VaultSink{db: db, run: run}, nil
}

func (s *VaultSink) BeginConversation(c *Conversation) error {
	if err := s.db.UpsertConversation(&vault.Conversation{
		ID:      c.ID,
		Name:    c.Name,
		Service: c.Service,
		IsGroup: c.IsGroup,
	}); err != nil {
		return err
	}
	for i, name := range c.Participants {
		p := &vault.Participant{ID: c.ParticipantIDs[i], Identifier: name}
		if err := s.db.UpsertParticipant(p); err != nil {
			return err
		}
		if err := s.db.LinkParticipant(c.ID, p.ID); err != nil {
			return err
		}
	}
	s.convID = c.ID
	s.conversations++
	return nil
}

func (s *VaultSink) WriteMessage(it *Item) error {
	kind := "normal"
	if it.Announcement != "" {
		kind = "announcement"
	}
	if err := s.db.UpsertMessage(&vault.Message{
		GUID:             it.GUID,
		ConversationID:   s.convID,
		Sender:           it.Sender,
		FromMe:           it.FromMe,
		SentAt:           it.SentAt.UnixMilli(),
		Service:          it.Service,
		Kind:             kind,
		ReplyToGUID:      it.ReplyTo,
		ReplyToPart:      it.ReplyToPart,
		Edited:           it.Edited,
		Unsent:           it.Unsent,
		ExpressiveEffect: it.Effect,
	}); err != nil {
		return err
	}

	if err := s.db.ReplaceSegments(it.GUID, vaultSegments(it)); err != nil {
		return err
	}

	var atts []vault.Attachment
	for idx := range it.Segments {
		seg := &it.Segments[idx]
		for _, r := range seg.Reactions {
			if err := s.db.UpsertReaction(&vault.Reaction{
				MessageGUID:  it.GUID,
				SegmentIndex: idx,
				Kind:         strings.ToLower(r.Kind.String()),
				Sender:       r.Sender,
				SentAt:       r.SentAt.UnixMilli(),
			}); err != nil {
				return err
			}
		}
		if a := seg.Attachment; a != nil {
			atts = append(atts, vault.Attachment{
				MessageGUID:   it.GUID,
				SegmentIndex:  idx,
				Filename:      a.Name,
				MimeType:      a.MimeType,
				MediaKind:     a.Kind.String(),
				TotalBytes:    a.Bytes,
				StickerEffect: a.Sticker,
				CopiedPath:    a.Path,
				Missing:       a.Missing,
			})
		}
	}
	if err := s.db.ReplaceAttachments(it.GUID, atts); err != nil {
		return err
	}

	s.messages++
	s.attachments += int64(len(atts))
	return nil
}

func (s *VaultSink) EndConversation(*Conversation) error { return nil }

// Close stamps the run row with the final counts.
func (s *VaultSink) Close(sum *Summary) error {
	s.run.Conversations = s.conversations
	s.run.Messages = s.messages
	s.run.Attachments = s.attachments
	if sum != nil {
		s.run.DecodeFailures = sum.DecodeFailures
	}
	return s.db.FinishRun(s.run)
}

// vaultSegments flattens an item's segments to archive rows. Segment kinds
// match the FTS trigger: only "text" rows are indexed for search.
func vaultSegments(it *Item) []vault.Segment {
	if it.Announcement != "" {
		return []vault.Segment{{Index: 0, Kind: "announcement", Content: it.Announcement}}
	}
	segs := make([]vault.Segment, 0, len(it.Segments))
	for idx := range it.Segments {
		seg := &it.Segments[idx]
		out := vault.Segment{Index: idx}
		switch {
		case seg.Kind == message.SpanText:
			out.Kind = "text"
			out.Content = seg.Text
		case seg.Attachment != nil:
			out.Kind = "attachment"
			out.Content = seg.Attachment.Name
		default:
			out.Kind = "app"
			out.Content = previewContent(seg.Preview)
		}
		segs = append(segs, out)
	}
	return segs
}

func previewContent(p *Preview) string {
	if p == nil {
		return ""
	}
	switch {
	case p.URL != "":
		return p.URL
	case p.Title != "":
		return p.Title
	default:
		return p.Bundle
	}
}
