package export

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nkowalski2/imsgx/internal/archive"
	"github.com/nkowalski2/imsgx/internal/bus"
	"github.com/nkowalski2/imsgx/internal/chatdb"
	"github.com/nkowalski2/imsgx/internal/message"
	"github.com/nkowalski2/imsgx/internal/typedstream"
)

// buildItem turns one message row into its render view, or nil when the row
// carries nothing worth rendering.
func (e *Exporter) buildItem(m *chatdb.Message) *Item {
	it := &Item{
		GUID:    m.GUID,
		Sender:  e.roster.Name(m.HandleID, m.FromMe),
		FromMe:  m.FromMe,
		SentAt:  chatdb.FromAppleNS(m.Date),
		Service: m.Service.String,
	}

	if m.IsGroupEvent() {
		it.Announcement = e.announcement(m)
		return it
	}

	it.Edited = m.IsEdited()
	it.Unsent = m.IsUnsent()
	it.Effect = humanizeEffect(m.ExpressiveSendStyle.String)
	e.fillReplyContext(it, m)

	body := e.bodyText(m, it)
	spans := message.Segments(body)

	var atts []chatdb.Attachment
	if m.NumAttachments > 0 {
		var err error
		atts, err = e.db.AttachmentsForMessage(m.RowID)
		if err != nil {
			e.diag(m.GUID, "attachments", err)
		}
	}
	preview := e.balloonPreview(m)

	it.Segments = e.assembleSegments(spans, atts, preview)
	e.anchorReactions(it)
	e.anchorReplies(it, m)

	if len(it.Segments) == 0 && it.Announcement == "" &&
		!it.Edited && !it.Unsent && !it.DecodeFailed {
		return nil
	}
	return it
}

// bodyText resolves the message body: the text column when populated, else a
// typed-stream decode of attributedBody. A decode failure marks the item and
// yields an empty body; the renderer shows a placeholder.
func (e *Exporter) bodyText(m *chatdb.Message, it *Item) string {
	if m.Text.Valid && m.Text.String != "" {
		return m.Text.String
	}
	if len(m.AttributedBody) == 0 {
		return ""
	}
	body, err := typedstream.Decode(m.AttributedBody)
	if err != nil {
		e.diag(m.GUID, "typedstream", err)
		it.DecodeFailed = true
		return ""
	}
	return body
}

// assembleSegments zips body spans with attachment rows and the balloon
// preview. Attachment placeholders consume attachment rows in ROWID order;
// rows beyond the placeholders append at the end, and a placeholder with no
// row left renders as missing.
func (e *Exporter) assembleSegments(spans []message.Span, atts []chatdb.Attachment, preview *Preview) []Segment {
	segments := make([]Segment, 0, len(spans)+len(atts))
	nextAtt := 0
	usedPreview := false

	for _, span := range spans {
		switch span.Kind {
		case message.SpanAttachment:
			seg := Segment{Kind: span.Kind}
			if nextAtt < len(atts) {
				seg.Attachment = e.copier.Process(&atts[nextAtt])
				nextAtt++
			} else {
				seg.Attachment = &Attachment{Name: "attachment", Missing: true}
			}
			segments = append(segments, seg)
		case message.SpanApp:
			seg := Segment{Kind: span.Kind}
			if preview != nil && !usedPreview {
				seg.Preview = preview
				usedPreview = true
			} else {
				seg.Preview = &Preview{Kind: "app"}
			}
			segments = append(segments, seg)
		default:
			segments = append(segments, Segment{Kind: span.Kind, Text: span.Text})
		}
	}

	for ; nextAtt < len(atts); nextAtt++ {
		segments = append(segments, Segment{
			Kind:       message.SpanAttachment,
			Attachment: e.copier.Process(&atts[nextAtt]),
		})
	}
	if preview != nil && !usedPreview {
		segments = append(segments, Segment{Kind: message.SpanApp, Preview: preview})
	}
	return segments
}

// anchorReactions attaches the prebuilt reaction index entries to their
// target segments. A part index past the segment list anchors to the last
// segment so the reaction stays visible.
func (e *Exporter) anchorReactions(it *Item) {
	parts := e.reactions[it.GUID]
	if len(parts) == 0 || len(it.Segments) == 0 {
		return
	}
	for part, reactions := range parts {
		idx := part
		if idx < 0 || idx >= len(it.Segments) {
			idx = len(it.Segments) - 1
		}
		it.Segments[idx].Reactions = append(it.Segments[idx].Reactions, reactions...)
	}
}

// anchorReplies summarizes the replies threaded under this message on the
// segments they target. The reply bodies render at their own stream
// positions; here only the senders appear.
func (e *Exporter) anchorReplies(it *Item, m *chatdb.Message) {
	if m.NumReplies == 0 || len(it.Segments) == 0 {
		return
	}
	replies, err := e.db.RepliesTo(m.GUID)
	if err != nil {
		e.diag(m.GUID, "replies", err)
		return
	}
	for i := range replies {
		r := &replies[i]
		idx := message.ReplyPartIndex(r.ThreadOriginatorPart.String)
		if idx < 0 || idx >= len(it.Segments) {
			idx = len(it.Segments) - 1
		}
		it.Segments[idx].Replies = append(it.Segments[idx].Replies,
			e.roster.Name(r.HandleID, r.FromMe))
	}
}

// fillReplyContext loads the parent message a reply threads under and keeps
// a short quote of the targeted segment. Dangling parents are tolerated.
func (e *Exporter) fillReplyContext(it *Item, m *chatdb.Message) {
	if !m.IsReply() {
		return
	}
	it.ReplyTo = m.ThreadOriginatorGUID.String
	it.ReplyToPart = message.ReplyPartIndex(m.ThreadOriginatorPart.String)

	parent, err := e.db.MessageByGUID(it.ReplyTo)
	if err != nil {
		e.diag(m.GUID, "reply-parent", err)
		return
	}
	if parent == nil {
		return
	}
	it.ReplyToSender = e.roster.Name(parent.HandleID, parent.FromMe)

	body := ""
	if parent.Text.Valid {
		body = parent.Text.String
	} else if len(parent.AttributedBody) > 0 {
		body, _ = typedstream.Decode(parent.AttributedBody)
	}
	it.ReplyToSnippet = snippetAt(body, it.ReplyToPart)
}

// snippetAt quotes the targeted body segment, shortened for context lines.
func snippetAt(body string, part int) string {
	spans := message.Segments(body)
	if part < 0 || part >= len(spans) {
		if len(spans) == 0 {
			return ""
		}
		part = 0
	}
	span := spans[part]
	switch span.Kind {
	case message.SpanAttachment:
		return "an attachment"
	case message.SpanApp:
		return "app content"
	}
	text := span.Text
	if len(text) > 60 {
		cut := 60
		for cut > 0 && !isRuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "…"
	}
	return text
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// announcement renders a group event row as a single line.
func (e *Exporter) announcement(m *chatdb.Message) string {
	actor := e.roster.Name(m.HandleID, m.FromMe)
	other := e.roster.Name(m.OtherHandle, false)

	switch m.ItemType {
	case 1:
		if m.GroupActionType == 1 {
			return fmt.Sprintf("%s removed %s from the conversation", actor, other)
		}
		return fmt.Sprintf("%s added %s to the conversation", actor, other)
	case 2:
		if m.GroupTitle.Valid && m.GroupTitle.String != "" {
			return fmt.Sprintf("%s renamed the conversation to %q", actor, m.GroupTitle.String)
		}
		return fmt.Sprintf("%s removed the conversation name", actor)
	case 3:
		switch m.GroupActionType {
		case 1:
			return fmt.Sprintf("%s changed the group photo", actor)
		case 2:
			return fmt.Sprintf("%s removed the group photo", actor)
		default:
			return fmt.Sprintf("%s left the conversation", actor)
		}
	case 6:
		return fmt.Sprintf("%s kept an audio message", actor)
	default:
		return fmt.Sprintf("%s performed an action not yet supported here", actor)
	}
}

// balloonPreview decodes the payload of app balloons into a preview. Only
// URL and Apple Music balloons get a rich view; everything else shows its
// bundle name. Decode failures degrade to the plain view, never fail the
// message.
func (e *Exporter) balloonPreview(m *chatdb.Message) *Preview {
	if !m.BalloonBundleID.Valid || m.BalloonBundleID.String == "" {
		return nil
	}
	bundle := m.BalloonBundleID.String

	switch {
	case strings.Contains(bundle, "URLBalloonProvider"):
		p := &Preview{Kind: "url"}
		flat := e.flattenPayload(m)
		if flat != nil {
			view := archive.URLPreviewFrom(flat)
			p.URL = view.URL
			p.Title = view.Title
			p.Summary = view.Summary
			p.SiteName = view.SiteName
		}
		return p
	case strings.Contains(bundle, "com.apple.Music"):
		p := &Preview{Kind: "music"}
		flat := e.flattenPayload(m)
		if flat != nil {
			view := archive.MusicPreviewFrom(flat)
			p.Title = view.Title
			p.Artist = view.Artist
			p.Album = view.Album
			p.URL = view.URL
		}
		return p
	default:
		return &Preview{Kind: "app", Bundle: appName(bundle)}
	}
}

func (e *Exporter) flattenPayload(m *chatdb.Message) map[string]interface{} {
	if len(m.PayloadData) == 0 {
		return nil
	}
	flat, err := archive.Decode(m.PayloadData)
	if err != nil {
		e.diag(m.GUID, "archive", err)
		return nil
	}
	return flat
}

// appName shortens a balloon bundle id to a label. Extension bundles look
// like "com.apple.messages.MSMessageExtensionBalloonProvider:UUID:name".
func appName(bundle string) string {
	if i := strings.LastIndexByte(bundle, ':'); i >= 0 {
		bundle = bundle[i+1:]
	}
	if i := strings.LastIndexByte(bundle, '.'); i >= 0 && i+1 < len(bundle) {
		return bundle[i+1:]
	}
	return bundle
}

// expressiveEffects maps expressive_send_style_id values to display names.
var expressiveEffects = map[string]string{
	"com.apple.MobileSMS.expressivesend.impact":       "Slam",
	"com.apple.MobileSMS.expressivesend.gentle":       "Gentle",
	"com.apple.MobileSMS.expressivesend.loud":         "Loud",
	"com.apple.MobileSMS.expressivesend.invisibleink": "Invisible Ink",
	"com.apple.messages.effect.CKConfettiEffect":      "Confetti",
	"com.apple.messages.effect.CKEchoEffect":          "Echo",
	"com.apple.messages.effect.CKFireworksEffect":     "Fireworks",
	"com.apple.messages.effect.CKHappyBirthdayEffect": "Balloons",
	"com.apple.messages.effect.CKHeartEffect":         "Heart",
	"com.apple.messages.effect.CKLasersEffect":        "Lasers",
	"com.apple.messages.effect.CKShootingStarEffect":  "Shooting Star",
	"com.apple.messages.effect.CKSparklesEffect":      "Sparkles",
	"com.apple.messages.effect.CKSpotlightEffect":     "Spotlight",
}

func humanizeEffect(styleID string) string {
	if styleID == "" {
		return ""
	}
	if name, ok := expressiveEffects[styleID]; ok {
		return name
	}
	if i := strings.LastIndexByte(styleID, '.'); i >= 0 && i+1 < len(styleID) {
		return styleID[i+1:]
	}
	return styleID
}

func (e *Exporter) diag(guid, stage string, err error) {
	e.decodeFailures++
	e.logger.Debug("decode failure",
		zap.String("guid", guid),
		zap.String("stage", stage),
		zap.Error(err))
	e.bus.Emit(bus.KindDecodeIssue, bus.DecodeIssue{
		MessageGUID: guid,
		Stage:       stage,
		Err:         err.Error(),
	})
}
