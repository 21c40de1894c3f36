// Package export turns chat.db rows into transcripts. The orchestrator
// streams messages per deduplicated conversation, decodes bodies and balloon
// payloads, anchors reactions and replies to body segments, and hands the
// result to a Sink: plain text, HTML, or the vault archive database.
package export

import (
	"time"

	"github.com/nkowalski2/imsgx/internal/attachment"
	"github.com/nkowalski2/imsgx/internal/message"
)

// Conversation is one deduplicated conversation and the chat rows that
// collapsed into it.
type Conversation struct {
	ID             int64
	Name           string
	Service        string
	IsGroup        bool
	Participants   []string
	ParticipantIDs []int64
	ChatIDs        []int64
}

// Item is one message prepared for rendering.
type Item struct {
	GUID    string
	Sender  string
	FromMe  bool
	SentAt  time.Time
	Service string

	// Announcement is the rendered text of a group event (member change,
	// rename, photo change). When set, the item has no segments.
	Announcement string

	Edited bool
	Unsent bool
	// Effect is the humanized expressive-send style, empty for plain sends.
	Effect string

	// Reply context, set when the message is threaded under a parent.
	ReplyTo        string
	ReplyToSender  string
	ReplyToSnippet string
	ReplyToPart    int

	Segments     []Segment
	DecodeFailed bool
}

// Segment is one body span plus everything anchored to it. The slice index
// of a segment is the part index reactions and replies target.
type Segment struct {
	Kind       message.SpanKind
	Text       string
	Attachment *Attachment
	Preview    *Preview
	Reactions  []Reaction
	// Replies lists the senders of replies targeting this segment, in
	// send order. The replies themselves render at their own positions.
	Replies []string
}

// Reaction is one surviving tapback on a segment. Removed reactions cancel
// their add and never reach the renderer.
type Reaction struct {
	Kind   message.ReactionKind
	Sender string
	FromMe bool
	SentAt time.Time
}

// Attachment is the render view of one attachment row.
type Attachment struct {
	RowID    int64
	Name     string
	Path     string
	MimeType string
	Kind     attachment.MediaKind
	// Sticker carries the sticker effect label, empty for non-stickers
	// and plain stickers.
	Sticker string
	Bytes   int64
	Missing bool
}

// IsImage reports whether the renderer can embed the file inline. Stickers
// are images with extra decoration.
func (a *Attachment) IsImage() bool {
	return (a.Kind == attachment.KindImage || a.Kind == attachment.KindSticker) && !a.Missing
}

// IsVideo reports whether the file should render as a video element.
func (a *Attachment) IsVideo() bool { return a.Kind == attachment.KindVideo && !a.Missing }

// IsAudio reports whether the file should render as an audio element.
func (a *Attachment) IsAudio() bool { return a.Kind == attachment.KindAudio && !a.Missing }

// Preview is decoded balloon content for app segments.
type Preview struct {
	// Kind is "url", "music", or "app".
	Kind     string
	URL      string
	Title    string
	Summary  string
	SiteName string
	Artist   string
	Album    string
	// Bundle labels app balloons the decoder has no richer view for.
	Bundle string
}

// Summary is the final accounting of one run.
type Summary struct {
	Conversations      int
	Messages           int64
	Attachments        int64
	MissingAttachments int64
	DecodeFailures     int64
	Duration           time.Duration
}

// Sink consumes rendered conversations. The txt and html sinks write one
// transcript file per conversation; the vault sink writes the archive
// database.
type Sink interface {
	BeginConversation(c *Conversation) error
	WriteMessage(it *Item) error
	EndConversation(c *Conversation) error
	Close(sum *Summary) error
}
