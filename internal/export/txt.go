package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const timeFormat = "Jan 02, 2006  3:04:05 PM"

// TXTSink writes one plain-text transcript per conversation.
type TXTSink struct {
	dir  string
	used map[string]bool

	f *os.File
	w *bufio.Writer
}

// NewTXTSink creates the export directory and returns a text sink.
func NewTXTSink(dir string) (*TXTSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &TXTSink{dir: dir, used: make(map[string]bool)}, nil
}

func (s *TXTSink) BeginConversation(c *Conversation) error {
	f, err := os.Create(filepath.Join(s.dir, s.fileName(c, ".txt")))
	if err != nil {
		return err
	}
	s.f = f
	s.w = bufio.NewWriter(f)

	fmt.Fprintf(s.w, "Conversation: %s\n", c.Name)
	if len(c.Participants) > 0 {
		fmt.Fprintf(s.w, "Participants: %s\n", strings.Join(c.Participants, ", "))
	}
	fmt.Fprintln(s.w)
	return nil
}

func (s *TXTSink) WriteMessage(it *Item) error {
	s.w.WriteString(formatTXT(it))
	return nil
}

func (s *TXTSink) EndConversation(*Conversation) error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return err
	}
	err := s.f.Close()
	s.f, s.w = nil, nil
	return err
}

func (s *TXTSink) Close(*Summary) error { return nil }

// fileName derives a transcript filename from the conversation name,
// disambiguating collisions with the canonical id.
func (s *TXTSink) fileName(c *Conversation, ext string) string {
	base := safeFileName(c.Name)
	name := base + ext
	if s.used[name] {
		name = base + "-" + strconv.FormatInt(c.ID, 10) + ext
	}
	s.used[name] = true
	return name
}

func safeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '-', r == '_', r == '@', r == '+', r == ',', r == '(', r == ')':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		out = "conversation"
	}
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

func formatTXT(it *Item) string {
	var b strings.Builder

	b.WriteString(it.SentAt.Format(timeFormat))
	b.WriteByte('\n')

	if it.Announcement != "" {
		b.WriteString("* ")
		b.WriteString(it.Announcement)
		b.WriteString("\n\n")
		return b.String()
	}

	b.WriteString(it.Sender)
	if it.Edited {
		b.WriteString(" (edited)")
	}
	if it.Effect != "" {
		b.WriteString(" (sent with ")
		b.WriteString(it.Effect)
		b.WriteByte(')')
	}
	b.WriteByte('\n')

	if it.ReplyTo != "" {
		b.WriteString("> replying to ")
		if it.ReplyToSender != "" {
			b.WriteString(it.ReplyToSender)
		} else {
			b.WriteString("an earlier message")
		}
		if it.ReplyToSnippet != "" {
			fmt.Fprintf(&b, ": %q", it.ReplyToSnippet)
		}
		b.WriteByte('\n')
	}

	switch {
	case it.Unsent:
		b.WriteString("(this message was unsent)\n")
	case it.DecodeFailed && len(it.Segments) == 0:
		b.WriteString("(failed to decode message body)\n")
	}

	for i := range it.Segments {
		writeTXTSegment(&b, &it.Segments[i])
	}

	b.WriteByte('\n')
	return b.String()
}

func writeTXTSegment(b *strings.Builder, seg *Segment) {
	switch {
	case seg.Attachment != nil:
		writeTXTAttachment(b, seg.Attachment)
	case seg.Preview != nil:
		writeTXTPreview(b, seg.Preview)
	default:
		b.WriteString(seg.Text)
		b.WriteByte('\n')
	}

	for _, r := range seg.Reactions {
		fmt.Fprintf(b, "  %s %s by %s\n", r.Kind.Emoji(), r.Kind.String(), r.Sender)
	}
	if n := len(seg.Replies); n > 0 {
		label := "replies"
		if n == 1 {
			label = "reply"
		}
		fmt.Fprintf(b, "  %d %s, from %s\n", n, label, strings.Join(seg.Replies, ", "))
	}
}

func writeTXTAttachment(b *strings.Builder, a *Attachment) {
	if a.Missing {
		fmt.Fprintf(b, "<attachment missing: %s>\n", a.Name)
		return
	}
	label := "attachment"
	if a.Sticker != "" {
		label = "sticker (" + a.Sticker + ")"
	} else if a.Kind.String() != "other" {
		label = a.Kind.String()
	}
	fmt.Fprintf(b, "<%s: %s", label, a.Name)
	if a.Path != "" {
		fmt.Fprintf(b, " at %s", a.Path)
	}
	b.WriteString(">\n")
}

func writeTXTPreview(b *strings.Builder, p *Preview) {
	switch p.Kind {
	case "url":
		b.WriteString("[link]")
		if p.URL != "" {
			b.WriteByte(' ')
			b.WriteString(p.URL)
		}
		b.WriteByte('\n')
		if p.Title != "" || p.SiteName != "" {
			b.WriteString("       ")
			b.WriteString(strings.TrimSpace(strings.Join(nonEmpty(p.Title, p.SiteName), " · ")))
			b.WriteByte('\n')
		}
		if p.Summary != "" {
			b.WriteString("       ")
			b.WriteString(p.Summary)
			b.WriteByte('\n')
		}
	case "music":
		b.WriteString("[music] ")
		b.WriteString(strings.Join(nonEmpty(p.Title, p.Artist, p.Album), " · "))
		b.WriteByte('\n')
	default:
		b.WriteString("[app]")
		if p.Bundle != "" {
			b.WriteByte(' ')
			b.WriteString(p.Bundle)
		}
		b.WriteByte('\n')
	}
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
