package export

import (
	"strings"
	"testing"
	"time"

	"github.com/nkowalski2/imsgx/internal/attachment"
	"github.com/nkowalski2/imsgx/internal/message"
)

var testTime = time.Date(2024, 6, 15, 13, 23, 45, 0, time.UTC)

func TestFormatTXTTextWithReactionsAndReplies(t *testing.T) {
	it := &Item{
		GUID:   "m1",
		Sender: "alice@example.com",
		SentAt: testTime,
		Segments: []Segment{{
			Kind:      message.SpanText,
			Text:      "Hello there",
			Reactions: []Reaction{{Kind: message.ReactionLoved, Sender: "Me"}},
			Replies:   []string{"Me", "carol@example.com"},
		}},
	}
	out := formatTXT(it)

	for _, want := range []string{
		"Jun 15, 2024  1:23:45 PM\n",
		"alice@example.com\n",
		"Hello there\n",
		"  " + message.ReactionLoved.Emoji() + " Loved by Me\n",
		"  2 replies, from Me, carol@example.com\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("message block should end with a blank line:\n%q", out)
	}
}

func TestFormatTXTAnnouncement(t *testing.T) {
	it := &Item{
		Sender:       "alice@example.com",
		SentAt:       testTime,
		Announcement: `alice@example.com renamed the conversation to "Trip"`,
	}
	out := formatTXT(it)
	if !strings.Contains(out, "* alice@example.com renamed the conversation to \"Trip\"\n") {
		t.Errorf("announcement not rendered:\n%s", out)
	}
	if strings.Contains(out, "alice@example.com\nalice") {
		t.Errorf("announcement should not repeat the sender line:\n%s", out)
	}
}

func TestFormatTXTAnnotations(t *testing.T) {
	it := &Item{
		Sender: "Me", FromMe: true, SentAt: testTime,
		Edited: true,
		Effect: "Slam",
		Segments: []Segment{{
			Kind: message.SpanText, Text: "hi",
		}},
	}
	out := formatTXT(it)
	if !strings.Contains(out, "Me (edited) (sent with Slam)\n") {
		t.Errorf("annotations missing:\n%s", out)
	}
}

func TestFormatTXTUnsent(t *testing.T) {
	it := &Item{Sender: "Me", FromMe: true, SentAt: testTime, Unsent: true}
	out := formatTXT(it)
	if !strings.Contains(out, "(this message was unsent)\n") {
		t.Errorf("unsent marker missing:\n%s", out)
	}
}

func TestFormatTXTDecodeFailure(t *testing.T) {
	it := &Item{Sender: "Me", FromMe: true, SentAt: testTime, DecodeFailed: true}
	out := formatTXT(it)
	if !strings.Contains(out, "(failed to decode message body)\n") {
		t.Errorf("decode placeholder missing:\n%s", out)
	}
}

func TestFormatTXTReplyContext(t *testing.T) {
	it := &Item{
		Sender: "Me", FromMe: true, SentAt: testTime,
		ReplyTo:        "parent-guid",
		ReplyToSender:  "alice@example.com",
		ReplyToSnippet: "Hello there",
		Segments:       []Segment{{Kind: message.SpanText, Text: "sure"}},
	}
	out := formatTXT(it)
	if !strings.Contains(out, "> replying to alice@example.com: \"Hello there\"\n") {
		t.Errorf("reply context missing:\n%s", out)
	}

	it.ReplyToSender = ""
	it.ReplyToSnippet = ""
	out = formatTXT(it)
	if !strings.Contains(out, "> replying to an earlier message\n") {
		t.Errorf("dangling reply context missing:\n%s", out)
	}
}

func TestFormatTXTAttachments(t *testing.T) {
	it := &Item{
		Sender: "alice@example.com", SentAt: testTime,
		Segments: []Segment{
			{Kind: message.SpanAttachment, Attachment: &Attachment{
				Name: "IMG_1.jpeg", Kind: attachment.KindImage, Path: "attachments/12/IMG_1.jpeg",
			}},
			{Kind: message.SpanAttachment, Attachment: &Attachment{
				Name: "gone.mov", Missing: true,
			}},
			{Kind: message.SpanAttachment, Attachment: &Attachment{
				Name: "sticker.heics", Kind: attachment.KindSticker, Sticker: "Outline", Path: "attachments/13/sticker.heics",
			}},
		},
	}
	out := formatTXT(it)

	for _, want := range []string{
		"<image: IMG_1.jpeg at attachments/12/IMG_1.jpeg>\n",
		"<attachment missing: gone.mov>\n",
		"<sticker (Outline): sticker.heics at attachments/13/sticker.heics>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTXTPreviews(t *testing.T) {
	it := &Item{
		Sender: "alice@example.com", SentAt: testTime,
		Segments: []Segment{
			{Kind: message.SpanApp, Preview: &Preview{
				Kind: "url", URL: "https://example.com", Title: "Example", SiteName: "example.com",
			}},
			{Kind: message.SpanApp, Preview: &Preview{
				Kind: "music", Title: "Song", Artist: "Band",
			}},
			{Kind: message.SpanApp, Preview: &Preview{Kind: "app", Bundle: "GamePigeon"}},
		},
	}
	out := formatTXT(it)

	for _, want := range []string{
		"[link] https://example.com\n",
		"Example · example.com\n",
		"[music] Song · Band\n",
		"[app] GamePigeon\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Trip Planning", "Trip Planning"},
		{"+15551234567", "+15551234567"},
		{"a/b\\c:d", "a_b_c_d"},
		{"", "conversation"},
		{"...", "..."},
	}
	for _, tt := range tests {
		if got := safeFileName(tt.in); got != tt.want {
			t.Errorf("safeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := safeFileName(strings.Repeat("x", 300)); len(got) != 120 {
		t.Errorf("long name length = %d, want 120", len(got))
	}
}
