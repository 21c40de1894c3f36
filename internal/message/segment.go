// Package message turns raw chat.db column values into renderable message
// semantics: body segmentation, reaction/reply targeting, and the
// associated-message-type classification.
package message

import (
	"strings"
	"unicode/utf8"
)

// Placeholder code points Messages embeds in body text. Bit-exact: the
// object-replacement character marks an attachment position, the replacement
// character marks an app-balloon position.
const (
	AttachmentChar = '￼'
	AppChar        = '�'
)

// SpanKind tags one body segment.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanAttachment
	SpanApp
)

func (k SpanKind) String() string {
	switch k {
	case SpanAttachment:
		return "attachment"
	case SpanApp:
		return "app"
	default:
		return "text"
	}
}

// Span is one contiguous unit of a message body. Text is set only for
// SpanText spans.
type Span struct {
	Kind SpanKind
	Text string
}

// Segments splits body text into ordered spans. Span order mirrors
// placeholder positions exactly; reactions and replies address their target
// by position in this sequence, so an off-by-one here misplaces them
// silently. Empty input yields no spans, the normal case for messages whose
// content lives in a binary payload.
func Segments(text string) []Span {
	var spans []Span
	start := 0
	for i, r := range text {
		if r != AttachmentChar && r != AppChar {
			continue
		}
		if t := strings.TrimSpace(text[start:i]); t != "" {
			spans = append(spans, Span{Kind: SpanText, Text: t})
		}
		if r == AttachmentChar {
			spans = append(spans, Span{Kind: SpanAttachment})
		} else {
			spans = append(spans, Span{Kind: SpanApp})
		}
		start = i + utf8.RuneLen(r)
	}
	if t := strings.TrimSpace(text[start:]); t != "" {
		spans = append(spans, Span{Kind: SpanText, Text: t})
	}
	return spans
}
