package message

import (
	"reflect"
	"testing"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "mixed placeholders keep source order",
			text: "One�￼Two￼Three￼four",
			want: []Span{
				{Kind: SpanText, Text: "One"},
				{Kind: SpanApp},
				{Kind: SpanAttachment},
				{Kind: SpanText, Text: "Two"},
				{Kind: SpanAttachment},
				{Kind: SpanText, Text: "Three"},
				{Kind: SpanAttachment},
				{Kind: SpanText, Text: "four"},
			},
		},
		{
			name: "plain text",
			text: "just words",
			want: []Span{{Kind: SpanText, Text: "just words"}},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "back to back attachments",
			text: "￼￼",
			want: []Span{{Kind: SpanAttachment}, {Kind: SpanAttachment}},
		},
		{
			name: "whitespace around text trimmed",
			text: "  hi ￼  ",
			want: []Span{{Kind: SpanText, Text: "hi"}, {Kind: SpanAttachment}},
		},
		{
			name: "whitespace-only runs are not spans",
			text: "￼ ￼",
			want: []Span{{Kind: SpanAttachment}, {Kind: SpanAttachment}},
		},
		{
			name: "trailing placeholder",
			text: "photo:￼",
			want: []Span{{Kind: SpanText, Text: "photo:"}, {Kind: SpanAttachment}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segments(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Segments(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
