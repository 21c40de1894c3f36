package typedstream

import (
	"errors"
	"testing"
)

// encode builds a minimal typedstream layout around text: leading junk, the
// start marker, one variable byte, the text, one length byte, the terminator,
// trailing junk.
func encode(text string) []byte {
	buf := []byte{0x04, 0x0b, 0x73, 0x74}
	buf = append(buf, 0x01, 0x2b)
	buf = append(buf, 0x95)
	buf = append(buf, []byte(text)...)
	buf = append(buf, 0x86)
	buf = append(buf, endByte)
	buf = append(buf, 0x00, 0x00)
	return buf
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "ascii", text: "Hello world"},
		{name: "emoji", text: "Sounds good \U0001f44d"},
		{name: "multibyte", text: "café na praça"},
		{name: "newlines", text: "line one\nline two"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(encode(tt.text))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.text {
				t.Errorf("Decode() = %q, want %q", got, tt.text)
			}
		})
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	buf := []byte{0x01, 0x2b, 0x95, 'o', 'k', 0xff, 0xfe, 'o', 'k', 0x86, endByte}
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "ok�ok" {
		t.Errorf("Decode() = %q, want lossy replacement", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty buffer", data: nil, want: ErrNoStartPattern},
		{name: "one byte", data: []byte{0x01}, want: ErrNoStartPattern},
		{name: "no marker", data: []byte{0x04, 0x0b, 0x73, 0x74, 0x84}, want: ErrNoStartPattern},
		{name: "no terminator", data: []byte{0x01, 0x2b, 0x95, 'h', 'i'}, want: ErrNoEndPattern},
		{name: "marker at tail", data: []byte{0x00, 0x01, 0x2b}, want: ErrNoEndPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}
