// Package typedstream extracts plain text from the legacy typedstream
// encoding Messages uses for the attributedBody column. The format is an
// undocumented NeXT-era archive; rather than fully parsing it, the decoder
// pattern-matches the byte layout around the embedded NSString payload.
package typedstream

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoStartPattern means the string start marker never appeared
	// before the buffer ended.
	ErrNoStartPattern = errors.New("typedstream: no start pattern found")
	// ErrNoEndPattern means the string terminator never appeared after
	// a valid start marker.
	ErrNoEndPattern = errors.New("typedstream: no end pattern found")
)

// startPattern marks the beginning of the embedded string: SOH followed by '+'.
// One variable-value byte follows the marker before the text itself begins.
var startPattern = []byte{0x01, 0x2b}

// endByte is the archive's index control byte. The byte immediately before it
// is a length/type byte, not part of the text.
const endByte = 0x84

// Decode returns the UTF-8 text embedded in a typedstream buffer.
//
// The scans for the start and end markers are independent: a buffer with a
// valid start but no terminator reports ErrNoEndPattern rather than
// returning partial text. Byte sequences that are not valid UTF-8 (custom
// fonts occasionally truncate multi-byte glyphs) decode lossily with
// replacement characters instead of failing.
func Decode(data []byte) (string, error) {
	start := bytes.Index(data, startPattern)
	if start < 0 {
		return "", ErrNoStartPattern
	}

	// Drop the two-byte marker plus the variable byte that follows it.
	skip := start + len(startPattern) + 1
	if skip > len(data) {
		return "", ErrNoEndPattern
	}
	rest := data[skip:]

	end := bytes.IndexByte(rest, endByte)
	if end < 0 {
		return "", ErrNoEndPattern
	}
	if end > 0 {
		// The byte preceding the terminator is a length/type byte.
		end--
	}

	text := rest[:end]
	if !utf8.Valid(text) {
		return strings.ToValidUTF8(string(text), string(utf8.RuneError)), nil
	}
	return string(text), nil
}
