package message

import (
	"strconv"
	"strings"
)

// ParseAssociatedGUID splits an associated_message_guid value into the
// targeted segment index and target GUID. The column has three shapes:
//
//	p:<index>/<guid>   explicit segment index
//	bp:<guid>          balloon target, implicit index 0
//	<guid>             implicit index 0
//
// Malformed indices default to 0 rather than failing; Messages itself is
// lenient here and real databases contain such rows.
func ParseAssociatedGUID(s string) (int, string) {
	if rest, ok := strings.CutPrefix(s, "p:"); ok {
		idxToken, guid, found := strings.Cut(rest, "/")
		if !found {
			return 0, rest
		}
		return parseIndex(idxToken), guid
	}
	if rest, ok := strings.CutPrefix(s, "bp:"); ok {
		return 0, rest
	}
	return 0, s
}

// HasMalformedIndex reports whether a p:-shaped value carries an index that
// did not parse. Rendering already defaulted it to 0; this exists so callers
// can log the producer bug.
func HasMalformedIndex(s string) bool {
	rest, ok := strings.CutPrefix(s, "p:")
	if !ok {
		return false
	}
	idxToken, _, found := strings.Cut(rest, "/")
	if !found {
		return true
	}
	_, err := strconv.ParseUint(idxToken, 10, 32)
	return err != nil
}

// ReplyPartIndex extracts the target segment index from a
// thread_originator_part value. The index is the leading colon-delimited
// token ("2:0:1" targets segment 2); absent or unparsable content defaults
// to 0.
func ReplyPartIndex(s string) int {
	token, _, _ := strings.Cut(s, ":")
	return parseIndex(token)
}

func parseIndex(s string) int {
	idx, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return int(idx)
}
