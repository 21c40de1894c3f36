package chatdb

import (
	"fmt"
	"time"
)

// appleEpochOffset is the seconds between the Unix epoch and 2001-01-01 UTC,
// the zero point of every timestamp Messages persists.
const appleEpochOffset = 978307200

// FromAppleNS converts nanoseconds since the Apple epoch to a time.Time.
func FromAppleNS(ns int64) time.Time {
	return time.Unix(appleEpochOffset+ns/1e9, ns%1e9)
}

// ToAppleNS converts a time.Time to nanoseconds since the Apple epoch.
func ToAppleNS(t time.Time) int64 {
	return (t.Unix()-appleEpochOffset)*1e9 + int64(t.Nanosecond())
}

// QueryContext bounds an export by date: start inclusive, end exclusive,
// both in Apple nanoseconds. Either bound may be absent. Ordering of the two
// is the caller's problem; each bound only validates its own syntax.
type QueryContext struct {
	Start    int64
	End      int64
	HasStart bool
	HasEnd   bool
}

// ParseQueryContext builds a QueryContext from YYYY-MM-DD strings, empty
// meaning unbounded. Dates are taken in the local timezone, matching how a
// user reads their own message history.
func ParseQueryContext(start, end string) (QueryContext, error) {
	var qc QueryContext
	if start != "" {
		t, err := time.ParseInLocation("2006-01-02", start, time.Local)
		if err != nil {
			return QueryContext{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
		qc.Start = ToAppleNS(t)
		qc.HasStart = true
	}
	if end != "" {
		t, err := time.ParseInLocation("2006-01-02", end, time.Local)
		if err != nil {
			return QueryContext{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
		qc.End = ToAppleNS(t)
		qc.HasEnd = true
	}
	return qc, nil
}

// InRange reports whether an Apple-ns timestamp falls inside the bounds.
func (qc QueryContext) InRange(ns int64) bool {
	if qc.HasStart && ns < qc.Start {
		return false
	}
	if qc.HasEnd && ns >= qc.End {
		return false
	}
	return true
}

// Bounded reports whether any bound is set.
func (qc QueryContext) Bounded() bool {
	return qc.HasStart || qc.HasEnd
}

// dateFilter appends SQL conditions for the bounds against col, returning
// the augmented WHERE fragment and args.
func (qc QueryContext) dateFilter(col string, conds []string, args []interface{}) ([]string, []interface{}) {
	if qc.HasStart {
		conds = append(conds, col+" >= ?")
		args = append(args, qc.Start)
	}
	if qc.HasEnd {
		conds = append(conds, col+" < ?")
		args = append(args, qc.End)
	}
	return conds, args
}
