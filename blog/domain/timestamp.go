package domain

import (
	"time"
)

// Timestamp is the sortable textual form of an instant used throughout the domain.
// Remote storage keeps native timestamps; conversion happens only in the persistence
// gateway.
type Timestamp string

// TimestampLayout is a fixed-width UTC layout, so lexical and chronological order agree.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var parseLayouts = []string{
	TimestampLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// NewTimestamp formats t in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UTC().Format(TimestampLayout))
}

// Time parses the timestamp. Date-only values are accepted. The zero time is
// returned for empty or unparsable values.
func (ts Timestamp) Time() time.Time {
	if ts == "" {
		return time.Time{}
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, string(ts)); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Valid reports whether the timestamp parses.
func (ts Timestamp) Valid() bool {
	return !ts.Time().IsZero()
}

// After reports whether ts is strictly later than other.
func (ts Timestamp) After(other Timestamp) bool {
	return ts.Time().After(other.Time())
}
