package storage

import (
	"strings"
	"time"
)

// DisplayLayout is the medium date/time rendering used for human output.
const DisplayLayout = "Jan 2, 2006 at 3:04:05 PM"

// DateLayout is the calendar date accepted for range filters.
const DateLayout = "2006-01-02"

// timestampLayouts lists the zoned on-disk formats in the order they are tried.
// The recorder has written ISO-8601 and a space-separated legacy form over time.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	time.RFC3339,
	"2006-01-02 15:04:05.000 Z07:00",
	"2006-01-02 15:04:05.000 Z0700",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05 Z0700",
}

// naiveLayout carries no zone and is interpreted in the caller's location.
const naiveLayout = "2006-01-02 15:04:05"

// ParseTimestamp parses raw using the local zone for naive values.
func ParseTimestamp(raw string) (time.Time, error) {
	return ParseTimestampIn(raw, time.Local)
}

// ParseTimestampIn tries every known layout in order and fails with
// *ParseError only when none match.
func ParseTimestampIn(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation(naiveLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, &ParseError{Raw: raw}
}

// FormatTimestamp renders t in loc using DisplayLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

// DisplayTimestamp formats raw for display, returning raw unchanged when it
// cannot be parsed.
func DisplayTimestamp(raw string, loc *time.Location) string {
	t, err := ParseTimestampIn(raw, loc)
	if err != nil {
		return raw
	}
	return FormatTimestamp(t, loc)
}

// ParseDate parses a YYYY-MM-DD boundary as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, NewError(KindInvalidArgument, "parse date", err)
	}
	return t, nil
}

// endOfDay returns the last representable instant of the day starting at day.
func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
