package model

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the plain-text encodings the provider emits, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses a wire date string into a UTC calendar date. The provider
// emits ISO dates plus two legacy millisecond-epoch encodings, an unescaped
// "/Date(1706572800000+0000)/" and an escaped "\/Date(...)\/" variant.
// Unparsable input yields a zero time, never an error.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if rest, ok := strings.CutPrefix(s, `\/Date(`); ok {
		return parseEpochToken(rest)
	}
	if rest, ok := strings.CutPrefix(s, "/Date("); ok {
		return parseEpochToken(rest)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOnly(t)
		}
	}
	return time.Time{}
}

// parseEpochToken parses the millisecond token up to the first '+' or ')'.
func parseEpochToken(rest string) time.Time {
	end := strings.IndexAny(rest, "+)")
	if end < 0 {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(rest[:end], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return DateOnly(time.UnixMilli(ms).UTC())
}

// DateOnly truncates a time to a UTC calendar date. All point-in-time
// comparisons in the report operate on whole days.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether two dates fall in the same calendar month and year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// DaysBetween returns the whole days from an earlier date to a later date,
// negative when from is after to. Both inputs must be calendar dates.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
