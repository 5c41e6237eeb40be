package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate_ISO(t *testing.T) {
	assert.Equal(t, date(2025, 8, 31), ParseDate("2025-08-31"))
	assert.Equal(t, date(2025, 8, 31), ParseDate("2025-08-31T15:04:05"))
	assert.Equal(t, date(2025, 8, 31), ParseDate("2025-08-31T15:04:05Z"))
}

func TestParseDate_EpochToken(t *testing.T) {
	// 2024-01-30 00:00:00 UTC in milliseconds.
	assert.Equal(t, date(2024, 1, 30), ParseDate("/Date(1706572800000+0000)/"))
	assert.Equal(t, date(2024, 1, 30), ParseDate(`\/Date(1706572800000+0000)\/`))
	assert.Equal(t, date(2024, 1, 30), ParseDate("/Date(1706572800000)/"))
}

func TestParseDate_TruncatesToMidnight(t *testing.T) {
	// Mid-day epoch timestamps normalize to the UTC date.
	got := ParseDate("/Date(1706616000000+0000)/") // 2024-01-30 12:00 UTC
	assert.Equal(t, date(2024, 1, 30), got)
}

func TestParseDate_Invalid(t *testing.T) {
	assert.True(t, ParseDate("").IsZero())
	assert.True(t, ParseDate("not a date").IsZero())
	assert.True(t, ParseDate("/Date(garbage)/").IsZero())
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 8, 31, 23, 59, 59, 123, time.UTC)
	assert.Equal(t, date(2025, 8, 31), DateOnly(ts))
}

func TestSameMonth(t *testing.T) {
	assert.True(t, SameMonth(date(2025, 9, 1), date(2025, 9, 30)))
	assert.False(t, SameMonth(date(2025, 9, 30), date(2025, 10, 1)))
	assert.False(t, SameMonth(date(2024, 9, 1), date(2025, 9, 1)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2025, 8, 31), date(2025, 8, 31)))
	assert.Equal(t, 31, DaysBetween(date(2025, 7, 31), date(2025, 8, 31)))
	assert.Equal(t, -1, DaysBetween(date(2025, 9, 1), date(2025, 8, 31)))
}
