// Package bucket implements the configurable aging-bucket scheme: ordered
// bucket names plus calendar-aware classification of a due date relative to
// a report date.
package bucket

import (
	"fmt"
	"strings"
	"time"

	"github.com/agewise-dev/agewise/internal/model"
)

// PeriodType is the unit an aging period is measured in.
type PeriodType string

const (
	PeriodDay   PeriodType = "Day"
	PeriodWeek  PeriodType = "Week"
	PeriodMonth PeriodType = "Month"
)

// ParsePeriodType normalizes a period type label, case-insensitively.
func ParsePeriodType(s string) (PeriodType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month", "":
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period type %q", s)
}

// Scheme is one aging configuration. ShowCurrent only affects presentation
// (whether Current and the first interior bucket are combined in output);
// classification ignores it.
type Scheme struct {
	Periods     int
	PeriodOf    int
	PeriodType  PeriodType
	ShowCurrent bool
}

// Default returns the scheme the provider's own aged receivables report uses.
func Default() Scheme {
	return Scheme{Periods: 4, PeriodOf: 1, PeriodType: PeriodMonth, ShowCurrent: true}
}

const (
	bucketCurrent = "Current"
	bucketOlder   = "Older"
)

// Names returns the ordered bucket names: Current, periods interior buckets,
// Older. Always exactly Periods+2 entries.
func (s Scheme) Names() []string {
	names := make([]string, 0, s.Periods+2)
	names = append(names, bucketCurrent)
	for i := 1; i <= s.Periods; i++ {
		if i == 1 {
			names = append(names, "< 1 "+string(s.PeriodType))
		} else {
			names = append(names, interiorName(i-1, s.PeriodType))
		}
	}
	names = append(names, bucketOlder)
	return names
}

// interiorName formats the nth named bucket, e.g. "1 Month", "3 Months".
func interiorName(n int, t PeriodType) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", t)
	}
	return fmt.Sprintf("%d %ss", n, t)
}

// Classify places a due date into a bucket as of the report date. A due date
// strictly after the report date is Current regardless of configuration.
// Month periods count whole calendar months; day and week periods count
// elapsed days against PeriodOf-sized windows.
func (s Scheme) Classify(reportDate, dueDate time.Time) string {
	reportDate = model.DateOnly(reportDate)
	dueDate = model.DateOnly(dueDate)

	days := model.DaysBetween(dueDate, reportDate)
	if days < 0 {
		return bucketCurrent
	}

	if s.PeriodType == PeriodMonth {
		monthsDiff := (reportDate.Year()-dueDate.Year())*12 + int(reportDate.Month()) - int(dueDate.Month())
		if reportDate.Day() < dueDate.Day() {
			monthsDiff--
		}
		switch {
		case monthsDiff <= 0:
			return "< 1 " + string(s.PeriodType)
		case monthsDiff == 1:
			return interiorName(1, s.PeriodType)
		}
		// Interior buckets stop at Periods-1; a due date exactly Periods
		// months overdue is already Older.
		for i := 2; i < s.Periods; i++ {
			if monthsDiff == i {
				return interiorName(i, s.PeriodType)
			}
		}
		return bucketOlder
	}

	daysPerPeriod := s.PeriodOf
	if s.PeriodType == PeriodWeek {
		daysPerPeriod = s.PeriodOf * 7
	}
	for i := 1; i <= s.Periods; i++ {
		if days <= i*daysPerPeriod {
			if i == 1 {
				return "< 1 " + string(s.PeriodType)
			}
			return interiorName(i-1, s.PeriodType)
		}
	}
	return bucketOlder
}
