package core

import (
	"fmt"
	"time"
)

// ResolveWindow turns a period keyword into the concrete [start, end]
// window containing now. This is a construction convenience for the API
// boundary: the budget engine itself only ever reasons about explicit
// windows.
func ResolveWindow(period Granularity, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case Monthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		return start, end, nil
	case Yearly:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, NewValidationError(fmt.Sprintf("unknown period %q", period))
	}
}

// PeriodLabel formats the trend bucket label for a transaction date.
func PeriodLabel(g Granularity, ts time.Time) string {
	if g == Yearly {
		return ts.Format("2006")
	}
	return ts.Format("2006-01")
}
