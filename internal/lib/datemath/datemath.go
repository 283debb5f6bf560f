// Package datemath implements the calendar arithmetic used by the
// subscription ledger and the billing scheduler. Month addition
// preserves the day of month where it exists and clamps to the last
// day otherwise, so Jan 31 + 1 month is Feb 28 (29 on leap years),
// never an overflow into March.
package datemath

import (
	"fmt"
	"time"

	"github.com/cabletrack/cabletrack/internal/models"
)

// AddMonths returns t shifted forward by n calendar months with
// day-of-month clamping.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := lastDayOfMonth(firstOfTarget); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// NextBillingDate returns the next charge date for a billing cycle,
// counted from fromDate with clamped month arithmetic.
func NextBillingDate(fromDate time.Time, cycle string) (time.Time, error) {
	switch cycle {
	case models.BillingCycleMonthly:
		return AddMonths(fromDate, 1), nil
	case models.BillingCycleQuarterly:
		return AddMonths(fromDate, 3), nil
	case models.BillingCycleSemiAnnually:
		return AddMonths(fromDate, 6), nil
	case models.BillingCycleYearly:
		return AddMonths(fromDate, 12), nil
	}
	return time.Time{}, fmt.Errorf("unknown billing cycle: %q", cycle)
}

// DaysBetween returns the number of whole days from a to b, floored.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
