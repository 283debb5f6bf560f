// Package proration computes the suggested refund for cancelling a
// subscription before its end date. The model is deliberately simple:
// every month counts as 30 days regardless of the calendar, remaining
// days are floored, and the result is clamped to the range
// [0, total charged] so a refund can never exceed what was paid.
package proration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/lib/datemath"
	"github.com/cabletrack/cabletrack/internal/models"
)

const daysPerMonth = 30

// Quote is the breakdown behind a suggested refund. The suggested
// amount is advisory; the operator may confirm any value within
// [0, TotalCharged].
type Quote struct {
	TotalCharged  decimal.Decimal `json:"total_charged"`
	TotalDays     int             `json:"total_days"`
	RemainingDays int             `json:"remaining_days"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	Suggested     decimal.Decimal `json:"suggested"`
}

// ComputeRefund returns the refund quote for entry as of asOf.
func ComputeRefund(entry models.SubscriptionEntry, asOf time.Time) Quote {
	totalCharged := entry.TotalCharged()
	totalDays := entry.DurationMonths * daysPerMonth

	remaining := datemath.DaysBetween(asOf, entry.EndDate)
	if remaining < 0 {
		remaining = 0
	}

	pricePerDay := decimal.Zero
	if totalDays > 0 {
		pricePerDay = totalCharged.Div(decimal.NewFromInt(int64(totalDays)))
	}

	suggested := pricePerDay.Mul(decimal.NewFromInt(int64(remaining))).Floor()
	if suggested.GreaterThan(totalCharged) {
		suggested = totalCharged
	}

	return Quote{
		TotalCharged:  totalCharged,
		TotalDays:     totalDays,
		RemainingDays: remaining,
		PricePerDay:   pricePerDay,
		Suggested:     suggested,
	}
}
