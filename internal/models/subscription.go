// Package models contains the domain structures shared between the
// business logic and the storage layer: subscribers, packs,
// subscription entries, transactions and billing history.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription entry statuses. Persisted status is authoritative:
// only the expiry sweep moves an entry from active to expired.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// SubscriptionEntry is one enrollment of a subscriber in a pack for a
// fixed number of months. Pack name and price are snapshots taken at
// subscribe time; later catalog edits do not touch them. Immutable
// after creation except for Status.
type SubscriptionEntry struct {
	ID             string          `json:"id"`            // UUID
	SubscriberID   string          `json:"subscriber_id"` // Owning subscriber UUID
	PackName       string          `json:"pack_name"`     // Pack name snapshot
	PackPrice      decimal.Decimal `json:"pack_price"`    // Monthly price snapshot
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"` // StartDate + DurationMonths calendar months
	DurationMonths int             `json:"duration_months"`
	Status         string          `json:"status"` // active | expired | cancelled
	SubscribedAt   time.Time       `json:"subscribed_at"`
}

// TotalCharged returns the full amount charged for the entry,
// pack price times duration.
func (e SubscriptionEntry) TotalCharged() decimal.Decimal {
	return e.PackPrice.Mul(decimal.NewFromInt(int64(e.DurationMonths)))
}

// DummySubscribeRequest carries the JSON body of an add-subscription
// request before validation.
type DummySubscribeRequest struct {
	PackName       string `json:"pack_name" validate:"required"`
	DurationMonths int    `json:"duration_months" validate:"required,gt=0"`
}

// DummyCancelRequest carries the JSON body of a cancel-subscription
// request. Refund is the operator-confirmed amount, not necessarily
// the suggested one.
type DummyCancelRequest struct {
	Refund decimal.Decimal `json:"refund"`
}
