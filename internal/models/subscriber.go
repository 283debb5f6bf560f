package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing cycles supported by the auto-billing scheduler.
const (
	BillingCycleMonthly      = "monthly"
	BillingCycleQuarterly    = "quarterly"
	BillingCycleSemiAnnually = "semi_annually"
	BillingCycleYearly       = "yearly"
)

// ValidBillingCycle reports whether cycle is one of the supported
// recurrence intervals.
func ValidBillingCycle(cycle string) bool {
	switch cycle {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleSemiAnnually, BillingCycleYearly:
		return true
	}
	return false
}

// Subscriber is a cable-TV customer record. Balance follows the
// debt-positive convention: charges increase it, payments and refunds
// decrease it. CurrentSubscription is nil when no entry is active.
type Subscriber struct {
	ID                  string             `json:"id"` // UUID
	Name                string             `json:"name"`
	Mobile              string             `json:"mobile"`
	STBNumber           string             `json:"stb_number"`
	Region              string             `json:"region"`
	Balance             decimal.Decimal    `json:"balance"`
	CurrentPack         string             `json:"current_pack"`                   // Name of the pack of the active entry, empty if none
	CurrentSubscription *SubscriptionEntry `json:"current_subscription,omitempty"` // Active entry, nil if none
	BillingCycle        string             `json:"billing_cycle"`
	NextBillingDate     *time.Time         `json:"next_billing_date,omitempty"`
	LastBillingDate     *time.Time         `json:"last_billing_date,omitempty"`
	AutoChargeEnabled   bool               `json:"auto_charge_enabled"`
	CreatedAt           time.Time          `json:"created_at"`
}

// DummySubscriber carries the JSON body of a register/update
// subscriber request before validation.
type DummySubscriber struct {
	Name              string `json:"name" validate:"required"`
	Mobile            string `json:"mobile" validate:"required"`
	STBNumber         string `json:"stb_number,omitempty"`
	Region            string `json:"region" validate:"required"`
	BillingCycle      string `json:"billing_cycle,omitempty"`
	AutoChargeEnabled bool   `json:"auto_charge_enabled,omitempty"`
}

// SubscriberFilter narrows subscriber listings.
type SubscriberFilter struct {
	Region string // Empty means all regions
	Limit  int    // <= 0 means no limit
	Offset int
}
