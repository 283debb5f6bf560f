package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing history statuses.
const (
	BillingStatusScheduled = "scheduled"
	BillingStatusCharged   = "charged"
	BillingStatusFailed    = "failed"
)

// BillingHistoryEntry is a write-once audit record produced by the
// auto-billing sweep. TransactionID is set only for charged entries.
type BillingHistoryEntry struct {
	ID            int             `json:"id"`
	SubscriberID  string          `json:"subscriber_id"`
	BillingCycle  string          `json:"billing_cycle"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	GeneratedAt   time.Time       `json:"generated_at"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	Status        string          `json:"status"` // scheduled | charged | failed
}

// BillingReport aggregates the outcome of one auto-billing sweep.
type BillingReport struct {
	ChargedCount  int      `json:"charged_count"`
	ChargedIDs    []string `json:"charged_ids"`
	FailedIDs     []string `json:"failed_ids,omitempty"`
	FailedReasons []string `json:"failed_reasons,omitempty"`
}

// BillingReceipt is the event published to the billing exchange after
// a successful auto-charge.
type BillingReceipt struct {
	SubscriberID  string          `json:"subscriber_id"`
	PackName      string          `json:"pack_name"`
	BillingCycle  string          `json:"billing_cycle"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id"`
	ChargedAt     time.Time       `json:"charged_at"`
}
