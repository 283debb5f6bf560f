package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types. Direction is encoded by type, never by the sign
// of the amount: amounts are always positive.
const (
	TransactionTypePayment = "payment"
	TransactionTypeCharge  = "charge"
	TransactionTypeRefund  = "refund"
)

// ValidTransactionType reports whether t is a known ledger entry type.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypePayment, TransactionTypeCharge, TransactionTypeRefund:
		return true
	}
	return false
}

// Transaction is an append-only ledger entry. Editing one reverses its
// old balance effect before the new effect is applied.
type Transaction struct {
	ID           string          `json:"id"` // UUID
	SubscriberID string          `json:"subscriber_id"`
	Type         string          `json:"type"` // payment | charge | refund
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
}

// BalanceEffect returns the signed contribution of the transaction to
// the subscriber balance under the debt-positive convention.
func (t Transaction) BalanceEffect() decimal.Decimal {
	if t.Type == TransactionTypeCharge {
		return t.Amount
	}
	return t.Amount.Neg()
}

// DummyTransaction carries the JSON body of a record/update
// transaction request.
type DummyTransaction struct {
	Type        string          `json:"type" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Description string          `json:"description,omitempty"`
}
