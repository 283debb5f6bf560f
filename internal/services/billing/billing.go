// Package billing implements the transaction log and balance
// reconciliation. Every amount flows through here: manual payments,
// subscription charges, auto-billing charges and refunds. The balance
// convention is debt-positive — a charge increases the subscriber
// balance, a payment or refund decreases it — and the storage layer
// guarantees the ledger append and the balance adjustment commit
// together.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Repository defines the ledger storage operations.
type Repository interface {
	// AppendTransaction persists the entry and applies effect to the
	// subscriber balance atomically.
	AppendTransaction(ctx context.Context, t models.Transaction, effect decimal.Decimal) error
	// GetTransaction returns an entry by id.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	// ReplaceTransaction overwrites an entry and applies the net
	// balance adjustment atomically.
	ReplaceTransaction(ctx context.Context, id string, newType string, amount decimal.Decimal, description string) (*models.Transaction, error)
	// ListTransactions returns a subscriber's ledger, oldest first.
	ListTransactions(ctx context.Context, subscriberID string) ([]*models.Transaction, error)
	// ListBillingHistory returns auto-billing audit rows, newest first.
	ListBillingHistory(ctx context.Context, subscriberID string) ([]*models.BillingHistoryEntry, error)
}

// Service implements ledger business rules on top of Repository.
type Service struct {
	repo Repository
	clk  clock.Clock
	log  *slog.Logger
}

// New creates a billing Service.
func New(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// Record validates and appends a ledger entry for a subscriber and
// returns it. Direction comes from the type; amount must be positive.
func (s *Service) Record(ctx context.Context, subscriberID, txType string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if !models.ValidTransactionType(txType) {
		return nil, apperr.Validation(fmt.Sprintf("unknown transaction type %q", txType))
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("amount must be positive")
	}

	t := models.Transaction{
		ID:           uuid.New().String(),
		SubscriberID: subscriberID,
		Type:         txType,
		Amount:       amount,
		Description:  description,
		Date:         s.clk.Now(),
	}
	if err := s.repo.AppendTransaction(ctx, t, t.BalanceEffect()); err != nil {
		return nil, err
	}

	s.log.Info("recorded transaction",
		slog.String("subscriber_id", subscriberID),
		slog.String("type", txType),
		slog.String("amount", amount.String()))
	return &t, nil
}

// Update rewrites an existing ledger entry. The balance ends up
// exactly as if the original entry had never existed and the new one
// had been recorded directly.
func (s *Service) Update(ctx context.Context, transactionID string, req models.DummyTransaction) (*models.Transaction, error) {
	if !models.ValidTransactionType(req.Type) {
		return nil, apperr.Validation(fmt.Sprintf("unknown transaction type %q", req.Type))
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be positive")
	}

	updated, err := s.repo.ReplaceTransaction(ctx, transactionID, req.Type, req.Amount, req.Description)
	if err != nil {
		return nil, err
	}

	s.log.Info("updated transaction", slog.String("transaction_id", transactionID))
	return updated, nil
}

// List returns a subscriber's ledger, oldest first.
func (s *Service) List(ctx context.Context, subscriberID string) ([]*models.Transaction, error) {
	return s.repo.ListTransactions(ctx, subscriberID)
}

// BillingHistory returns a subscriber's auto-billing audit trail,
// newest first.
func (s *Service) BillingHistory(ctx context.Context, subscriberID string) ([]*models.BillingHistoryEntry, error) {
	return s.repo.ListBillingHistory(ctx, subscriberID)
}
