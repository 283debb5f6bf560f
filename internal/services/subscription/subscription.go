// Package subscription implements the subscription ledger: activating
// packs, cancelling with refunds, expiring due entries and computing
// prorated refund quotes.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/lib/datemath"
	"github.com/cabletrack/cabletrack/internal/lib/proration"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Repository defines the subscription storage operations.
type Repository interface {
	GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
	// ActivateSubscription inserts the entry, marks stale active
	// entries expired and points the subscriber at the new entry, all
	// in one transaction.
	ActivateSubscription(ctx context.Context, entry models.SubscriptionEntry) error
	GetActiveEntry(ctx context.Context, subscriberID string) (*models.SubscriptionEntry, error)
	// CloseActiveSubscription moves the active entry to the terminal
	// status and detaches it from the subscriber.
	CloseActiveSubscription(ctx context.Context, subscriberID, terminalStatus string) (*models.SubscriptionEntry, error)
	// ExpireDueSubscriptions flips every active entry whose end date
	// has passed and returns the affected subscriber ids.
	ExpireDueSubscriptions(ctx context.Context, now time.Time) ([]string, error)
	ListSubscriptionHistory(ctx context.Context, subscriberID string) ([]*models.SubscriptionEntry, error)
	SetBillingSchedule(ctx context.Context, subscriberID string, next *time.Time) error
}

// PackCatalog resolves pack names to current pack definitions.
type PackCatalog interface {
	GetByName(ctx context.Context, name string) (*models.Pack, error)
}

// Recorder appends validated ledger entries.
type Recorder interface {
	Record(ctx context.Context, subscriberID, txType string, amount decimal.Decimal, description string) (*models.Transaction, error)
}

// Service implements the subscription lifecycle.
type Service struct {
	repo              Repository
	packs             PackCatalog
	recorder          Recorder
	clk               clock.Clock
	chargeOnSubscribe bool
	log               *slog.Logger
}

// New creates a subscription Service. When chargeOnSubscribe is set,
// Add records an upfront charge for the full term.
func New(repo Repository, packs PackCatalog, recorder Recorder, clk clock.Clock, chargeOnSubscribe bool, log *slog.Logger) *Service {
	return &Service{
		repo:              repo,
		packs:             packs,
		recorder:          recorder,
		clk:               clk,
		chargeOnSubscribe: chargeOnSubscribe,
		log:               log,
	}
}

// Add activates a pack subscription for a subscriber. The pack price
// is snapshotted into the entry so later catalog edits do not rewrite
// history. A subscriber with an active subscription must cancel it
// first.
//
// The upfront charge posts after the activation commits. When the
// charge fails the activation stands and Add returns the error; the
// missing charge can be posted through the transaction log.
func (s *Service) Add(ctx context.Context, subscriberID string, req models.DummySubscribeRequest) (*models.SubscriptionEntry, error) {
	if req.DurationMonths <= 0 {
		return nil, apperr.Validation("duration must be at least one month")
	}

	sub, err := s.repo.GetSubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if sub.CurrentSubscription != nil {
		return nil, apperr.Conflict("subscriber already has an active subscription, cancel it first")
	}

	pack, err := s.packs.GetByName(ctx, req.PackName)
	if err != nil {
		return nil, err
	}
	if !pack.Active {
		return nil, apperr.Validation(fmt.Sprintf("pack %q is retired", pack.Name))
	}

	now := s.clk.Now()
	entry := models.SubscriptionEntry{
		ID:             uuid.New().String(),
		SubscriberID:   subscriberID,
		PackName:       pack.Name,
		PackPrice:      pack.Price,
		StartDate:      now,
		EndDate:        datemath.AddMonths(now, req.DurationMonths),
		DurationMonths: req.DurationMonths,
		Status:         models.SubscriptionStatusActive,
		SubscribedAt:   now,
	}
	if err := s.repo.ActivateSubscription(ctx, entry); err != nil {
		return nil, err
	}

	if next, nerr := datemath.NextBillingDate(now, sub.BillingCycle); nerr == nil {
		if err := s.repo.SetBillingSchedule(ctx, subscriberID, &next); err != nil {
			return nil, err
		}
	}

	if s.chargeOnSubscribe {
		total := pack.Price.Mul(decimal.NewFromInt(int64(req.DurationMonths)))
		desc := fmt.Sprintf("Subscription: %d month(s) of %s", req.DurationMonths, pack.Name)
		if _, err := s.recorder.Record(ctx, subscriberID, models.TransactionTypeCharge, total, desc); err != nil {
			return nil, err
		}
	}

	s.log.Info("activated subscription",
		slog.String("subscriber_id", subscriberID),
		slog.String("pack", pack.Name),
		slog.Int("months", req.DurationMonths))
	return &entry, nil
}

// Cancel closes the active subscription and, when refund is positive,
// credits it to the subscriber. The refund may not exceed what the
// term was worth.
func (s *Service) Cancel(ctx context.Context, subscriberID string, refund decimal.Decimal) error {
	if refund.IsNegative() {
		return apperr.Validation("refund must not be negative")
	}

	entry, err := s.repo.GetActiveEntry(ctx, subscriberID)
	if err != nil {
		return err
	}
	if refund.GreaterThan(entry.TotalCharged()) {
		return apperr.Validation(fmt.Sprintf("refund exceeds the amount charged for the term (%s)", entry.TotalCharged()))
	}

	if _, err := s.repo.CloseActiveSubscription(ctx, subscriberID, models.SubscriptionStatusCancelled); err != nil {
		return err
	}

	if refund.IsPositive() {
		desc := fmt.Sprintf("Refund for cancelled pack %s", entry.PackName)
		if _, err := s.recorder.Record(ctx, subscriberID, models.TransactionTypeRefund, refund, desc); err != nil {
			return err
		}
	}

	s.log.Info("cancelled subscription",
		slog.String("subscriber_id", subscriberID),
		slog.String("pack", entry.PackName),
		slog.String("refund", refund.String()))
	return nil
}

// RefundQuote computes the suggested prorated refund for the active
// subscription as of now. It never mutates anything.
func (s *Service) RefundQuote(ctx context.Context, subscriberID string) (*proration.Quote, error) {
	entry, err := s.repo.GetActiveEntry(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	q := proration.ComputeRefund(*entry, s.clk.Now())
	return &q, nil
}

// ExpireDue transitions every active subscription whose end date has
// passed to expired and returns the affected subscriber ids. Safe to
// run repeatedly.
func (s *Service) ExpireDue(ctx context.Context) ([]string, error) {
	ids, err := s.repo.ExpireDueSubscriptions(ctx, s.clk.Now())
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.log.Info("expired due subscriptions", slog.Int("count", len(ids)))
	}
	return ids, nil
}

// History returns a subscriber's full subscription history, oldest
// first.
func (s *Service) History(ctx context.Context, subscriberID string) ([]*models.SubscriptionEntry, error) {
	return s.repo.ListSubscriptionHistory(ctx, subscriberID)
}
