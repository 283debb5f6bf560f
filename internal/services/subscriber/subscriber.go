// Package subscriber implements subscriber account management.
package subscriber

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

// Repository defines the subscriber storage operations.
type Repository interface {
	CreateSubscriber(ctx context.Context, sub models.Subscriber) error
	GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
	ListSubscribers(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error)
	UpdateSubscriberContact(ctx context.Context, id string, req models.DummySubscriber) (*models.Subscriber, error)
	// DeleteSubscriber removes the account and everything hanging off
	// it; assigned boxes return to stock.
	DeleteSubscriber(ctx context.Context, id string) error
}

// Service implements subscriber account rules.
type Service struct {
	repo Repository
	clk  clock.Clock
	log  *slog.Logger
}

// New creates a subscriber Service.
func New(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// Register creates a subscriber account with a zero balance and no
// subscription. The billing cycle defaults to monthly.
func (s *Service) Register(ctx context.Context, req models.DummySubscriber) (*models.Subscriber, error) {
	cycle := req.BillingCycle
	if cycle == "" {
		cycle = models.BillingCycleMonthly
	}
	if !models.ValidBillingCycle(cycle) {
		return nil, apperr.Validation(fmt.Sprintf("unknown billing cycle %q", cycle))
	}

	sub := models.Subscriber{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Mobile:            req.Mobile,
		STBNumber:         req.STBNumber,
		Region:            req.Region,
		Balance:           decimal.Zero,
		BillingCycle:      cycle,
		AutoChargeEnabled: req.AutoChargeEnabled,
		CreatedAt:         s.clk.Now(),
	}
	if err := s.repo.CreateSubscriber(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("registered subscriber",
		slog.String("subscriber_id", sub.ID),
		slog.String("region", sub.Region))
	return &sub, nil
}

// Get returns a subscriber with the active subscription attached.
func (s *Service) Get(ctx context.Context, id string) (*models.Subscriber, error) {
	return s.repo.GetSubscriber(ctx, id)
}

// List returns subscribers matching the filter.
func (s *Service) List(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error) {
	return s.repo.ListSubscribers(ctx, filter)
}

// Update rewrites contact and billing preferences. Balance and
// subscription state are managed by the ledger, not here.
func (s *Service) Update(ctx context.Context, id string, req models.DummySubscriber) (*models.Subscriber, error) {
	if req.BillingCycle != "" && !models.ValidBillingCycle(req.BillingCycle) {
		return nil, apperr.Validation(fmt.Sprintf("unknown billing cycle %q", req.BillingCycle))
	}

	sub, err := s.repo.UpdateSubscriberContact(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.log.Info("updated subscriber", slog.String("subscriber_id", id))
	return sub, nil
}

// Delete removes a subscriber and all dependent records.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteSubscriber(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted subscriber", slog.String("subscriber_id", id))
	return nil
}
