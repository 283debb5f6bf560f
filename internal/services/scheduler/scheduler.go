// Package scheduler runs the auto-billing sweep: it expires finished
// subscriptions, charges subscribers whose next billing date has
// arrived, advances their schedule and writes billing history. One
// failing subscriber never aborts the sweep.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"

	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/lib/datemath"
	"github.com/cabletrack/cabletrack/internal/lib/rabbitmq"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

var (
	chargesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabletrack_autobilling_charges_total",
		Help: "Successful auto-billing charges.",
	})
	failuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cabletrack_autobilling_failures_total",
		Help: "Auto-billing attempts that failed for one subscriber.",
	})
	sweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cabletrack_autobilling_sweep_seconds",
		Help:    "Duration of a full auto-billing sweep.",
		Buckets: prometheus.DefBuckets,
	})
)

// Repository defines the storage operations the sweep needs.
type Repository interface {
	// FindDueForAutoBilling returns subscribers with auto-charge on,
	// an active subscription and next_billing_date <= now.
	FindDueForAutoBilling(ctx context.Context, now time.Time) ([]*models.Subscriber, error)
	AdvanceBillingDates(ctx context.Context, subscriberID string, last, next time.Time) (int, error)
	AppendBillingHistory(ctx context.Context, entry models.BillingHistoryEntry) (int, error)
}

// PackCatalog resolves pack names to current pack definitions.
type PackCatalog interface {
	GetByName(ctx context.Context, name string) (*models.Pack, error)
}

// Recorder appends validated ledger entries.
type Recorder interface {
	Record(ctx context.Context, subscriberID, txType string, amount decimal.Decimal, description string) (*models.Transaction, error)
}

// Expirer flips finished subscriptions to expired.
type Expirer interface {
	ExpireDue(ctx context.Context) ([]string, error)
}

// Service is the auto-billing scheduler.
type Service struct {
	repo     Repository
	packs    PackCatalog
	recorder Recorder
	expirer  Expirer
	clk      clock.Clock
	channel  *amqp.Channel
	log      *slog.Logger
}

// New creates a scheduler Service. Receipts for successful charges go
// to channel; pass nil to skip publishing.
func New(repo Repository, packs PackCatalog, recorder Recorder, expirer Expirer, clk clock.Clock, channel *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		packs:    packs,
		recorder: recorder,
		expirer:  expirer,
		clk:      clk,
		channel:  channel,
		log:      log,
	}
}

// Run executes a sweep immediately and then on every tick until ctx is
// cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	if _, err := s.expirer.ExpireDue(ctx); err != nil {
		s.log.Error("failed to expire due subscriptions", sl.Err(err))
	}
	report, err := s.RunAutoBilling(ctx)
	if err != nil {
		s.log.Error("auto-billing sweep failed", sl.Err(err))
		return
	}
	s.log.Info("auto-billing sweep finished",
		slog.Int("charged", report.ChargedCount),
		slog.Int("failed", len(report.FailedIDs)))
}

// RunAutoBilling charges every due subscriber once and returns the
// sweep report. Each subscriber is processed independently: a failure
// produces a failed billing history row and moves on.
func (s *Service) RunAutoBilling(ctx context.Context) (*models.BillingReport, error) {
	const op = "scheduler.RunAutoBilling"
	start := time.Now()
	defer func() {
		sweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.clk.Now()
	due, err := s.repo.FindDueForAutoBilling(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	report := &models.BillingReport{}
	for _, sub := range due {
		if err := s.chargeOne(ctx, sub, now); err != nil {
			failuresTotal.Inc()
			report.FailedIDs = append(report.FailedIDs, sub.ID)
			report.FailedReasons = append(report.FailedReasons, err.Error())
			s.log.Error("auto-billing failed for subscriber",
				slog.String("subscriber_id", sub.ID), sl.Err(err))
			s.recordFailure(ctx, sub, now)
			continue
		}
		chargesTotal.Inc()
		report.ChargedCount++
		report.ChargedIDs = append(report.ChargedIDs, sub.ID)
	}
	return report, nil
}

func (s *Service) chargeOne(ctx context.Context, sub *models.Subscriber, now time.Time) error {
	if sub.CurrentPack == "" {
		return fmt.Errorf("no current pack")
	}
	pack, err := s.packs.GetByName(ctx, sub.CurrentPack)
	if err != nil {
		return fmt.Errorf("resolve pack %q: %w", sub.CurrentPack, err)
	}

	next, err := datemath.NextBillingDate(now, sub.BillingCycle)
	if err != nil {
		return err
	}

	// The schedule advances before the charge posts. If the advance
	// fails nothing was charged and the subscriber stays due; if the
	// charge then fails the cycle is skipped and audited as failed.
	// Either way one billing period produces at most one charge.
	if _, err := s.repo.AdvanceBillingDates(ctx, sub.ID, now, next); err != nil {
		return err
	}

	desc := fmt.Sprintf("Auto-billing: %s (%s)", pack.Name, sub.BillingCycle)
	tr, err := s.recorder.Record(ctx, sub.ID, models.TransactionTypeCharge, pack.Price, desc)
	if err != nil {
		return err
	}

	entry := models.BillingHistoryEntry{
		SubscriberID:  sub.ID,
		BillingCycle:  sub.BillingCycle,
		Amount:        pack.Price,
		DueDate:       now,
		GeneratedAt:   now,
		TransactionID: &tr.ID,
		Status:        models.BillingStatusCharged,
	}
	if _, err := s.repo.AppendBillingHistory(ctx, entry); err != nil {
		return err
	}

	if s.channel != nil {
		receipt := models.BillingReceipt{
			SubscriberID:  sub.ID,
			PackName:      pack.Name,
			BillingCycle:  sub.BillingCycle,
			Amount:        pack.Price,
			TransactionID: tr.ID,
			ChargedAt:     now,
		}
		if err := rabbitmq.PublishMessage(s.channel, rabbitmq.Exchange, "receipt", receipt); err != nil {
			// The charge already committed, so a broker hiccup is
			// logged instead of failing the subscriber.
			s.log.Error("failed to publish billing receipt",
				slog.String("subscriber_id", sub.ID), sl.Err(err))
		}
	}
	return nil
}

// recordFailure writes the failed audit row. Errors here are only
// logged, the sweep report already carries the failure.
func (s *Service) recordFailure(ctx context.Context, sub *models.Subscriber, now time.Time) {
	entry := models.BillingHistoryEntry{
		SubscriberID: sub.ID,
		BillingCycle: sub.BillingCycle,
		Amount:       decimal.Zero,
		DueDate:      now,
		GeneratedAt:  now,
		Status:       models.BillingStatusFailed,
	}
	if _, err := s.repo.AppendBillingHistory(ctx, entry); err != nil {
		s.log.Error("failed to append billing history",
			slog.String("subscriber_id", sub.ID), sl.Err(err))
	}
}
