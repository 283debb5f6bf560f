package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindDueForAutoBilling(ctx context.Context, now time.Time) ([]*models.Subscriber, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}

func (m *mockRepository) AdvanceBillingDates(ctx context.Context, subscriberID string, last, next time.Time) (int, error) {
	args := m.Called(ctx, subscriberID, last, next)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) AppendBillingHistory(ctx context.Context, entry models.BillingHistoryEntry) (int, error) {
	args := m.Called(ctx, entry)
	return args.Int(0), args.Error(1)
}

type mockPackCatalog struct {
	mock.Mock
}

func (m *mockPackCatalog) GetByName(ctx context.Context, name string) (*models.Pack, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pack), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, subscriberID, txType string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, subscriberID, txType, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireDue(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var frozen = time.Date(2024, time.June, 15, 3, 0, 0, 0, time.UTC)

func dueSubscriber(id string) *models.Subscriber {
	next := frozen
	return &models.Subscriber{
		ID:                id,
		Name:              "Subscriber " + id,
		CurrentPack:       "Gold",
		BillingCycle:      models.BillingCycleMonthly,
		NextBillingDate:   &next,
		AutoChargeEnabled: true,
	}
}

func goldPack() *models.Pack {
	return &models.Pack{ID: 1, Name: "Gold", Price: decimal.NewFromInt(500), Active: true}
}

func newScheduler(repo *mockRepository, packs *mockPackCatalog, rec *mockRecorder, exp *mockExpirer) *Service {
	return New(repo, packs, rec, exp, clock.Fixed{T: frozen}, nil, noopLogger())
}

func TestRunAutoBilling_ChargesDueSubscriber(t *testing.T) {
	repo := new(mockRepository)
	packs := new(mockPackCatalog)
	rec := new(mockRecorder)
	svc := newScheduler(repo, packs, rec, new(mockExpirer))

	sub := dueSubscriber("sub-1")
	next := frozen.AddDate(0, 1, 0)

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{sub}, nil)
	packs.On("GetByName", mock.Anything, "Gold").Return(goldPack(), nil)
	rec.On("Record", mock.Anything, "sub-1", models.TransactionTypeCharge,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(decimal.NewFromInt(500)) }),
		"Auto-billing: Gold (monthly)").
		Return(&models.Transaction{ID: "tx-1"}, nil)
	repo.On("AdvanceBillingDates", mock.Anything, "sub-1", frozen, next).Return(1, nil)
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.SubscriberID == "sub-1" &&
			e.Status == models.BillingStatusCharged &&
			e.TransactionID != nil && *e.TransactionID == "tx-1" &&
			e.Amount.Equal(decimal.NewFromInt(500))
	})).Return(1, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChargedCount)
	assert.Equal(t, []string{"sub-1"}, report.ChargedIDs)
	assert.Empty(t, report.FailedIDs)
	repo.AssertExpectations(t)
	rec.AssertExpectations(t)
}

func TestRunAutoBilling_NothingDue(t *testing.T) {
	repo := new(mockRepository)
	svc := newScheduler(repo, new(mockPackCatalog), new(mockRecorder), new(mockExpirer))

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{}, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.ChargedCount)
	assert.Empty(t, report.FailedIDs)
}

func TestRunAutoBilling_FailureIsolation(t *testing.T) {
	repo := new(mockRepository)
	packs := new(mockPackCatalog)
	rec := new(mockRecorder)
	svc := newScheduler(repo, packs, rec, new(mockExpirer))

	broken := dueSubscriber("sub-1")
	broken.CurrentPack = "Platinum"
	healthy := dueSubscriber("sub-2")
	next := frozen.AddDate(0, 1, 0)

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).
		Return([]*models.Subscriber{broken, healthy}, nil)
	packs.On("GetByName", mock.Anything, "Platinum").Return(nil, errors.New("pack not found"))
	packs.On("GetByName", mock.Anything, "Gold").Return(goldPack(), nil)
	rec.On("Record", mock.Anything, "sub-2", models.TransactionTypeCharge, mock.Anything, mock.Anything).
		Return(&models.Transaction{ID: "tx-2"}, nil)
	repo.On("AdvanceBillingDates", mock.Anything, "sub-2", frozen, next).Return(1, nil)
	// Failed audit row for sub-1, charged row for sub-2.
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.SubscriberID == "sub-1" && e.Status == models.BillingStatusFailed &&
			e.TransactionID == nil && e.Amount.IsZero()
	})).Return(1, nil)
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.SubscriberID == "sub-2" && e.Status == models.BillingStatusCharged
	})).Return(2, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ChargedCount)
	assert.Equal(t, []string{"sub-2"}, report.ChargedIDs)
	assert.Equal(t, []string{"sub-1"}, report.FailedIDs)
	require.Len(t, report.FailedReasons, 1)
	assert.Contains(t, report.FailedReasons[0], "Platinum")
	repo.AssertExpectations(t)
}

func TestRunAutoBilling_NoPackFails(t *testing.T) {
	repo := new(mockRepository)
	svc := newScheduler(repo, new(mockPackCatalog), new(mockRecorder), new(mockExpirer))

	sub := dueSubscriber("sub-1")
	sub.CurrentPack = ""

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{sub}, nil)
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.Status == models.BillingStatusFailed
	})).Return(1, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1"}, report.FailedIDs)
}

func TestRunAutoBilling_AdvanceFailureSkipsCharge(t *testing.T) {
	repo := new(mockRepository)
	packs := new(mockPackCatalog)
	rec := new(mockRecorder)
	svc := newScheduler(repo, packs, rec, new(mockExpirer))

	sub := dueSubscriber("sub-1")
	next := frozen.AddDate(0, 1, 0)

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{sub}, nil)
	packs.On("GetByName", mock.Anything, "Gold").Return(goldPack(), nil)
	repo.On("AdvanceBillingDates", mock.Anything, "sub-1", frozen, next).
		Return(0, errors.New("db down"))
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.SubscriberID == "sub-1" && e.Status == models.BillingStatusFailed
	})).Return(1, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1"}, report.FailedIDs)
	// The subscriber stays due, so no money may have moved yet.
	rec.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunAutoBilling_ChargeFailureAdvancesSchedule(t *testing.T) {
	repo := new(mockRepository)
	packs := new(mockPackCatalog)
	rec := new(mockRecorder)
	svc := newScheduler(repo, packs, rec, new(mockExpirer))

	sub := dueSubscriber("sub-1")
	next := frozen.AddDate(0, 1, 0)

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{sub}, nil)
	packs.On("GetByName", mock.Anything, "Gold").Return(goldPack(), nil)
	repo.On("AdvanceBillingDates", mock.Anything, "sub-1", frozen, next).Return(1, nil)
	rec.On("Record", mock.Anything, "sub-1", models.TransactionTypeCharge, mock.Anything, mock.Anything).
		Return(nil, errors.New("ledger write failed"))
	repo.On("AppendBillingHistory", mock.Anything, mock.MatchedBy(func(e models.BillingHistoryEntry) bool {
		return e.SubscriberID == "sub-1" && e.Status == models.BillingStatusFailed
	})).Return(1, nil)

	report, err := svc.RunAutoBilling(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sub-1"}, report.FailedIDs)
	// Exactly one charge attempt for the period, and the schedule has
	// moved on so the next sweep does not bill it again.
	rec.AssertNumberOfCalls(t, "Record", 1)
	repo.AssertCalled(t, "AdvanceBillingDates", mock.Anything, "sub-1", frozen, next)
}

func TestRunAutoBilling_FindError(t *testing.T) {
	repo := new(mockRepository)
	svc := newScheduler(repo, new(mockPackCatalog), new(mockRecorder), new(mockExpirer))

	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return(nil, errors.New("db down"))

	_, err := svc.RunAutoBilling(context.Background())
	assert.Error(t, err)
}

func TestRun_SweepsUntilCancelled(t *testing.T) {
	repo := new(mockRepository)
	exp := new(mockExpirer)
	svc := newScheduler(repo, new(mockPackCatalog), new(mockRecorder), exp)

	exp.On("ExpireDue", mock.Anything).Return([]string{}, nil)
	repo.On("FindDueForAutoBilling", mock.Anything, frozen).Return([]*models.Subscriber{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 50*time.Millisecond)
		close(done)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}

	exp.AssertCalled(t, "ExpireDue", mock.Anything)
	repo.AssertCalled(t, "FindDueForAutoBilling", mock.Anything, frozen)
}
