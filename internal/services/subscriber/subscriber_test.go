package subscriber

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

var frozen = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateSubscriber(ctx context.Context, sub models.Subscriber) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockRepository) GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func (m *mockRepository) ListSubscribers(ctx context.Context, filter models.SubscriberFilter) ([]*models.Subscriber, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}

func (m *mockRepository) UpdateSubscriberContact(ctx context.Context, id string, req models.DummySubscriber) (*models.Subscriber, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func (m *mockRepository) DeleteSubscriber(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestRegister(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.ID != "" &&
			sub.Name == "Asha" &&
			sub.Region == "North" &&
			sub.Balance.IsZero() &&
			sub.BillingCycle == models.BillingCycleMonthly &&
			sub.CurrentSubscription == nil &&
			sub.CreatedAt.Equal(frozen)
	})).Return(nil)

	sub, err := svc.Register(context.Background(), models.DummySubscriber{
		Name:   "Asha",
		Mobile: "9800000001",
		Region: "North",
	})
	require.NoError(t, err)
	assert.True(t, sub.Balance.IsZero())
	assert.Equal(t, models.BillingCycleMonthly, sub.BillingCycle)
	repo.AssertExpectations(t)
}

func TestRegister_KeepsExplicitCycle(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("CreateSubscriber", mock.Anything, mock.MatchedBy(func(sub models.Subscriber) bool {
		return sub.BillingCycle == models.BillingCycleQuarterly && sub.AutoChargeEnabled
	})).Return(nil)

	sub, err := svc.Register(context.Background(), models.DummySubscriber{
		Name:              "Asha",
		Mobile:            "9800000001",
		Region:            "North",
		BillingCycle:      models.BillingCycleQuarterly,
		AutoChargeEnabled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BillingCycleQuarterly, sub.BillingCycle)
}

func TestRegister_UnknownCycle(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	_, err := svc.Register(context.Background(), models.DummySubscriber{
		Name:         "Asha",
		Mobile:       "9800000001",
		Region:       "North",
		BillingCycle: "fortnightly",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "CreateSubscriber", mock.Anything, mock.Anything)
}

func TestRegister_RepoError(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("CreateSubscriber", mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	_, err := svc.Register(context.Background(), models.DummySubscriber{
		Name:   "Asha",
		Mobile: "9800000001",
		Region: "North",
	})
	assert.Error(t, err)
}

func TestList_PassesFilter(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	filter := models.SubscriberFilter{Region: "North", Limit: 20, Offset: 40}
	repo.On("ListSubscribers", mock.Anything, filter).
		Return([]*models.Subscriber{{ID: "sub-1"}}, nil)

	subs, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub-1", subs[0].ID)
}

func TestUpdate(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	req := models.DummySubscriber{
		Name:         "Asha K",
		Mobile:       "9800000002",
		Region:       "South",
		BillingCycle: models.BillingCycleYearly,
	}
	repo.On("UpdateSubscriberContact", mock.Anything, "sub-1", req).
		Return(&models.Subscriber{ID: "sub-1", Name: "Asha K", Region: "South"}, nil)

	sub, err := svc.Update(context.Background(), "sub-1", req)
	require.NoError(t, err)
	assert.Equal(t, "South", sub.Region)
}

func TestUpdate_UnknownCycle(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	_, err := svc.Update(context.Background(), "sub-1", models.DummySubscriber{
		Name:         "Asha",
		Mobile:       "9800000001",
		Region:       "North",
		BillingCycle: "weekly",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "UpdateSubscriberContact", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("UpdateSubscriberContact", mock.Anything, "ghost", mock.Anything).
		Return(nil, apperr.NotFound("subscriber", "ghost"))

	_, err := svc.Update(context.Background(), "ghost", models.DummySubscriber{
		Name:   "Ghost",
		Mobile: "9800000009",
		Region: "North",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("DeleteSubscriber", mock.Anything, "sub-1").Return(nil)

	err := svc.Delete(context.Background(), "sub-1")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("DeleteSubscriber", mock.Anything, "ghost").
		Return(apperr.NotFound("subscriber", "ghost"))

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
