package billing

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

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) AppendTransaction(ctx context.Context, t models.Transaction, effect decimal.Decimal) error {
	args := m.Called(ctx, t, effect)
	return args.Error(0)
}

func (m *mockRepository) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockRepository) ReplaceTransaction(ctx context.Context, id string, newType string, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, id, newType, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockRepository) ListTransactions(ctx context.Context, subscriberID string) ([]*models.Transaction, error) {
	args := m.Called(ctx, subscriberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *mockRepository) ListBillingHistory(ctx context.Context, subscriberID string) ([]*models.BillingHistoryEntry, error) {
	args := m.Called(ctx, subscriberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BillingHistoryEntry), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var frozen = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestRecord_Charge(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	amount := decimal.NewFromInt(500)
	repo.On("AppendTransaction", mock.Anything,
		mock.MatchedBy(func(tr models.Transaction) bool {
			return tr.SubscriberID == "sub-1" &&
				tr.Type == models.TransactionTypeCharge &&
				tr.Amount.Equal(amount) &&
				tr.Date.Equal(frozen) &&
				tr.ID != ""
		}),
		mock.MatchedBy(func(effect decimal.Decimal) bool {
			return effect.Equal(amount) // charge raises debt
		}),
	).Return(nil)

	tr, err := svc.Record(context.Background(), "sub-1", models.TransactionTypeCharge, amount, "Gold pack")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypeCharge, tr.Type)
	assert.Equal(t, frozen, tr.Date)
	repo.AssertExpectations(t)
}

func TestRecord_PaymentLowersBalance(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	amount := decimal.NewFromInt(200)
	repo.On("AppendTransaction", mock.Anything, mock.Anything,
		mock.MatchedBy(func(effect decimal.Decimal) bool {
			return effect.Equal(amount.Neg())
		}),
	).Return(nil)

	_, err := svc.Record(context.Background(), "sub-1", models.TransactionTypePayment, amount, "cash payment")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRecord_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		txType string
		amount decimal.Decimal
	}{
		{"unknown type", "adjustment", decimal.NewFromInt(10)},
		{"zero amount", models.TransactionTypePayment, decimal.Zero},
		{"negative amount", models.TransactionTypeCharge, decimal.NewFromInt(-5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

			_, err := svc.Record(context.Background(), "sub-1", tt.txType, tt.amount, "")
			assert.ErrorIs(t, err, apperr.ErrValidation)
			repo.AssertNotCalled(t, "AppendTransaction", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecord_RepoError(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("AppendTransaction", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	_, err := svc.Record(context.Background(), "sub-1", models.TransactionTypePayment, decimal.NewFromInt(10), "")
	assert.Error(t, err)
}

func TestUpdate(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	amount := decimal.NewFromInt(350)
	updated := &models.Transaction{
		ID:           "tx-1",
		SubscriberID: "sub-1",
		Type:         models.TransactionTypePayment,
		Amount:       amount,
		Date:         frozen,
	}
	repo.On("ReplaceTransaction", mock.Anything, "tx-1", models.TransactionTypePayment,
		mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(amount) }), "corrected").
		Return(updated, nil)

	got, err := svc.Update(context.Background(), "tx-1", models.DummyTransaction{
		Type:        models.TransactionTypePayment,
		Amount:      amount,
		Description: "corrected",
	})
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	repo.AssertExpectations(t)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("ReplaceTransaction", mock.Anything, "missing", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.NotFound("transaction", "missing"))

	_, err := svc.Update(context.Background(), "missing", models.DummyTransaction{
		Type:   models.TransactionTypeCharge,
		Amount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdate_InvalidType(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	_, err := svc.Update(context.Background(), "tx-1", models.DummyTransaction{
		Type:   "bonus",
		Amount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "ReplaceTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	ledger := []*models.Transaction{
		{ID: "tx-1", Type: models.TransactionTypeCharge, Amount: decimal.NewFromInt(500)},
		{ID: "tx-2", Type: models.TransactionTypePayment, Amount: decimal.NewFromInt(500)},
	}
	repo.On("ListTransactions", mock.Anything, "sub-1").Return(ledger, nil)

	got, err := svc.List(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBillingHistory(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	rows := []*models.BillingHistoryEntry{
		{SubscriberID: "sub-1", Status: models.BillingStatusCharged},
	}
	repo.On("ListBillingHistory", mock.Anything, "sub-1").Return(rows, nil)

	got, err := svc.BillingHistory(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
