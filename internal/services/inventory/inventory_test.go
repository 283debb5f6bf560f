package inventory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateSTB(ctx context.Context, stb models.STB) (int, error) {
	args := m.Called(ctx, stb)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) GetSTB(ctx context.Context, id int) (*models.STB, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.STB), args.Error(1)
}

func (m *mockRepository) ListSTBs(ctx context.Context, status string) ([]*models.STB, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.STB), args.Error(1)
}

func (m *mockRepository) UpdateSTBStatus(ctx context.Context, id int, status string, subscriberID *string) (int, error) {
	args := m.Called(ctx, id, status, subscriberID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func stockedBox() *models.STB {
	return &models.STB{ID: 1, SerialNumber: "SN-001", Model: "HD-2000", Status: models.STBStatusInStock}
}

func TestCreate(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	repo.On("CreateSTB", mock.Anything, mock.MatchedBy(func(stb models.STB) bool {
		return stb.SerialNumber == "SN-001" && stb.Status == models.STBStatusInStock
	})).Return(1, nil)

	stb, err := svc.Create(context.Background(), models.DummySTB{SerialNumber: "SN-001", Model: "HD-2000"})
	require.NoError(t, err)
	assert.Equal(t, 1, stb.ID)
	assert.Equal(t, models.STBStatusInStock, stb.Status)
}

func TestList_UnknownStatus(t *testing.T) {
	svc := New(new(mockRepository), noopLogger())

	_, err := svc.List(context.Background(), "broken")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssign(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	subscriberID := "sub-1"
	repo.On("GetSTB", mock.Anything, 1).Return(stockedBox(), nil)
	repo.On("GetSubscriber", mock.Anything, subscriberID).Return(&models.Subscriber{ID: subscriberID}, nil)
	repo.On("UpdateSTBStatus", mock.Anything, 1, models.STBStatusAssigned, &subscriberID).Return(1, nil)

	stb, err := svc.Assign(context.Background(), 1, subscriberID)
	require.NoError(t, err)
	assert.Equal(t, models.STBStatusAssigned, stb.Status)
	require.NotNil(t, stb.SubscriberID)
	assert.Equal(t, subscriberID, *stb.SubscriberID)
}

func TestAssign_NotInStock(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	box := stockedBox()
	box.Status = models.STBStatusFaulty
	repo.On("GetSTB", mock.Anything, 1).Return(box, nil)

	_, err := svc.Assign(context.Background(), 1, "sub-1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	repo.AssertNotCalled(t, "UpdateSTBStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAssign_SubscriberMissing(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	repo.On("GetSTB", mock.Anything, 1).Return(stockedBox(), nil)
	repo.On("GetSubscriber", mock.Anything, "ghost").Return(nil, apperr.NotFound("subscriber", "ghost"))

	_, err := svc.Assign(context.Background(), 1, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUnassign(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	sub := "sub-1"
	box := stockedBox()
	box.Status = models.STBStatusAssigned
	box.SubscriberID = &sub
	repo.On("GetSTB", mock.Anything, 1).Return(box, nil)
	repo.On("UpdateSTBStatus", mock.Anything, 1, models.STBStatusInStock, (*string)(nil)).Return(1, nil)

	stb, err := svc.Unassign(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.STBStatusInStock, stb.Status)
	assert.Nil(t, stb.SubscriberID)
}

func TestMarkFaulty_KeepsOwner(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	sub := "sub-1"
	box := stockedBox()
	box.Status = models.STBStatusAssigned
	box.SubscriberID = &sub
	repo.On("GetSTB", mock.Anything, 1).Return(box, nil)
	repo.On("UpdateSTBStatus", mock.Anything, 1, models.STBStatusFaulty, &sub).Return(1, nil)

	stb, err := svc.MarkFaulty(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.STBStatusFaulty, stb.Status)
	assert.NotNil(t, stb.SubscriberID)
}

func TestRepair(t *testing.T) {
	sub := "sub-1"
	tests := []struct {
		name       string
		owner      *string
		wantStatus string
	}{
		{"owned box goes back to subscriber", &sub, models.STBStatusAssigned},
		{"unowned box goes back to stock", nil, models.STBStatusInStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepository)
			svc := New(repo, noopLogger())

			box := stockedBox()
			box.Status = models.STBStatusFaulty
			box.SubscriberID = tt.owner
			repo.On("GetSTB", mock.Anything, 1).Return(box, nil)
			repo.On("UpdateSTBStatus", mock.Anything, 1, tt.wantStatus, tt.owner).Return(1, nil)

			stb, err := svc.Repair(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stb.Status)
		})
	}
}

func TestRepair_NotFaulty(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	repo.On("GetSTB", mock.Anything, 1).Return(stockedBox(), nil)

	_, err := svc.Repair(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRetire_AssignedBlocked(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	sub := "sub-1"
	box := stockedBox()
	box.Status = models.STBStatusAssigned
	box.SubscriberID = &sub
	repo.On("GetSTB", mock.Anything, 1).Return(box, nil)

	_, err := svc.Retire(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRetire(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, noopLogger())

	repo.On("GetSTB", mock.Anything, 1).Return(stockedBox(), nil)
	repo.On("UpdateSTBStatus", mock.Anything, 1, models.STBStatusRetired, (*string)(nil)).Return(1, nil)

	stb, err := svc.Retire(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.STBStatusRetired, stb.Status)
	assert.Nil(t, stb.SubscriberID)
}
