package complaint

import (
	"context"
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

func (m *mockRepository) CreateComplaint(ctx context.Context, c models.Complaint) (int, error) {
	args := m.Called(ctx, c)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) ListComplaints(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error) {
	args := m.Called(ctx, subscriberID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Complaint), args.Error(1)
}

func (m *mockRepository) UpdateComplaintStatus(ctx context.Context, id int, status string, resolvedAt *time.Time) (int, error) {
	args := m.Called(ctx, id, status, resolvedAt)
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

func TestOpen(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("GetSubscriber", mock.Anything, "sub-1").
		Return(&models.Subscriber{ID: "sub-1"}, nil)
	repo.On("CreateComplaint", mock.Anything, mock.MatchedBy(func(c models.Complaint) bool {
		return c.SubscriberID == "sub-1" &&
			c.Title == "No signal" &&
			c.Status == models.ComplaintStatusOpen &&
			c.CreatedAt.Equal(frozen) &&
			c.ResolvedAt == nil
	})).Return(7, nil)

	c, err := svc.Open(context.Background(), models.DummyComplaint{
		SubscriberID: "sub-1",
		Title:        "No signal",
		Description:  "Black screen since morning",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, c.ID)
	assert.Equal(t, models.ComplaintStatusOpen, c.Status)
}

func TestOpen_SubscriberMissing(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("GetSubscriber", mock.Anything, "ghost").
		Return(nil, apperr.NotFound("subscriber", "ghost"))

	_, err := svc.Open(context.Background(), models.DummyComplaint{
		SubscriberID: "ghost",
		Title:        "No signal",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	repo.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
}

func TestList(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("ListComplaints", mock.Anything, "sub-1", models.ComplaintStatusOpen).
		Return([]*models.Complaint{{ID: 7, SubscriberID: "sub-1"}}, nil)

	list, err := svc.List(context.Background(), "sub-1", models.ComplaintStatusOpen)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].ID)
}

func TestList_UnknownStatus(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	_, err := svc.List(context.Background(), "sub-1", "escalated")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "ListComplaints", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_InProgress(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("UpdateComplaintStatus", mock.Anything, 7, models.ComplaintStatusInProgress, (*time.Time)(nil)).
		Return(1, nil)

	err := svc.UpdateStatus(context.Background(), 7, models.ComplaintStatusInProgress)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_ResolvedStampsTime(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("UpdateComplaintStatus", mock.Anything, 7, models.ComplaintStatusResolved,
		mock.MatchedBy(func(resolvedAt *time.Time) bool {
			return resolvedAt != nil && resolvedAt.Equal(frozen)
		})).Return(1, nil)

	err := svc.UpdateStatus(context.Background(), 7, models.ComplaintStatusResolved)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	err := svc.UpdateStatus(context.Background(), 7, "closed")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "UpdateComplaintStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, clock.Fixed{T: frozen}, noopLogger())

	repo.On("UpdateComplaintStatus", mock.Anything, 99, models.ComplaintStatusInProgress, (*time.Time)(nil)).
		Return(0, nil)

	err := svc.UpdateStatus(context.Background(), 99, models.ComplaintStatusInProgress)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
