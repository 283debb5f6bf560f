// Package complaint tracks subscriber-reported issues through the
// open, in_progress, resolved flow.
package complaint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Repository defines the complaint storage operations.
type Repository interface {
	CreateComplaint(ctx context.Context, c models.Complaint) (int, error)
	ListComplaints(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id int, status string, resolvedAt *time.Time) (int, error)
	GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
}

// Service implements complaint handling.
type Service struct {
	repo Repository
	clk  clock.Clock
	log  *slog.Logger
}

// New creates a complaint Service.
func New(repo Repository, clk clock.Clock, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// Open files a complaint for an existing subscriber.
func (s *Service) Open(ctx context.Context, req models.DummyComplaint) (*models.Complaint, error) {
	if _, err := s.repo.GetSubscriber(ctx, req.SubscriberID); err != nil {
		return nil, err
	}

	c := models.Complaint{
		SubscriberID: req.SubscriberID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       models.ComplaintStatusOpen,
		CreatedAt:    s.clk.Now(),
	}
	id, err := s.repo.CreateComplaint(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	s.log.Info("opened complaint",
		slog.Int("id", id),
		slog.String("subscriber_id", req.SubscriberID))
	return &c, nil
}

// List returns complaints, optionally narrowed by subscriber and
// status.
func (s *Service) List(ctx context.Context, subscriberID, status string) ([]*models.Complaint, error) {
	if status != "" && !validStatus(status) {
		return nil, apperr.Validation(fmt.Sprintf("unknown complaint status %q", status))
	}
	return s.repo.ListComplaints(ctx, subscriberID, status)
}

// UpdateStatus moves a complaint along the flow. Resolved is terminal.
func (s *Service) UpdateStatus(ctx context.Context, id int, status string) error {
	if !validStatus(status) {
		return apperr.Validation(fmt.Sprintf("unknown complaint status %q", status))
	}

	var resolvedAt *time.Time
	if status == models.ComplaintStatusResolved {
		now := s.clk.Now()
		resolvedAt = &now
	}

	affected, err := s.repo.UpdateComplaintStatus(ctx, id, status, resolvedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.NotFound("complaint", fmt.Sprint(id))
	}

	s.log.Info("updated complaint", slog.Int("id", id), slog.String("status", status))
	return nil
}

func validStatus(status string) bool {
	switch status {
	case models.ComplaintStatusOpen, models.ComplaintStatusInProgress, models.ComplaintStatusResolved:
		return true
	}
	return false
}
