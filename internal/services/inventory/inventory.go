// Package inventory manages the set-top box pool. A box moves between
// in_stock, assigned, faulty and retired; only a box in stock can be
// handed to a subscriber.
package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

// Repository defines the inventory storage operations.
type Repository interface {
	CreateSTB(ctx context.Context, stb models.STB) (int, error)
	GetSTB(ctx context.Context, id int) (*models.STB, error)
	ListSTBs(ctx context.Context, status string) ([]*models.STB, error)
	UpdateSTBStatus(ctx context.Context, id int, status string, subscriberID *string) (int, error)
	GetSubscriber(ctx context.Context, id string) (*models.Subscriber, error)
}

// Service implements the box state machine.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New creates an inventory Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create adds a box to the pool in stock. A duplicate serial number is
// a conflict.
func (s *Service) Create(ctx context.Context, req models.DummySTB) (*models.STB, error) {
	stb := models.STB{
		SerialNumber: req.SerialNumber,
		Model:        req.Model,
		Status:       models.STBStatusInStock,
	}
	id, err := s.repo.CreateSTB(ctx, stb)
	if err != nil {
		return nil, err
	}
	stb.ID = id

	s.log.Info("added stb", slog.String("serial", stb.SerialNumber))
	return &stb, nil
}

// List returns boxes, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*models.STB, error) {
	if status != "" && !validSTBStatus(status) {
		return nil, apperr.Validation(fmt.Sprintf("unknown stb status %q", status))
	}
	return s.repo.ListSTBs(ctx, status)
}

// Assign hands a box in stock to an existing subscriber.
func (s *Service) Assign(ctx context.Context, stbID int, subscriberID string) (*models.STB, error) {
	stb, err := s.repo.GetSTB(ctx, stbID)
	if err != nil {
		return nil, err
	}
	if stb.Status != models.STBStatusInStock {
		return nil, apperr.Conflict(fmt.Sprintf("stb is %s, only a box in stock can be assigned", stb.Status))
	}
	if _, err := s.repo.GetSubscriber(ctx, subscriberID); err != nil {
		return nil, err
	}

	if _, err := s.repo.UpdateSTBStatus(ctx, stbID, models.STBStatusAssigned, &subscriberID); err != nil {
		return nil, err
	}
	stb.Status = models.STBStatusAssigned
	stb.SubscriberID = &subscriberID

	s.log.Info("assigned stb",
		slog.String("serial", stb.SerialNumber),
		slog.String("subscriber_id", subscriberID))
	return stb, nil
}

// Unassign returns an assigned box to stock.
func (s *Service) Unassign(ctx context.Context, stbID int) (*models.STB, error) {
	return s.transition(ctx, stbID, models.STBStatusAssigned, models.STBStatusInStock)
}

// MarkFaulty takes a box out of rotation for repair. An assigned box
// stays linked to its subscriber until it is repaired or retired.
func (s *Service) MarkFaulty(ctx context.Context, stbID int) (*models.STB, error) {
	stb, err := s.repo.GetSTB(ctx, stbID)
	if err != nil {
		return nil, err
	}
	if stb.Status == models.STBStatusRetired {
		return nil, apperr.Conflict("stb is retired")
	}
	if _, err := s.repo.UpdateSTBStatus(ctx, stbID, models.STBStatusFaulty, stb.SubscriberID); err != nil {
		return nil, err
	}
	stb.Status = models.STBStatusFaulty
	return stb, nil
}

// Repair puts a faulty box back: in stock when unowned, assigned when
// it still belongs to a subscriber.
func (s *Service) Repair(ctx context.Context, stbID int) (*models.STB, error) {
	stb, err := s.repo.GetSTB(ctx, stbID)
	if err != nil {
		return nil, err
	}
	if stb.Status != models.STBStatusFaulty {
		return nil, apperr.Conflict(fmt.Sprintf("stb is %s, only a faulty box can be repaired", stb.Status))
	}

	next := models.STBStatusInStock
	if stb.SubscriberID != nil {
		next = models.STBStatusAssigned
	}
	if _, err := s.repo.UpdateSTBStatus(ctx, stbID, next, stb.SubscriberID); err != nil {
		return nil, err
	}
	stb.Status = next
	return stb, nil
}

// Retire permanently removes a box from rotation.
func (s *Service) Retire(ctx context.Context, stbID int) (*models.STB, error) {
	stb, err := s.repo.GetSTB(ctx, stbID)
	if err != nil {
		return nil, err
	}
	if stb.Status == models.STBStatusAssigned {
		return nil, apperr.Conflict("unassign the stb before retiring it")
	}
	if _, err := s.repo.UpdateSTBStatus(ctx, stbID, models.STBStatusRetired, nil); err != nil {
		return nil, err
	}
	stb.Status = models.STBStatusRetired
	stb.SubscriberID = nil
	return stb, nil
}

func (s *Service) transition(ctx context.Context, stbID int, from, to string) (*models.STB, error) {
	stb, err := s.repo.GetSTB(ctx, stbID)
	if err != nil {
		return nil, err
	}
	if stb.Status != from {
		return nil, apperr.Conflict(fmt.Sprintf("stb is %s, expected %s", stb.Status, from))
	}
	if _, err := s.repo.UpdateSTBStatus(ctx, stbID, to, nil); err != nil {
		return nil, err
	}
	stb.Status = to
	stb.SubscriberID = nil
	return stb, nil
}

func validSTBStatus(status string) bool {
	switch status {
	case models.STBStatusInStock, models.STBStatusAssigned, models.STBStatusFaulty, models.STBStatusRetired:
		return true
	}
	return false
}
