// Package pack implements the channel pack catalog. Pack reads are
// cached in Redis because the scheduler resolves a price for every due
// subscriber on every sweep.
package pack

import (
	"context"
	"log/slog"
	"time"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/lib/sl"
	"github.com/cabletrack/cabletrack/internal/models"
)

const cacheTTL = time.Hour

// Repository defines the catalog storage operations.
type Repository interface {
	CreatePack(ctx context.Context, p models.Pack) (int, error)
	GetPackByName(ctx context.Context, name string) (*models.Pack, error)
	ListPacks(ctx context.Context) ([]*models.Pack, error)
	UpdatePack(ctx context.Context, id int, p models.DummyPack) (*models.Pack, error)
	GetPackNameByID(ctx context.Context, id int) (string, error)
	CountSubscribersOnPack(ctx context.Context, name string) (int, error)
	DeletePack(ctx context.Context, id int) error
}

// Cacher is the subset of the Redis cache the catalog uses.
type Cacher interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service implements catalog business rules.
type Service struct {
	repo  Repository
	cache Cacher
	log   *slog.Logger
}

// New creates a pack Service.
func New(repo Repository, cache Cacher, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(name string) string {
	return "pack:" + name
}

// Create adds a pack to the catalog. A duplicate name is a conflict.
func (s *Service) Create(ctx context.Context, req models.DummyPack) (*models.Pack, error) {
	if req.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p := models.Pack{
		Name:   req.Name,
		Price:  req.Price,
		Active: active,
	}
	id, err := s.repo.CreatePack(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.log.Info("created pack", slog.String("name", p.Name), slog.String("price", p.Price.String()))
	return &p, nil
}

// GetByName returns a pack, serving from cache when possible.
func (s *Service) GetByName(ctx context.Context, name string) (*models.Pack, error) {
	var cached models.Pack
	found, err := s.cache.Get(cacheKey(name), &cached)
	if err != nil {
		s.log.Warn("pack cache read failed", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetPackByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(cacheKey(name), p, cacheTTL); err != nil {
		s.log.Warn("pack cache write failed", sl.Err(err))
	}
	return p, nil
}

// List returns the full catalog.
func (s *Service) List(ctx context.Context) ([]*models.Pack, error) {
	return s.repo.ListPacks(ctx)
}

// Update rewrites a pack. Subscription entries keep the price that was
// snapshotted when they were activated. Both the old and the new name
// leave the cache so renames do not serve stale prices.
func (s *Service) Update(ctx context.Context, id int, req models.DummyPack) (*models.Pack, error) {
	if req.Price.IsNegative() {
		return nil, apperr.Validation("price must not be negative")
	}

	oldName, err := s.repo.GetPackNameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.UpdatePack(ctx, id, req)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{oldName, p.Name} {
		if err := s.cache.Invalidate(cacheKey(name)); err != nil {
			s.log.Warn("pack cache invalidation failed", sl.Err(err))
		}
	}

	s.log.Info("updated pack", slog.Int("id", id), slog.String("name", p.Name))
	return p, nil
}

// Delete removes a pack that no subscriber currently uses.
func (s *Service) Delete(ctx context.Context, id int) error {
	name, err := s.repo.GetPackNameByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.repo.CountSubscribersOnPack(ctx, name)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperr.Conflict("pack is in use by active subscriptions")
	}

	if err := s.repo.DeletePack(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Invalidate(cacheKey(name)); err != nil {
		s.log.Warn("pack cache invalidation failed", sl.Err(err))
	}

	s.log.Info("deleted pack", slog.Int("id", id), slog.String("name", name))
	return nil
}
