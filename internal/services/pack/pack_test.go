package pack

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cabletrack/cabletrack/internal/apperr"
	"github.com/cabletrack/cabletrack/internal/models"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreatePack(ctx context.Context, p models.Pack) (int, error) {
	args := m.Called(ctx, p)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) GetPackByName(ctx context.Context, name string) (*models.Pack, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pack), args.Error(1)
}

func (m *mockRepository) ListPacks(ctx context.Context) ([]*models.Pack, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Pack), args.Error(1)
}

func (m *mockRepository) UpdatePack(ctx context.Context, id int, p models.DummyPack) (*models.Pack, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pack), args.Error(1)
}

func (m *mockRepository) GetPackNameByID(ctx context.Context, id int) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockRepository) CountSubscribersOnPack(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *mockRepository) DeletePack(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCacher struct {
	mock.Mock
}

func (m *mockCacher) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	if args.Bool(0) {
		*result.(*models.Pack) = *args.Get(2).(*models.Pack)
	}
	return args.Bool(0), args.Error(1)
}

func (m *mockCacher) Set(key string, value any, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *mockCacher) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func goldPack() *models.Pack {
	return &models.Pack{ID: 1, Name: "Gold", Price: decimal.NewFromInt(500), Active: true}
}

func TestCreate(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, new(mockCacher), noopLogger())

	repo.On("CreatePack", mock.Anything, mock.MatchedBy(func(p models.Pack) bool {
		return p.Name == "Gold" && p.Price.Equal(decimal.NewFromInt(500)) && p.Active
	})).Return(7, nil)

	p, err := svc.Create(context.Background(), models.DummyPack{Name: "Gold", Price: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)
	assert.True(t, p.Active, "packs default to active")
}

func TestCreate_NegativePrice(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, new(mockCacher), noopLogger())

	_, err := svc.Create(context.Background(), models.DummyPack{Name: "Gold", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	repo.AssertNotCalled(t, "CreatePack", mock.Anything, mock.Anything)
}

func TestGetByName_CacheHit(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCacher)
	svc := New(repo, cache, noopLogger())

	cache.On("Get", "pack:Gold", mock.Anything).Return(true, nil, goldPack())

	p, err := svc.GetByName(context.Background(), "Gold")
	require.NoError(t, err)
	assert.Equal(t, "Gold", p.Name)
	repo.AssertNotCalled(t, "GetPackByName", mock.Anything, mock.Anything)
}

func TestGetByName_CacheMissFillsCache(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCacher)
	svc := New(repo, cache, noopLogger())

	cache.On("Get", "pack:Gold", mock.Anything).Return(false, nil, nil)
	repo.On("GetPackByName", mock.Anything, "Gold").Return(goldPack(), nil)
	cache.On("Set", "pack:Gold", mock.Anything, time.Hour).Return(nil)

	p, err := svc.GetByName(context.Background(), "Gold")
	require.NoError(t, err)
	assert.Equal(t, "Gold", p.Name)
	cache.AssertExpectations(t)
}

func TestUpdate_InvalidatesOldAndNewNames(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCacher)
	svc := New(repo, cache, noopLogger())

	req := models.DummyPack{Name: "Platinum", Price: decimal.NewFromInt(800)}
	repo.On("GetPackNameByID", mock.Anything, 1).Return("Gold", nil)
	repo.On("UpdatePack", mock.Anything, 1, req).
		Return(&models.Pack{ID: 1, Name: "Platinum", Price: decimal.NewFromInt(800), Active: true}, nil)
	cache.On("Invalidate", "pack:Gold").Return(nil)
	cache.On("Invalidate", "pack:Platinum").Return(nil)

	p, err := svc.Update(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, "Platinum", p.Name)
	cache.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCacher)
	svc := New(repo, cache, noopLogger())

	repo.On("GetPackNameByID", mock.Anything, 1).Return("Gold", nil)
	repo.On("CountSubscribersOnPack", mock.Anything, "Gold").Return(0, nil)
	repo.On("DeletePack", mock.Anything, 1).Return(nil)
	cache.On("Invalidate", "pack:Gold").Return(nil)

	err := svc.Delete(context.Background(), 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDelete_PackInUse(t *testing.T) {
	repo := new(mockRepository)
	svc := New(repo, new(mockCacher), noopLogger())

	repo.On("GetPackNameByID", mock.Anything, 1).Return("Gold", nil)
	repo.On("CountSubscribersOnPack", mock.Anything, "Gold").Return(3, nil)

	err := svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	repo.AssertNotCalled(t, "DeletePack", mock.Anything, mock.Anything)
}
