// Package cabletrack assembles the API server: storage, cache,
// clock, services, router and the HTTP listener.
package cabletrack

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/cabletrack/cabletrack/internal/cache"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/config"
	"github.com/cabletrack/cabletrack/internal/lib/jwt"
	"github.com/cabletrack/cabletrack/internal/migrations"
	authservice "github.com/cabletrack/cabletrack/internal/services/auth"
	billingservice "github.com/cabletrack/cabletrack/internal/services/billing"
	complaintservice "github.com/cabletrack/cabletrack/internal/services/complaint"
	exportservice "github.com/cabletrack/cabletrack/internal/services/export"
	inventoryservice "github.com/cabletrack/cabletrack/internal/services/inventory"
	packservice "github.com/cabletrack/cabletrack/internal/services/pack"
	schedulerservice "github.com/cabletrack/cabletrack/internal/services/scheduler"
	subscriberservice "github.com/cabletrack/cabletrack/internal/services/subscriber"
	subscriptionservice "github.com/cabletrack/cabletrack/internal/services/subscription"
	"github.com/cabletrack/cabletrack/internal/storage/repository"
)

// App is the assembled API server.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	synced *clock.Synced // nil when time sync is disabled
	cfg    *config.Config
}

// New connects the infrastructure, runs migrations and wires every
// service into the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var clk clock.Clock = clock.System{}
	var synced *clock.Synced
	if cfg.TimeSync.Endpoint != "" {
		synced = clock.NewSynced(cfg.TimeSync.Endpoint, logger)
		clk = synced
	}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authSvc := authservice.New(db, jwtMaker, clk, logger)
	billingSvc := billingservice.New(db, clk, logger)
	packSvc := packservice.New(db, cacheRedis, logger)
	subscriberSvc := subscriberservice.New(db, clk, logger)
	subscriptionSvc := subscriptionservice.New(db, packSvc, billingSvc, clk, cfg.Billing.ChargeOnSubscribe, logger)
	// The API trigger runs without a broker channel; receipts are
	// published only by the billing-runner binary.
	schedulerSvc := schedulerservice.New(db, packSvc, billingSvc, subscriptionSvc, clk, nil, logger)
	inventorySvc := inventoryservice.New(db, logger)
	complaintSvc := complaintservice.New(db, clk, logger)
	exportSvc := exportservice.New(db, clk, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authSvc,
		Billing:      billingSvc,
		Pack:         packSvc,
		Subscriber:   subscriberSvc,
		Subscription: subscriptionSvc,
		Scheduler:    schedulerSvc,
		Inventory:    inventorySvc,
		Complaint:    complaintSvc,
		Export:       exportSvc,
		Health:       db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		synced: synced,
		cfg:    cfg,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.synced != nil {
		go a.synced.Run(ctx, a.cfg.TimeSync.RefreshInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
