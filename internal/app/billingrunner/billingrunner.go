// Package billingrunner assembles the standalone auto-billing worker:
// it connects storage, Redis and RabbitMQ and runs the sweep on the
// configured interval.
package billingrunner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/cabletrack/cabletrack/internal/cache"
	"github.com/cabletrack/cabletrack/internal/clock"
	"github.com/cabletrack/cabletrack/internal/config"
	"github.com/cabletrack/cabletrack/internal/lib/rabbitmq"
	billingservice "github.com/cabletrack/cabletrack/internal/services/billing"
	packservice "github.com/cabletrack/cabletrack/internal/services/pack"
	schedulerservice "github.com/cabletrack/cabletrack/internal/services/scheduler"
	subscriptionservice "github.com/cabletrack/cabletrack/internal/services/subscription"
	"github.com/cabletrack/cabletrack/internal/storage/repository"
)

// App is the assembled billing worker.
type App struct {
	scheduler *schedulerservice.Service
	synced    *clock.Synced // nil when time sync is disabled
	conn      *amqp.Connection
	ch        *amqp.Channel
	db        *repository.Storage
	cfg       *config.Config
	logger    *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for i := 0; i < 10; i++ {
		if err := db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New connects the infrastructure and wires the scheduler.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.BillingQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	var clk clock.Clock = clock.System{}
	var synced *clock.Synced
	if cfg.TimeSync.Endpoint != "" {
		synced = clock.NewSynced(cfg.TimeSync.Endpoint, logger)
		clk = synced
	}

	billingSvc := billingservice.New(db, clk, logger)
	packSvc := packservice.New(db, cacheRedis, logger)
	subscriptionSvc := subscriptionservice.New(db, packSvc, billingSvc, clk, cfg.Billing.ChargeOnSubscribe, logger)
	schedulerSvc := schedulerservice.New(db, packSvc, billingSvc, subscriptionSvc, clk, ch, logger)

	return &App{
		scheduler: schedulerSvc,
		synced:    synced,
		conn:      conn,
		ch:        ch,
		db:        db,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.synced != nil {
		go a.synced.Run(ctx, a.cfg.TimeSync.RefreshInterval)
	}

	go a.scheduler.Run(ctx, a.cfg.Billing.SweepInterval)

	<-ctx.Done()

	a.logger.Info("shutting down billing runner")
	closeResources(a.ch, a.conn, a.logger)
	_ = a.db.DB.Close()
	return nil
}
