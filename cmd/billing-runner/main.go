package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cabletrack/cabletrack/internal/app/billingrunner"
	"github.com/cabletrack/cabletrack/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting billing-runner", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := billingrunner.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize billing runner", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("billing runner stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("billing-runner stopped gracefully")
}
