package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	expirynotifier "github.com/magabrotheeeer/gym-membership-engine/internal/app/expiry-notifier"
	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("starting expiry-notifier", slog.String("env", cfg.Env), slog.Duration("interval", cfg.Notifier.Interval))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := expirynotifier.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize expiry-notifier", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("expiry-notifier stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("expiry-notifier stopped gracefully")
}
