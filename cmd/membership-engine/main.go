// Package main Gym Membership Engine API
//
// @title           Gym Membership Engine API
// @version         1.0
// @description     API учёта абонементов спортзала: клиенты, платежи, посещения, дашборд и магазин.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	// Часовые пояса встраиваются в бинарник, чтобы timezone работал в минимальных образах.
	_ "time/tzdata"

	membershipengine "github.com/magabrotheeeer/gym-membership-engine/internal/app/membership-engine"
	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting membership-engine", slog.String("env", cfg.Env), slog.String("storage", cfg.Storage.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := membershipengine.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("membership-engine stopped gracefully")
}
