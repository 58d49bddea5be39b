// Package membershipengine собирает HTTP-приложение движка абонементов:
// хранилище, кэш дашборда, сервисы и маршруты.
package membershipengine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/gym-membership-engine/internal/cache"
	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/dashboard"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/membership"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/stock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/storage"
)

// Services: сервисы, которые обслуживают маршруты.
type Services struct {
	Membership *membership.Service
	Dashboard  *dashboard.Service
	Stock      *stock.Ledger
	Store      storage.Store
}

// NewServices собирает сервисы поверх хранилища. redisCache может быть nil,
// тогда дашборд считается при каждом запросе.
func NewServices(store storage.Store, redisCache *cache.Cache, cfg config.Billing, logger *slog.Logger) Services {
	var (
		membershipCache membership.Cache
		dashboardCache  dashboard.Cache
	)
	if redisCache != nil {
		membershipCache = redisCache
		dashboardCache = redisCache
	}
	return Services{
		Membership: membership.NewService(store, membershipCache, logger),
		Dashboard:  dashboard.NewService(store, dashboardCache, cfg.DashboardCacheTTL, logger),
		Stock:      stock.NewLedger(store, cfg.StockMaxRetries, logger),
		Store:      store,
	}
}

type App struct {
	server     *http.Server
	logger     *slog.Logger
	closeStore func() error
	cache      *cache.Cache
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, closeStore, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	var redisCache *cache.Cache
	if cfg.Redis.AddressRedis != "" {
		redisCache, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("dashboard cache disabled", sl.Err(err))
			redisCache = nil
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	services := NewServices(store, redisCache, cfg.Billing, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, clock.NewSystem(loc), cfg.RateLimit)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		closeStore: closeStore,
		cache:      redisCache,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.closeStore(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close cache", sl.Err(err))
		}
	}
}
