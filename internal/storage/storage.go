// Package storage выбирает реализацию хранилища по конфигурации.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/migrations"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
	"github.com/magabrotheeeer/gym-membership-engine/internal/storage/memory"
	"github.com/magabrotheeeer/gym-membership-engine/internal/storage/repository"
)

// Store: полный набор операций хранилища движка.
type Store interface {
	Ping(ctx context.Context) error

	GetClient(ctx context.Context, id int64) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClientWithPayment(ctx context.Context, client models.Client, first models.Payment) (models.Client, models.Payment, error)

	ListPayments(ctx context.Context, clientID int64) ([]models.Payment, error)
	ListPaymentsAll(ctx context.Context) ([]models.Payment, error)
	RecordPayment(ctx context.Context, clientID int64, build func(history []models.Payment) (models.Payment, error)) (models.Payment, error)

	InsertAttendance(ctx context.Context, a models.Attendance) error
	ListAttendance(ctx context.Context, from time.Time) ([]models.Attendance, error)

	AddProduct(ctx context.Context, p models.Product) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProductStock(ctx context.Context, productID int64) (int, error)
	ConditionalSetStock(ctx context.Context, productID int64, expected, newStock int) error
}

var (
	_ Store = (*repository.Storage)(nil)
	_ Store = (*memory.Storage)(nil)
)

const (
	connectAttempts = 10
	connectDelay    = 3 * time.Second
)

// Open открывает хранилище. Для PostgreSQL подключение повторяется, пока база
// не станет доступна, затем применяются миграции. Возвращаемая функция
// закрывает хранилище.
func Open(ctx context.Context, cfg config.Storage, logger *slog.Logger) (Store, func() error, error) {
	const op = "storage.Open"

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), func() error { return nil }, nil
	case config.DriverPostgres:
	default:
		return nil, nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}

	db, err := connect(ctx, cfg.ConnectionString, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return db, db.Close, nil
}

func connect(ctx context.Context, dsn string, logger *slog.Logger) (*repository.Storage, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := repository.New(dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		logger.Warn("database is not ready", slog.Int("attempt", attempt), sl.Err(err))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectDelay):
		}
	}
	return nil, fmt.Errorf("database not ready after %d attempts: %w", connectAttempts, lastErr)
}
