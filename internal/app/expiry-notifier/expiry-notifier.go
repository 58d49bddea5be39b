// Package expirynotifier собирает приложение, которое публикует в RabbitMQ
// напоминания об абонементах, истекающих завтра.
package expirynotifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/membership"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/notifier"
	"github.com/magabrotheeeer/gym-membership-engine/internal/storage"
)

// App представляет приложение рассылки напоминаний.
type App struct {
	notifier   *notifier.Service
	conn       *amqp.Connection
	ch         *amqp.Channel
	closeStore func() error
	logger     *slog.Logger
}

// New создает новый экземпляр приложения.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	store, closeStore, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		_ = closeStore()
		closeResources(ch, conn, logger)
		return nil, err
	}

	memberships := membership.NewService(store, nil, logger)
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.ExchangeNotifications)

	return &App{
		notifier:   notifier.NewService(memberships, publisher, clock.NewSystem(loc), cfg.Notifier.Interval, logger),
		conn:       conn,
		ch:         ch,
		closeStore: closeStore,
		logger:     logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает рассылку и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.notifier.Run(ctx)

	a.logger.Info("shutting down expiry notifier")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.closeStore(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
