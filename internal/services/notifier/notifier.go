// Package notifier публикует напоминания об абонементах, которые
// заканчиваются завтра. Дата окончания берётся из платежей, а не из кеша
// last_due_date.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/metrics"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// MembershipSource возвращает абонементы, истекающие на следующий день после asOf.
type MembershipSource interface {
	Expiring(ctx context.Context, asOf time.Time) ([]models.ExpiringMembership, error)
}

// Publisher отправляет сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service периодически ищет истекающие абонементы и публикует напоминания.
type Service struct {
	source    MembershipSource
	publisher Publisher
	clock     clock.Clock
	interval  time.Duration
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(source MembershipSource, publisher Publisher, clk clock.Clock, interval time.Duration, log *slog.Logger) *Service {
	return &Service{
		source:    source,
		publisher: publisher,
		clock:     clk,
		interval:  interval,
		log:       log,
	}
}

// Run выполняет проход сразу и затем по таймеру, пока не отменён ctx.
func (s *Service) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry notifier stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce публикует напоминания на текущую дату и возвращает число
// успешно отправленных сообщений.
func (s *Service) RunOnce(ctx context.Context) int {
	const op = "notifier.RunOnce"
	log := s.log.With(slog.String("op", op))

	today := s.clock.Today()
	log.Info("looking for memberships expiring tomorrow", slog.String("as_of", today.Format(time.DateOnly)))

	expiring, err := s.source.Expiring(ctx, today)
	if err != nil {
		log.Error("failed to find expiring memberships", sl.Err(err))
		return 0
	}
	if len(expiring) == 0 {
		log.Info("no expiring memberships found")
		return 0
	}
	log.Info("found expiring memberships", slog.Int("count", len(expiring)))

	sent := 0
	for _, m := range expiring {
		if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyExpiring, m); err != nil {
			metrics.RecordNotification(false)
			log.Error("failed to publish message", slog.Int64("client_id", m.ClientID), sl.Err(err))
			continue
		}
		metrics.RecordNotification(true)
		sent++
	}
	return sent
}
