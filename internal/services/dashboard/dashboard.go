// Package dashboard строит метрики дашборда: активных клиентов по дням,
// новых клиентов по месяцам, посещения по дням и распределение тарифов.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/cache"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/metrics"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Repository определяет массовые чтения для дашборда.
type Repository interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	ListPaymentsAll(ctx context.Context) ([]models.Payment, error)
	// ListAttendance возвращает посещения начиная с дня from включительно.
	ListAttendance(ctx context.Context, from time.Time) ([]models.Attendance, error)
}

// Cache описывает методы для кэширования готовых метрик.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service отдаёт метрики дашборда, кэшируя полные результаты.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает новый экземпляр Service. cache может быть nil.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// Metrics возвращает метрики на дату asOf.
//
// Ошибка одного чтения не прерывает расчёт: зависящие от него графики
// попадают в Unavailable, остальные считаются как обычно. Если не удалось
// ни одно чтение, возвращается models.ErrStoreUnavailable. В кэш попадают
// только полные результаты.
func (s *Service) Metrics(ctx context.Context, asOf time.Time) (Metrics, error) {
	const op = "dashboard.Metrics"
	log := s.log.With(slog.String("op", op))
	day := dates.Day(asOf)
	key := cache.DashboardKey(day)

	if s.cache != nil {
		var cached Metrics
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read dashboard cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			metrics.RecordDashboardRead("cache")
			return cached, nil
		}
	}

	clients, clientsErr := s.repo.ListClients(ctx)
	payments, paymentsErr := s.repo.ListPaymentsAll(ctx)
	attendance, attendanceErr := s.repo.ListAttendance(ctx, dates.AddDays(day, -(AttendanceWindowDays-1)))

	if clientsErr != nil && paymentsErr != nil && attendanceErr != nil {
		log.Error("all dashboard reads failed", sl.Err(paymentsErr))
		return Metrics{}, fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, paymentsErr)
	}

	m := Metrics{AsOf: dates.Format(day)}
	if paymentsErr == nil {
		m.ActiveClients = ActiveClientsSeries(payments, day)
		m.MembershipMix = MembershipMix(payments)
	} else {
		log.Warn("payments unavailable for dashboard", sl.Err(paymentsErr))
		m.Unavailable = append(m.Unavailable, SeriesActiveClients, SeriesMembershipMix)
	}
	if clientsErr == nil {
		m.NewClients = NewClientsSeries(clients, day)
	} else {
		log.Warn("clients unavailable for dashboard", sl.Err(clientsErr))
		m.Unavailable = append(m.Unavailable, SeriesNewClients)
	}
	if attendanceErr == nil {
		m.Attendance = AttendanceSeries(attendance, day)
	} else {
		log.Warn("attendance unavailable for dashboard", sl.Err(attendanceErr))
		m.Unavailable = append(m.Unavailable, SeriesAttendance)
	}
	m.Totals = totalsOf(m)

	if len(m.Unavailable) > 0 {
		metrics.RecordDashboardRead("degraded")
		return m, nil
	}
	metrics.RecordDashboardRead("computed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, m, s.ttl); err != nil {
			log.Warn("failed to cache dashboard", slog.String("key", key), sl.Err(err))
		}
	}
	return m, nil
}
