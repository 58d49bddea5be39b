// Package membership содержит расчёт состояния абонемента, правило продления
// и операции над клиентами: регистрацию, оплату, историю и посещения.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/gym-membership-engine/internal/cache"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/metrics"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Виды записанных платежей для метрик.
const (
	KindPayment    = "payment"
	KindExtension  = "extension"
	KindEnrollment = "enrollment"
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	// GetClient возвращает клиента или models.ErrClientNotFound.
	GetClient(ctx context.Context, id int64) (*models.Client, error)
	// ListClients возвращает всех клиентов.
	ListClients(ctx context.Context) ([]models.Client, error)
	// ListPayments возвращает платежи одного клиента.
	ListPayments(ctx context.Context, clientID int64) ([]models.Payment, error)
	// ListPaymentsAll возвращает платежи всех клиентов.
	ListPaymentsAll(ctx context.Context) ([]models.Payment, error)
	// RecordPayment атомарно читает историю клиента, строит платёж через build,
	// вставляет его и обновляет кеш last_due_date. build вызывается внутри
	// транзакции, пока строка клиента заблокирована.
	RecordPayment(ctx context.Context, clientID int64, build func(history []models.Payment) (models.Payment, error)) (models.Payment, error)
	// CreateClientWithPayment атомарно создаёт клиента вместе с первым платежом.
	CreateClientWithPayment(ctx context.Context, client models.Client, first models.Payment) (models.Client, models.Payment, error)
	// InsertAttendance добавляет отметку о посещении.
	InsertAttendance(ctx context.Context, a models.Attendance) error
}

// Cache описывает инвалидацию кэша дашборда.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции над абонементами.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service. cache может быть nil.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// State возвращает состояние абонемента клиента на дату asOf.
func (s *Service) State(ctx context.Context, clientID int64, asOf time.Time) (models.MembershipState, error) {
	const op = "membership.State"
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return models.MembershipState{}, fmt.Errorf("%s: %w", op, err)
	}
	payments, err := s.repo.ListPayments(ctx, clientID)
	if err != nil {
		return models.MembershipState{}, fmt.Errorf("%s: %w", op, err)
	}
	return Compute(payments, asOf), nil
}

// History возвращает платежи клиента, начиная с самого позднего срока.
func (s *Service) History(ctx context.Context, clientID int64) ([]models.Payment, error) {
	const op = "membership.History"
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payments, err := s.repo.ListPayments(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sorted := make([]models.Payment, len(payments))
	copy(sorted, payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newer(&sorted[i], &sorted[j])
	})
	return sorted, nil
}

// ListClients возвращает клиентов с вычисленным состоянием абонемента,
// отсортированных по фамилии. Состояние считается по платежам, а не по
// кешу last_due_date.
func (s *Service) ListClients(ctx context.Context, filter models.ClientFilter, asOf time.Time) ([]models.ClientWithState, error) {
	const op = "membership.ListClients"
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%s: unknown status %q: %w", op, filter.Status, models.ErrInvalidInput)
	}

	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	payments, err := s.repo.ListPaymentsAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byClient := make(map[int64][]models.Payment, len(clients))
	for _, p := range payments {
		byClient[p.ClientID] = append(byClient[p.ClientID], p)
	}

	term := strings.ToLower(strings.TrimSpace(filter.Term))
	result := make([]models.ClientWithState, 0, len(clients))
	for _, c := range clients {
		if term != "" && !matches(c, term) {
			continue
		}
		state := Compute(byClient[c.ID], asOf)
		if filter.Status != "" && state.Status != filter.Status {
			continue
		}
		result = append(result, models.ClientWithState{Client: c, Membership: state})
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if la, lb := strings.ToLower(a.LastName), strings.ToLower(b.LastName); la != lb {
			return la < lb
		}
		if fa, fb := strings.ToLower(a.FirstName), strings.ToLower(b.FirstName); fa != fb {
			return fa < fb
		}
		return a.ID < b.ID
	})
	return result, nil
}

func matches(c models.Client, term string) bool {
	full := strings.ToLower(c.FirstName + " " + c.LastName)
	return strings.Contains(full, term) ||
		strings.Contains(strings.ToLower(c.LastName+" "+c.FirstName), term) ||
		strings.Contains(c.DNI, term)
}

// ApplyPayment записывает оплату или продление абонемента на months месяцев.
//
// Новый срок считается по правилу NextDueDate от текущего состояния клиента.
// Чтение истории и вставка выполняются хранилищем в одной транзакции под
// блокировкой клиента, поэтому два одновременных платежа не получат одну базу.
// При ошибке ничего не записывается.
func (s *Service) ApplyPayment(ctx context.Context, clientID int64, req models.DummyPayment, asOf time.Time) (models.Payment, error) {
	const op = "membership.ApplyPayment"
	log := s.log.With(slog.String("op", op), slog.Int64("client_id", clientID))

	amount, kind, err := paymentAmount(req)
	if err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return models.Payment{}, fmt.Errorf("%s: method is required: %w", op, models.ErrInvalidInput)
	}
	if req.Months < 1 {
		return models.Payment{}, fmt.Errorf("%s: months must be >= 1: %w", op, models.ErrInvalidInput)
	}
	today := dates.Day(asOf)

	payment, err := s.repo.RecordPayment(ctx, clientID, func(history []models.Payment) (models.Payment, error) {
		state := Compute(history, today)
		due, err := NextDueDate(state.DueAt, today, req.Months)
		if err != nil {
			return models.Payment{}, err
		}
		return models.Payment{
			ClientID:   clientID,
			Amount:     amount,
			Method:     method,
			PaidAt:     today,
			DueAt:      due,
			MonthsPaid: req.Months,
			Period:     PeriodLabel(due),
		}, nil
	})
	if err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordPayment(kind)
	log.Info("payment recorded",
		slog.Int64("payment_id", payment.ID),
		slog.String("due_at", dates.Format(payment.DueAt)),
		slog.Int("months", payment.MonthsPaid),
	)
	s.invalidateDashboard(ctx, today)
	return payment, nil
}

// paymentAmount возвращает итоговую сумму: либо явную, либо цену месяца,
// умноженную на число месяцев.
func paymentAmount(req models.DummyPayment) (decimal.Decimal, string, error) {
	switch {
	case req.Amount != nil:
		if req.Amount.IsNegative() {
			return decimal.Zero, "", fmt.Errorf("amount must not be negative: %w", models.ErrInvalidInput)
		}
		return *req.Amount, KindPayment, nil
	case req.MonthlyPrice != nil:
		if req.MonthlyPrice.IsNegative() {
			return decimal.Zero, "", fmt.Errorf("monthly price must not be negative: %w", models.ErrInvalidInput)
		}
		return req.MonthlyPrice.Mul(decimal.NewFromInt(int64(req.Months))), KindExtension, nil
	default:
		return decimal.Zero, "", fmt.Errorf("amount or monthly_price is required: %w", models.ErrInvalidInput)
	}
}

// Enroll регистрирует клиента вместе с первым платежом. Клиент без платежа
// не создаётся.
func (s *Service) Enroll(ctx context.Context, req models.DummyClient, asOf time.Time) (models.ClientWithState, error) {
	const op = "membership.Enroll"
	log := s.log.With(slog.String("op", op))

	client := models.Client{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		DNI:       strings.TrimSpace(req.DNI),
		Phone:     strings.TrimSpace(req.Phone),
	}
	method := strings.TrimSpace(req.Method)
	if client.FirstName == "" || client.LastName == "" || client.DNI == "" || method == "" {
		return models.ClientWithState{}, fmt.Errorf("%s: first name, last name, dni and method are required: %w", op, models.ErrInvalidInput)
	}
	if req.Amount.IsNegative() {
		return models.ClientWithState{}, fmt.Errorf("%s: amount must not be negative: %w", op, models.ErrInvalidInput)
	}

	today := dates.Day(asOf)
	due, err := NextDueDate(nil, today, req.Months)
	if err != nil {
		return models.ClientWithState{}, fmt.Errorf("%s: %w", op, err)
	}
	client.EnrolledAt = today
	client.LastDueDate = &due

	first := models.Payment{
		Amount:     req.Amount,
		Method:     method,
		PaidAt:     today,
		DueAt:      due,
		MonthsPaid: req.Months,
		Period:     PeriodLabel(due),
	}

	created, payment, err := s.repo.CreateClientWithPayment(ctx, client, first)
	if err != nil {
		return models.ClientWithState{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordPayment(KindEnrollment)
	log.Info("client enrolled", slog.Int64("client_id", created.ID), slog.String("due_at", dates.Format(due)))
	s.invalidateDashboard(ctx, today)

	return models.ClientWithState{
		Client:     created,
		Membership: Compute([]models.Payment{payment}, today),
	}, nil
}

// RecordAttendance добавляет отметку о посещении. Пустая дата означает asOf.
func (s *Service) RecordAttendance(ctx context.Context, a models.Attendance, asOf time.Time) (models.Attendance, error) {
	const op = "membership.RecordAttendance"
	if a.ClientID <= 0 {
		return models.Attendance{}, fmt.Errorf("%s: client id must be positive: %w", op, models.ErrInvalidInput)
	}
	today := dates.Day(asOf)
	if a.Date.IsZero() {
		a.Date = today
	}
	a.Date = dates.Day(a.Date)
	if a.Date.After(today) {
		return models.Attendance{}, fmt.Errorf("%s: attendance in the future: %w", op, models.ErrInvalidInput)
	}

	if err := s.repo.InsertAttendance(ctx, a); err != nil {
		return models.Attendance{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateDashboard(ctx, today)
	return a, nil
}

// Expiring возвращает клиентов, чей вычисленный срок заканчивается на следующий
// день после asOf.
func (s *Service) Expiring(ctx context.Context, asOf time.Time) ([]models.ExpiringMembership, error) {
	const op = "membership.Expiring"
	all, err := s.ListClients(ctx, models.ClientFilter{Status: models.StatusActive}, asOf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tomorrow := dates.AddDays(asOf, 1)
	var result []models.ExpiringMembership
	for _, c := range all {
		if c.Membership.DueAt == nil || !c.Membership.DueAt.Equal(tomorrow) {
			continue
		}
		result = append(result, models.ExpiringMembership{
			ClientID:  c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Phone:     c.Phone,
			DueAt:     *c.Membership.DueAt,
		})
	}
	return result, nil
}

func (s *Service) invalidateDashboard(ctx context.Context, day time.Time) {
	if s.cache == nil {
		return
	}
	key := cache.DashboardKey(day)
	if err := s.cache.Invalidate(ctx, key); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("failed to invalidate dashboard cache", slog.String("key", key), sl.Err(err))
	}
}
