// Package memory: хранилище клиентов, платежей, посещений и товаров в памяти
// процесса. Используется в тестах и при storage.driver = memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Storage хранит данные в памяти под одним мьютексом.
type Storage struct {
	mu            sync.RWMutex
	clients       map[int64]models.Client
	dni           map[string]int64
	payments      []models.Payment
	attendance    []models.Attendance
	products      map[int64]models.Product
	nextClientID  int64
	nextPaymentID int64
	nextProductID int64
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		clients:  make(map[int64]models.Client),
		dni:      make(map[string]int64),
		products: make(map[int64]models.Product),
	}
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// Ping всегда успешен, пока контекст не отменён.
func (s *Storage) Ping(ctx context.Context) error {
	return checkCtx(ctx, "memory.Ping")
}

// GetClient возвращает клиента по id.
func (s *Storage) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	const op = "memory.GetClient"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
	}
	return &c, nil
}

// ListClients возвращает всех клиентов в порядке id.
func (s *Storage) ListClients(ctx context.Context) ([]models.Client, error) {
	const op = "memory.ListClients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListPayments возвращает платежи клиента в порядке вставки.
func (s *Storage) ListPayments(ctx context.Context, clientID int64) ([]models.Payment, error) {
	const op = "memory.ListPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentsOf(clientID), nil
}

func (s *Storage) paymentsOf(clientID int64) []models.Payment {
	var out []models.Payment
	for _, p := range s.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

// ListPaymentsAll возвращает все платежи.
func (s *Storage) ListPaymentsAll(ctx context.Context) ([]models.Payment, error) {
	const op = "memory.ListPaymentsAll"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Payment, len(s.payments))
	copy(out, s.payments)
	return out, nil
}

// RecordPayment строит и вставляет платёж под эксклюзивной блокировкой,
// поэтому платежи одного клиента не видят устаревшую историю.
func (s *Storage) RecordPayment(ctx context.Context, clientID int64, build func([]models.Payment) (models.Payment, error)) (models.Payment, error) {
	const op = "memory.RecordPayment"
	if err := checkCtx(ctx, op); err != nil {
		return models.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[clientID]
	if !ok {
		return models.Payment{}, fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
	}
	p, err := build(s.paymentsOf(clientID))
	if err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := validatePayment(p); err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}

	s.nextPaymentID++
	p.ID = s.nextPaymentID
	p.ClientID = clientID
	s.payments = append(s.payments, p)

	if client.LastDueDate == nil || p.DueAt.After(*client.LastDueDate) {
		due := p.DueAt
		client.LastDueDate = &due
		s.clients[clientID] = client
	}
	return p, nil
}

// CreateClientWithPayment создаёт клиента и его первый платёж.
func (s *Storage) CreateClientWithPayment(ctx context.Context, client models.Client, first models.Payment) (models.Client, models.Payment, error) {
	const op = "memory.CreateClientWithPayment"
	if err := checkCtx(ctx, op); err != nil {
		return models.Client{}, models.Payment{}, err
	}
	if err := validatePayment(first); err != nil {
		return models.Client{}, models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.dni[client.DNI]; exists {
		return models.Client{}, models.Payment{}, fmt.Errorf("%s: dni %s: %w", op, client.DNI, models.ErrDuplicateClient)
	}

	s.nextClientID++
	client.ID = s.nextClientID
	due := first.DueAt
	client.LastDueDate = &due
	s.clients[client.ID] = client
	s.dni[client.DNI] = client.ID

	s.nextPaymentID++
	first.ID = s.nextPaymentID
	first.ClientID = client.ID
	s.payments = append(s.payments, first)
	return client, first, nil
}

// validatePayment повторяет ограничения схемы payments.
func validatePayment(p models.Payment) error {
	if p.MonthsPaid < 1 || !p.DueAt.After(p.PaidAt) {
		return fmt.Errorf("months_paid >= 1 and due_at > paid_at required: %w", models.ErrInvalidInput)
	}
	return nil
}

// InsertAttendance добавляет посещение существующего клиента.
func (s *Storage) InsertAttendance(ctx context.Context, a models.Attendance) error {
	const op = "memory.InsertAttendance"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[a.ClientID]; !ok {
		return fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
	}
	a.Date = dates.Day(a.Date)
	s.attendance = append(s.attendance, a)
	return nil
}

// ListAttendance возвращает посещения с дня from включительно.
func (s *Storage) ListAttendance(ctx context.Context, from time.Time) ([]models.Attendance, error) {
	const op = "memory.ListAttendance"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	from = dates.Day(from)
	var out []models.Attendance
	for _, a := range s.attendance {
		if !a.Date.Before(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddProduct добавляет товар в каталог и возвращает его с присвоенным id.
func (s *Storage) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	const op = "memory.AddProduct"
	if err := checkCtx(ctx, op); err != nil {
		return models.Product{}, err
	}
	if p.Stock < 0 {
		return models.Product{}, fmt.Errorf("%s: negative stock: %w", op, models.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = p
	return p, nil
}

// ListProducts возвращает каталог в порядке id.
func (s *Storage) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "memory.ListProducts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProductStock возвращает текущий остаток товара.
func (s *Storage) GetProductStock(ctx context.Context, productID int64) (int, error) {
	const op = "memory.GetProductStock"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[productID]
	if !ok {
		return 0, fmt.Errorf("%s: %w", op, models.ErrProductNotFound)
	}
	return p.Stock, nil
}

// ConditionalSetStock записывает newStock, только если остаток равен expected.
func (s *Storage) ConditionalSetStock(ctx context.Context, productID int64, expected, newStock int) error {
	const op = "memory.ConditionalSetStock"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if newStock < 0 {
		return fmt.Errorf("%s: negative stock: %w", op, models.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("%s: %w", op, models.ErrProductNotFound)
	}
	if p.Stock != expected {
		return fmt.Errorf("%s: %w", op, models.ErrStockConflict)
	}
	p.Stock = newStock
	s.products[productID] = p
	return nil
}
