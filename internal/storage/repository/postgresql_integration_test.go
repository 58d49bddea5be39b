//go:build integration

package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/migrations"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.Close()
	})

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(ctx, storage))
	return storage
}

func enrollTestClient(t *testing.T, s *Storage, dni string) models.Client {
	c, _, err := s.CreateClientWithPayment(context.Background(),
		models.Client{FirstName: "Ana", LastName: "Pérez", DNI: dni, Phone: "555", EnrolledAt: day(2024, 1, 10)},
		models.Payment{
			Amount: decimal.NewFromInt(1500), Method: "efectivo",
			PaidAt: day(2024, 1, 10), DueAt: day(2024, 2, 10), MonthsPaid: 1, Period: "2/2024",
		})
	require.NoError(t, err)
	return c
}

func TestIntegration_ClientsAndPayments(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	c := enrollTestClient(t, s, "30111222")

	_, _, err := s.CreateClientWithPayment(ctx,
		models.Client{FirstName: "Otra", LastName: "Persona", DNI: "30111222", EnrolledAt: day(2024, 1, 11)},
		models.Payment{Amount: decimal.NewFromInt(1), Method: "efectivo", PaidAt: day(2024, 1, 11), DueAt: day(2024, 2, 11), MonthsPaid: 1, Period: "2/2024"})
	require.ErrorIs(t, err, models.ErrDuplicateClient)

	got, err := s.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 2, 10), *got.LastDueDate)

	payments, err := s.ListPayments(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(1500)))

	_, err = s.GetClient(ctx, c.ID+100)
	require.ErrorIs(t, err, models.ErrClientNotFound)
}

func TestIntegration_ConcurrentExtensionsSerialise(t *testing.T) {
	s := setupTestDatabase(t)
	c := enrollTestClient(t, s, "1")

	extend := func(history []models.Payment) (models.Payment, error) {
		var latest time.Time
		for _, p := range history {
			if p.DueAt.After(latest) {
				latest = p.DueAt
			}
		}
		due := dates.AddCalendarMonths(latest, 1)
		return models.Payment{
			Amount: decimal.NewFromInt(1500), Method: "efectivo",
			PaidAt: day(2024, 2, 1), DueAt: due, MonthsPaid: 1, Period: "x",
		}, nil
	}

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RecordPayment(context.Background(), c.ID, extend)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	payments, err := s.ListPayments(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, day(2024, 4, 10), payments[2].DueAt)

	got, err := s.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 4, 10), *got.LastDueDate)
}

func TestIntegration_AttendanceAndStock(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	c := enrollTestClient(t, s, "2")

	require.NoError(t, s.InsertAttendance(ctx, models.Attendance{ClientID: c.ID, Date: day(2024, 3, 1)}))
	require.NoError(t, s.InsertAttendance(ctx, models.Attendance{ClientID: c.ID, Date: day(2024, 3, 5)}))
	require.ErrorIs(t, s.InsertAttendance(ctx, models.Attendance{ClientID: c.ID + 100, Date: day(2024, 3, 5)}), models.ErrClientNotFound)

	visits, err := s.ListAttendance(ctx, day(2024, 3, 2))
	require.NoError(t, err)
	require.Len(t, visits, 1)

	p, err := s.AddProduct(ctx, models.Product{Name: "Agua", Price: decimal.NewFromInt(800), Stock: 1, Category: "bebida"})
	require.NoError(t, err)

	require.NoError(t, s.ConditionalSetStock(ctx, p.ID, 1, 0))
	require.ErrorIs(t, s.ConditionalSetStock(ctx, p.ID, 1, 0), models.ErrStockConflict)
	require.ErrorIs(t, s.ConditionalSetStock(ctx, p.ID+100, 1, 0), models.ErrProductNotFound)

	stock, err := s.GetProductStock(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
}
