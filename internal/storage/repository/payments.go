package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

const paymentColumns = `id, client_id, amount, method, paid_at, due_at, months_paid, period`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanPayments(rows *sql.Rows) ([]models.Payment, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Amount, &p.Method, &p.PaidAt, &p.DueAt, &p.MonthsPaid, &p.Period); err != nil {
			return nil, err
		}
		p.PaidAt = dates.Day(p.PaidAt)
		p.DueAt = dates.Day(p.DueAt)
		result = append(result, p)
	}
	return result, rows.Err()
}

func listPayments(ctx context.Context, q queryer, clientID int64) ([]models.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE client_id = $1 ORDER BY id`, clientID)
	if err != nil {
		return nil, err
	}
	return scanPayments(rows)
}

func insertPayment(ctx context.Context, q queryer, p models.Payment) (models.Payment, error) {
	if p.MonthsPaid < 1 || !p.DueAt.After(p.PaidAt) {
		return models.Payment{}, fmt.Errorf("months_paid >= 1 and due_at > paid_at required: %w", models.ErrInvalidInput)
	}
	p.PaidAt = dates.Day(p.PaidAt)
	p.DueAt = dates.Day(p.DueAt)

	query := `INSERT INTO payments (client_id, amount, method, paid_at, due_at, months_paid, period)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		p.ClientID, p.Amount, p.Method, p.PaidAt, p.DueAt, p.MonthsPaid, p.Period,
	).Scan(&p.ID)
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// ListPayments возвращает платежи клиента в порядке вставки.
func (s *Storage) ListPayments(ctx context.Context, clientID int64) ([]models.Payment, error) {
	const op = "storage.ListPayments"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	result, err := listPayments(ctx, s.DB, clientID)
	if err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// ListPaymentsAll возвращает все платежи.
func (s *Storage) ListPaymentsAll(ctx context.Context) ([]models.Payment, error) {
	const op = "storage.ListPaymentsAll"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY id`)
	if err != nil {
		return nil, wrap(op, err)
	}
	result, err := scanPayments(rows)
	if err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// RecordPayment добавляет платёж, построенный функцией build по истории клиента.
//
// Строка клиента блокируется (SELECT ... FOR UPDATE) до конца транзакции,
// поэтому два одновременных продления одного клиента выполняются по очереди
// и второе видит платёж первого. Кеш last_due_date только растёт.
func (s *Storage) RecordPayment(ctx context.Context, clientID int64, build func([]models.Payment) (models.Payment, error)) (models.Payment, error) {
	const op = "storage.RecordPayment"
	if err := checkCtx(ctx, op); err != nil {
		return models.Payment{}, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Payment{}, wrap(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM clients WHERE id = $1 FOR UPDATE`, clientID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
		}
		return models.Payment{}, wrap(op, err)
	}

	history, err := listPayments(ctx, tx, clientID)
	if err != nil {
		return models.Payment{}, wrap(op, err)
	}

	p, err := build(history)
	if err != nil {
		return models.Payment{}, fmt.Errorf("%s: %w", op, err)
	}
	p.ClientID = clientID
	if p, err = insertPayment(ctx, tx, p); err != nil {
		return models.Payment{}, wrap(op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE clients SET last_due_date = GREATEST(COALESCE(last_due_date, $2), $2) WHERE id = $1`,
		clientID, p.DueAt)
	if err != nil {
		return models.Payment{}, wrap(op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Payment{}, wrap(op, err)
	}
	return p, nil
}
