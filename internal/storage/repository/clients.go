package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

const clientColumns = `id, first_name, last_name, dni, phone, enrolled_at, last_due_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (models.Client, error) {
	var (
		c       models.Client
		lastDue sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.DNI, &c.Phone, &c.EnrolledAt, &lastDue); err != nil {
		return models.Client{}, err
	}
	c.EnrolledAt = dates.Day(c.EnrolledAt)
	if lastDue.Valid {
		due := dates.Day(lastDue.Time)
		c.LastDueDate = &due
	}
	return c, nil
}

// GetClient возвращает клиента по id.
func (s *Storage) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	const op = "storage.GetClient"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrClientNotFound)
		}
		return nil, wrap(op, err)
	}
	return &c, nil
}

// ListClients возвращает всех клиентов в порядке id.
func (s *Storage) ListClients(ctx context.Context) ([]models.Client, error) {
	const op = "storage.ListClients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// CreateClientWithPayment регистрирует клиента вместе с первым платежом
// в одной транзакции: клиент без платежа не появляется.
func (s *Storage) CreateClientWithPayment(ctx context.Context, client models.Client, first models.Payment) (models.Client, models.Payment, error) {
	const op = "storage.CreateClientWithPayment"
	if err := checkCtx(ctx, op); err != nil {
		return models.Client{}, models.Payment{}, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Client{}, models.Payment{}, wrap(op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	client.EnrolledAt = dates.Day(client.EnrolledAt)
	due := dates.Day(first.DueAt)
	client.LastDueDate = &due

	query := `INSERT INTO clients (first_name, last_name, dni, phone, enrolled_at, last_due_date)
			  VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err = tx.QueryRowContext(ctx, query,
		client.FirstName, client.LastName, client.DNI, client.Phone, client.EnrolledAt, due,
	).Scan(&client.ID)
	if err != nil {
		return models.Client{}, models.Payment{}, wrap(op, err)
	}

	first.ClientID = client.ID
	if first, err = insertPayment(ctx, tx, first); err != nil {
		return models.Client{}, models.Payment{}, wrap(op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Client{}, models.Payment{}, wrap(op, err)
	}
	return client, first, nil
}
