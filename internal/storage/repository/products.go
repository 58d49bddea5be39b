package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// AddProduct добавляет товар в каталог.
func (s *Storage) AddProduct(ctx context.Context, p models.Product) (models.Product, error) {
	const op = "storage.AddProduct"
	if err := checkCtx(ctx, op); err != nil {
		return models.Product{}, err
	}
	if p.Stock < 0 {
		return models.Product{}, fmt.Errorf("%s: negative stock: %w", op, models.ErrInvalidInput)
	}

	query := `INSERT INTO products (name, description, price, stock, category)
			  VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := s.DB.QueryRowContext(ctx, query, p.Name, p.Description, p.Price, p.Stock, p.Category).Scan(&p.ID)
	if err != nil {
		return models.Product{}, wrap(op, err)
	}
	return p, nil
}

// ListProducts возвращает каталог в порядке id. Категории отдаются как есть.
func (s *Storage) ListProducts(ctx context.Context) ([]models.Product, error) {
	const op = "storage.ListProducts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, description, price, stock, category FROM products ORDER BY id`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// GetProductStock возвращает текущий остаток товара.
func (s *Storage) GetProductStock(ctx context.Context, productID int64) (int, error) {
	const op = "storage.GetProductStock"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var stock int
	err := s.DB.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrProductNotFound)
		}
		return 0, wrap(op, err)
	}
	return stock, nil
}

// ConditionalSetStock записывает newStock, только если остаток всё ещё равен
// expected. Проигранная гонка возвращает models.ErrStockConflict.
func (s *Storage) ConditionalSetStock(ctx context.Context, productID int64, expected, newStock int) error {
	const op = "storage.ConditionalSetStock"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if newStock < 0 {
		return fmt.Errorf("%s: negative stock: %w", op, models.ErrInvalidInput)
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE products SET stock = $3 WHERE id = $1 AND stock = $2`,
		productID, expected, newStock)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 1 {
		return nil
	}

	var exists bool
	err = s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return wrap(op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, models.ErrProductNotFound)
	}
	return fmt.Errorf("%s: %w", op, models.ErrStockConflict)
}
