// Package stock списывает остатки товаров при продаже без потерянных обновлений.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/metrics"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// DefaultMaxRetries: число попыток условной записи остатка по умолчанию.
const DefaultMaxRetries = 5

// Repository определяет методы хранилища для склада.
type Repository interface {
	// GetProductStock возвращает текущий остаток или models.ErrProductNotFound.
	GetProductStock(ctx context.Context, productID int64) (int, error)
	// ConditionalSetStock записывает newStock, только если остаток всё ещё равен
	// expected. Иначе возвращает models.ErrStockConflict.
	ConditionalSetStock(ctx context.Context, productID int64, expected, newStock int) error
	// ListProducts возвращает каталог.
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Ledger применяет продажи к остаткам.
type Ledger struct {
	repo       Repository
	maxRetries int
	log        *slog.Logger
}

// NewLedger создает Ledger. maxRetries < 1 заменяется на DefaultMaxRetries.
func NewLedger(repo Repository, maxRetries int, log *slog.Logger) *Ledger {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	return &Ledger{
		repo:       repo,
		maxRetries: maxRetries,
		log:        log,
	}
}

// Products возвращает каталог товаров.
func (l *Ledger) Products(ctx context.Context) ([]models.Product, error) {
	const op = "stock.Products"
	products, err := l.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// ApplySale применяет строки продажи по порядку и независимо друг от друга.
// Ошибка строки не прерывает остальные, поэтому результат каждой строки
// нужно проверять отдельно.
func (l *Ledger) ApplySale(ctx context.Context, lines []models.SaleLine) models.SaleResult {
	const op = "stock.ApplySale"
	result := models.SaleResult{
		SaleID: uuid.NewString(),
		Lines:  make([]models.LineResult, 0, len(lines)),
	}
	log := l.log.With(slog.String("op", op), slog.String("sale_id", result.SaleID))

	for _, line := range lines {
		lr := models.LineResult{ProductID: line.ProductID, Quantity: line.Quantity}
		remaining, err := l.applyLine(ctx, line)
		if err != nil {
			lr.Err = err
			lr.Code = models.Code(err)
			lr.Error = err.Error()
			log.Warn("sale line rejected",
				slog.Int64("product_id", line.ProductID),
				slog.Int("quantity", line.Quantity),
				sl.Err(err),
			)
		} else {
			lr.OK = true
			lr.RemainingStock = remaining
		}
		metrics.RecordSaleLine(lr.Code)
		result.Lines = append(result.Lines, lr)
	}

	log.Info("sale applied", slog.Int("lines", len(lines)), slog.Int("failed", len(result.Failed())))
	return result
}

// applyLine списывает количество одной строки через сравнение и обмен:
// прочитать остаток, проверить достаточность, записать условно.
// При конфликте чтение повторяется не более maxRetries раз.
func (l *Ledger) applyLine(ctx context.Context, line models.SaleLine) (int, error) {
	const op = "stock.applyLine"
	if line.ProductID <= 0 || line.Quantity < 1 {
		return 0, fmt.Errorf("%s: product id and quantity must be positive: %w", op, models.ErrInvalidInput)
	}

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		current, err := l.repo.GetProductStock(ctx, line.ProductID)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		if line.Quantity > current {
			return current, fmt.Errorf("%s: requested %d, available %d: %w", op, line.Quantity, current, models.ErrInsufficientStock)
		}

		next := current - line.Quantity
		err = l.repo.ConditionalSetStock(ctx, line.ProductID, current, next)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, models.ErrStockConflict) {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		metrics.RecordStockConflict()
	}
	return 0, fmt.Errorf("%s: product %d after %d attempts: %w", op, line.ProductID, l.maxRetries, models.ErrConcurrencyConflict)
}
