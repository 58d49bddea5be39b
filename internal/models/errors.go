package models

import "errors"

// Ошибки движка. Проверяются через errors.Is.
var (
	// ErrInvalidInput: некорректные входные данные (месяцев меньше 1, неверная дата и т.п.).
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable: хранилище недоступно, операцию можно повторить целиком.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrClientNotFound: клиент с таким id не найден.
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicateClient: клиент с таким DNI уже зарегистрирован.
	ErrDuplicateClient = errors.New("client already exists")
	// ErrProductNotFound: товар с таким id не найден.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock: на складе меньше товара, чем требуется.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStockConflict: условная запись остатка проиграла гонку: остаток изменился после чтения.
	ErrStockConflict = errors.New("stock changed concurrently")
	// ErrConcurrencyConflict: исчерпаны повторы после конфликтов записи остатка.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// Code возвращает машиночитаемый код ошибки для ответов API.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrClientNotFound):
		return "client_not_found"
	case errors.Is(err, ErrDuplicateClient):
		return "duplicate_client"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrConcurrencyConflict), errors.Is(err, ErrStockConflict):
		return "concurrency_conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
