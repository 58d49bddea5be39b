package models

import "github.com/shopspring/decimal"

// Product: товар магазина при зале. Движок меняет только Stock.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}
