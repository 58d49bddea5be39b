package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment: запись об оплате абонемента. После записи не изменяется:
// продление создаёт новую строку, а не правит существующую.
// PaidAt и DueAt: календарные даты без времени, DueAt включительно.
type Payment struct {
	ID         int64           `json:"id"`
	ClientID   int64           `json:"client_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	PaidAt     time.Time       `json:"paid_at"`
	DueAt      time.Time       `json:"due_at"`
	MonthsPaid int             `json:"months_paid"`
	Period     string          `json:"period"`
}

// DummyPayment используется для приёма платежа или продления из JSON-запроса.
// Если вместо Amount передан MonthlyPrice, итоговая сумма считается как
// MonthlyPrice * Months.
type DummyPayment struct {
	Months       int              `json:"months" validate:"required,gte=1"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	MonthlyPrice *decimal.Decimal `json:"monthly_price,omitempty"`
	Method       string           `json:"method" validate:"required"`
}
