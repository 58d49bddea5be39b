package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipStatus: вычисляемое состояние абонемента клиента.
type MembershipStatus string

const (
	// StatusNoPayments: у клиента нет ни одного платежа. Это не ошибка.
	StatusNoPayments MembershipStatus = "no_payments"
	// StatusActive: последний срок действия не раньше даты запроса.
	StatusActive MembershipStatus = "active"
	// StatusExpired: последний срок действия уже прошёл.
	StatusExpired MembershipStatus = "expired"
)

// Valid проверяет, что значение входит в список известных состояний.
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusNoPayments, StatusActive, StatusExpired:
		return true
	}
	return false
}

// MembershipState: производное состояние абонемента, никогда не хранится
// как источник истины и всегда пересчитывается из платежей.
type MembershipState struct {
	Status        MembershipStatus `json:"status"`
	DueAt         *time.Time       `json:"due_at,omitempty"`
	LatestPayment *LatestPayment   `json:"latest_payment,omitempty"`
}

// LatestPayment: сведения о последнем платеже для отображения.
type LatestPayment struct {
	PaymentID int64           `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
	Plan      string          `json:"plan"`
}

// ExpiringMembership: сообщение об абонементе, который заканчивается завтра.
type ExpiringMembership struct {
	ClientID  int64     `json:"client_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	DueAt     time.Time `json:"due_at"`
}
