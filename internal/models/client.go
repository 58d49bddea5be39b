// Package models содержит доменные структуры движка абонементов:
// клиентов, платежи, посещения, товары магазина и производные состояния,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client представляет клиента спортзала.
// EnrolledAt задаётся один раз при регистрации и больше не меняется.
// LastDueDate: денормализованный кеш последней даты окончания абонемента,
// носит справочный характер: источник истины: платежи клиента.
type Client struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DNI         string     `json:"dni"`
	Phone       string     `json:"phone"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	LastDueDate *time.Time `json:"last_due_date,omitempty"`
}

// DummyClient используется для приёма данных регистрации из JSON-запроса.
// Вместе с клиентом регистрируется первый платёж за абонемент.
type DummyClient struct {
	FirstName string          `json:"first_name" validate:"required"`
	LastName  string          `json:"last_name" validate:"required"`
	DNI       string          `json:"dni" validate:"required,numeric"`
	Phone     string          `json:"phone" validate:"required"`
	Months    int             `json:"months" validate:"required,gte=1"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" validate:"required"`
}

// ClientWithState: клиент вместе с вычисленным состоянием абонемента.
type ClientWithState struct {
	Client
	Membership MembershipState `json:"membership"`
}
