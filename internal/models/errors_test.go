package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped invalid input", err: fmt.Errorf("op: %w", ErrInvalidInput), want: "invalid_input"},
		{name: "product not found", err: ErrProductNotFound, want: "product_not_found"},
		{name: "insufficient stock", err: fmt.Errorf("stock.ApplySale: %w", ErrInsufficientStock), want: "insufficient_stock"},
		{name: "store conflict", err: ErrStockConflict, want: "concurrency_conflict"},
		{name: "retries exhausted", err: ErrConcurrencyConflict, want: "concurrency_conflict"},
		{name: "unavailable", err: fmt.Errorf("a: %w: %w", ErrStoreUnavailable, errors.New("dial tcp")), want: "store_unavailable"},
		{name: "unknown", err: errors.New("boom"), want: "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

func TestSaleResult(t *testing.T) {
	res := SaleResult{Lines: []LineResult{
		{ProductID: 1, OK: true},
		{ProductID: 2, OK: false, Code: "insufficient_stock"},
	}}
	assert.True(t, res.Applied())
	assert.Len(t, res.Failed(), 1)
	assert.Equal(t, int64(2), res.Failed()[0].ProductID)

	assert.False(t, SaleResult{}.Applied())
}

func TestMembershipStatus_Valid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusExpired.Valid())
	assert.True(t, StatusNoPayments.Valid())
	assert.False(t, MembershipStatus("Activo").Valid())
}
