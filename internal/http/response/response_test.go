package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("op: %w", models.ErrInvalidInput), want: http.StatusUnprocessableEntity},
		{err: models.ErrClientNotFound, want: http.StatusNotFound},
		{err: models.ErrProductNotFound, want: http.StatusNotFound},
		{err: models.ErrDuplicateClient, want: http.StatusConflict},
		{err: models.ErrConcurrencyConflict, want: http.StatusConflict},
		{err: fmt.Errorf("op: %w: %w", models.ErrStoreUnavailable, errors.New("dial")), want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestOKWithData(t *testing.T) {
	r := OKWithData(map[string]int{"id": 1})
	assert.Equal(t, StatusOK, r.Status)
	assert.Empty(t, r.Error)
}

func TestFromError(t *testing.T) {
	r := FromError("client not found", models.ErrClientNotFound)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "client_not_found", r.Code)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		DNI    string `validate:"required,numeric"`
		Months int    `validate:"gte=1"`
	}
	err := validator.New().Struct(payload{DNI: "12a", Months: 0})
	require.Error(t, err)

	r := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, r.Status)
	assert.Contains(t, r.Error, "field DNI can contain only numbers")
	assert.Contains(t, r.Error, "field Months must be at least 1")
	assert.Equal(t, "invalid_input", r.Code)
}
