package membershipstate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) State(ctx context.Context, clientID int64, asOf time.Time) (models.MembershipState, error) {
	args := m.Called(ctx, clientID, asOf)
	return args.Get(0).(models.MembershipState), args.Error(1)
}

func TestStateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		id             string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "активный абонемент",
			id:   "5",
			setupMock: func(m *MockService) {
				m.On("State", mock.Anything, int64(5), today).
					Return(models.MembershipState{Status: models.StatusActive, DueAt: &due}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"active"`,
		},
		{
			name: "клиент без платежей",
			id:   "6",
			setupMock: func(m *MockService) {
				m.On("State", mock.Anything, int64(6), today).
					Return(models.MembershipState{Status: models.StatusNoPayments}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"no_payments"`,
		},
		{
			name:           "некорректный id",
			id:             "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name: "клиент не найден",
			id:   "9",
			setupMock: func(m *MockService) {
				m.On("State", mock.Anything, int64(9), today).
					Return(models.MembershipState{}, models.ErrClientNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"code":"client_not_found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, clock.Fixed(today))

			req := httptest.NewRequest(http.MethodGet, "/clients/"+tt.id+"/membership"+tt.query, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
