package clientenroll

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Enroll(ctx context.Context, req models.DummyClient, asOf time.Time) (models.ClientWithState, error) {
	args := m.Called(ctx, req, asOf)
	return args.Get(0).(models.ClientWithState), args.Error(1)
}

func TestEnrollHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	valid := `{"first_name":"Ana","last_name":"Pérez","dni":"30111222","phone":"555","months":1,"amount":"1500","method":"efectivo"}`
	wantReq := models.DummyClient{
		FirstName: "Ana", LastName: "Pérez", DNI: "30111222", Phone: "555",
		Months: 1, Amount: decimal.NewFromInt(1500), Method: "efectivo",
	}

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Enroll", mock.Anything, mock.MatchedBy(func(req models.DummyClient) bool {
					return req.DNI == wantReq.DNI && req.Amount.Equal(wantReq.Amount) && req.Months == 1
				}), today).Return(models.ClientWithState{Client: models.Client{ID: 7, FirstName: "Ana"}}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":7`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"first_name":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name:           "нулевое число месяцев",
			body:           `{"first_name":"Ana","last_name":"Pérez","dni":"30111222","phone":"555","months":0,"method":"efectivo"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Months is a required field`,
		},
		{
			name: "повторный DNI",
			body: valid,
			setupMock: func(m *MockService) {
				m.On("Enroll", mock.Anything, mock.Anything, today).
					Return(models.ClientWithState{}, models.ErrDuplicateClient)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"code":"duplicate_client"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, clock.Fixed(today))
			req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
