package dashboardread

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/dashboard"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Metrics(ctx context.Context, asOf time.Time) (dashboard.Metrics, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(dashboard.Metrics), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	today := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "полные метрики",
			url:  "/dashboard",
			setupMock: func(m *MockService) {
				m.On("Metrics", mock.Anything, today).Return(dashboard.Metrics{
					AsOf:          "2024-03-14",
					MembershipMix: []dashboard.Point{{Label: "Mensual", Value: 3}},
					Totals:        dashboard.Totals{ActiveToday: 3},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"label":"Mensual","value":3`,
		},
		{
			name: "частичные метрики",
			url:  "/dashboard?as_of=2024-02-01",
			setupMock: func(m *MockService) {
				m.On("Metrics", mock.Anything, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)).Return(dashboard.Metrics{
					AsOf:        "2024-02-01",
					Unavailable: []string{dashboard.SeriesAttendance},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"unavailable":["attendance"]`,
		},
		{
			name: "хранилище недоступно",
			url:  "/dashboard",
			setupMock: func(m *MockService) {
				m.On("Metrics", mock.Anything, today).
					Return(dashboard.Metrics{}, fmt.Errorf("dashboard.Metrics: %w", models.ErrStoreUnavailable))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"code":"store_unavailable"`,
		},
		{
			name:           "некорректная дата",
			url:            "/dashboard?as_of=yesterday",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"code":"invalid_input"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			New(logger, mockService, clock.Fixed(today)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
