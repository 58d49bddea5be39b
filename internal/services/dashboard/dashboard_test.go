package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListClients(ctx context.Context) ([]models.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Client), args.Error(1)
}

func (m *RepoMock) ListPaymentsAll(ctx context.Context) ([]models.Payment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *RepoMock) ListAttendance(ctx context.Context, from time.Time) ([]models.Attendance, error) {
	args := m.Called(ctx, from)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendance), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_Metrics(t *testing.T) {
	asOf := day(2024, time.March, 15)
	from := day(2024, time.March, 1)
	key := "dashboard:2024-03-15"
	clients := []models.Client{{ID: 1, EnrolledAt: day(2024, time.March, 2)}}
	payments := []models.Payment{payment(1, day(2024, time.March, 2), day(2024, time.April, 2), 1)}
	attendance := []models.Attendance{{ClientID: 1, Date: asOf}}
	storeErr := errors.New("connection refused")

	tests := []struct {
		name            string
		setupMocks      func(r *RepoMock, c *CacheMock)
		wantErr         error
		wantUnavailable []string
		check           func(t *testing.T, m Metrics)
	}{
		{
			name: "computed and cached",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
				r.On("ListClients", mock.Anything).Return(clients, nil).Once()
				r.On("ListPaymentsAll", mock.Anything).Return(payments, nil).Once()
				r.On("ListAttendance", mock.Anything, from).Return(attendance, nil).Once()
				c.On("Set", mock.Anything, key, mock.AnythingOfType("dashboard.Metrics"), time.Minute).Return(nil).Once()
			},
			check: func(t *testing.T, m Metrics) {
				assert.Len(t, m.ActiveClients, ActiveWindowDays)
				assert.Len(t, m.NewClients, NewClientsMonths)
				assert.Len(t, m.Attendance, AttendanceWindowDays)
				assert.Equal(t, Totals{ActiveToday: 1, NewThisMonth: 1, AttendanceToday: 1, PlanTypes: 1}, m.Totals)
			},
		},
		{
			name: "cache hit skips the store",
			setupMocks: func(_ *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(true, nil).Once().Run(func(args mock.Arguments) {
					out := args.Get(2).(*Metrics)
					*out = Metrics{AsOf: "2024-03-15", Totals: Totals{ActiveToday: 42}}
				})
			},
			check: func(t *testing.T, m Metrics) {
				assert.Equal(t, 42, m.Totals.ActiveToday)
			},
		},
		{
			name: "cache error falls back to store",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(false, errors.New("redis down")).Once()
				r.On("ListClients", mock.Anything).Return(clients, nil).Once()
				r.On("ListPaymentsAll", mock.Anything).Return(payments, nil).Once()
				r.On("ListAttendance", mock.Anything, from).Return(attendance, nil).Once()
				c.On("Set", mock.Anything, key, mock.Anything, time.Minute).Return(errors.New("redis down")).Once()
			},
			check: func(t *testing.T, m Metrics) {
				assert.Equal(t, 1, m.Totals.ActiveToday)
			},
		},
		{
			name: "payments unavailable degrades",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
				r.On("ListClients", mock.Anything).Return(clients, nil).Once()
				r.On("ListPaymentsAll", mock.Anything).Return(nil, storeErr).Once()
				r.On("ListAttendance", mock.Anything, from).Return(attendance, nil).Once()
			},
			wantUnavailable: []string{SeriesActiveClients, SeriesMembershipMix},
			check: func(t *testing.T, m Metrics) {
				assert.Nil(t, m.ActiveClients)
				assert.Nil(t, m.MembershipMix)
				assert.Len(t, m.NewClients, NewClientsMonths)
				assert.Len(t, m.Attendance, AttendanceWindowDays)
				assert.Equal(t, 0, m.Totals.ActiveToday)
				assert.Equal(t, 1, m.Totals.AttendanceToday)
			},
		},
		{
			name: "attendance unavailable degrades",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
				r.On("ListClients", mock.Anything).Return(nil, storeErr).Once()
				r.On("ListPaymentsAll", mock.Anything).Return(payments, nil).Once()
				r.On("ListAttendance", mock.Anything, from).Return(nil, storeErr).Once()
			},
			wantUnavailable: []string{SeriesNewClients, SeriesAttendance},
			check: func(t *testing.T, m Metrics) {
				assert.Len(t, m.ActiveClients, ActiveWindowDays)
			},
		},
		{
			name: "all reads fail",
			setupMocks: func(r *RepoMock, c *CacheMock) {
				c.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
				r.On("ListClients", mock.Anything).Return(nil, storeErr).Once()
				r.On("ListPaymentsAll", mock.Anything).Return(nil, storeErr).Once()
				r.On("ListAttendance", mock.Anything, from).Return(nil, storeErr).Once()
			},
			wantErr: models.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			c := new(CacheMock)
			tt.setupMocks(repo, c)
			svc := NewService(repo, c, time.Minute, newNoopLogger())

			m, err := svc.Metrics(context.Background(), asOf.Add(10*time.Hour))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, storeErr)
				c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUnavailable, m.Unavailable)
			if len(tt.wantUnavailable) > 0 {
				c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			if tt.check != nil {
				tt.check(t, m)
			}
			repo.AssertExpectations(t)
			c.AssertExpectations(t)
		})
	}
}

func TestService_Metrics_NilCache(t *testing.T) {
	repo := new(RepoMock)
	repo.On("ListClients", mock.Anything).Return([]models.Client{}, nil).Once()
	repo.On("ListPaymentsAll", mock.Anything).Return([]models.Payment{}, nil).Once()
	repo.On("ListAttendance", mock.Anything, mock.Anything).Return([]models.Attendance{}, nil).Once()

	m, err := NewService(repo, nil, time.Minute, newNoopLogger()).Metrics(context.Background(), day(2024, time.March, 15))
	require.NoError(t, err)
	assert.Equal(t, repeat(0, AttendanceWindowDays), values(m.Attendance))
	assert.Empty(t, m.MembershipMix)
}
