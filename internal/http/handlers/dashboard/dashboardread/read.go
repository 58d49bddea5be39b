// Package dashboardread реализует HTTP-обработчик метрик дашборда.
package dashboardread

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/params"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/services/dashboard"
)

// Service считает метрики дашборда.
type Service interface {
	Metrics(ctx context.Context, asOf time.Time) (dashboard.Metrics, error)
}

// Handler обрабатывает GET /dashboard.
type Handler struct {
	log     *slog.Logger
	service Service
	clock   clock.Clock
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, clk clock.Clock) *Handler {
	return &Handler{
		log:     log,
		service: service,
		clock:   clk,
	}
}

// ServeHTTP godoc
// @Summary Метрики дашборда
// @Description Активные клиенты за 30 дней, новые клиенты за 6 месяцев, посещения за 15 дней и распределение тарифов на дату as_of. Графики, которые не удалось посчитать, перечислены в unavailable.
// @Tags Dashboard
// @Produce json
// @Param as_of query string false "Дата в формате 2006-01-02"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Некорректная дата"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	asOf, err := params.AsOf(r, h.clock)
	if err != nil {
		log.Error("invalid as_of", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FromError("as_of must be in format 2006-01-02", err))
		return
	}

	m, err := h.service.Metrics(r.Context(), asOf)
	if err != nil {
		log.Error("failed to compute dashboard", sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not compute dashboard", err))
		return
	}
	if len(m.Unavailable) > 0 {
		log.Warn("dashboard is partial", slog.Any("unavailable", m.Unavailable))
	}

	render.JSON(w, r, response.OKWithData(m))
}
