// Package clientlist реализует HTTP-обработчик поиска клиентов с вычисленным
// состоянием абонемента.
package clientlist

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
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service описывает поиск клиентов.
type Service interface {
	ListClients(ctx context.Context, filter models.ClientFilter, asOf time.Time) ([]models.ClientWithState, error)
}

// Handler обрабатывает GET /clients.
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
// @Summary Список клиентов
// @Description Возвращает клиентов с состоянием абонемента на дату as_of. Фильтры: status (active, expired, no_payments) и q (имя, фамилия или DNI).
// @Tags Clients
// @Produce json
// @Param status query string false "Состояние абонемента"
// @Param q query string false "Строка поиска"
// @Param as_of query string false "Дата в формате 2006-01-02"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /clients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.list"
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

	filter := models.ClientFilter{
		Term:   r.URL.Query().Get("q"),
		Status: models.MembershipStatus(r.URL.Query().Get("status")),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		log.Error("invalid status filter", slog.String("status", string(filter.Status)))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FromError("status must be one of active, expired, no_payments", models.ErrInvalidInput))
		return
	}

	clients, err := h.service.ListClients(r.Context(), filter, asOf)
	if err != nil {
		log.Error("failed to list clients", sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not list clients", err))
		return
	}

	log.Info("clients listed", slog.Int("count", len(clients)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"as_of":   asOf.Format(time.DateOnly),
		"clients": clients,
	}))
}
