// Package membershipstate реализует HTTP-обработчик состояния абонемента клиента.
package membershipstate

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

// Service вычисляет состояние абонемента.
type Service interface {
	State(ctx context.Context, clientID int64, asOf time.Time) (models.MembershipState, error)
}

// Handler обрабатывает GET /clients/{id}/membership.
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
// @Summary Состояние абонемента
// @Description Вычисляет состояние абонемента клиента на дату as_of по его платежам. Клиент без платежей получает no_payments.
// @Tags Memberships
// @Produce json
// @Param id path int true "ID клиента"
// @Param as_of query string false "Дата в формате 2006-01-02"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Некорректные параметры"
// @Router /clients/{id}/membership [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.state"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := params.ID(r, "id")
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.FromError("failed to decode id from url", err))
		return
	}
	asOf, err := params.AsOf(r, h.clock)
	if err != nil {
		log.Error("invalid as_of", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.FromError("as_of must be in format 2006-01-02", err))
		return
	}

	state, err := h.service.State(r.Context(), id, asOf)
	if err != nil {
		log.Error("failed to compute membership state", slog.Int64("client_id", id), sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not compute membership state", err))
		return
	}

	render.JSON(w, r, response.OKWithData(state))
}
