// Package paymentlist реализует HTTP-обработчик истории платежей клиента.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/params"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service возвращает историю платежей клиента.
type Service interface {
	History(ctx context.Context, clientID int64) ([]models.Payment, error)
}

// Handler обрабатывает GET /clients/{id}/payments.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История платежей
// @Description Возвращает платежи клиента, новые сроки первыми.
// @Tags Payments
// @Produce json
// @Param id path int true "ID клиента"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Router /clients/{id}/payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.list"
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

	payments, err := h.service.History(r.Context(), id)
	if err != nil {
		log.Error("failed to list payments", slog.Int64("client_id", id), sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not list payments", err))
		return
	}

	log.Info("payments listed", slog.Int64("client_id", id), slog.Int("count", len(payments)))
	render.JSON(w, r, response.OKWithData(payments))
}
