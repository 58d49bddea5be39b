// Package paymentcreate реализует HTTP-обработчик оплаты или продления
// абонемента клиента.
package paymentcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/params"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service записывает платёж.
type Service interface {
	ApplyPayment(ctx context.Context, clientID int64, req models.DummyPayment, asOf time.Time) (models.Payment, error)
}

// Handler обрабатывает POST /clients/{id}/payments.
type Handler struct {
	log      *slog.Logger
	service  Service
	clock    clock.Clock
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, clk clock.Clock) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		clock:    clk,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оплатить или продлить абонемент
// @Description Добавляет платёж на months месяцев. Действующий абонемент продлевается от текущего срока, истёкший начинается заново с сегодняшнего дня. Сумма передаётся в amount или считается как monthly_price * months.
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path int true "ID клиента"
// @Param request body models.DummyPayment true "Данные платежа"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /clients/{id}/payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.create"
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

	var req models.DummyPayment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	payment, err := h.service.ApplyPayment(r.Context(), id, req, h.clock.Today())
	if err != nil {
		log.Error("failed to apply payment", slog.Int64("client_id", id), sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not apply payment", err))
		return
	}

	log.Info("payment applied", slog.Int64("client_id", id), slog.Int64("payment_id", payment.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(payment))
}
