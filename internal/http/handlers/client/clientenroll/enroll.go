// Package clientenroll реализует HTTP-обработчик регистрации клиента
// вместе с первым платежом.
package clientenroll

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

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service описывает регистрацию клиента.
type Service interface {
	Enroll(ctx context.Context, req models.DummyClient, asOf time.Time) (models.ClientWithState, error)
}

// Handler обрабатывает POST /clients.
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
// @Summary Зарегистрировать клиента
// @Description Создает клиента и его первый платёж. Срок абонемента отсчитывается от сегодняшнего дня.
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body models.DummyClient true "Данные клиента и первого платежа"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Клиент с таким DNI уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /clients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.client.enroll"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyClient
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

	client, err := h.service.Enroll(r.Context(), req, h.clock.Today())
	if err != nil {
		log.Error("failed to enroll client", sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not enroll client", err))
		return
	}

	log.Info("client enrolled", slog.Int64("client_id", client.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(client))
}
