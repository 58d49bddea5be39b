// Package attendancecreate реализует HTTP-обработчик отметки о посещении.
package attendancecreate

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
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service записывает посещение.
type Service interface {
	RecordAttendance(ctx context.Context, a models.Attendance, asOf time.Time) (models.Attendance, error)
}

// Handler обрабатывает POST /attendance.
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
// @Summary Отметить посещение
// @Description Добавляет отметку о посещении клиента. Без даты используется сегодняшний день, будущие даты отклоняются.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param request body models.DummyAttendance true "Посещение"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /attendance [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAttendance
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

	a := models.Attendance{ClientID: req.ClientID}
	if req.Date != "" {
		day, err := dates.ParseDay(req.Date)
		if err != nil {
			log.Error("invalid date", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.FromError("date must be in format 2006-01-02", models.ErrInvalidInput))
			return
		}
		a.Date = day
	}

	saved, err := h.service.RecordAttendance(r.Context(), a, h.clock.Today())
	if err != nil {
		log.Error("failed to record attendance", slog.Int64("client_id", req.ClientID), sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not record attendance", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"client_id": saved.ClientID,
		"date":      dates.Format(saved.Date),
	}))
}
