// Package salecreate реализует HTTP-обработчик продажи товаров магазина.
package salecreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service применяет продажу.
type Service interface {
	ApplySale(ctx context.Context, lines []models.SaleLine) models.SaleResult
}

// Handler обрабатывает POST /sales.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Продажа товаров
// @Description Списывает остатки по строкам корзины. Строки применяются независимо, результат каждой строки возвращается в lines. Если не применена ни одна строка, ответ 409 или статус ошибки первой строки.
// @Tags Shop
// @Accept json
// @Produce json
// @Param request body models.DummySale true "Корзина"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.Response "Ни одна строка не применена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /sales [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sale.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummySale
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

	result := h.service.ApplySale(r.Context(), req.Lines)
	failed := result.Failed()
	log.Info("sale processed",
		slog.String("sale_id", result.SaleID),
		slog.Int("lines", len(result.Lines)),
		slog.Int("failed", len(failed)),
	)

	if !result.Applied() && len(failed) > 0 {
		w.WriteHeader(response.StatusFor(failed[0].Err))
		render.JSON(w, r, response.Response{
			Status: response.StatusError,
			Error:  "no sale line was applied",
			Code:   failed[0].Code,
			Data:   result,
		})
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
