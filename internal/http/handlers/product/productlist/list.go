// Package productlist реализует HTTP-обработчик каталога магазина.
// Категории из хранилища приводятся к витринным значениям здесь, на границе.
package productlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-membership-engine/internal/http/response"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/category"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/sl"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// Service возвращает каталог товаров.
type Service interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Handler обрабатывает GET /products.
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
// @Summary Каталог товаров
// @Description Возвращает товары с нормализованными категориями. Параметр category отбирает одну категорию, Todos или пустое значение возвращает всё.
// @Tags Shop
// @Produce json
// @Param category query string false "Категория"
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	products, err := h.service.Products(r.Context())
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		w.WriteHeader(response.StatusFor(err))
		render.JSON(w, r, response.FromError("could not list products", err))
		return
	}

	want := category.Normalize(r.URL.Query().Get("category"))
	result := make([]models.Product, 0, len(products))
	for _, p := range products {
		p.Category = category.Normalize(p.Category)
		if want != category.All && p.Category != want {
			continue
		}
		result = append(result, p)
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"categories": category.List(),
		"products":   result,
	}))
}
