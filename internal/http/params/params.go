// Package params разбирает общие параметры запросов: id из URL и дату as_of.
package params

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/dates"
	"github.com/magabrotheeeer/gym-membership-engine/internal/models"
)

// ID читает положительный целый параметр пути name.
func ID(r *http.Request, name string) (int64, error) {
	const op = "params.ID"
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s: %s: %w", op, name, models.ErrInvalidInput)
	}
	return id, nil
}

// AsOf возвращает дату из параметра as_of (2006-01-02) или сегодняшнюю дату.
func AsOf(r *http.Request, clk clock.Clock) (time.Time, error) {
	const op = "params.AsOf"
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return clk.Today(), nil
	}
	day, err := dates.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidInput, err)
	}
	return dates.Day(day), nil
}
