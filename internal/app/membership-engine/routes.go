package membershipengine

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gym-membership-engine/internal/config"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/attendance/attendancecreate"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/client/clientenroll"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/client/clientlist"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/dashboard/dashboardread"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/health"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/membership/membershipstate"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/product/productlist"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/handlers/sale/salecreate"
	"github.com/magabrotheeeer/gym-membership-engine/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-membership-engine/internal/lib/clock"
	"github.com/magabrotheeeer/gym-membership-engine/internal/metrics"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, clk clock.Clock, limit config.RateLimit) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.InstrumentHandler,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limit))

		r.Get("/health", health.New(logger, s.Store).ServeHTTP)

		r.Get("/clients", clientlist.New(logger, s.Membership, clk).ServeHTTP)
		r.Post("/clients", clientenroll.New(logger, s.Membership, clk).ServeHTTP)
		r.Get("/clients/{id}/membership", membershipstate.New(logger, s.Membership, clk).ServeHTTP)
		r.Get("/clients/{id}/payments", paymentlist.New(logger, s.Membership).ServeHTTP)
		r.Post("/clients/{id}/payments", paymentcreate.New(logger, s.Membership, clk).ServeHTTP)

		r.Post("/attendance", attendancecreate.New(logger, s.Membership, clk).ServeHTTP)
		r.Get("/dashboard", dashboardread.New(logger, s.Dashboard, clk).ServeHTTP)

		r.Get("/products", productlist.New(logger, s.Stock).ServeHTTP)
		r.Post("/sales", salecreate.New(logger, s.Stock).ServeHTTP)
	})

	r.Handle("/metrics", metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
