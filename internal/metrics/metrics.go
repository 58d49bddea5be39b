// Package metrics собирает метрики Prometheus движка абонементов.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gym"

var (
	// Registry содержит коллекторы приложения.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	paymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "billing",
			Name:      "payments_recorded_total",
			Help:      "Payments written by the rollover engine.",
		},
		[]string{"kind"},
	)

	saleLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "sale_lines_total",
			Help:      "Sale lines processed, by outcome code.",
		},
		[]string{"outcome"},
	)

	stockConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "conflicts_total",
			Help:      "Lost compare-and-swap attempts on product stock.",
		},
	)

	dashboardReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "reads_total",
			Help:      "Dashboard reads by source.",
		},
		[]string{"source"},
	)

	notificationsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "messages_total",
			Help:      "Expiry notifications by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		paymentsRecorded,
		saleLines,
		stockConflicts,
		dashboardReads,
		notificationsPublished,
	)
}

// Handler отдаёт метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler считает запросы и их длительность по шаблону маршрута chi.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordPayment учитывает записанный платёж: payment, extension или enrollment.
func RecordPayment(kind string) {
	paymentsRecorded.WithLabelValues(kind).Inc()
}

// RecordSaleLine учитывает обработанную строку продажи.
func RecordSaleLine(outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	saleLines.WithLabelValues(outcome).Inc()
}

// RecordStockConflict учитывает проигранную гонку за остаток.
func RecordStockConflict() {
	stockConflicts.Inc()
}

// RecordDashboardRead учитывает чтение дашборда: cache, computed или degraded.
func RecordDashboardRead(source string) {
	dashboardReads.WithLabelValues(source).Inc()
}

// RecordNotification учитывает попытку публикации уведомления.
func RecordNotification(success bool) {
	result := "error"
	if success {
		result = "ok"
	}
	notificationsPublished.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
