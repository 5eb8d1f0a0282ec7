package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odyssey-erp/admindash/internal/shared"
)

// Metrics collects the Prometheus metrics of the dashboard.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeOpsTotal   *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
}

// NewMetrics initialises the registry and the base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admindash_http_requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admindash_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	storeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "admindash_store_operations_total",
		Help: "Entity store calls by kind, operation and outcome.",
	}, []string{"kind", "op", "outcome"})
	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "admindash_store_operation_duration_seconds",
		Help:    "Entity store call duration by kind and operation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind", "op"})
	registry.MustRegister(requests, duration, storeOps, storeDuration)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		storeOpsTotal:   storeOps,
		storeDuration:   storeDuration,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveStore records one store call.
func (m *Metrics) ObserveStore(kind, op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeOpsTotal.WithLabelValues(kind, op, Outcome(err)).Inc()
	m.storeDuration.WithLabelValues(kind, op).Observe(elapsed.Seconds())
}

// Outcome labels err with its store error kind.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrValidation):
		return "invalid"
	case errors.Is(err, shared.ErrTimeout):
		return "timeout"
	case errors.Is(err, shared.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
