// Package metrics provides Prometheus instrumentation for the booking engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RateTicksTotal counts completed price-update steps.
	RateTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goldmandi_rate_ticks_total",
		Help: "Total number of completed rate ticks",
	})

	// RatePrice tracks the current simulated price per metal, in the
	// metal's quoted unit.
	RatePrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "goldmandi_rate_price",
		Help: "Current simulated price in rupees per quoted unit",
	}, []string{"metal"})

	// BookingsTotal counts confirmed bookings, partitioned by metal.
	BookingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldmandi_bookings_total",
		Help: "Total number of confirmed bookings",
	}, []string{"metal"})

	// BookingValue is a histogram of confirmed booking totals in rupees.
	BookingValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "goldmandi_booking_value_rupees",
		Help:    "Total value of confirmed bookings in rupees",
		Buckets: []float64{1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000},
	})

	// ValidationFailures counts rejected booking fields, partitioned by field.
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldmandi_validation_failures_total",
		Help: "Booking submissions rejected per field",
	}, []string{"field"})

	// PersistenceFailures counts swallowed store errors, partitioned by
	// operation. In-memory state stays authoritative when these fire.
	PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldmandi_persistence_failures_total",
		Help: "Store operations that failed and were swallowed",
	}, []string{"op"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "goldmandi_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "goldmandi_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goldmandi_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
