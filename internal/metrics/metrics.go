// Package metrics provides Prometheus instrumentation for the listing
// metrics service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atmx/listing-metrics/internal/model"
)

var (
	// ListingsTotal counts listing mutations, partitioned by operation
	// (create, update, delete).
	ListingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_mutations_total",
		Help: "Total number of listing mutations",
	}, []string{"op"})

	// InputFallbacks counts fields that were non-blank but degraded to zero
	// (or truncated) under the lenient input policy.
	InputFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_input_fallbacks_total",
		Help: "Non-blank fields that did not parse cleanly and were coerced",
	}, []string{"field"})

	// ListingCount tracks the size of the listing collection.
	ListingCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listings_count",
		Help: "Number of listings in the collection",
	})

	// TotalGrossProfit tracks the portfolio's summed gross profit.
	TotalGrossProfit = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listings_total_gross_profit",
		Help: "Sum of gross profit across all listings",
	})

	// AverageMargin tracks the unweighted mean margin ratio.
	AverageMargin = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listings_average_margin_ratio",
		Help: "Unweighted mean margin ratio across listings",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listings_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listings_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "listings_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveSummary publishes the portfolio KPIs as gauges. Float conversion
// is for display only; the decimal values remain authoritative.
func ObserveSummary(s model.PortfolioSummary) {
	ListingCount.Set(float64(s.ListingCount))
	TotalGrossProfit.Set(s.TotalGrossProfit.InexactFloat64())
	AverageMargin.Set(s.AverageMarginRatio.InexactFloat64())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics. The
// wrapped writer keeps http.Hijacker so WebSocket upgrades pass through.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			// Nothing written through the wrapper: implicit 200 or a hijacked conn.
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}
