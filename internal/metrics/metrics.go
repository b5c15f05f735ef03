// Package metrics provides Prometheus instrumentation for the gateway.
//
// Exposed at GET /metrics:
//
//	reelify_http_requests_total            counter   by method/route/status
//	reelify_http_request_duration_seconds  histogram by method/route
//	reelify_upstream_requests_total        counter   by resource/outcome
//	reelify_upstream_request_duration_seconds histogram by resource
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upstream outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeClientError = "client_error"
	OutcomeError       = "error"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reelify_http_requests_total",
	Help: "Total HTTP requests handled by the gateway.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "reelify_http_request_duration_seconds",
	Help:    "Gateway request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

var UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reelify_upstream_requests_total",
	Help: "Calls forwarded to the catalog API, by resource and outcome.",
}, []string{"resource", "outcome"})

var UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "reelify_upstream_request_duration_seconds",
	Help:    "Catalog API latency in seconds, retries included.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
}, []string{"resource"})

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveUpstream records one finished upstream call.
func ObserveUpstream(resource, outcome string, started time.Time) {
	UpstreamRequests.WithLabelValues(resource, outcome).Inc()
	UpstreamDuration.WithLabelValues(resource).Observe(time.Since(started).Seconds())
}

// Middleware records request counts and latency. It is meant for
// mux.Router.Use so the matched route template is available as the label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		route := routeLabel(r)
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// routeLabel prefers the route template (/api/movies/{id}) over the raw
// path to keep label cardinality bounded.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
