// Package telemetry exposes the service's Prometheus metrics and the HTTP
// middleware that feeds the request-level ones. Collectors register on the
// default registry so promhttp.Handler() serves them without extra wiring.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcore_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatcore_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	messagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatcore_messages_sent_total",
		Help: "Messages accepted into conversation timelines.",
	})

	reactionsChanged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatcore_reactions_total",
		Help: "Reaction mutations by kind (add/remove).",
	}, []string{"kind"})

	activeTypists = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatcore_active_typists",
		Help: "Live typing indicators at last maintenance sweep.",
	})

	storeDiskBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatcore_store_disk_bytes",
		Help: "Approximate on-disk size of the message store.",
	})
)

// CountMessageSent records one accepted message.
func CountMessageSent() { messagesSent.Inc() }

// CountReaction records a reaction mutation; kind is "add" or "remove".
func CountReaction(kind string) { reactionsChanged.WithLabelValues(kind).Inc() }

// SetActiveTypists publishes the live typing indicator count.
func SetActiveTypists(n int) { activeTypists.Set(float64(n)) }

// SetStoreDiskBytes publishes the store's disk footprint.
func SetStoreDiskBytes(b uint64) { storeDiskBytes.Set(float64(b)) }

// Middleware records per-request counters and latency. The route label uses
// the mux path template when available so ids do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(srw.status)).Inc()
		requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
