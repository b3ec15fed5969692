// Package telemetry exposes Prometheus metrics for the management
// interface. Collectors are registered on the default registry and
// served by promhttp from the app wiring.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled HTTP requests by method and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bmcd_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"method", "status"})

	// RequestDuration observes request handling latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bmcd_http_request_duration_seconds",
		Help:    "HTTP request handling latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// EventsAppended counts records appended to the event log.
	EventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bmcd_eventlog_appended_total",
		Help: "Event log records appended.",
	})

	// EventsPurged counts records removed by clear or retention.
	EventsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bmcd_eventlog_purged_total",
		Help: "Event log records removed.",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Middleware records request count and latency around next.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
