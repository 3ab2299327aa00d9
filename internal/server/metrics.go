package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billed_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		},
		[]string{"method", "pattern", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billed_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "pattern"},
	)

	receiptsUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billed_receipts_uploaded_total",
		Help: "Receipts accepted and stored.",
	})

	receiptsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billed_receipts_rejected_total",
		Help: "Receipts refused because of their file type.",
	})

	billsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billed_bills_submitted_total",
		Help: "Bills completed through the new bill form or the API.",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// metricsMiddleware labels requests by the mux pattern that served them, which keeps
// bill IDs and file names out of the label set
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}
