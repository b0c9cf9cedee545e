package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus instruments for the engine and HTTP surface.
type Metrics struct {
	CyclesTotal   prometheus.Counter
	CycleDuration prometheus.Histogram
	AlertsCreated *prometheus.CounterVec
	CheckErrors   *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldwatch_engine_cycles_total",
			Help: "Evaluation cycles executed (scheduled and manual).",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldwatch_engine_cycle_duration_seconds",
			Help:    "Duration of one evaluation cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldwatch_engine_alerts_created_total",
			Help: "Alerts persisted, per rule check.",
		}, []string{"check"}),
		CheckErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldwatch_engine_check_errors_total",
			Help: "Rule check failures, per rule check.",
		}, []string{"check"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldwatch_http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldwatch_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.AlertsCreated,
		m.CheckErrors,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// GinMiddleware records request counts and latency per route template.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
