// Package metrics exposes prometheus counters for the pipeline core.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_assignments_total",
			Help: "Worker assignments by outcome",
		},
		[]string{"outcome"},
	)

	conversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_conversions_total",
			Help: "Lead conversions by outcome",
		},
		[]string{"outcome"},
	)

	sequenceConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sequence_conflicts_total",
			Help: "Unique (base_key, sequence_number) collisions that triggered a retry",
		},
	)

	probesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reachability_probes_total",
			Help: "Web reachability probes by result",
		},
		[]string{"result"},
	)
)

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordAssignment(outcome string) {
	assignmentsTotal.WithLabelValues(outcome).Inc()
}

func RecordConversion(outcome string) {
	conversionsTotal.WithLabelValues(outcome).Inc()
}

func RecordSequenceConflict() {
	sequenceConflicts.Inc()
}

func RecordProbe(result string) {
	probesTotal.WithLabelValues(result).Inc()
}
