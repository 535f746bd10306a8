package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Upload outcome label values.
const (
	OutcomeStored                = "stored"
	OutcomeDeniedUnauthenticated = "denied_unauthenticated"
	OutcomeDeniedUnsupportedType = "denied_unsupported_type"
	OutcomeFailed                = "failed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orphandb_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orphandb_http_request_duration_seconds",
			Help:    "HTTP request latency distribution.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orphandb_uploads_total",
			Help: "Upload attempts by bucket and outcome.",
		},
		[]string{"bucket", "outcome"},
	)

	uploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orphandb_upload_bytes_total",
			Help: "Bytes persisted to storage by bucket.",
		},
		[]string{"bucket"},
	)
)

// RecordUpload counts one upload attempt.
func RecordUpload(bucket, outcome string) {
	uploadsTotal.WithLabelValues(bucket, outcome).Inc()
}

// RecordUploadBytes accumulates the size of a stored file.
func RecordUploadBytes(bucket string, n int64) {
	uploadBytesTotal.WithLabelValues(bucket).Add(float64(n))
}

// Middleware counts and times every request except the metrics scrape itself.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
