package logger

import (
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader carries the per-request correlation ID.
const CorrelationIDHeader = "X-Request-ID"

const contextKey = "orphandbRequestID"

// Init builds the process logger, honoring LOG_LEVEL (debug, info, warn, error).
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(lvl))); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}
	return cfg.Build()
}

// Middleware assigns every request a correlation ID, honoring an inbound
// X-Request-ID header, and mirrors it on the response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// CorrelationID returns the request's correlation ID, or "" when Middleware
// did not run.
func CorrelationID(c *gin.Context) string {
	return c.GetString(contextKey)
}

// RequestLogger emits one access-log entry per request.
func RequestLogger(logg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logg.Info("http request",
			zap.String("request_id", CorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
