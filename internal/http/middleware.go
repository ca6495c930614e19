package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"usertask-manager/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerCtxKey    = "logger"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, "+requestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware keeps an incoming request id or assigns a new one and
// stores a request scoped logger in the context.
func requestIDMiddleware(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set(loggerCtxKey, logger.WithField("request_id", id))

		c.Next()
	}
}

func observeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHttpRequest(c.Request.Method, endpoint, strconv.Itoa(status), elapsed)

		entry := requestLogger(c, nil).WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   status,
			"duration": elapsed.String(),
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request handled")
	}
}

// requestLogger returns the logger stored by requestIDMiddleware, or
// fallback when there is none.
func requestLogger(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if v, ok := c.Get(loggerCtxKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	if fallback == nil {
		return logrus.StandardLogger()
	}
	return fallback
}
