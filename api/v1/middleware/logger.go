package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vhostmgr/internal/logger"
)

// RequestLogger logs one line per request and stores a request-scoped
// entry carrying op_id in the request context.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	base := log.WithField("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		entry := base.WithField("op_id", logger.NewOpID())
		c.Request = c.Request.WithContext(logger.WithEntry(c.Request.Context(), entry))

		c.Next()

		entry.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"client":   c.ClientIP(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}
