package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/metrics"
)

// requestLogger logs one line per request and records request metrics.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		metrics.ObserveRequest(route, c.Request.Method, status, elapsed)

		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		}
		if len(c.Errors) > 0 {
			keyvals = append(keyvals, "error", c.Errors.String())
		}
		if status >= 500 {
			logger.Error("request", keyvals...)
		} else {
			logger.Info("request", keyvals...)
		}
	}
}

// corsMiddleware allows the configured origins. "*" allows any origin and an
// empty list disables CORS handling.
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if allowsAny(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func originAllowed(origins []string, origin string) bool {
	if origin == "" || allowsAny(origins) {
		return true
	}
	for _, o := range origins {
		if o == origin {
			return true
		}
	}
	return false
}
