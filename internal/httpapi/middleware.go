package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/forPelevin/clipideas/internal/apierr"
	"github.com/forPelevin/clipideas/internal/platform/logger"
	"github.com/forPelevin/clipideas/internal/types"
)

const (
	headerRequestID = "X-Request-Id"
	headerClient    = "X-Client"
)

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:           []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:           []string{"Content-Type", headerClient, headerRequestID},
		ExposeHeaders:          []string{headerRateLimitRemaining, headerRequestID},
		AllowBrowserExtensions: true,
		MaxAge:                 12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cors.New(cfg)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString("request_id"),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// clientHeader only observes. Requests without the expected X-Client value
// are logged and still served.
func clientHeader(expected string, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected != "" && c.Request.Method != http.MethodOptions {
			if got := c.GetHeader(headerClient); got != expected {
				log.Warn("unexpected client header", "got", got, "path", c.Request.URL.Path, "request_id", c.GetString("request_id"))
			}
		}
		c.Next()
	}
}

func recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic recovered", "panic", rec, "path", c.Request.URL.Path, "request_id", c.GetString("request_id"))
		writeError(c, apierr.New(apierr.InternalError, apierr.MsgInternal, nil))
	})
}

func writeError(c *gin.Context, ae *apierr.Error) {
	c.AbortWithStatusJSON(ae.Status(), types.ErrorResponse{Error: string(ae.Code), Message: ae.Message})
}
