package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/forPelevin/clipideas/internal/platform/logger"
)

type RouterConfig struct {
	Runner               Runner
	Quota                Quota
	Log                  *logger.Logger
	AllowedOrigins       []string
	ExpectedClientHeader string
	RequestTimeout       time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	h := handlers{runner: cfg.Runner, quota: cfg.Quota, timeout: cfg.RequestTimeout}

	r := gin.New()
	r.Use(
		requestID(),
		recovery(log),
		otelgin.Middleware(serviceName),
		corsMiddleware(cfg.AllowedOrigins),
		requestLogger(log),
	)

	r.GET("/", h.root)
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.Use(clientHeader(cfg.ExpectedClientHeader, log))
	{
		api.POST("/clip-ideas", h.clipIdeas)
	}
	return r
}
