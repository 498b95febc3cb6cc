package httpapi

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forPelevin/clipideas/internal/apierr"
	"github.com/forPelevin/clipideas/internal/types"
	"github.com/forPelevin/clipideas/internal/usecase"
)

const (
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	serviceName              = "clip-suggestion-api"
)

// Runner is the pipeline as seen by the handlers.
type Runner interface {
	Run(ctx context.Context, in usecase.Input) (usecase.Result, error)
}

// Quota reports how many requests a client has left without spending one.
type Quota interface {
	Remaining(ip string) int
}

type handlers struct {
	runner  Runner
	quota   Quota
	timeout time.Duration
}

func (h handlers) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
}

func (h handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h handlers) clipIdeas(c *gin.Context) {
	var req types.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apierr.New(apierr.InvalidInput, "Invalid request body.", err))
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	ip := clientIP(c.Request)
	res, err := h.runner.Run(ctx, usecase.Input{Request: req, ClientIP: ip})
	if err != nil {
		ae := apierr.From(err)
		switch {
		case ae.Code != apierr.InvalidInput:
			c.Header(headerRateLimitRemaining, strconv.Itoa(res.Remaining))
		case h.quota != nil:
			// rejected before the limiter was consulted
			c.Header(headerRateLimitRemaining, strconv.Itoa(h.quota.Remaining(ip)))
		}
		writeError(c, ae)
		return
	}
	c.Header(headerRateLimitRemaining, strconv.Itoa(res.Remaining))
	c.JSON(http.StatusOK, res.Response)
}

// clientIP prefers the first X-Forwarded-For hop, then the peer address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
