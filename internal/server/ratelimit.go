package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// newRateLimitMiddleware applies a token bucket shared by all requests.
// The handshake and notifications are never limited.
func newRateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) mcp.Middleware {
	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     cfg.RPS,
		Burst:    cfg.Burst,
		Interval: time.Second,
	})

	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}
			if !limiter.Allow(ctx, "global") {
				logger.Warn("rate limit exceeded", slog.String("method", method))
				return nil, fmt.Errorf("rate limit exceeded: %d requests per second", cfg.RPS)
			}
			return next(ctx, method, req)
		}
	}
}
