package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func NewReceivingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			info := &AuditInfo{}
			ctx = WithAuditInfo(ctx, info)

			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000.0),
				slog.Bool("error", err != nil || isToolError(result)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error_message", err.Error()))
			}
			if info.ToolName != "" {
				attrs = append(attrs, slog.String("tool", info.ToolName))
			}
			if info.ResourceURI != "" {
				attrs = append(attrs, slog.String("resource_uri", info.ResourceURI))
			}
			if info.PromptName != "" {
				attrs = append(attrs, slog.String("prompt", info.PromptName))
			}
			if info.PolicyEffect != "" {
				attrs = append(attrs, slog.String("policy_effect", info.PolicyEffect))
			}
			if info.PolicyRule != "" {
				attrs = append(attrs, slog.String("policy_rule", info.PolicyRule))
			}
			if info.Truncated {
				attrs = append(attrs, slog.Bool("truncated", true))
			}

			level := slog.LevelInfo
			if strings.HasPrefix(method, "notifications/") || method == "ping" {
				level = slog.LevelDebug
			}
			logger.LogAttrs(ctx, level, "mcp request", attrs...)
			return result, err
		}
	}
}

func isToolError(result mcp.Result) bool {
	r, ok := result.(*mcp.CallToolResult)
	return ok && r != nil && r.IsError
}
