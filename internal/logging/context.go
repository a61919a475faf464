package logging

import "context"

type contextKey struct{}

// AuditInfo collects per-request details that handlers fill in and the
// receiving middleware logs once the request completes.
type AuditInfo struct {
	ToolName     string
	ResourceURI  string
	PromptName   string
	PolicyEffect string
	PolicyRule   string
	Truncated    bool
}

func WithAuditInfo(ctx context.Context, info *AuditInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

func GetAuditInfo(ctx context.Context) *AuditInfo {
	info, _ := ctx.Value(contextKey{}).(*AuditInfo)
	return info
}
