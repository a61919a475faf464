// Package server wires the demo handlers into an MCP server and serves it
// over the transport selected in the configuration.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/VikingOwl91/mcp-simple-demo/internal/handlers"
	"github.com/VikingOwl91/mcp-simple-demo/internal/logging"
	"github.com/VikingOwl91/mcp-simple-demo/internal/policy"
	"github.com/VikingOwl91/mcp-simple-demo/internal/telemetry"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const instructions = "Demonstration server exposing two tools (health_check, get_weather), " +
	"static resources (resource://readme, resource://config), a file://{+path} template, " +
	"and the code_review prompt."

type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	mcp    *mcp.Server
	policy *policy.Engine
}

type Option func(*serverOptions)

type serverOptions struct {
	telemetry []telemetry.Option
}

// WithTelemetry passes options to the OpenTelemetry middleware.
func WithTelemetry(opts ...telemetry.Option) Option {
	return func(o *serverOptions) {
		o.telemetry = append(o.telemetry, opts...)
	}
}

// New builds a server and registers every operation in the registration
// table. cfg must already be validated.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	var pe *policy.Engine
	if len(cfg.Policy.Rules) > 0 || cfg.Policy.Default == string(policy.Deny) {
		var err error
		pe, err = policy.New(cfg.Policy)
		if err != nil {
			return nil, fmt.Errorf("creating policy engine: %w", err)
		}
	}

	ms := mcp.NewServer(&mcp.Implementation{
		Name:    handlers.ServerName,
		Version: handlers.ServerVersion,
	}, &mcp.ServerOptions{
		Logger:       logger,
		Instructions: instructions,
	})

	// The first middleware is the outermost, so rejected requests are
	// still traced and logged.
	middleware := []mcp.Middleware{
		telemetry.NewMiddleware(o.telemetry...),
		logging.NewReceivingMiddleware(logger),
	}
	if cfg.RateLimit.RPS > 0 {
		middleware = append(middleware, newRateLimitMiddleware(cfg.RateLimit, logger))
	}
	ms.AddReceivingMiddleware(middleware...)

	s := &Server{
		cfg:    cfg,
		logger: logger,
		mcp:    ms,
		policy: pe,
	}

	for _, op := range operations {
		op.add(s)
		logger.Debug("registered operation",
			slog.String("kind", op.kind),
			slog.String("name", op.name),
		)
	}

	return s, nil
}

// authorize consults the policy engine, if one is configured, and records
// the decision on the request's audit info.
func (s *Server) authorize(ctx context.Context, rc policy.RequestContext) error {
	if s.policy == nil {
		return nil
	}

	decision := s.policy.Evaluate(rc)
	if info := logging.GetAuditInfo(ctx); info != nil {
		info.PolicyEffect = string(decision.Effect)
		info.PolicyRule = decision.Rule
	}
	if decision.Effect != policy.Deny {
		return nil
	}
	if decision.Message != "" {
		return fmt.Errorf("denied by policy: %s: %s", decision.Rule, decision.Message)
	}
	return fmt.Errorf("denied by policy: %s", decision.Rule)
}

func toolArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("unmarshaling arguments: %w", err)
	}
	return args, nil
}

// Serve runs the server over an already established transport until the
// peer disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, t mcp.Transport) error {
	return s.mcp.Run(ctx, t)
}
