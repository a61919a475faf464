package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/VikingOwl91/mcp-simple-demo/internal/handlers"
	"github.com/VikingOwl91/mcp-simple-demo/internal/server"
	"github.com/VikingOwl91/mcp-simple-demo/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file (env MCP_* variables take precedence)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before reading MCP_* variables")
	flag.Parse()

	cfg, err := config.Resolve(*configPath, *envFile)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// stdout carries the stdio transport; logs always go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var opts []server.Option

	providers, err := newTelemetry(cfg.Telemetry, os.Stderr)
	if err != nil {
		return err
	}
	if providers != nil {
		providers.Install()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
			}
		}()
		opts = append(opts, server.WithTelemetry(providers.Options()...))
	}

	srv, err := server.New(cfg, logger, opts...)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// newTelemetry returns SDK providers for the configured exporter, or nil
// when telemetry is off.
func newTelemetry(cfg config.TelemetryConfig, w io.Writer) (*telemetry.Providers, error) {
	if cfg.Exporter != config.TelemetryStderr {
		return nil, nil
	}
	providers, err := telemetry.NewWriterProviders(w, handlers.ServerName,
		time.Duration(cfg.MetricIntervalSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("setting up telemetry: %w", err)
	}
	return providers, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
