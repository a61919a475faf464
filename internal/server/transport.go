package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VikingOwl91/mcp-simple-demo/internal/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const shutdownTimeout = 5 * time.Second

// Run serves on the transport named by the configuration until ctx is
// cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Transport {
	case config.TransportStdio:
		s.logger.Info("serving over stdio")
		return s.Serve(ctx, &mcp.StdioTransport{})
	case config.TransportHTTP, config.TransportSSE:
		return s.ListenAndServe(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Transport)
	}
}

// Handler returns the HTTP handler for the configured transport, mounted at
// the configured path. stdio configurations get the streamable handler.
func (s *Server) Handler() http.Handler {
	getServer := func(*http.Request) *mcp.Server { return s.mcp }

	var h http.Handler
	if s.cfg.Transport == config.TransportSSE {
		h = mcp.NewSSEHandler(getServer, nil)
	} else {
		h = mcp.NewStreamableHTTPHandler(getServer, nil)
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, h)
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("serving over http",
		slog.String("transport", s.cfg.Transport),
		slog.String("addr", srv.Addr),
		slog.String("path", s.cfg.Path),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		// Open SSE streams keep Shutdown waiting; drop them.
		s.logger.Warn("graceful shutdown incomplete", slog.String("error", err.Error()))
		return srv.Close()
	}
	return nil
}
