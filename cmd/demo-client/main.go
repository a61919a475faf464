package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/VikingOwl91/mcp-simple-demo/internal/client"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	serverCmd := flag.String("server", "demo-server", "server command to spawn over stdio (split on spaces)")
	url := flag.String("url", "", "connect to a running server instead, e.g. http://localhost:8000/mcp")
	sse := flag.Bool("sse", false, "use the SSE transport with -url")
	file := flag.String("file", "README.md", "file to read through the file:// resource template")
	location := flag.String("location", "Paris", "location passed to get_weather")
	language := flag.String("language", "Python", "language passed to the code_review prompt")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	transport, describe, err := newTransport(ctx, *serverCmd, *url, *sse)
	if err != nil {
		logger.Error("invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}

	fmt.Println("MCP client check - mcp-simple-demo")
	fmt.Println(describe)

	c := mcp.NewClient(&mcp.Implementation{Name: "demo-client", Version: "1.0"}, nil)
	session, err := c.Connect(ctx, transport, nil)
	if err != nil {
		logger.Error("failed to connect", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer session.Close()

	err = client.Drive(ctx, session, os.Stdout, client.Options{
		Location: *location,
		FilePath: *file,
		Language: *language,
	})
	if err != nil {
		logger.Error("check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newTransport(ctx context.Context, serverCmd, url string, sse bool) (mcp.Transport, string, error) {
	if url != "" {
		if sse {
			return &mcp.SSEClientTransport{Endpoint: url}, "Server URL (sse): " + url, nil
		}
		return &mcp.StreamableClientTransport{Endpoint: url}, "Server URL: " + url, nil
	}

	fields := strings.Fields(serverCmd)
	if len(fields) == 0 {
		return nil, "", fmt.Errorf("-server must name a command")
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Env = append(cmd.Environ(), "MCP_TRANSPORT=stdio")
	cmd.Stderr = os.Stderr
	return &mcp.CommandTransport{Command: cmd}, "Server command: " + serverCmd, nil
}
