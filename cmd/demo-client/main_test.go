package main

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport_Command(t *testing.T) {
	tr, describe, err := newTransport(context.Background(), "go run ./cmd/demo-server", "", false)
	require.NoError(t, err)

	ct, ok := tr.(*mcp.CommandTransport)
	require.True(t, ok)
	assert.Equal(t, []string{"go", "run", "./cmd/demo-server"}, ct.Command.Args)
	assert.Contains(t, ct.Command.Env, "MCP_TRANSPORT=stdio")
	assert.Equal(t, "Server command: go run ./cmd/demo-server", describe)
}

func TestNewTransport_EmptyCommand(t *testing.T) {
	_, _, err := newTransport(context.Background(), "   ", "", false)
	require.Error(t, err)
}

func TestNewTransport_URL(t *testing.T) {
	tr, _, err := newTransport(context.Background(), "ignored", "http://localhost:8000/mcp", false)
	require.NoError(t, err)
	st, ok := tr.(*mcp.StreamableClientTransport)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:8000/mcp", st.Endpoint)

	tr, describe, err := newTransport(context.Background(), "ignored", "http://localhost:8000/sse", true)
	require.NoError(t, err)
	_, ok = tr.(*mcp.SSEClientTransport)
	assert.True(t, ok)
	assert.Contains(t, describe, "sse")
}
