// Package mcpclient maintains the persistent connection to the MCP tool
// server and exposes it through a small gateway façade.
package mcpclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// protoClient is the protocol surface the session hands out.
// *client.Client satisfies it; tests substitute a stub.
type protoClient interface {
	ListTools(ctx context.Context, request mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// Session owns at most one live connection to the tool server, lazily
// (re)establishing it on first use or after the idle timeout elapses.
// Safe for concurrent use; only Ensure mutates connection state, under a
// single lock, so racing callers never open two connections.
type Session struct {
	serverURL   string
	idleTimeout time.Duration

	mu       sync.Mutex
	conn     protoClient
	lastUsed time.Time

	now  func() time.Time
	dial func(ctx context.Context, serverURL string) (protoClient, error)
}

// NewSession builds a Session for the given SSE server URL. No connection is
// opened until the first Ensure call.
func NewSession(serverURL string, idleTimeout time.Duration) *Session {
	return &Session{
		serverURL:   serverURL,
		idleTimeout: idleTimeout,
		now:         time.Now,
		dial:        dialSSE,
	}
}

// dialSSE opens the SSE transport and completes the protocol handshake.
// A partially constructed connection is torn down before the error returns.
func dialSSE(ctx context.Context, serverURL string) (protoClient, error) {
	sse, err := transport.NewSSE(serverURL)
	if err != nil {
		return nil, fmt.Errorf("create SSE transport: %w", err)
	}

	conn := client.NewClient(sse)
	if err := conn.Start(ctx); err != nil {
		return nil, fmt.Errorf("start MCP client: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "datasage",
		Version: "1.0.0",
	}
	if _, err := conn.Initialize(ctx, initRequest); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize MCP session: %w", err)
	}

	return conn, nil
}

// Ensure returns a live connection, opening a fresh one if none exists or
// the current one has sat idle past the timeout. Updates the idle clock on
// every successful call.
func (s *Session) Ensure(ctx context.Context) (protoClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.now().Sub(s.lastUsed) > s.idleTimeout {
		s.closeLocked()

		slog.Info("opening MCP session", "server", s.serverURL)
		conn, err := s.dial(ctx, s.serverURL)
		if err != nil {
			slog.Error("MCP session open failed", "server", s.serverURL, "err", err)
			return nil, err
		}
		s.conn = conn
		slog.Info("MCP session established", "server", s.serverURL)
	}

	s.lastUsed = s.now()
	return s.conn, nil
}

// Reset tears down the current connection so the next Ensure reconnects.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// Close tears down the connection. Idempotent.
func (s *Session) Close() {
	s.Reset()
	slog.Info("MCP session closed", "server", s.serverURL)
}

func (s *Session) closeLocked() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		slog.Debug("error closing MCP connection", "err", err)
	}
	s.conn = nil
}
