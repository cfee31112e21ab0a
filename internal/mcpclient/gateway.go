package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/datasage/datasage/internal/schema"
)

// Gateway is the externally callable façade over Session: cached tool
// discovery plus tool invocation. It implements schema.ToolInvoker.
type Gateway struct {
	session *Session

	mu    sync.Mutex
	tools []schema.ToolDescriptor
}

func NewGateway(session *Session) *Gateway {
	return &Gateway{session: session}
}

// DiscoverTools returns the tool catalog, fetched once per process lifetime.
// On failure the session is reset and an empty list is returned; discovery
// failure degrades to "no tools available", never an error.
func (g *Gateway) DiscoverTools(ctx context.Context) []schema.ToolDescriptor {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.tools != nil {
		return g.tools
	}

	conn, err := g.session.Ensure(ctx)
	if err != nil {
		slog.Error("tool discovery failed", "err", err)
		return []schema.ToolDescriptor{}
	}

	result, err := conn.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		slog.Error("tool listing failed", "err", err)
		g.session.Reset()
		return []schema.ToolDescriptor{}
	}

	tools := make([]schema.ToolDescriptor, 0, len(result.Tools))
	for _, tool := range result.Tools {
		tools = append(tools, schema.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchemaMap(tool.InputSchema),
		})
	}

	g.tools = tools
	slog.Info("loaded tools from MCP server", "count", len(tools))
	return g.tools
}

// Invoke calls a tool and returns its text payload. On any failure the
// session is reset so the next call re-establishes a connection, and the
// error is returned for the caller to represent to the model.
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	conn, err := g.session.Ensure(ctx)
	if err != nil {
		return "", err
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := conn.CallTool(ctx, request)
	if err != nil {
		slog.Error("tool call failed", "tool", name, "err", err)
		g.session.Reset()
		return "", fmt.Errorf("tool %s: %w", name, err)
	}

	for _, content := range result.Content {
		if text, ok := content.(mcp.TextContent); ok {
			return text.Text, nil
		}
	}
	return "", nil
}

// ResetCatalog drops the cached tool descriptors so the next DiscoverTools
// fetches a fresh list from the server.
func (g *Gateway) ResetCatalog() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tools = nil
}

// Close releases the underlying session.
func (g *Gateway) Close() {
	g.session.Close()
}

// inputSchemaMap converts the typed schema struct into the raw JSON Schema
// object the model API expects.
func inputSchemaMap(s mcp.ToolInputSchema) map[string]any {
	data, err := json.Marshal(s)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}
