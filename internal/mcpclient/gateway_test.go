package mcpclient

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func listableConn() *fakeConn {
	return &fakeConn{
		tools: []mcp.Tool{
			{
				Name:        "list_data_sources",
				Description: "List all available data sources",
				InputSchema: mcp.ToolInputSchema{Type: "object"},
			},
			{
				Name:        "get_lineage",
				Description: "Get table lineage",
				InputSchema: mcp.ToolInputSchema{
					Type: "object",
					Properties: map[string]any{
						"data_source_id": map[string]any{"type": "number"},
					},
					Required: []string{"data_source_id"},
				},
			},
		},
		callText: `{"ok": true}`,
	}
}

func newFakeGateway(conn func() *fakeConn) (*Gateway, *atomic.Int32) {
	s, dials, _ := newFakeSession(conn)
	return NewGateway(s), dials
}

func TestGateway_DiscoverTools(t *testing.T) {
	g, _ := newFakeGateway(listableConn)

	tools := g.DiscoverTools(context.Background())
	if len(tools) != 2 {
		t.Fatalf("got %d tools, want 2", len(tools))
	}
	if tools[0].Name != "list_data_sources" {
		t.Errorf("name = %q", tools[0].Name)
	}
	props, ok := tools[1].InputSchema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("input schema not converted: %v", tools[1].InputSchema)
	}
	if _, ok := props["data_source_id"]; !ok {
		t.Errorf("lost schema property: %v", props)
	}
}

func TestGateway_DiscoverTools_CachedPerProcess(t *testing.T) {
	conn := listableConn()
	g, _ := newFakeGateway(func() *fakeConn { return conn })

	g.DiscoverTools(context.Background())
	first := g.tools
	g.DiscoverTools(context.Background())

	// Cached slice identity: no refetch happened.
	if len(first) == 0 || &first[0] != &g.tools[0] {
		t.Error("expected cached descriptor slice to be reused")
	}
}

func TestGateway_ResetCatalogForcesRefetch(t *testing.T) {
	conn := listableConn()
	g, _ := newFakeGateway(func() *fakeConn { return conn })

	if got := len(g.DiscoverTools(context.Background())); got != 2 {
		t.Fatalf("got %d tools, want 2", got)
	}

	conn.tools = conn.tools[:1]
	g.ResetCatalog()

	if got := len(g.DiscoverTools(context.Background())); got != 1 {
		t.Errorf("got %d tools after reset, want 1 (fresh fetch)", got)
	}
}

func TestGateway_DiscoverTools_FailureDegradesToEmpty(t *testing.T) {
	conn := &fakeConn{listErr: errors.New("stream torn down")}
	g, dials := newFakeGateway(func() *fakeConn { return conn })

	tools := g.DiscoverTools(context.Background())
	if tools == nil || len(tools) != 0 {
		t.Errorf("expected empty non-nil list, got %v", tools)
	}

	// Failure resets the session: the next discovery reconnects.
	conn.listErr = nil
	conn.tools = listableConn().tools
	tools = g.DiscoverTools(context.Background())
	if len(tools) != 2 {
		t.Errorf("got %d tools after recovery, want 2", len(tools))
	}
	if dials.Load() != 2 {
		t.Errorf("dialed %d times, want 2 (reset after failure)", dials.Load())
	}
}

func TestGateway_DiscoverTools_DialFailure(t *testing.T) {
	s := NewSession("http://localhost:8000/sse", 300*time.Second)
	s.dial = func(context.Context, string) (protoClient, error) {
		return nil, errors.New("connection refused")
	}
	g := NewGateway(s)

	if tools := g.DiscoverTools(context.Background()); len(tools) != 0 {
		t.Errorf("expected no tools when server unreachable, got %v", tools)
	}
}

func TestGateway_Invoke(t *testing.T) {
	g, _ := newFakeGateway(listableConn)

	out, err := g.Invoke(context.Background(), "list_data_sources", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"ok": true}` {
		t.Errorf("got %q", out)
	}
}

func TestGateway_Invoke_FailureResetsSession(t *testing.T) {
	conn := &fakeConn{callErr: errors.New("broken pipe")}
	g, dials := newFakeGateway(func() *fakeConn { return conn })

	if _, err := g.Invoke(context.Background(), "get_lineage", map[string]any{"data_source_id": 59}); err == nil {
		t.Fatal("expected invocation error to propagate")
	}

	// The corrupted session must not be reused.
	conn.callErr = nil
	conn.callText = "recovered"
	out, err := g.Invoke(context.Background(), "get_lineage", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "recovered" {
		t.Errorf("got %q", out)
	}
	if dials.Load() != 2 {
		t.Errorf("dialed %d times, want 2 (forced reconnect)", dials.Load())
	}
}
