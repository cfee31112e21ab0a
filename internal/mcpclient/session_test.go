package mcpclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeConn is a scriptable protoClient.
type fakeConn struct {
	listErr  error
	callErr  error
	tools    []mcp.Tool
	callText string
	closed   atomic.Bool
	calls    atomic.Int32
}

func (f *fakeConn) ListTools(context.Context, mcp.ListToolsRequest) (*mcp.ListToolsResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &mcp.ListToolsResult{Tools: f.tools}, nil
}

func (f *fakeConn) CallTool(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.calls.Add(1)
	if f.callErr != nil {
		return nil, f.callErr
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.TextContent{Type: "text", Text: f.callText}}}, nil
}

func (f *fakeConn) Close() error {
	f.closed.Store(true)
	return nil
}

// newFakeSession returns a Session whose dialer hands out fresh fakeConns
// and counts dials, plus a controllable clock.
func newFakeSession(conn func() *fakeConn) (*Session, *atomic.Int32, *time.Time) {
	var dials atomic.Int32
	now := time.Now()
	s := NewSession("http://localhost:8000/sse", 300*time.Second)
	s.now = func() time.Time { return now }
	s.dial = func(context.Context, string) (protoClient, error) {
		dials.Add(1)
		return conn(), nil
	}
	return s, &dials, &now
}

func TestSession_EnsureOpensOnce(t *testing.T) {
	s, dials, _ := newFakeSession(func() *fakeConn { return &fakeConn{} })

	first, err := s.Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the same connection to be reused")
	}
	if dials.Load() != 1 {
		t.Errorf("dialed %d times, want 1", dials.Load())
	}
}

func TestSession_IdleTimeoutRecycles(t *testing.T) {
	s, dials, now := newFakeSession(func() *fakeConn { return &fakeConn{} })

	if _, err := s.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Just inside the timeout: no reconnect.
	*now = now.Add(299 * time.Second)
	if _, err := s.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if dials.Load() != 1 {
		t.Fatalf("dialed %d times before timeout, want 1", dials.Load())
	}

	// Past the timeout since last use: the old connection is torn down and
	// a new one opened.
	*now = now.Add(301 * time.Second)
	if _, err := s.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if dials.Load() != 2 {
		t.Errorf("dialed %d times after timeout, want 2", dials.Load())
	}
}

func TestSession_EnsureUpdatesIdleClock(t *testing.T) {
	s, dials, now := newFakeSession(func() *fakeConn { return &fakeConn{} })

	s.Ensure(context.Background())
	// Repeated use inside the window keeps pushing the deadline out.
	for i := 0; i < 4; i++ {
		*now = now.Add(200 * time.Second)
		if _, err := s.Ensure(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if dials.Load() != 1 {
		t.Errorf("dialed %d times, want 1 (idle clock must refresh on use)", dials.Load())
	}
}

func TestSession_ConcurrentEnsureOpensOne(t *testing.T) {
	var dials atomic.Int32
	s := NewSession("http://localhost:8000/sse", 300*time.Second)
	s.dial = func(context.Context, string) (protoClient, error) {
		dials.Add(1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return &fakeConn{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Ensure(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if dials.Load() != 1 {
		t.Errorf("dialed %d times under concurrency, want exactly 1", dials.Load())
	}
}

func TestSession_DialFailurePropagates(t *testing.T) {
	s := NewSession("http://localhost:8000/sse", 300*time.Second)
	dialErr := errors.New("handshake refused")
	s.dial = func(context.Context, string) (protoClient, error) {
		return nil, dialErr
	}

	if _, err := s.Ensure(context.Background()); !errors.Is(err, dialErr) {
		t.Errorf("got %v, want dial error", err)
	}
}

func TestSession_ResetClosesConnection(t *testing.T) {
	conn := &fakeConn{}
	s, dials, _ := newFakeSession(func() *fakeConn { return conn })

	s.Ensure(context.Background())
	s.Reset()

	if !conn.closed.Load() {
		t.Error("reset must close the live connection")
	}

	// Next use reconnects.
	s.Ensure(context.Background())
	if dials.Load() != 2 {
		t.Errorf("dialed %d times, want 2 after reset", dials.Load())
	}
}

func TestSession_CloseIdempotent(t *testing.T) {
	s, _, _ := newFakeSession(func() *fakeConn { return &fakeConn{} })
	s.Ensure(context.Background())
	s.Close()
	s.Close() // must not panic
}
