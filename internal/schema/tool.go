package schema

import "context"

// ToolDescriptor describes one callable tool discovered from the tool server.
// InputSchema is the raw JSON Schema object for the tool's arguments.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolInvoker executes named tools on behalf of the orchestration loop.
// The mcpclient package provides the concrete implementation.
type ToolInvoker interface {
	// DiscoverTools returns the available tool descriptors. Discovery
	// failure degrades to an empty list, never an error.
	DiscoverTools(ctx context.Context) []ToolDescriptor
	// Invoke calls a tool and returns its text payload.
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}
