// Package mcpserver exposes the catalog as six read-only MCP tools over SSE.
//
// Every tool returns a JSON-encoded string; failures become a human-readable
// "Error: <message>" payload rather than a protocol-level fault, so the model
// always receives something it can reason about.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/datasage/datasage/internal/catalog"
)

// Catalog is the metadata surface the tools are built on.
type Catalog interface {
	ListDataSources(ctx context.Context) []catalog.DataSource
	ListSchemas(ctx context.Context, sourceID int) []catalog.Schema
	ListTables(ctx context.Context, sourceID int, schema string) []catalog.Table
	GetTableMetadata(ctx context.Context, sourceID int, schema, table string) *catalog.TableMetadata
	GetColumnMetadata(ctx context.Context, sourceID int, schema, table string) []catalog.Column
	GetLineage(ctx context.Context, sourceID int, schema, table string) catalog.Lineage
}

// Server wraps an MCP server serving the catalog tools over SSE.
type Server struct {
	catalog Catalog
	mcp     *server.MCPServer
	sse     *server.SSEServer
	addr    string
}

// NewServer builds the tool server listening on host:port.
func NewServer(cat Catalog, host string, port int) *Server {
	mcpServer := server.NewMCPServer(
		"datasage-metadata",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		catalog: cat,
		mcp:     mcpServer,
		sse:     server.NewSSEServer(mcpServer),
		addr:    fmt.Sprintf("%s:%d", host, port),
	}
	s.registerTools()
	return s
}

// Start serves SSE until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP tool server listening", "addr", s.addr)
		errCh <- s.sse.Start(s.addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.sse.Shutdown(shutdownCtx); err != nil {
			slog.Warn("MCP tool server shutdown", "err", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("tool server: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_data_sources",
		mcp.WithDescription("List all available data sources in the metadata catalog, with their id, name, database type and description."),
	), s.handleListDataSources)

	s.mcp.AddTool(mcp.NewTool("list_schemas",
		mcp.WithDescription("List all schemas in a specific data source."),
		mcp.WithNumber("data_source_id",
			mcp.Required(),
			mcp.Description("The data source ID (from list_data_sources)"),
		),
	), s.handleListSchemas)

	s.mcp.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List all tables in a specific schema, with type, row count and popularity."),
		mcp.WithNumber("data_source_id",
			mcp.Required(),
			mcp.Description("The data source ID"),
		),
		mcp.WithString("schema_name",
			mcp.Required(),
			mcp.Description("Name of the schema"),
		),
	), s.handleListTables)

	s.mcp.AddTool(mcp.NewTool("get_table_metadata",
		mcp.WithDescription("Get detailed metadata for a table: description, owner, steward, certification, trust status, last update and sample queries. Missing values are reported as \"unknown\"."),
		mcp.WithNumber("data_source_id",
			mcp.Required(),
			mcp.Description("The data source ID"),
		),
		mcp.WithString("schema_name",
			mcp.Required(),
			mcp.Description("Name of the schema"),
		),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table"),
		),
	), s.handleGetTableMetadata)

	s.mcp.AddTool(mcp.NewTool("get_column_metadata",
		mcp.WithDescription("Get column definitions for a table: name, data type, description, nullability and data classifications (PII, PHI, ...)."),
		mcp.WithNumber("data_source_id",
			mcp.Required(),
			mcp.Description("The data source ID"),
		),
		mcp.WithString("schema_name",
			mcp.Required(),
			mcp.Description("Name of the schema"),
		),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table"),
		),
	), s.handleGetColumnMetadata)

	s.mcp.AddTool(mcp.NewTool("get_lineage",
		mcp.WithDescription("Get upstream and downstream lineage for a table. Missing lineage is explicitly \"unknown\", never inferred."),
		mcp.WithNumber("data_source_id",
			mcp.Required(),
			mcp.Description("The data source ID"),
		),
		mcp.WithString("schema_name",
			mcp.Required(),
			mcp.Description("Name of the schema"),
		),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the table"),
		),
	), s.handleGetLineage)
}

// formatResult renders data as indented JSON for model consumption.
func formatResult(data any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("failed to format tool result", "err", err)
		return mcp.NewToolResultText(fmt.Sprintf("%v", data))
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultText("Error: " + msg)
}

func (s *Server) handleListDataSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slog.Info("tool invoked", "tool", "list_data_sources")
	sources := s.catalog.ListDataSources(ctx)
	if len(sources) == 0 {
		return errorResult("No data sources found or access denied"), nil
	}
	return formatResult(sources), nil
}

func (s *Server) handleListSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := request.RequireInt("data_source_id")
	if err != nil {
		return errorResult("data_source_id must be an integer"), nil
	}
	slog.Info("tool invoked", "tool", "list_schemas", "source", sourceID)

	schemas := s.catalog.ListSchemas(ctx, sourceID)
	if len(schemas) == 0 {
		return errorResult(fmt.Sprintf("No schemas found for data source %d or access denied", sourceID)), nil
	}
	return formatResult(schemas), nil
}

func (s *Server) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := request.RequireInt("data_source_id")
	if err != nil {
		return errorResult("data_source_id must be an integer"), nil
	}
	schema, err := request.RequireString("schema_name")
	if err != nil || schema == "" {
		return errorResult("schema_name is required"), nil
	}
	slog.Info("tool invoked", "tool", "list_tables", "source", sourceID, "schema", schema)

	tables := s.catalog.ListTables(ctx, sourceID, schema)
	if len(tables) == 0 {
		return errorResult(fmt.Sprintf("No tables found in %s or access denied", schema)), nil
	}
	return formatResult(tables), nil
}

func (s *Server) handleGetTableMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, schema, table, errMsg := tableArgs(request)
	if errMsg != "" {
		return errorResult(errMsg), nil
	}
	slog.Info("tool invoked", "tool", "get_table_metadata", "source", sourceID, "schema", schema, "table", table)

	meta := s.catalog.GetTableMetadata(ctx, sourceID, schema, table)
	if meta == nil {
		return errorResult(fmt.Sprintf("Table %s.%s not found or access denied", schema, table)), nil
	}
	return formatResult(meta), nil
}

func (s *Server) handleGetColumnMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, schema, table, errMsg := tableArgs(request)
	if errMsg != "" {
		return errorResult(errMsg), nil
	}
	slog.Info("tool invoked", "tool", "get_column_metadata", "source", sourceID, "schema", schema, "table", table)

	columns := s.catalog.GetColumnMetadata(ctx, sourceID, schema, table)
	if len(columns) == 0 {
		return errorResult(fmt.Sprintf("No columns found for %s.%s or access denied", schema, table)), nil
	}
	return formatResult(columns), nil
}

func (s *Server) handleGetLineage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, schema, table, errMsg := tableArgs(request)
	if errMsg != "" {
		return errorResult(errMsg), nil
	}
	slog.Info("tool invoked", "tool", "get_lineage", "source", sourceID, "schema", schema, "table", table)

	return formatResult(s.catalog.GetLineage(ctx, sourceID, schema, table)), nil
}

// tableArgs extracts the common (data_source_id, schema_name, table_name)
// argument triple, returning a non-empty message on validation failure.
func tableArgs(request mcp.CallToolRequest) (int, string, string, string) {
	sourceID, err := request.RequireInt("data_source_id")
	if err != nil {
		return 0, "", "", "data_source_id must be an integer"
	}
	schema, err := request.RequireString("schema_name")
	if err != nil {
		return 0, "", "", "schema_name and table_name are required"
	}
	table, err := request.RequireString("table_name")
	if err != nil {
		return 0, "", "", "schema_name and table_name are required"
	}
	if schema == "" || table == "" {
		return 0, "", "", "schema_name and table_name are required"
	}
	return sourceID, schema, table, ""
}
