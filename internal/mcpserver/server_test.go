package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/datasage/datasage/internal/catalog"
)

// stubCatalog returns fixed payloads for each accessor.
type stubCatalog struct {
	sources []catalog.DataSource
	schemas []catalog.Schema
	tables  []catalog.Table
	meta    *catalog.TableMetadata
	columns []catalog.Column
	lineage catalog.Lineage
}

func (s *stubCatalog) ListDataSources(context.Context) []catalog.DataSource { return s.sources }
func (s *stubCatalog) ListSchemas(context.Context, int) []catalog.Schema    { return s.schemas }
func (s *stubCatalog) ListTables(context.Context, int, string) []catalog.Table {
	return s.tables
}
func (s *stubCatalog) GetTableMetadata(context.Context, int, string, string) *catalog.TableMetadata {
	return s.meta
}
func (s *stubCatalog) GetColumnMetadata(context.Context, int, string, string) []catalog.Column {
	return s.columns
}
func (s *stubCatalog) GetLineage(context.Context, int, string, string) catalog.Lineage {
	return s.lineage
}

func toolRequest(name string, args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestHandleListDataSources(t *testing.T) {
	s := NewServer(&stubCatalog{sources: []catalog.DataSource{{
		ID:   catalog.Known(59),
		Name: catalog.Known("Adobe Analytics"),
	}}}, "localhost", 0)

	result, err := s.handleListDataSources(context.Background(), toolRequest("list_data_sources", nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"name": "Adobe Analytics"`) {
		t.Errorf("missing source name in: %s", text)
	}
	if !strings.Contains(text, `"type": "unknown"`) {
		t.Errorf("missing unknown sentinel in: %s", text)
	}
}

func TestHandleListDataSources_Empty(t *testing.T) {
	s := NewServer(&stubCatalog{}, "localhost", 0)

	result, err := s.handleListDataSources(context.Background(), toolRequest("list_data_sources", nil))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "Error: ") {
		t.Errorf("expected error payload, got: %s", text)
	}
}

func TestHandleListSchemas_BadArg(t *testing.T) {
	s := NewServer(&stubCatalog{}, "localhost", 0)

	result, err := s.handleListSchemas(context.Background(), toolRequest("list_schemas", map[string]any{
		"data_source_id": "not-a-number",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "must be an integer") {
		t.Errorf("expected validation message, got: %s", text)
	}
}

func TestHandleListTables(t *testing.T) {
	s := NewServer(&stubCatalog{tables: []catalog.Table{{
		Name:     catalog.Known("metrics"),
		RowCount: catalog.Known(1200.0),
	}}}, "localhost", 0)

	result, err := s.handleListTables(context.Background(), toolRequest("list_tables", map[string]any{
		"data_source_id": float64(59),
		"schema_name":    "events",
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, `"table_name": "metrics"`) {
		t.Errorf("missing table in: %s", text)
	}
}

func TestHandleGetTableMetadata_NotFound(t *testing.T) {
	s := NewServer(&stubCatalog{}, "localhost", 0)

	result, err := s.handleGetTableMetadata(context.Background(), toolRequest("get_table_metadata", map[string]any{
		"data_source_id": float64(59),
		"schema_name":    "events",
		"table_name":     "ghost",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if text := resultText(t, result); !strings.Contains(text, "events.ghost not found") {
		t.Errorf("expected not-found payload, got: %s", text)
	}
}

func TestHandleGetLineage_UnknownTriple(t *testing.T) {
	s := NewServer(&stubCatalog{lineage: catalog.UnknownLineage()}, "localhost", 0)

	result, err := s.handleGetLineage(context.Background(), toolRequest("get_lineage", map[string]any{
		"data_source_id": float64(59),
		"schema_name":    "events",
		"table_name":     "metrics",
	}))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	for _, key := range []string{"upstream_tables", "downstream_tables", "transformation_context"} {
		if !strings.Contains(text, `"`+key+`": "unknown"`) {
			t.Errorf("missing unknown %s in: %s", key, text)
		}
	}
}

func TestTableArgs_MissingTable(t *testing.T) {
	_, _, _, errMsg := tableArgs(toolRequest("get_column_metadata", map[string]any{
		"data_source_id": float64(59),
		"schema_name":    "events",
	}))
	if errMsg == "" {
		t.Fatal("expected validation failure for missing table_name")
	}
}
