package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// getter is the slice of Client the adapter needs; tests substitute a stub.
type getter interface {
	Get(ctx context.Context, endpoint string, params url.Values) (any, bool)
}

// Adapter composes the retrying client and both caches into typed, null-safe
// accessors over the catalog API. Upstream absence becomes an empty
// collection or an unknown field, never an error.
type Adapter struct {
	client    getter
	responses *ResponseCache
	ids       *IdentifierCache
	ttl       time.Duration
}

// NewAdapter builds an Adapter. ttl governs how long memoized lookups stay
// fresh; identifiers are cached for the process lifetime regardless.
func NewAdapter(client getter, responses *ResponseCache, ids *IdentifierCache, ttl time.Duration) *Adapter {
	return &Adapter{client: client, responses: responses, ids: ids, ttl: ttl}
}

// ClearCaches drops all memoized responses and resolved identifiers.
func (a *Adapter) ClearCaches() {
	a.responses.Clear()
	a.ids.Clear()
	slog.Info("catalog caches cleared")
}

// ListDataSources returns all accessible data sources.
func (a *Adapter) ListDataSources(ctx context.Context) []DataSource {
	const cacheKey = "data_sources"
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.([]DataSource)
	}

	data, ok := a.client.Get(ctx, "/integration/v1/datasource/", nil)
	if !ok {
		slog.Warn("failed to retrieve data sources")
		return []DataSource{}
	}

	sources := make([]DataSource, 0)
	for _, raw := range asList(data) {
		sources = append(sources, DataSource{
			ID:          intField(raw, "id"),
			Name:        stringField(raw, "title"),
			Type:        stringField(raw, "dbtype"),
			Description: stringField(raw, "description"),
		})
	}

	a.responses.Put(cacheKey, sources, a.ttl)
	return sources
}

// ListSchemas returns the schemas in a data source.
func (a *Adapter) ListSchemas(ctx context.Context, sourceID int) []Schema {
	cacheKey := fmt.Sprintf("schemas_%d", sourceID)
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.([]Schema)
	}

	params := url.Values{"ds_id": {strconv.Itoa(sourceID)}}
	data, ok := a.client.Get(ctx, "/integration/v2/schema/", params)
	if !ok {
		slog.Warn("no schemas found", "source", sourceID)
		return []Schema{}
	}

	schemas := make([]Schema, 0)
	for _, raw := range asList(data) {
		schemas = append(schemas, Schema{
			Name:        stringField(raw, "name"),
			Description: stringField(raw, "description"),
		})
	}

	a.responses.Put(cacheKey, schemas, a.ttl)
	return schemas
}

// ListTables returns the tables in a schema.
func (a *Adapter) ListTables(ctx context.Context, sourceID int, schema string) []Table {
	cacheKey := fmt.Sprintf("tables_%d_%s", sourceID, schema)
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.([]Table)
	}

	params := url.Values{
		"ds_id":       {strconv.Itoa(sourceID)},
		"schema_name": {schema},
	}
	data, ok := a.client.Get(ctx, "/integration/v2/table/", params)
	if !ok {
		slog.Warn("no tables found", "source", sourceID, "schema", schema)
		return []Table{}
	}

	tables := make([]Table, 0)
	for _, raw := range asList(data) {
		tables = append(tables, Table{
			Name:       stringField(raw, "name"),
			Type:       stringField(raw, "table_type"),
			RowCount:   numberField(raw, "number_of_rows"),
			Popularity: numberField(raw, "popularity"),
		})
	}

	a.responses.Put(cacheKey, tables, a.ttl)
	return tables
}

// GetTableMetadata returns the detail payload for one table, or nil when the
// table cannot be found.
func (a *Adapter) GetTableMetadata(ctx context.Context, sourceID int, schema, table string) *TableMetadata {
	cacheKey := fmt.Sprintf("table_meta_%d_%s_%s", sourceID, schema, table)
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.(*TableMetadata)
	}

	params := url.Values{
		"ds_id":       {strconv.Itoa(sourceID)},
		"schema_name": {schema},
		"name":        {table},
	}
	data, ok := a.client.Get(ctx, "/integration/v2/table/", params)
	rows := asList(data)
	if !ok || len(rows) == 0 {
		slog.Warn("table not found", "source", sourceID, "schema", schema, "table", table)
		return nil
	}

	// The catalog returns a list; take the first match.
	raw := rows[0]
	trust, _ := raw["trust_flags"].(map[string]any)

	meta := &TableMetadata{
		Name:          stringField(raw, "name"),
		Description:   stringField(raw, "description"),
		Owner:         stringField(raw, "owner"),
		Steward:       stringField(raw, "steward"),
		Certification: stringField(trust, "certification"),
		TrustStatus:   stringField(trust, "endorsement"),
		LastUpdated:   stringField(raw, "ts_updated"),
		SampleQueries: listField(raw, "sample_queries"),
	}

	a.responses.Put(cacheKey, meta, a.ttl)
	return meta
}

// tableID resolves the catalog's internal identifier for a table. The result
// is cached without expiry so the column and lineage paths share one lookup.
func (a *Adapter) tableID(ctx context.Context, sourceID int, schema, table string) (int, bool) {
	if id, ok := a.ids.Get(sourceID, schema, table); ok {
		return id, true
	}

	params := url.Values{
		"ds_id":       {strconv.Itoa(sourceID)},
		"schema_name": {schema},
		"name":        {table},
	}
	data, ok := a.client.Get(ctx, "/integration/v2/table/", params)
	rows := asList(data)
	if !ok || len(rows) == 0 {
		slog.Warn("table not found for identifier lookup", "schema", schema, "table", table)
		return 0, false
	}

	id, ok := asInt(rows[0]["id"])
	if !ok {
		return 0, false
	}
	a.ids.Put(sourceID, schema, table, id)
	slog.Info("cached table identifier", "schema", schema, "table", table, "id", id)
	return id, true
}

// GetColumnMetadata returns the columns of a table, trying three upstream
// API variants in order and stopping at the first non-empty result:
//
//  1. the integration column endpoint with a schema-qualified table name
//  2. the catalog column endpoint keyed by resolved table identifier
//  3. the embedded column list of the full table object
//
// The catalog's column surface is inconsistent across deployments, so no
// single variant can be relied on. All three empty yields an empty slice.
func (a *Adapter) GetColumnMetadata(ctx context.Context, sourceID int, schema, table string) []Column {
	cacheKey := fmt.Sprintf("columns_%d_%s_%s", sourceID, schema, table)
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.([]Column)
	}

	qualified := schema + "." + table
	params := url.Values{
		"ds_id":      {strconv.Itoa(sourceID)},
		"table_name": {qualified},
	}
	data, ok := a.client.Get(ctx, "/integration/v2/column/", params)
	if rows := asList(data); ok && len(rows) > 0 {
		slog.Info("integration API returned columns", "table", qualified, "count", len(rows))
		cols := mapColumns(rows, "column_type", "flags")
		a.responses.Put(cacheKey, cols, a.ttl)
		return cols
	}

	tableID, ok := a.tableID(ctx, sourceID, schema, table)
	if !ok {
		slog.Warn("cannot resolve table for column lookup", "schema", schema, "table", table)
		return []Column{}
	}

	params = url.Values{"table_id": {strconv.Itoa(tableID)}}
	data, ok = a.client.Get(ctx, "/catalog/column/", params)
	if rows := asList(data); ok && len(rows) > 0 {
		slog.Info("catalog API returned columns", "table", qualified, "count", len(rows))
		cols := mapColumns(rows, "data_type", "custom_fields")
		a.responses.Put(cacheKey, cols, a.ttl)
		return cols
	}

	data, ok = a.client.Get(ctx, fmt.Sprintf("/catalog/table/%d/", tableID), nil)
	if obj := asMap(data); ok && obj != nil {
		if rows := asList(obj["columns"]); len(rows) > 0 {
			slog.Info("table object contained columns", "table", qualified, "count", len(rows))
			cols := mapColumns(rows, "data_type", "custom_fields")
			a.responses.Put(cacheKey, cols, a.ttl)
			return cols
		}
	}

	slog.Warn("no columns found after all API variants", "schema", schema, "table", table)
	return []Column{}
}

// GetLineage returns upstream/downstream lineage for a table. Any missing
// piece collapses to the unknown triple rather than a partial result.
func (a *Adapter) GetLineage(ctx context.Context, sourceID int, schema, table string) Lineage {
	cacheKey := fmt.Sprintf("lineage_%d_%s_%s", sourceID, schema, table)
	if cached, ok := a.responses.Get(cacheKey); ok {
		return cached.(Lineage)
	}

	tableID, ok := a.tableID(ctx, sourceID, schema, table)
	if !ok {
		slog.Warn("cannot resolve table for lineage lookup", "table", table)
		return UnknownLineage()
	}

	params := url.Values{
		"oid":   {strconv.Itoa(tableID)},
		"otype": {"table"},
	}
	data, ok := a.client.Get(ctx, "/integration/v2/lineage/", params)
	obj := asMap(data)
	if !ok || obj == nil {
		slog.Warn("lineage data not available", "table", table)
		return UnknownLineage()
	}

	lineage := Lineage{
		UpstreamTables:        lineageKeys(obj["upstream"]),
		DownstreamTables:      lineageKeys(obj["downstream"]),
		TransformationContext: stringField(obj, "sql"),
	}

	a.responses.Put(cacheKey, lineage, a.ttl)
	return lineage
}

// mapColumns converts raw column rows, preferring typeKey for the data type
// and falling back to the other conventional key.
func mapColumns(rows []map[string]any, typeKey, classKey string) []Column {
	cols := make([]Column, 0, len(rows))
	for _, raw := range rows {
		dataType := stringField(raw, typeKey)
		if !dataType.IsKnown() {
			alt := "data_type"
			if typeKey == "data_type" {
				alt = "column_type"
			}
			dataType = stringField(raw, alt)
		}
		cols = append(cols, Column{
			Name:           stringField(raw, "name"),
			DataType:       dataType,
			Description:    stringField(raw, "description"),
			Nullable:       boolField(raw, "nullable"),
			Classification: listField(raw, classKey),
		})
	}
	return cols
}

// lineageKeys extracts the "key" of each lineage node; an empty or missing
// list is unknown.
func lineageKeys(v any) Field[[]string] {
	nodes := asList(v)
	if len(nodes) == 0 {
		return Unknown[[]string]()
	}
	keys := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if k, ok := node["key"].(string); ok && k != "" {
			keys = append(keys, k)
		} else {
			keys = append(keys, unknownValue)
		}
	}
	return Known(keys)
}

// ---- loose payload helpers -------------------------------------------------

func asList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			rows = append(rows, m)
		}
	}
	return rows
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func intField(m map[string]any, key string) Field[int] {
	return KnownOr(asInt(m[key]))
}

func numberField(m map[string]any, key string) Field[float64] {
	n, ok := m[key].(float64)
	return KnownOr(n, ok)
}

func boolField(m map[string]any, key string) Field[bool] {
	b, ok := m[key].(bool)
	return KnownOr(b, ok)
}

// listField treats a missing or empty list as unknown, matching how the
// catalog reports absent collections.
func listField(m map[string]any, key string) Field[[]any] {
	items, ok := m[key].([]any)
	if !ok || len(items) == 0 {
		return Unknown[[]any]()
	}
	return Known(items)
}
