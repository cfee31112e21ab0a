package catalog

// DataSource is one entry returned by ListDataSources.
type DataSource struct {
	ID          Field[int]    `json:"data_source_id"`
	Name        Field[string] `json:"name"`
	Type        Field[string] `json:"type"`
	Description Field[string] `json:"description"`
}

// Schema is one entry returned by ListSchemas.
type Schema struct {
	Name        Field[string] `json:"schema_name"`
	Description Field[string] `json:"schema_description"`
}

// Table is one entry returned by ListTables.
type Table struct {
	Name       Field[string]  `json:"table_name"`
	Type       Field[string]  `json:"table_type"`
	RowCount   Field[float64] `json:"row_count"`
	Popularity Field[float64] `json:"popularity"`
}

// TableMetadata is the detail payload returned by GetTableMetadata.
type TableMetadata struct {
	Name          Field[string] `json:"table_name"`
	Description   Field[string] `json:"table_description"`
	Owner         Field[string] `json:"owner"`
	Steward       Field[string] `json:"steward"`
	Certification Field[string] `json:"certification"`
	TrustStatus   Field[string] `json:"trust_status"`
	LastUpdated   Field[string] `json:"last_updated"`
	SampleQueries Field[[]any]  `json:"sample_queries"`
}

// Column is one entry returned by GetColumnMetadata.
type Column struct {
	Name           Field[string] `json:"column_name"`
	DataType       Field[string] `json:"data_type"`
	Description    Field[string] `json:"description"`
	Nullable       Field[bool]   `json:"nullable"`
	Classification Field[[]any]  `json:"classification"`
}

// Lineage is the payload returned by GetLineage. When lineage data is
// missing every field is unknown at once; consumers never see a partial mix.
type Lineage struct {
	UpstreamTables        Field[[]string] `json:"upstream_tables"`
	DownstreamTables      Field[[]string] `json:"downstream_tables"`
	TransformationContext Field[string]   `json:"transformation_context"`
}

// UnknownLineage is the single explicit "no lineage data" state.
func UnknownLineage() Lineage {
	return Lineage{
		UpstreamTables:        Unknown[[]string](),
		DownstreamTables:      Unknown[[]string](),
		TransformationContext: Unknown[string](),
	}
}
