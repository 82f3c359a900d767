package catalog

// listTablesResponse is the wire shape of the table-listing endpoint.
type listTablesResponse struct {
	Tables []TableInfo `json:"tables"`
}

// TableInfo is the summary record returned when listing a schema.
type TableInfo struct {
	Name             string            `json:"name"`
	CatalogName      string            `json:"catalog_name"`
	SchemaName       string            `json:"schema_name"`
	TableType        string            `json:"table_type"`
	DataSourceFormat string            `json:"data_source_format"`
	StorageLocation  string            `json:"storage_location,omitempty"`
	Comment          string            `json:"comment,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
}

// TableMetadata is the detailed record for one table, including columns.
type TableMetadata struct {
	Name             string            `json:"name"`
	CatalogName      string            `json:"catalog_name"`
	SchemaName       string            `json:"schema_name"`
	TableType        string            `json:"table_type"`
	DataSourceFormat string            `json:"data_source_format"`
	Columns          []ColumnInfo      `json:"columns"`
	StorageLocation  string            `json:"storage_location,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"`
	Comment          string            `json:"comment,omitempty"`
}

// FullName returns the three-part table identifier.
func (t TableMetadata) FullName() string {
	return t.CatalogName + "." + t.SchemaName + "." + t.Name
}

// ColumnInfo is one column as the catalog describes it.
type ColumnInfo struct {
	Name     string `json:"name"`
	TypeText string `json:"type_text"`
	TypeName string `json:"type_name"`
	Position int    `json:"position"`
	Nullable bool   `json:"nullable"`
	Comment  string `json:"comment,omitempty"`
}
