package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/gql"
)

// supportedFormat is the only data source format discovery exposes;
// tables in other formats are skipped with a warning.
const supportedFormat = "DELTA"

// catalogAPI is the slice of Client discovery needs; tests fake it.
type catalogAPI interface {
	ListTables(ctx context.Context, catalogName, schemaName string) ([]TableInfo, error)
	GetTable(ctx context.Context, fullName string) (*TableMetadata, error)
}

// DiscoverEntities lists one catalog schema and synthesizes an entity
// config per supported table: GraphQL type name from the singularized
// table name, primary key inferred from metadata.
func DiscoverEntities(ctx context.Context, api catalogAPI, catalogName, schemaName string, logger *zap.Logger) ([]gql.Entity, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("discovery")

	tables, err := api.ListTables(ctx, catalogName, schemaName)
	if err != nil {
		return nil, err
	}

	entities := make([]gql.Entity, 0, len(tables))
	for _, table := range tables {
		if table.DataSourceFormat != supportedFormat {
			logger.Warn("skipping table with unsupported format",
				zap.String("table", table.Name),
				zap.String("format", table.DataSourceFormat))
			continue
		}

		fullName := table.CatalogName + "." + table.SchemaName + "." + table.Name
		meta, err := api.GetTable(ctx, fullName)
		if err != nil {
			return nil, err
		}

		pk, err := inferPrimaryKey(table, meta)
		if err != nil {
			return nil, err
		}

		description := table.Comment
		if description == "" {
			description = meta.Comment
		}

		entities = append(entities, gql.Entity{
			Table:       fullName,
			Name:        EntityName(table.Name),
			PrimaryKey:  pk,
			Description: description,
		})
	}
	return entities, nil
}

// inferPrimaryKey picks the key column for a discovered table:
// an explicit primary_key property, then a column named "id", then the
// first column ending in "_id", then the first column.
func inferPrimaryKey(table TableInfo, meta *TableMetadata) (string, error) {
	if pk, ok := table.Properties["primary_key"]; ok {
		return pk, nil
	}
	if pk, ok := meta.Properties["primary_key"]; ok {
		return pk, nil
	}
	for _, col := range meta.Columns {
		if col.Name == "id" {
			return col.Name, nil
		}
	}
	for _, col := range meta.Columns {
		if strings.HasSuffix(col.Name, "_id") {
			return col.Name, nil
		}
	}
	if len(meta.Columns) > 0 {
		return meta.Columns[0].Name, nil
	}
	return "", fmt.Errorf("table %q has no columns", meta.FullName())
}

// EntityName derives the GraphQL type name from a snake_case table
// name: singularized, then PascalCased ("customer_orders" ->
// "CustomerOrder").
func EntityName(tableName string) string {
	var b strings.Builder
	for _, word := range strings.Split(inflection.Singular(tableName), "_") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}
