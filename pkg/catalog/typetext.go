package catalog

import (
	"strings"

	"github.com/tablefront/tablefront/pkg/schema"
)

// ParseTypeText converts a catalog column type expression ("bigint",
// "array<string>", "struct<a:int,b:string>", "decimal(10,2)") into the
// columnar type model. Unknown expressions become Other, which the
// schema compiler drops with a warning rather than failing the table.
func ParseTypeText(typeText string) schema.Type {
	text := strings.TrimSpace(strings.ToLower(typeText))

	if inner, ok := unwrap(text, "array"); ok {
		elem := ParseTypeText(inner)
		// Catalog type text carries no per-element nullability; treat
		// elements as nullable, matching the storage format's default.
		return schema.ListOf(elem, true)
	}
	if _, ok := unwrap(text, "struct"); ok {
		return schema.Primitive(schema.Struct)
	}
	if _, ok := unwrap(text, "map"); ok {
		return schema.Primitive(schema.Other)
	}

	// Strip precision arguments: decimal(10,2), varchar(255).
	if i := strings.IndexByte(text, '('); i >= 0 {
		text = text[:i]
	}

	switch text {
	case "tinyint", "byte":
		return schema.Primitive(schema.Int8)
	case "smallint", "short":
		return schema.Primitive(schema.Int16)
	case "int", "integer":
		return schema.Primitive(schema.Int32)
	case "bigint", "long":
		return schema.Primitive(schema.Int64)
	case "float", "real":
		return schema.Primitive(schema.Float32)
	case "double", "decimal", "numeric":
		return schema.Primitive(schema.Float64)
	case "string", "varchar", "char":
		return schema.Primitive(schema.Utf8)
	case "boolean":
		return schema.Primitive(schema.Boolean)
	case "date":
		return schema.Primitive(schema.Date)
	case "timestamp", "timestamp_ntz", "timestamp_ltz":
		return schema.Primitive(schema.Timestamp)
	default:
		return schema.Primitive(schema.Other)
	}
}

// unwrap returns the inner expression of wrapper<inner> when text uses
// the given wrapper.
func unwrap(text, wrapper string) (string, bool) {
	if !strings.HasPrefix(text, wrapper+"<") || !strings.HasSuffix(text, ">") {
		return "", false
	}
	return text[len(wrapper)+1 : len(text)-1], true
}

// TableSchemaFromColumns converts catalog columns, ordered by position,
// into a table schema.
func TableSchemaFromColumns(columns []ColumnInfo) (*schema.Table, error) {
	ordered := make([]ColumnInfo, len(columns))
	copy(ordered, columns)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Position < ordered[j-1].Position; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}

	cols := make([]schema.Column, 0, len(ordered))
	for _, c := range ordered {
		cols = append(cols, schema.Column{
			Name:     c.Name,
			Type:     ParseTypeText(c.TypeText),
			Nullable: c.Nullable,
		})
	}
	return schema.NewTable(cols...)
}
