package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tablefront/tablefront/pkg/schema"
)

func TestSplitTableID(t *testing.T) {
	s, n := splitTableID("verbs")
	assert.Equal(t, "public", s)
	assert.Equal(t, "verbs", n)

	s, n = splitTableID("sales.verbs")
	assert.Equal(t, "sales", s)
	assert.Equal(t, "verbs", n)
}

func TestPgType(t *testing.T) {
	cases := map[string]schema.Kind{
		"smallint":                    schema.Int16,
		"integer":                     schema.Int32,
		"bigint":                      schema.Int64,
		"real":                        schema.Float32,
		"double precision":            schema.Float64,
		"numeric":                     schema.Float64,
		"text":                        schema.Utf8,
		"character varying":           schema.Utf8,
		"uuid":                        schema.Utf8,
		"boolean":                     schema.Boolean,
		"date":                        schema.Date,
		"timestamp without time zone": schema.Timestamp,
		"timestamp with time zone":    schema.Timestamp,
		"array":                       schema.Other,
		"jsonb":                       schema.Other,
	}
	for text, want := range cases {
		assert.Equal(t, want, pgType(text).Kind, "data type %q", text)
	}
}
