package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_RejectsDuplicateNames(t *testing.T) {
	_, err := NewTable(
		Column{Name: "id", Type: Primitive(Int64)},
		Column{Name: "id", Type: Primitive(Utf8)},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"id"`)
}

func TestTable_ColumnLookup(t *testing.T) {
	tbl, err := NewTable(
		Column{Name: "verb_id", Type: Primitive(Int64)},
		Column{Name: "word", Type: Primitive(Utf8), Nullable: true},
	)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	col, ok := tbl.Column("word")
	require.True(t, ok)
	assert.Equal(t, Utf8, col.Type.Kind)
	assert.True(t, col.Nullable)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestType_Predicates(t *testing.T) {
	for _, k := range []Kind{Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64} {
		assert.True(t, Primitive(k).IsInteger(), "kind %s", k)
		assert.False(t, Primitive(k).IsFloat(), "kind %s", k)
	}
	assert.True(t, Primitive(Float32).IsFloat())
	assert.True(t, Primitive(Float64).IsFloat())
	assert.False(t, Primitive(Utf8).IsInteger())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "int64", Primitive(Int64).String())
	assert.Equal(t, "list<utf8>", ListOf(Primitive(Utf8), true).String())
	assert.Equal(t, "list<list<int32>>",
		ListOf(ListOf(Primitive(Int32), false), true).String())
}
