package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablefront/tablefront/pkg/schema"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_InfersTypes(t *testing.T) {
	path := writeCSV(t, `verb_id,word,score,active,born,seen_at
1,be,0.5,true,2020-01-15,2024-03-09T13:30:00Z
2,go,1.25,false,2021-06-01,2024-03-10T08:00:00Z
`)

	ds, err := readCSV(path)
	require.NoError(t, err)
	require.Equal(t, 6, ds.schema.Len())

	wantKinds := map[string]schema.Kind{
		"verb_id": schema.Int64,
		"word":    schema.Utf8,
		"score":   schema.Float64,
		"active":  schema.Boolean,
		"born":    schema.Date,
		"seen_at": schema.Timestamp,
	}
	for name, want := range wantKinds {
		col, ok := ds.schema.Column(name)
		require.True(t, ok, "column %s", name)
		assert.Equal(t, want, col.Type.Kind, "column %s", name)
		assert.False(t, col.Nullable, "column %s", name)
	}
	assert.Len(t, ds.records, 2)
}

func TestReadCSV_EmptyCellsMakeColumnNullable(t *testing.T) {
	path := writeCSV(t, `id,note
1,hello
2,
`)

	ds, err := readCSV(path)
	require.NoError(t, err)

	note, ok := ds.schema.Column("note")
	require.True(t, ok)
	assert.True(t, note.Nullable)

	id, _ := ds.schema.Column("id")
	assert.False(t, id.Nullable)
}

func TestReadCSV_MixedIntFloatWidensToFloat(t *testing.T) {
	path := writeCSV(t, "value\n1\n2.5\n")

	ds, err := readCSV(path)
	require.NoError(t, err)

	col, _ := ds.schema.Column("value")
	assert.Equal(t, schema.Float64, col.Type.Kind)
}

func TestReadCSV_MixedScalarsDegradeToText(t *testing.T) {
	path := writeCSV(t, "value\n1\nhello\n")

	ds, err := readCSV(path)
	require.NoError(t, err)

	col, _ := ds.schema.Column("value")
	assert.Equal(t, schema.Utf8, col.Type.Kind)
}

func TestReadCSV_AllEmptyColumnFallsBackToText(t *testing.T) {
	path := writeCSV(t, "id,ghost\n1,\n2,\n")

	ds, err := readCSV(path)
	require.NoError(t, err)

	col, _ := ds.schema.Column("ghost")
	assert.Equal(t, schema.Utf8, col.Type.Kind)
	assert.True(t, col.Nullable)
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := readCSV(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := writeCSV(t, "")
	_, err := readCSV(path)
	require.Error(t, err)
}

func TestCellValue(t *testing.T) {
	v, err := cellValue("42", schema.Primitive(schema.Int64))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = cellValue("2.5", schema.Primitive(schema.Float64))
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = cellValue("true", schema.Primitive(schema.Boolean))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = cellValue("", schema.Primitive(schema.Int64))
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = cellValue("abc", schema.Primitive(schema.Int64))
	require.Error(t, err)
}
