package sqlite

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/tablefront/tablefront/pkg/schema"
)

// dataset is one parsed CSV file: its header, data records, and the
// schema inferred from them.
type dataset struct {
	schema      *schema.Table
	header      []string
	records     [][]string
	columnIndex map[string]int
}

// readCSV parses the file and infers a column schema from its values.
func readCSV(path string) (*dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("csv %q has no header row", path)
	}

	header := all[0]
	records := all[1:]

	tbl, err := inferSchema(header, records)
	if err != nil {
		return nil, fmt.Errorf("infer schema for %q: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	return &dataset{
		schema:      tbl,
		header:      header,
		records:     records,
		columnIndex: index,
	}, nil
}

// inferSchema sniffs a column type per header field from the data rows.
// A column is nullable when any of its cells is empty. Columns with no
// non-empty cells fall back to nullable text.
func inferSchema(header []string, records [][]string) (*schema.Table, error) {
	cols := make([]schema.Column, 0, len(header))
	for i, name := range header {
		kind := schema.Kind(-1)
		nullable := false
		for _, record := range records {
			if i >= len(record) {
				nullable = true
				continue
			}
			cell := record[i]
			if cell == "" {
				nullable = true
				continue
			}
			kind = narrowKind(kind, sniffKind(cell))
		}
		if kind == schema.Kind(-1) {
			kind = schema.Utf8
			nullable = true
		}
		cols = append(cols, schema.Column{
			Name:     name,
			Type:     schema.Primitive(kind),
			Nullable: nullable,
		})
	}
	return schema.NewTable(cols...)
}

// sniffKind classifies a single non-empty cell.
func sniffKind(cell string) schema.Kind {
	if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return schema.Int64
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return schema.Float64
	}
	if cell == "true" || cell == "false" {
		return schema.Boolean
	}
	if _, err := time.Parse("2006-01-02", cell); err == nil {
		return schema.Date
	}
	if _, err := time.Parse(time.RFC3339, cell); err == nil {
		return schema.Timestamp
	}
	return schema.Utf8
}

// narrowKind merges the kind seen so far with the next cell's kind,
// widening to the most general type that fits both.
func narrowKind(seen, next schema.Kind) schema.Kind {
	if seen == schema.Kind(-1) || seen == next {
		return next
	}
	// Integers widen to floats; everything else degrades to text.
	if (seen == schema.Int64 && next == schema.Float64) ||
		(seen == schema.Float64 && next == schema.Int64) {
		return schema.Float64
	}
	return schema.Utf8
}

// cellValue converts one CSV cell into the value bound to the insert
// statement. Empty cells are stored as NULL.
func cellValue(raw string, t schema.Type) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch {
	case t.IsInteger():
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", raw)
		}
		return n, nil
	case t.IsFloat():
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", raw)
		}
		return f, nil
	case t.Kind == schema.Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}
