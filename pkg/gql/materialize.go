package gql

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/schema"
)

// unixEpoch anchors date columns stored as days-since-epoch.
var unixEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// stringTimestampLayouts are tried in order when an engine hands back a
// timestamp as text instead of time.Time.
var stringTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// Materialize converts one engine row into an ordered object value. Only
// the compiled (already-filtered) fields are visited, in schema order;
// field names are exactly the column names. Null cells become null values
// without type-specific conversion.
func Materialize(fields []schema.Column, row engine.Row) (*Object, error) {
	obj := NewObject(len(fields))
	for _, col := range fields {
		cell, ok := row[col.Name]
		if !ok || cell == nil {
			obj.Set(col.Name, Null())
			continue
		}
		v, err := convertCell(col.Name, col.Type, cell)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w: %w", col.Name, apperrors.ErrConversionFailure, err)
		}
		obj.Set(col.Name, v)
	}
	return obj, nil
}

func convertCell(name string, t schema.Type, cell any) (Value, error) {
	switch {
	case t.IsInteger():
		n, err := coerceInt64(cell)
		if err != nil {
			return Value{}, err
		}
		if isIdentifierColumn(name) {
			return StringValue(strconv.FormatInt(n, 10)), nil
		}
		return IntValue(n), nil

	case t.IsFloat():
		f, err := coerceFloat64(cell)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil

	case t.Kind == schema.Utf8:
		s, err := coerceString(cell)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil

	case t.Kind == schema.Boolean:
		b, err := coerceBool(cell)
		if err != nil {
			return Value{}, err
		}
		return BooleanValue(b), nil

	case t.Kind == schema.Date:
		s, err := formatDate(cell)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil

	case t.Kind == schema.Timestamp:
		s, err := formatTimestamp(cell)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil

	case t.Kind == schema.List:
		if t.Elem == nil {
			return Value{}, fmt.Errorf("list type without element type")
		}
		items, ok := cell.([]any)
		if !ok {
			return Value{}, fmt.Errorf("unexpected list value of type %T", cell)
		}
		out := make([]Value, 0, len(items))
		for _, item := range items {
			if item == nil {
				out = append(out, Null())
				continue
			}
			// List elements never inherit the _id rule; they have no name.
			v, err := convertCell("", *t.Elem, item)
			if err != nil {
				return Value{}, err
			}
			out = append(out, v)
		}
		return ListValue(out), nil
	}

	// Unsupported kinds are filtered at schema build time and can never
	// reach the materializer.
	return Value{}, fmt.Errorf("unsupported column type %s", t)
}

func coerceInt64(cell any) (int64, error) {
	switch v := cell.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("unsigned value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		n := int64(v)
		if float64(n) != v {
			return 0, fmt.Errorf("fractional value %v in integer column", v)
		}
		return n, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	}
	return 0, fmt.Errorf("unexpected integer value of type %T", cell)
}

func coerceFloat64(cell any) (float64, error) {
	switch v := cell.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	}
	return 0, fmt.Errorf("unexpected float value of type %T", cell)
}

func coerceString(cell any) (string, error) {
	switch v := cell.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unexpected string value of type %T", cell)
}

func coerceBool(cell any) (bool, error) {
	switch v := cell.(type) {
	case bool:
		return v, nil
	case int64:
		// SQLite stores booleans as 0/1 integers.
		return v != 0, nil
	case string:
		return strconv.ParseBool(v)
	}
	return false, fmt.Errorf("unexpected boolean value of type %T", cell)
}

func formatDate(cell any) (string, error) {
	switch v := cell.(type) {
	case time.Time:
		return v.Format(dateLayout), nil
	case string:
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return "", fmt.Errorf("parse date %q: %w", v, err)
		}
		return d.Format(dateLayout), nil
	case int32:
		return unixEpoch.AddDate(0, 0, int(v)).Format(dateLayout), nil
	case int64:
		// Days since epoch, as columnar formats store Date32.
		return unixEpoch.AddDate(0, 0, int(v)).Format(dateLayout), nil
	}
	return "", fmt.Errorf("unexpected date value of type %T", cell)
}

func formatTimestamp(cell any) (string, error) {
	switch v := cell.(type) {
	case time.Time:
		return v.UTC().Format(timestampLayout), nil
	case string:
		for _, layout := range stringTimestampLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts.UTC().Format(timestampLayout), nil
			}
		}
		return "", fmt.Errorf("parse timestamp %q", v)
	}
	return "", fmt.Errorf("unexpected timestamp value of type %T", cell)
}
