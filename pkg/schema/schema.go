// Package schema holds the columnar data model shared by the metadata
// providers, the query engines, and the GraphQL layer: primitive column
// types, columns, and ordered table schemas.
package schema

import "fmt"

// Kind enumerates the primitive column types a table column can carry.
// The set is closed: a column has exactly one Kind for the lifetime of
// the process (no live schema evolution).
type Kind int

const (
	Int8 Kind = iota
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float32
	Float64
	Utf8
	Boolean
	Date
	Timestamp
	List
	Struct
	Other
)

var kindNames = map[Kind]string{
	Int8:      "int8",
	Int16:     "int16",
	Int32:     "int32",
	Int64:     "int64",
	UInt8:     "uint8",
	UInt16:    "uint16",
	UInt32:    "uint32",
	UInt64:    "uint64",
	Float32:   "float32",
	Float64:   "float64",
	Utf8:      "utf8",
	Boolean:   "boolean",
	Date:      "date",
	Timestamp: "timestamp",
	List:      "list",
	Struct:    "struct",
	Other:     "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Type describes a column's type. Elem and ElemNullable are set only
// when Kind is List.
type Type struct {
	Kind         Kind
	Elem         *Type
	ElemNullable bool
}

// Primitive returns a Type with no element type.
func Primitive(k Kind) Type {
	return Type{Kind: k}
}

// ListOf returns a list type with the given element type.
func ListOf(elem Type, elemNullable bool) Type {
	return Type{Kind: List, Elem: &elem, ElemNullable: elemNullable}
}

// IsInteger reports whether the type is any signed or unsigned integer.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case Int8, Int16, Int32, Int64, UInt8, UInt16, UInt32, UInt64:
		return true
	}
	return false
}

// IsFloat reports whether the type is a floating-point number.
func (t Type) IsFloat() bool {
	return t.Kind == Float32 || t.Kind == Float64
}

func (t Type) String() string {
	if t.Kind == List && t.Elem != nil {
		return fmt.Sprintf("list<%s>", t.Elem)
	}
	return t.Kind.String()
}

// Column is one named, typed column of a table schema.
type Column struct {
	Name     string
	Type     Type
	Nullable bool
}

// Table is an ordered sequence of uniquely named columns. It is produced
// by a metadata provider and read-only afterwards.
type Table struct {
	Columns []Column

	byName map[string]int
}

// NewTable builds a table schema, rejecting duplicate column names.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		Columns: columns,
		byName:  make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.byName[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		t.byName[col.Name] = i
	}
	return t, nil
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) (Column, bool) {
	if t.byName != nil {
		if i, ok := t.byName[name]; ok {
			return t.Columns[i], true
		}
		return Column{}, false
	}
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

// Len returns the number of columns.
func (t *Table) Len() int {
	return len(t.Columns)
}
