package gql

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueKind tags the variants of the runtime value model.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBoolean
	KindNumber
	KindString
	KindList
	KindObject
)

// Value is the runtime value model returned by resolvers: a tagged union
// of null, boolean, number, string, list, and object. Values are built
// fresh per row by the materializer and owned by the caller.
type Value struct {
	kind     ValueKind
	boolean  bool
	intNum   int64
	floatNum float64
	isFloat  bool
	str      string
	list     []Value
	object   *Object
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// BooleanValue returns a boolean value.
func BooleanValue(b bool) Value {
	return Value{kind: KindBoolean, boolean: b}
}

// IntValue returns an integral number value.
func IntValue(i int64) Value {
	return Value{kind: KindNumber, intNum: i}
}

// FloatValue returns a fractional number value.
func FloatValue(f float64) Value {
	return Value{kind: KindNumber, floatNum: f, isFloat: true}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// ListValue returns a list value over the given items.
func ListValue(items []Value) Value {
	return Value{kind: KindList, list: items}
}

// ObjectValue wraps an object as a value.
func ObjectValue(o *Object) Value {
	return Value{kind: KindObject, object: o}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Native converts the value into the plain Go representation the GraphQL
// executor serializes: nil, bool, int64, float64, string, []any, or
// *Object for nested objects.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBoolean:
		return v.boolean
	case KindNumber:
		if v.isFloat {
			return v.floatNum
		}
		return v.intNum
	case KindString:
		return v.str
	case KindList:
		items := make([]any, len(v.list))
		for i, item := range v.list {
			items[i] = item.Native()
		}
		return items
	case KindObject:
		return v.object
	}
	return nil
}

// MarshalJSON renders the value; objects keep their field order.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBoolean:
		return json.Marshal(v.boolean)
	case KindNumber:
		if v.isFloat {
			return json.Marshal(v.floatNum)
		}
		return []byte(strconv.FormatInt(v.intNum, 10)), nil
	case KindString:
		return json.Marshal(v.str)
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return json.Marshal(v.object)
	}
	return []byte("null"), nil
}

// ObjectField is one named field of an object value.
type ObjectField struct {
	Name  string
	Value Value
}

// Object is an ordered set of named values. Field order matches the
// compiled entity's field order, which matches the table schema.
type Object struct {
	fields []ObjectField
	index  map[string]int
}

// NewObject returns an empty object with capacity for n fields.
func NewObject(n int) *Object {
	return &Object{
		fields: make([]ObjectField, 0, n),
		index:  make(map[string]int, n),
	}
}

// Set appends a field, replacing an existing field of the same name in
// place (order is preserved).
func (o *Object) Set(name string, v Value) {
	if i, ok := o.index[name]; ok {
		o.fields[i].Value = v
		return
	}
	o.index[name] = len(o.fields)
	o.fields = append(o.fields, ObjectField{Name: name, Value: v})
}

// Get returns the named field's value and whether it exists.
func (o *Object) Get(name string) (Value, bool) {
	if i, ok := o.index[name]; ok {
		return o.fields[i].Value, true
	}
	return Value{}, false
}

// Fields returns the fields in insertion order.
func (o *Object) Fields() []ObjectField {
	return o.fields
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.fields)
}

// MarshalJSON renders the object preserving field order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
