package gql

import (
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/tablefront/tablefront/pkg/schema"
)

// identifierSuffix marks integer columns that surface as the ID scalar.
// API identifiers are transported as strings even though the underlying
// column is numeric, so 64-bit keys survive consumers that parse JSON
// numbers as floats.
const identifierSuffix = "_id"

func isIdentifierColumn(name string) bool {
	return strings.HasSuffix(name, identifierSuffix)
}

// MapType maps one column to its GraphQL output type. It returns nil for
// unsupported types (struct, other, lists of unsupported elements); the
// caller drops the column with a warning rather than failing the table.
//
// MapType is pure and deterministic: identical inputs always yield the
// same GraphQL type, which keeps schema fixtures reproducible.
func MapType(fieldName string, t schema.Type, nullable bool) graphql.Output {
	var base graphql.Output
	switch {
	case t.IsInteger():
		if isIdentifierColumn(fieldName) {
			base = graphql.ID
		} else {
			base = graphql.Int
		}
	case t.IsFloat():
		base = graphql.Float
	case t.Kind == schema.Utf8:
		base = graphql.String
	case t.Kind == schema.Boolean:
		base = graphql.Boolean
	case t.Kind == schema.Date:
		base = DateScalar
	case t.Kind == schema.Timestamp:
		base = DateTimeScalar
	case t.Kind == schema.List:
		if t.Elem == nil {
			return nil
		}
		inner := MapType("", *t.Elem, t.ElemNullable)
		if inner == nil {
			// A list of an unsupported element drops the whole field,
			// never a list of nulls.
			return nil
		}
		base = graphql.NewList(inner)
	default:
		return nil
	}

	// Nullability is orthogonal to the type-kind decision and applied last.
	if !nullable {
		return graphql.NewNonNull(base)
	}
	return base
}
