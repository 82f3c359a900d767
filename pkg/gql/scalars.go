package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

const (
	dateLayout = "2006-01-02"
	// timestampLayout always carries fractional seconds and a Z suffix;
	// materialized timestamps are normalized to UTC first.
	timestampLayout = "2006-01-02T15:04:05.000000Z"
)

// DateScalar is the calendar date scalar, lexical form YYYY-MM-DD.
var DateScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Date",
	Description: "Calendar date in ISO 8601 form (YYYY-MM-DD).",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case string:
			return v
		case time.Time:
			return v.Format(dateLayout)
		}
		return nil
	},
	ParseValue: func(value any) any {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return nil
		}
		return s
	},
	ParseLiteral: func(valueAST ast.Value) any {
		sv, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		if _, err := time.Parse(dateLayout, sv.Value); err != nil {
			return nil
		}
		return sv.Value
	},
})

// DateTimeScalar is the timestamp scalar: UTC ISO 8601 with fractional
// seconds and a trailing Z, regardless of the stored precision or zone.
var DateTimeScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "UTC timestamp in ISO 8601 form with fractional seconds and a Z suffix.",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case string:
			return v
		case time.Time:
			return v.UTC().Format(timestampLayout)
		}
		return nil
	},
	ParseValue: func(value any) any {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if _, err := time.Parse(time.RFC3339Nano, s); err != nil {
			return nil
		}
		return s
	},
	ParseLiteral: func(valueAST ast.Value) any {
		sv, ok := valueAST.(*ast.StringValue)
		if !ok {
			return nil
		}
		if _, err := time.Parse(time.RFC3339Nano, sv.Value); err != nil {
			return nil
		}
		return sv.Value
	},
})
