// Package apperrors defines the sentinel errors shared across the schema
// build and resolver layers. Callers wrap them with context via fmt.Errorf
// and classify with errors.Is.
package apperrors

import "errors"

// Schema build errors. Any of these aborts startup; a partial schema is
// never served.
var (
	ErrMissingPrimaryKey  = errors.New("primary key column not in table schema")
	ErrEmptyEntity        = errors.New("entity has no representable columns")
	ErrDuplicateType      = errors.New("duplicate GraphQL type name")
	ErrTableNotAccessible = errors.New("table not accessible")
)

// Resolver errors. These are isolated to the request that caused them and
// returned as structured GraphQL errors.
var (
	ErrArgumentMissing       = errors.New("required argument missing")
	ErrArgumentInvalid       = errors.New("argument value invalid")
	ErrDuplicateKey          = errors.New("primary key matched more than one row")
	ErrQueryEngineFailure    = errors.New("query engine failure")
	ErrConversionFailure     = errors.New("row value conversion failure")
	ErrRelationNotRegistered = errors.New("relation not registered")
)
