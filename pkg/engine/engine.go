// Package engine defines the table query engine boundary: the interface
// the GraphQL resolvers submit queries to, and the query expressions they
// are allowed to build. Implementations live in subpackages (sqlite,
// postgres, mssql) and must bind values as parameters only — a key value
// can never alter query structure.
package engine

import (
	"context"

	"github.com/tablefront/tablefront/pkg/schema"
)

// MaxListLimit is the hard cap on rows returned by a page query. The
// resolver clamps requested limits to this bound before submission.
const MaxListLimit = 1000

// Row is one engine-returned row, addressable by column name.
type Row = map[string]any

// Source describes the physical dataset backing a relation. Table is the
// engine-side identifier (a qualified table name for SQL engines, a CSV
// path for the embedded engine). Schema, when set, pins the column schema
// so embedded engines do not re-infer it.
type Source struct {
	Table  string
	Schema *schema.Table
}

// EqFilter selects rows whose Column equals Value.
type EqFilter struct {
	Column string
	Value  any
}

// Page selects a bounded window of rows in the engine's default order.
// No ordering guarantee is made across calls or across engines.
type Page struct {
	Limit  int
	Offset int
}

// Query addresses a registered relation with exactly one of an equality
// filter or a page.
type Query struct {
	Relation string
	Filter   *EqFilter
	Page     *Page
}

// Engine executes queries against registered relations. Register binds a
// relation name to its source once at schema build time; Select must be
// safe for concurrent use by any number of in-flight queries.
type Engine interface {
	Register(ctx context.Context, relation string, src Source) error
	Select(ctx context.Context, q Query) ([]Row, error)
	Close() error
}
