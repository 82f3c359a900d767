// Package postgres is the PostgreSQL query engine: relations registered
// at build time map to quoted, qualified table names, and resolver
// queries execute as parameterized SELECTs on a pgx pool. The pool also
// serves as the metadata provider via information_schema introspection.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/logging"
	"github.com/tablefront/tablefront/pkg/schema"
)

// Engine executes resolver queries against a PostgreSQL database.
type Engine struct {
	pool   *pgxpool.Pool
	logger *zap.Logger

	mu        sync.RWMutex
	relations map[string]relation
}

type relation struct {
	qualified string // quoted, schema-qualified table reference
	table     *schema.Table
}

// New connects a pool to the given DSN.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres %s: %w",
			logging.SanitizeConnectionString(dsn), err)
	}
	return &Engine{
		pool:      pool,
		logger:    logger.Named("postgres-engine"),
		relations: make(map[string]relation),
	}, nil
}

// TableSchema introspects the table's columns via information_schema.
// tableID is either "table" (public schema) or "schema.table".
func (e *Engine) TableSchema(ctx context.Context, tableID string) (*schema.Table, error) {
	schemaName, tableName := splitTableID(tableID)

	const query = `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := e.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("introspect %q: %w", tableID, err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var name, dataType, isNullable string
		if err := rows.Scan(&name, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:     name,
			Type:     pgType(dataType),
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q not found", tableID)
	}
	return schema.NewTable(cols...)
}

// Register binds the relation name to its quoted, qualified table.
func (e *Engine) Register(ctx context.Context, rel string, src engine.Source) error {
	schemaName, tableName := splitTableID(src.Table)
	qualified := pgx.Identifier{schemaName, tableName}.Sanitize()

	e.mu.Lock()
	e.relations[rel] = relation{qualified: qualified, table: src.Schema}
	e.mu.Unlock()

	e.logger.Info("registered relation",
		zap.String("relation", rel),
		zap.String("table", qualified))
	return nil
}

// Select executes the query with pgx parameter binding; a key value can
// never alter the statement text.
func (e *Engine) Select(ctx context.Context, q engine.Query) ([]engine.Row, error) {
	e.mu.RLock()
	rel, ok := e.relations[q.Relation]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("relation %q: %w", q.Relation, apperrors.ErrRelationNotRegistered)
	}

	var (
		query string
		args  []any
	)
	switch {
	case q.Filter != nil:
		query = fmt.Sprintf("SELECT * FROM %s WHERE %s = $1",
			rel.qualified, pgx.Identifier{q.Filter.Column}.Sanitize())
		args = []any{q.Filter.Value}
	case q.Page != nil:
		query = fmt.Sprintf("SELECT * FROM %s LIMIT $1 OFFSET $2", rel.qualified)
		args = []any{q.Page.Limit, q.Page.Offset}
	default:
		return nil, fmt.Errorf("relation %q: query has neither filter nor page", q.Relation)
	}

	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := make([]engine.Row, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(engine.Row, len(fields))
		for i, fd := range fields {
			row[string(fd.Name)] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close releases the pool.
func (e *Engine) Close() error {
	e.pool.Close()
	return nil
}

// splitTableID splits "schema.table" into its parts, defaulting the
// schema to public for bare table names.
func splitTableID(tableID string) (schemaName, tableName string) {
	if i := strings.LastIndex(tableID, "."); i >= 0 {
		return tableID[:i], tableID[i+1:]
	}
	return "public", tableID
}

// pgType maps an information_schema data_type to the columnar model.
func pgType(dataType string) schema.Type {
	switch strings.ToLower(dataType) {
	case "smallint":
		return schema.Primitive(schema.Int16)
	case "integer":
		return schema.Primitive(schema.Int32)
	case "bigint":
		return schema.Primitive(schema.Int64)
	case "real":
		return schema.Primitive(schema.Float32)
	case "double precision", "numeric":
		return schema.Primitive(schema.Float64)
	case "text", "character varying", "character", "uuid":
		return schema.Primitive(schema.Utf8)
	case "boolean":
		return schema.Primitive(schema.Boolean)
	case "date":
		return schema.Primitive(schema.Date)
	case "timestamp without time zone", "timestamp with time zone":
		return schema.Primitive(schema.Timestamp)
	case "array":
		// information_schema does not expose the element type here;
		// ARRAY columns surface as unsupported and are dropped.
		return schema.Primitive(schema.Other)
	default:
		return schema.Primitive(schema.Other)
	}
}
