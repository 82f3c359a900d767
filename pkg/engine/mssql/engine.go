// Package mssql is the SQL Server query engine. Relations map to
// bracket-quoted qualified tables; queries bind values as @p1/@p2
// parameters and page with OFFSET..FETCH.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/logging"
	"github.com/tablefront/tablefront/pkg/schema"
)

// Engine executes resolver queries against a SQL Server database.
type Engine struct {
	db     *sql.DB
	logger *zap.Logger

	mu        sync.RWMutex
	relations map[string]relation
}

type relation struct {
	qualified string
	table     *schema.Table
}

// New connects to the given DSN.
func New(dsn string, logger *zap.Logger) (*Engine, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to mssql %s: %w",
			logging.SanitizeConnectionString(dsn), err)
	}
	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing database handle (used by tests).
func NewWithDB(db *sql.DB, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		db:        db,
		logger:    logger.Named("mssql-engine"),
		relations: make(map[string]relation),
	}
}

// TableSchema introspects the table's columns via INFORMATION_SCHEMA.
func (e *Engine) TableSchema(ctx context.Context, tableID string) (*schema.Table, error) {
	schemaName, tableName := splitTableID(tableID)

	const query = `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
		ORDER BY ORDINAL_POSITION
	`
	rows, err := e.db.QueryContext(ctx, query, schemaName, tableName)
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
			Type:     mssqlType(dataType),
			Nullable: strings.EqualFold(isNullable, "YES"),
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

// Register binds the relation name to its bracket-quoted table.
func (e *Engine) Register(ctx context.Context, rel string, src engine.Source) error {
	schemaName, tableName := splitTableID(src.Table)
	qualified := quoteIdent(schemaName) + "." + quoteIdent(tableName)

	e.mu.Lock()
	e.relations[rel] = relation{qualified: qualified, table: src.Schema}
	e.mu.Unlock()

	e.logger.Info("registered relation",
		zap.String("relation", rel),
		zap.String("table", qualified))
	return nil
}

// Select executes the query with @pN parameter binding.
func (e *Engine) Select(ctx context.Context, q engine.Query) ([]engine.Row, error) {
	e.mu.RLock()
	rel, ok := e.relations[q.Relation]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("relation %q: %w", q.Relation, apperrors.ErrRelationNotRegistered)
	}

	query, args, err := buildSelect(rel.qualified, q)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Close closes the database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// buildSelect renders the statement for one query. SQL Server requires
// an ORDER BY for OFFSET..FETCH; ORDER BY (SELECT NULL) keeps the
// engine's default ordering without promising one.
func buildSelect(qualified string, q engine.Query) (string, []any, error) {
	switch {
	case q.Filter != nil:
		query := fmt.Sprintf("SELECT * FROM %s WHERE %s = @p1",
			qualified, quoteIdent(q.Filter.Column))
		return query, []any{q.Filter.Value}, nil
	case q.Page != nil:
		query := fmt.Sprintf(
			"SELECT * FROM %s ORDER BY (SELECT NULL) OFFSET @p1 ROWS FETCH NEXT @p2 ROWS ONLY",
			qualified)
		return query, []any{q.Page.Offset, q.Page.Limit}, nil
	default:
		return "", nil, fmt.Errorf("query has neither filter nor page")
	}
}

func scanRows(rows *sql.Rows) ([]engine.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	out := make([]engine.Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(engine.Row, len(cols))
		for i, name := range cols {
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// quoteIdent bracket-quotes a SQL Server identifier.
func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func splitTableID(tableID string) (schemaName, tableName string) {
	if i := strings.LastIndex(tableID, "."); i >= 0 {
		return tableID[:i], tableID[i+1:]
	}
	return "dbo", tableID
}

// mssqlType maps an INFORMATION_SCHEMA data type to the columnar model.
func mssqlType(dataType string) schema.Type {
	switch strings.ToLower(dataType) {
	case "tinyint":
		return schema.Primitive(schema.UInt8)
	case "smallint":
		return schema.Primitive(schema.Int16)
	case "int":
		return schema.Primitive(schema.Int32)
	case "bigint":
		return schema.Primitive(schema.Int64)
	case "real":
		return schema.Primitive(schema.Float32)
	case "float", "decimal", "numeric":
		return schema.Primitive(schema.Float64)
	case "varchar", "nvarchar", "char", "nchar", "text", "ntext", "uniqueidentifier":
		return schema.Primitive(schema.Utf8)
	case "bit":
		return schema.Primitive(schema.Boolean)
	case "date":
		return schema.Primitive(schema.Date)
	case "datetime", "datetime2", "smalldatetime", "datetimeoffset":
		return schema.Primitive(schema.Timestamp)
	default:
		return schema.Primitive(schema.Other)
	}
}
