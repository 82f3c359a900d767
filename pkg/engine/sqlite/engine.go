// Package sqlite is the embedded query engine: it loads CSV datasets
// into an in-memory SQLite database at registration time and serves the
// resolver's equality and page queries from there. It also acts as the
// metadata provider in local mode, inferring a column schema from each
// CSV file. All value binding is parameterized.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/schema"
)

// Engine is the embedded SQLite query engine. Safe for concurrent Select
// calls; Register runs single-threaded at schema build time.
type Engine struct {
	db     *sql.DB
	logger *zap.Logger

	mu        sync.RWMutex
	relations map[string]*schema.Table
}

// New opens an in-memory SQLite database. The shared cache keeps every
// connection of the pool on the same database.
func New(logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", "file:tablefront?mode=memory&cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	// The in-memory database vanishes when its last connection closes.
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return &Engine{
		db:        db,
		logger:    logger.Named("sqlite-engine"),
		relations: make(map[string]*schema.Table),
	}, nil
}

// TableSchema infers the column schema of a CSV file, making the engine
// double as the metadata provider in local mode.
func (e *Engine) TableSchema(ctx context.Context, tableID string) (*schema.Table, error) {
	ds, err := readCSV(tableID)
	if err != nil {
		return nil, err
	}
	return ds.schema, nil
}

// Register loads the CSV behind src into an in-memory table named after
// the relation. When src.Schema is set it pins the column types; when
// nil the schema is re-inferred from the file.
func (e *Engine) Register(ctx context.Context, relation string, src engine.Source) error {
	ds, err := readCSV(src.Table)
	if err != nil {
		return fmt.Errorf("relation %q: %w", relation, err)
	}
	tbl := src.Schema
	if tbl == nil {
		tbl = ds.schema
	}

	if err := e.createTable(ctx, relation, tbl); err != nil {
		return fmt.Errorf("relation %q: %w", relation, err)
	}
	if err := e.loadRows(ctx, relation, tbl, ds); err != nil {
		return fmt.Errorf("relation %q: %w", relation, err)
	}

	e.mu.Lock()
	e.relations[relation] = tbl
	e.mu.Unlock()

	e.logger.Info("registered relation",
		zap.String("relation", relation),
		zap.String("source", src.Table),
		zap.Int("rows", len(ds.records)))
	return nil
}

// Select executes an equality or page query against a registered
// relation. Values are always bound as parameters.
func (e *Engine) Select(ctx context.Context, q engine.Query) ([]engine.Row, error) {
	e.mu.RLock()
	tbl, ok := e.relations[q.Relation]
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
		if _, ok := tbl.Column(q.Filter.Column); !ok {
			return nil, fmt.Errorf("relation %q: no column %q", q.Relation, q.Filter.Column)
		}
		query = fmt.Sprintf("SELECT * FROM %s WHERE %s = ?",
			quoteIdent(q.Relation), quoteIdent(q.Filter.Column))
		args = []any{q.Filter.Value}
	case q.Page != nil:
		query = fmt.Sprintf("SELECT * FROM %s LIMIT ? OFFSET ?", quoteIdent(q.Relation))
		args = []any{q.Page.Limit, q.Page.Offset}
	default:
		return nil, fmt.Errorf("relation %q: query has neither filter nor page", q.Relation)
	}

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) createTable(ctx context.Context, relation string, tbl *schema.Table) error {
	cols := make([]string, 0, tbl.Len())
	for _, col := range tbl.Columns {
		cols = append(cols, quoteIdent(col.Name)+" "+sqliteType(col.Type))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(relation), strings.Join(cols, ", "))
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (e *Engine) loadRows(ctx context.Context, relation string, tbl *schema.Table, ds *dataset) error {
	if len(ds.records) == 0 {
		return nil
	}

	names := make([]string, 0, tbl.Len())
	marks := make([]string, 0, tbl.Len())
	for _, col := range tbl.Columns {
		names = append(names, quoteIdent(col.Name))
		marks = append(marks, "?")
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(relation), strings.Join(names, ", "), strings.Join(marks, ", "))

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range ds.records {
		args := make([]any, 0, tbl.Len())
		for _, col := range tbl.Columns {
			idx, ok := ds.columnIndex[col.Name]
			if !ok {
				args = append(args, nil)
				continue
			}
			v, err := cellValue(record[idx], col.Type)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i+1, col.Name, err)
			}
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// sqliteType maps a column type to its SQLite storage class.
func sqliteType(t schema.Type) string {
	switch {
	case t.IsInteger(), t.Kind == schema.Boolean:
		return "INTEGER"
	case t.IsFloat():
		return "REAL"
	default:
		return "TEXT"
	}
}

// quoteIdent double-quotes an identifier. Identifiers come from the
// validated build-time configuration and table schemas, never from
// request arguments; quoting guards against reserved words.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
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
