package gql

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/schema"
	"github.com/tablefront/tablefront/pkg/sqlguard"
)

// Resolver executes query fields against the table query engine. It is
// stateless given the immutable compiled entities and the engine handle,
// and safe for concurrent use.
type Resolver struct {
	engine engine.Engine
	logger *zap.Logger
}

// NewResolver creates a Resolver bound to a query engine.
func NewResolver(eng engine.Engine, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		engine: eng,
		logger: logger.Named("resolver"),
	}
}

// Get resolves a get-by-key field. Zero rows is a null result, one row is
// the materialized object, and more than one row for a primary key lookup
// is a data-integrity error, never silently the first match.
func (r *Resolver) Get(ctx context.Context, ent *CompiledEntity, args map[string]any) (any, error) {
	raw, ok := args[ent.PrimaryKey.Name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("argument %q: %w", ent.PrimaryKey.Name, apperrors.ErrArgumentMissing)
	}
	keyStr, ok := raw.(string)
	if !ok {
		keyStr = fmt.Sprint(raw)
	}

	if det := sqlguard.CheckArgument(ent.PrimaryKey.Name, keyStr); det != nil {
		r.logger.Warn("rejected key argument with injection pattern",
			zap.String("entity", ent.Name),
			zap.String("argument", det.Argument),
			zap.String("fingerprint", det.Fingerprint))
		return nil, fmt.Errorf("argument %q: %w", ent.PrimaryKey.Name, apperrors.ErrArgumentInvalid)
	}

	keyVal, err := keyValue(ent.PrimaryKey, keyStr)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w: %w", ent.PrimaryKey.Name, apperrors.ErrArgumentInvalid, err)
	}

	rows, err := r.engine.Select(ctx, engine.Query{
		Relation: ent.Name,
		Filter: &engine.EqFilter{
			Column: ent.PrimaryKey.Name,
			Value:  keyVal,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("relation %q: %w: %w", ent.Name, apperrors.ErrQueryEngineFailure, err)
	}

	switch len(rows) {
	case 0:
		// Not found is success with a null payload.
		return nil, nil
	case 1:
		return Materialize(ent.Fields, rows[0])
	default:
		return nil, fmt.Errorf("relation %q: key %q matched %d rows: %w",
			ent.Name, keyStr, len(rows), apperrors.ErrDuplicateKey)
	}
}

// List resolves a paginated list field. Out-of-range pagination arguments
// are clamped, not rejected; zero matching rows yields an empty list.
func (r *Resolver) List(ctx context.Context, ent *CompiledEntity, args map[string]any) (any, error) {
	limit := intArg(args, "limit", DefaultListLimit)
	if limit < 0 {
		limit = 0
	}
	if limit > engine.MaxListLimit {
		limit = engine.MaxListLimit
	}
	offset := intArg(args, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	// A zero-row page needs no engine round trip, and SQL Server
	// rejects FETCH NEXT 0 ROWS outright.
	if limit == 0 {
		return []any{}, nil
	}

	rows, err := r.engine.Select(ctx, engine.Query{
		Relation: ent.Name,
		Page: &engine.Page{
			Limit:  limit,
			Offset: offset,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("relation %q: %w: %w", ent.Name, apperrors.ErrQueryEngineFailure, err)
	}

	out := make([]any, 0, len(rows))
	for _, row := range rows {
		obj, err := Materialize(ent.Fields, row)
		if err != nil {
			return nil, fmt.Errorf("relation %q: %w", ent.Name, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// keyValue converts the ID-typed key string into the primary key column's
// native type so SQL engines can bind it as a typed parameter.
func keyValue(pk schema.Column, raw string) (any, error) {
	switch {
	case pk.Type.IsInteger():
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("key %q is not an integer", raw)
		}
		return n, nil
	case pk.Type.IsFloat():
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("key %q is not a number", raw)
		}
		return f, nil
	default:
		return raw, nil
	}
}

func intArg(args map[string]any, name string, fallback int) int {
	raw, ok := args[name]
	if !ok || raw == nil {
		return fallback
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
