package gql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/schema"
)

// MetadataProvider hands back the column schema of a table identifier.
// Implementations are the catalog client (remote mode) and the embedded
// engine (local CSV mode); the builder consumes it at build time only.
type MetadataProvider interface {
	TableSchema(ctx context.Context, tableID string) (*schema.Table, error)
}

// Registry is the finished, immutable schema artifact: the executable
// GraphQL schema plus the compiled per-entity records resolvers read.
// Built exactly once at startup; safe for unsynchronized concurrent
// reads afterwards.
type Registry struct {
	Schema   graphql.Schema
	Entities map[string]*CompiledEntity
}

// Builder assembles the Registry from configured entities. It owns the
// engine handle during build and passes it explicitly to the resolver,
// never through ambient state.
type Builder struct {
	provider MetadataProvider
	engine   engine.Engine
	compiler *Compiler
	logger   *zap.Logger
}

// NewBuilder creates a Builder over a metadata provider and query engine.
func NewBuilder(provider MetadataProvider, eng engine.Engine, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		provider: provider,
		engine:   eng,
		compiler: NewCompiler(logger),
		logger:   logger.Named("schema-builder"),
	}
}

// Build compiles every entity in the order supplied and assembles the
// root Query type. Any single entity's failure aborts the whole build:
// a partial schema is never served. For each entity the table is also
// registered with the query engine under the entity's type name, so
// every relation is queryable before Build returns.
func (b *Builder) Build(ctx context.Context, entities []Entity) (*Registry, error) {
	resolver := NewResolver(b.engine, b.logger)

	queryFields := graphql.Fields{}
	compiled := make(map[string]*CompiledEntity, len(entities))

	for _, ent := range entities {
		if _, dup := compiled[ent.Name]; dup {
			return nil, fmt.Errorf("entity %q: %w", ent.Name, apperrors.ErrDuplicateType)
		}

		table, err := b.provider.TableSchema(ctx, ent.Table)
		if err != nil {
			return nil, fmt.Errorf("entity %q: table %q: %w: %w",
				ent.Name, ent.Table, apperrors.ErrTableNotAccessible, err)
		}

		ce, err := b.compiler.Compile(ent, table)
		if err != nil {
			return nil, err
		}

		if err := b.engine.Register(ctx, ce.Name, engine.Source{
			Table:  ent.Table,
			Schema: table,
		}); err != nil {
			return nil, fmt.Errorf("entity %q: register relation: %w", ent.Name, err)
		}

		queryFields[ce.GetFieldName] = ce.GetField(resolver)
		queryFields[ce.ListFieldName] = ce.ListField(resolver)
		compiled[ce.Name] = ce

		b.logger.Info("compiled entity",
			zap.String("entity", ce.Name),
			zap.String("table", ce.Table),
			zap.String("primary_key", ce.PrimaryKey.Name),
			zap.Int("fields", len(ce.Fields)))
	}

	// graphql-go rejects an empty Query type; expose a placeholder when
	// no entities are configured so the server can still start.
	if len(queryFields) == 0 {
		queryFields["_entities"] = &graphql.Field{
			Type:        graphql.String,
			Description: "Placeholder field when no entities are configured",
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return "no entities configured", nil
			},
		}
	}

	gqlSchema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queryFields,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("assemble schema: %w", err)
	}

	return &Registry{
		Schema:   gqlSchema,
		Entities: compiled,
	}, nil
}
