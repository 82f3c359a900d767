package gql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/schema"
)

// Entity is the configured metadata for one table exposed as one GraphQL
// object type. Name must already be a valid PascalCase type name; the
// configuration layer validates it, the compiler does not rewrite it.
type Entity struct {
	Table       string
	Name        string
	PrimaryKey  string
	Description string
}

// CompiledEntity is the immutable per-entity artifact produced at schema
// build time. After build it is only read, concurrently, by resolvers.
type CompiledEntity struct {
	Name          string          // GraphQL type name, also the engine relation name
	Table         string          // source table identifier
	PrimaryKey    schema.Column   // validated against the table schema
	Fields        []schema.Column // representable columns, in schema order
	Object        *graphql.Object
	GetFieldName  string
	ListFieldName string
}

const (
	// DefaultListLimit is applied when a list query omits limit.
	DefaultListLimit = 100
)

// Compiler turns one entity's (metadata, table schema) pair into its
// GraphQL object type and query field descriptors.
type Compiler struct {
	logger *zap.Logger
}

// NewCompiler creates a Compiler.
func NewCompiler(logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{logger: logger.Named("schema-compiler")}
}

// Compile validates the entity against its table schema and builds the
// object type. Columns with unsupported types are dropped with a warning;
// a missing primary key or an empty field set fails the entity.
func (c *Compiler) Compile(entity Entity, table *schema.Table) (*CompiledEntity, error) {
	pkCol, ok := table.Column(entity.PrimaryKey)
	if !ok {
		return nil, fmt.Errorf("entity %q: column %q: %w",
			entity.Name, entity.PrimaryKey, apperrors.ErrMissingPrimaryKey)
	}

	objFields := graphql.Fields{}
	fields := make([]schema.Column, 0, table.Len())
	for _, col := range table.Columns {
		out := MapType(col.Name, col.Type, col.Nullable)
		if out == nil {
			c.logger.Warn("skipping unsupported column",
				zap.String("entity", entity.Name),
				zap.String("column", col.Name),
				zap.Stringer("type", col.Type))
			continue
		}
		fields = append(fields, col)
		objFields[col.Name] = &graphql.Field{
			Type:    out,
			Resolve: objectFieldResolver(col.Name),
		}
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("entity %q: %w", entity.Name, apperrors.ErrEmptyEntity)
	}

	obj := graphql.NewObject(graphql.ObjectConfig{
		Name:        entity.Name,
		Description: entity.Description,
		Fields:      objFields,
	})

	snake := toSnakeCase(entity.Name)
	return &CompiledEntity{
		Name:          entity.Name,
		Table:         entity.Table,
		PrimaryKey:    pkCol,
		Fields:        fields,
		Object:        obj,
		GetFieldName:  snake,
		ListFieldName: "list_" + snake,
	}, nil
}

// GetField builds the get-by-key query field: one required ID argument
// named after the primary key column, nullable result (not-found is null,
// not an error).
func (e *CompiledEntity) GetField(r *Resolver) *graphql.Field {
	entity := e
	return &graphql.Field{
		Type:        e.Object,
		Description: fmt.Sprintf("Fetch a single %s by %s.", e.Name, e.PrimaryKey.Name),
		Args: graphql.FieldConfigArgument{
			e.PrimaryKey.Name: &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.ID),
			},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return r.Get(p.Context, entity, p.Args)
		},
	}
}

// ListField builds the paginated list query field: optional limit and
// offset arguments, non-null list of non-null entity objects.
func (e *CompiledEntity) ListField(r *Resolver) *graphql.Field {
	entity := e
	return &graphql.Field{
		Type:        graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(e.Object))),
		Description: fmt.Sprintf("List %s rows with pagination.", e.Name),
		Args: graphql.FieldConfigArgument{
			"limit": &graphql.ArgumentConfig{
				Type:         graphql.Int,
				DefaultValue: DefaultListLimit,
			},
			"offset": &graphql.ArgumentConfig{
				Type:         graphql.Int,
				DefaultValue: 0,
			},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return r.List(p.Context, entity, p.Args)
		},
	}
}

// objectFieldResolver extracts one named field from a materialized parent
// object. Per-entity state lives in the compiled entity, not in captured
// mutable environments.
func objectFieldResolver(name string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		obj, ok := p.Source.(*Object)
		if !ok {
			return nil, fmt.Errorf("unexpected source type %T for field %q", p.Source, name)
		}
		v, ok := obj.Get(name)
		if !ok {
			return nil, nil
		}
		return v.Native(), nil
	}
}

// toSnakeCase converts a PascalCase type name to the snake_case query
// field prefix ("OrderItem" -> "order_item").
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
