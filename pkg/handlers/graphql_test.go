package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/engine"
	"github.com/tablefront/tablefront/pkg/gql"
	"github.com/tablefront/tablefront/pkg/schema"
)

type staticProvider struct {
	table *schema.Table
}

func (p *staticProvider) TableSchema(ctx context.Context, tableID string) (*schema.Table, error) {
	return p.table, nil
}

type staticEngine struct {
	rows []engine.Row
}

func (e *staticEngine) Register(ctx context.Context, relation string, src engine.Source) error {
	return nil
}

func (e *staticEngine) Select(ctx context.Context, q engine.Query) ([]engine.Row, error) {
	return e.rows, nil
}

func (e *staticEngine) Close() error { return nil }

func testRegistry(t *testing.T, rows []engine.Row) *gql.Registry {
	t.Helper()
	tbl, err := schema.NewTable(
		schema.Column{Name: "verb_id", Type: schema.Primitive(schema.Int64)},
		schema.Column{Name: "word", Type: schema.Primitive(schema.Utf8)},
	)
	require.NoError(t, err)

	registry, err := gql.NewBuilder(&staticProvider{table: tbl}, &staticEngine{rows: rows}, zap.NewNop()).
		Build(context.Background(), []gql.Entity{
			{Table: "x", Name: "Verb", PrimaryKey: "verb_id"},
		})
	require.NoError(t, err)
	return registry
}

func postGraphQL(t *testing.T, h *GraphQLHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeGraphQL(rec, req)
	return rec
}

func TestServeGraphQL_Get(t *testing.T) {
	registry := testRegistry(t, []engine.Row{{"verb_id": int64(3), "word": "be"}})
	h := NewGraphQLHandler(registry, zap.NewNop())

	rec := postGraphQL(t, h, `{"query": "{ verb(verb_id: \"3\") { verb_id word } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Data map[string]map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "3", resp.Data["verb"]["verb_id"])
	assert.Equal(t, "be", resp.Data["verb"]["word"])
}

func TestServeGraphQL_Variables(t *testing.T) {
	registry := testRegistry(t, []engine.Row{{"verb_id": int64(3), "word": "be"}})
	h := NewGraphQLHandler(registry, zap.NewNop())

	rec := postGraphQL(t, h, `{
		"query": "query GetVerb($key: ID!) { verb(verb_id: $key) { word } }",
		"variables": {"key": "3"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data   map[string]map[string]any `json:"data"`
		Errors []any                     `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Errors)
	assert.Equal(t, "be", resp.Data["verb"]["word"])
}

func TestServeGraphQL_ResolverErrorIsStructured(t *testing.T) {
	// Two rows for a primary key lookup is an integrity error; it must
	// surface as a GraphQL error with a 200 status, not a crash.
	registry := testRegistry(t, []engine.Row{
		{"verb_id": int64(3), "word": "be"},
		{"verb_id": int64(3), "word": "am"},
	})
	h := NewGraphQLHandler(registry, zap.NewNop())

	rec := postGraphQL(t, h, `{"query": "{ verb(verb_id: \"3\") { word } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "more than one row")
}

func TestServeGraphQL_RejectsBadRequests(t *testing.T) {
	registry := testRegistry(t, nil)
	h := NewGraphQLHandler(registry, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()
	h.ServeGraphQL(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = postGraphQL(t, h, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postGraphQL(t, h, `{"query": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
