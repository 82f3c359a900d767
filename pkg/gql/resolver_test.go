package gql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablefront/tablefront/pkg/apperrors"
	"github.com/tablefront/tablefront/pkg/engine"
)

// fakeEngine records the queries it receives and plays back canned rows.
type fakeEngine struct {
	queries []engine.Query
	rows    []engine.Row
	err     error
}

func (f *fakeEngine) Register(ctx context.Context, relation string, src engine.Source) error {
	return nil
}

func (f *fakeEngine) Select(ctx context.Context, q engine.Query) ([]engine.Row, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeEngine) Close() error { return nil }

func compiledVerb(t *testing.T) *CompiledEntity {
	t.Helper()
	c := NewCompiler(zap.NewNop())
	ce, err := c.Compile(Entity{Table: "x", Name: "Verb", PrimaryKey: "verb_id"}, verbTable(t))
	require.NoError(t, err)
	return ce
}

func TestGet_NotFoundIsNull(t *testing.T) {
	eng := &fakeEngine{rows: nil}
	r := NewResolver(eng, zap.NewNop())

	out, err := r.Get(context.Background(), compiledVerb(t), map[string]any{"verb_id": "3"})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGet_SingleRow(t *testing.T) {
	eng := &fakeEngine{rows: []engine.Row{{"verb_id": int64(3), "word": "be"}}}
	r := NewResolver(eng, zap.NewNop())

	out, err := r.Get(context.Background(), compiledVerb(t), map[string]any{"verb_id": "3"})
	require.NoError(t, err)

	obj, ok := out.(*Object)
	require.True(t, ok)
	v, _ := obj.Get("verb_id")
	assert.Equal(t, "3", v.Native())
	v, _ = obj.Get("word")
	assert.Equal(t, "be", v.Native())

	// The key binds as a typed parameter, never as query text.
	require.Len(t, eng.queries, 1)
	q := eng.queries[0]
	assert.Equal(t, "Verb", q.Relation)
	require.NotNil(t, q.Filter)
	assert.Equal(t, "verb_id", q.Filter.Column)
	assert.Equal(t, int64(3), q.Filter.Value)
}

func TestGet_DuplicateKey(t *testing.T) {
	eng := &fakeEngine{rows: []engine.Row{
		{"verb_id": int64(3), "word": "be"},
		{"verb_id": int64(3), "word": "am"},
	}}
	r := NewResolver(eng, zap.NewNop())

	_, err := r.Get(context.Background(), compiledVerb(t), map[string]any{"verb_id": "3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)
}

func TestGet_MissingArgument(t *testing.T) {
	r := NewResolver(&fakeEngine{}, zap.NewNop())

	_, err := r.Get(context.Background(), compiledVerb(t), map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrArgumentMissing)
}

func TestGet_NonIntegerKeyForIntegerColumn(t *testing.T) {
	eng := &fakeEngine{}
	r := NewResolver(eng, zap.NewNop())

	_, err := r.Get(context.Background(), compiledVerb(t), map[string]any{"verb_id": "three"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrArgumentInvalid)
	assert.Empty(t, eng.queries)
}

func TestGet_InjectionPatternRejected(t *testing.T) {
	eng := &fakeEngine{}
	r := NewResolver(eng, zap.NewNop())

	_, err := r.Get(context.Background(), compiledVerb(t),
		map[string]any{"verb_id": "1' OR '1'='1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrArgumentInvalid)
	assert.Empty(t, eng.queries, "a flagged key must never reach the engine")
}

func TestGet_EngineFailureWrapped(t *testing.T) {
	eng := &fakeEngine{err: errors.New("relation vanished")}
	r := NewResolver(eng, zap.NewNop())

	_, err := r.Get(context.Background(), compiledVerb(t), map[string]any{"verb_id": "3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrQueryEngineFailure)
}

func TestList_ClampsPagination(t *testing.T) {
	cases := []struct {
		name       string
		args       map[string]any
		wantLimit  int
		wantOffset int
	}{
		{"defaults", map[string]any{}, DefaultListLimit, 0},
		{"limit above cap", map[string]any{"limit": 5000}, engine.MaxListLimit, 0},
		{"limit at cap", map[string]any{"limit": 1000}, 1000, 0},
		{"negative offset", map[string]any{"offset": -10}, DefaultListLimit, 0},
		{"plain page", map[string]any{"limit": 25, "offset": 50}, 25, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := &fakeEngine{}
			r := NewResolver(eng, zap.NewNop())

			_, err := r.List(context.Background(), compiledVerb(t), tc.args)
			require.NoError(t, err)

			require.Len(t, eng.queries, 1)
			page := eng.queries[0].Page
			require.NotNil(t, page)
			assert.Equal(t, tc.wantLimit, page.Limit)
			assert.Equal(t, tc.wantOffset, page.Offset)
		})
	}
}

// A clamped-to-zero limit yields an empty list without touching the
// engine; some engines (SQL Server's FETCH NEXT) reject a zero row
// count, so the page query must never be submitted.
func TestList_ZeroLimitSkipsEngine(t *testing.T) {
	for _, limit := range []int{0, -5} {
		eng := &fakeEngine{rows: []engine.Row{{"verb_id": int64(1), "word": "be"}}}
		r := NewResolver(eng, zap.NewNop())

		out, err := r.List(context.Background(), compiledVerb(t), map[string]any{"limit": limit})
		require.NoError(t, err, "limit %d", limit)

		list, ok := out.([]any)
		require.True(t, ok)
		assert.Empty(t, list, "limit %d", limit)
		assert.NotNil(t, list)
		assert.Empty(t, eng.queries, "limit %d must not reach the engine", limit)
	}
}

func TestList_EmptyResultIsEmptyList(t *testing.T) {
	r := NewResolver(&fakeEngine{rows: nil}, zap.NewNop())

	out, err := r.List(context.Background(), compiledVerb(t), map[string]any{})
	require.NoError(t, err)

	list, ok := out.([]any)
	require.True(t, ok)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestList_MaterializesEveryRow(t *testing.T) {
	eng := &fakeEngine{rows: []engine.Row{
		{"verb_id": int64(1), "word": "be"},
		{"verb_id": int64(2), "word": "go"},
	}}
	r := NewResolver(eng, zap.NewNop())

	out, err := r.List(context.Background(), compiledVerb(t), map[string]any{})
	require.NoError(t, err)

	list := out.([]any)
	require.Len(t, list, 2)
	first := list[0].(*Object)
	v, _ := first.Get("verb_id")
	assert.Equal(t, "1", v.Native())
}
