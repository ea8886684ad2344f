package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingFinder_JumpBounds(t *testing.T) {
	runner := &fakeRunner{}
	f := NewRingFinder(NewExecutor(runner, nil), 5)
	ctx := context.Background()

	for _, jump := range []int{-1, 0, 1, 6, 100} {
		_, err := f.ChildRing(ctx, "C1", jump, All)
		assert.ErrorIs(t, err, apperr.ErrInvalidParameter, "jump %d", jump)
	}
	assert.Empty(t, runner.calls)

	for _, jump := range []int{2, 5} {
		_, err := f.ChildRing(ctx, "C1", jump, All)
		assert.NoError(t, err, "jump %d", jump)
	}
}

func TestRingFinder_DefaultMaxJump(t *testing.T) {
	f := NewRingFinder(NewExecutor(&fakeRunner{}, nil), 0)
	ctx := context.Background()

	_, err := f.ParentRing(ctx, "GroupA", DefaultMaxJump, All)
	require.NoError(t, err)
	_, err = f.ParentRing(ctx, "GroupA", DefaultMaxJump+1, All)
	assert.ErrorIs(t, err, apperr.ErrInvalidParameter)
}

func TestRingFinder_Queries(t *testing.T) {
	ctx := context.Background()
	page := Page{Limit: 20}

	tests := []struct {
		name       string
		call       func(f *RingFinder) (*Result, error)
		params     map[string]any
		projection string
	}{
		{
			name:       "ChildRing",
			call:       func(f *RingFinder) (*Result, error) { return f.ChildRing(ctx, "C1", 3, page) },
			params:     map[string]any{"child": "C1"},
			projection: "RETURN path",
		},
		{
			name:       "ParentRing",
			call:       func(f *RingFinder) (*Result, error) { return f.ParentRing(ctx, "GroupA", 3, page) },
			params:     map[string]any{"parent": "GroupA"},
			projection: "RETURN path, child, edge, parent",
		},
		{
			name:       "ChildWithChildRing",
			call:       func(f *RingFinder) (*Result, error) { return f.ChildWithChildRing(ctx, "C1", "C3", 3, page) },
			params:     map[string]any{"child": "C1", "via": "C3"},
			projection: "RETURN path",
		},
		{
			name:       "ParentWithParentRing",
			call:       func(f *RingFinder) (*Result, error) { return f.ParentWithParentRing(ctx, "GroupA", "GroupB", 3, page) },
			params:     map[string]any{"parent1": "GroupA", "parent2": "GroupB"},
			projection: "RETURN path, child1, child2, parent1, parent2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			_, err := tt.call(NewRingFinder(NewExecutor(runner, nil), DefaultMaxJump))
			require.NoError(t, err)

			call := runner.lastPageCall()
			assert.Contains(t, call.query, "-[:HAS_DEBT*3]->")
			assert.Contains(t, call.query, simpleCycle)
			assert.Contains(t, call.query, tt.projection)
			assert.NotContains(t, call.query, "apoc")

			for k, v := range tt.params {
				assert.Equal(t, v, call.params[k], k)
			}
			assert.Equal(t, int64(3), call.params["jump"])
		})
	}
}

func TestRingFinder_PairwiseNamesMustDiffer(t *testing.T) {
	runner := &fakeRunner{}
	f := NewRingFinder(NewExecutor(runner, nil), DefaultMaxJump)
	ctx := context.Background()

	_, err := f.ChildWithChildRing(ctx, "C1", "C1", 3, All)
	assert.ErrorIs(t, err, apperr.ErrInvalidParameter)
	_, err = f.ParentWithParentRing(ctx, "GroupA", "GroupA", 3, All)
	assert.ErrorIs(t, err, apperr.ErrInvalidParameter)
	_, err = f.ChildRing(ctx, "", 3, All)
	assert.ErrorIs(t, err, apperr.ErrInvalidParameter)
	assert.Empty(t, runner.calls)
}

// A owes B, B owes C, C owes A. Only the three-edge ring exists.
func TestRingFinder_ThreeCycle(t *testing.T) {
	a := node("n:a", LabelChild, "A", nil)
	b := node("n:b", LabelChild, "B", nil)
	c := node("n:c", LabelChild, "C", nil)
	cycle := neo4j.Path{
		Nodes: []neo4j.Node{a, b, c, a},
		Relationships: []neo4j.Relationship{
			rel("r:ab", RelHasDebt, a, b, map[string]any{"amount": int64(10)}),
			rel("r:bc", RelHasDebt, b, c, map[string]any{"amount": int64(20)}),
			rel("r:ca", RelHasDebt, c, a, map[string]any{"amount": int64(30)}),
		},
	}
	runner := &fakeRunner{
		rowsFor: func(query string, _ map[string]any) ([]string, [][]any) {
			if strings.Contains(query, "HAS_DEBT*3]") {
				return []string{"path"}, [][]any{{cycle}}
			}
			return []string{"path"}, nil
		},
	}
	f := NewRingFinder(NewExecutor(runner, nil), DefaultMaxJump)
	ctx := context.Background()

	res, err := f.ChildRing(ctx, "A", 3, All)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count.Total)

	rows, err := res.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	path := rows[0]["path"].(Path)
	assert.Len(t, path.Nodes(), 4)
	assert.Equal(t, "A -> B -> C -> A", Label(path))

	distinct := map[string]struct{}{}
	for _, n := range path.Nodes() {
		distinct[n.ElementID] = struct{}{}
	}
	assert.Len(t, distinct, 3)
	assert.Equal(t, Stats{Nodes: 4, DebtEdges: 3, Paths: 1}, Summarize(rows))

	res, err = f.ChildRing(ctx, "A", 2, All)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Count.Total)
	assert.Equal(t, "[]", res.Payload)
}

// distinctNodes folds a path the way simpleCycle's reduce does: a node is
// appended to seen only when it is not already in it.
func distinctNodes(nodes []neo4j.Node) int {
	var seen []string
	for _, n := range nodes {
		if !slices.Contains(seen, n.ElementId) {
			seen = append(seen, n.ElementId)
		}
	}
	return len(seen)
}

func TestSimpleCycle_DistinctNodeFilter(t *testing.T) {
	require.Equal(t,
		"size(reduce(seen = [], n IN nodes(path) | CASE WHEN n IN seen THEN seen ELSE seen + [n] END)) = $jump",
		simpleCycle)

	a := node("n:a", LabelChild, "A", nil)
	b := node("n:b", LabelChild, "B", nil)
	c := node("n:c", LabelChild, "C", nil)
	d := node("n:d", LabelChild, "D", nil)
	tests := []struct {
		name   string
		nodes  []neo4j.Node
		jump   int
		accept bool
	}{
		{name: "triangle", nodes: []neo4j.Node{a, b, c, a}, jump: 3, accept: true},
		{name: "two ring walked twice", nodes: []neo4j.Node{a, b, a, b, a}, jump: 4, accept: false},
		{name: "two ring", nodes: []neo4j.Node{a, b, a}, jump: 2, accept: true},
		{name: "self loop walked twice", nodes: []neo4j.Node{a, a, a}, jump: 2, accept: false},
		{name: "square", nodes: []neo4j.Node{a, b, c, d, a}, jump: 4, accept: true},
		{name: "figure eight", nodes: []neo4j.Node{a, b, a, c, d, a}, jump: 5, accept: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// the variable-length pattern already fixes the edge count and closes the path.
			require.Len(t, tt.nodes, tt.jump+1)
			require.Equal(t, tt.nodes[0].ElementId, tt.nodes[tt.jump].ElementId)
			assert.Equal(t, tt.accept, distinctNodes(tt.nodes) == tt.jump)
		})
	}
}

func TestRingFinder_ReusesTemplates(t *testing.T) {
	runner := &fakeRunner{}
	f := NewRingFinder(NewExecutor(runner, nil), 4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.ChildRing(ctx, "C1", 3, All)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.templates.Len())

	_, err := f.ChildRing(ctx, "C1", 4, All)
	require.NoError(t, err)
	_, err = f.ParentRing(ctx, "GroupA", 3, All)
	require.NoError(t, err)
	assert.Equal(t, 3, f.templates.Len())

	calls := runner.pageCalls()
	assert.Equal(t, calls[0].query, calls[1].query)
}
