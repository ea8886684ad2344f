package cmd

import (
	"DebtGraph/backend/go/internal/debtgraph"
	"DebtGraph/backend/go/internal/export"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder returns no rows and remembers the last data query.
type recorder struct {
	query  string
	params map[string]any
}

func (r *recorder) Run(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	if strings.Contains(query, "count(*)") {
		return &neo4j.EagerResult{
			Keys:    []string{"total"},
			Records: []*neo4j.Record{{Keys: []string{"total"}, Values: []any{int64(0)}}},
		}, nil
	}
	r.query, r.params = query, params
	return &neo4j.EagerResult{}, nil
}

func TestQuerySelection(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		run      func(c *debtgraph.Catalog) error
		contains []string
		params   []string
	}{
		{
			name: "child debt",
			run: func(c *debtgraph.Catalog) error {
				_, err := debtQuery(c, false, nil)(ctx, "C1", debtgraph.All)
				return err
			},
			contains: []string{"(child:Level2)-[edge:HAS_DEBT]->(other:Level2)"},
			params:   []string{"child"},
		},
		{
			name: "parent debt by details",
			run: func(c *debtgraph.Catalog) error {
				_, err := debtQuery(c, true, []string{"General"})(ctx, "GroupA", debtgraph.All)
				return err
			},
			contains: []string{"WITH DISTINCT child", "edge[$detailKey] IN $details"},
			params:   []string{"parent", "details", "detailKey"},
		},
		{
			name: "child receivables by details",
			run: func(c *debtgraph.Catalog) error {
				_, err := receivablesQuery(c, false, []string{"Loan"})(ctx, "C1", debtgraph.All)
				return err
			},
			contains: []string{"(other:Level2)-[edge:HAS_DEBT]->(child:Level2)", "$details"},
			params:   []string{"child", "details"},
		},
		{
			name: "parent pair",
			run: func(c *debtgraph.Catalog) error {
				_, err := pairQuery(c, true, nil)(ctx, "GroupA", "GroupB", debtgraph.All)
				return err
			},
			contains: []string{"debtorParent"},
			params:   []string{"debtor", "creditor"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			c := debtgraph.NewCatalog(debtgraph.NewExecutor(r, nil), "detail")
			require.NoError(t, tt.run(c))
			for _, s := range tt.contains {
				assert.Contains(t, r.query, s)
			}
			for _, p := range tt.params {
				assert.Contains(t, r.params, p)
			}
		})
	}
}

func TestRingSelection(t *testing.T) {
	ctx := context.Background()
	r := &recorder{}
	f := debtgraph.NewRingFinder(debtgraph.NewExecutor(r, nil), 0)

	_, err := ringQuery(f, true, "GroupB")(ctx, "GroupA", 4, debtgraph.All)
	require.NoError(t, err)
	assert.Contains(t, r.query, "HAS_DEBT*4")
	assert.Equal(t, "GroupB", r.params["parent2"])

	_, err = ringQuery(f, false, "")(ctx, "C1", 2, debtgraph.All)
	require.NoError(t, err)
	assert.Equal(t, "C1", r.params["child"])
	assert.NotContains(t, r.params, "via")
}

func TestReport(t *testing.T) {
	c1 := neo4j.Node{ElementId: "n:1", Labels: []string{"Level2"}, Props: map[string]any{"name": "C1"}}
	g := neo4j.Node{ElementId: "n:9", Labels: []string{"Level1"}, Props: map[string]any{"name": "GroupA"}}
	edge := neo4j.Relationship{ElementId: "r:1", StartElementId: "n:1", EndElementId: "n:9", Type: "HAS_PARENT", Props: map[string]any{}}
	runner := &fixedRunner{keys: []string{"child", "edge", "parent"}, values: []any{c1, edge, g}}
	c := debtgraph.NewCatalog(debtgraph.NewExecutor(runner, nil), "detail")

	res, err := c.ChildrenOf(context.Background(), []string{"GroupA"}, debtgraph.All)
	require.NoError(t, err)

	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "children.xlsx")
	require.NoError(t, report(&out, res, path))

	text := out.String()
	assert.Contains(t, text, `count: {"total":1}`)
	assert.Contains(t, text, `"HAS_PARENT":{}`)
	assert.Contains(t, text, `stats: {"nodes":2,"debt_edges":0,"hierarchy_edges":1,"paths":0}`)

	sheets, err := export.ReadSheets(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "HAS_PARENT()", "GroupA"}, sheets[export.ResultSheet][1])
}

type fixedRunner struct {
	keys   []string
	values []any
}

func (f *fixedRunner) Run(_ context.Context, query string, _ map[string]any) (*neo4j.EagerResult, error) {
	if strings.Contains(query, "count(*)") {
		return &neo4j.EagerResult{
			Keys:    []string{"total"},
			Records: []*neo4j.Record{{Keys: []string{"total"}, Values: []any{int64(1)}}},
		}, nil
	}
	return &neo4j.EagerResult{Keys: f.keys, Records: []*neo4j.Record{{Keys: f.keys, Values: f.values}}}, nil
}
