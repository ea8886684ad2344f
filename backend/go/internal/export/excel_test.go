package export

import (
	"DebtGraph/backend/go/internal/debtgraph"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debtRows() []debtgraph.Row {
	c1 := debtgraph.Node{ElementID: "n:1", Labels: []string{debtgraph.LabelChild},
		Props: debtgraph.Mapping{"name": debtgraph.Scalar{V: "C1"}}}
	c2 := debtgraph.Node{ElementID: "n:2", Labels: []string{debtgraph.LabelChild},
		Props: debtgraph.Mapping{"name": debtgraph.Scalar{V: "C2"}}}
	edge := debtgraph.DebtEdge{ElementID: "r:1", StartID: "n:1", EndID: "n:2",
		Props: debtgraph.Mapping{"detail": debtgraph.Scalar{V: "General"}, "amount": debtgraph.Scalar{V: int64(100)}}}
	return []debtgraph.Row{
		{"child": c1, "edge": edge, "other": c2},
		{"child": c2, "note": debtgraph.Scalar{V: "no edge"}},
	}
}

func TestNewTable(t *testing.T) {
	table := NewTable(debtRows())

	assert.Equal(t, []string{"child", "edge", "note", "other"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"C1", "HAS_DEBT(amount=100, detail=General)", "", "C2"}, table.Rows[0])
	assert.Equal(t, []string{"C2", "", "no edge", ""}, table.Rows[1])
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable(nil)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debt.xlsx")
	require.NoError(t, WriteXLSX(path, debtgraph.Count{Total: 7}, debtRows()))

	sheets, err := ReadSheets(path)
	require.NoError(t, err)
	require.Contains(t, sheets, ResultSheet)
	require.Contains(t, sheets, SummarySheet)

	result := sheets[ResultSheet]
	require.Len(t, result, 3)
	assert.Equal(t, []string{"child", "edge", "note", "other"}, result[0])
	assert.Equal(t, []string{"C1", "HAS_DEBT(amount=100, detail=General)", "", "C2"}, result[1])

	summary := sheets[SummarySheet]
	assert.Equal(t, []string{"total", "7"}, summary[0])
	assert.Equal(t, []string{"page_rows", "2"}, summary[1])
	assert.Equal(t, []string{"nodes", "3"}, summary[2])
	assert.Equal(t, []string{"debt_edges", "1"}, summary[3])
}

func TestReadSheets_MissingFile(t *testing.T) {
	_, err := ReadSheets(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
