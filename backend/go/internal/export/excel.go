// Package export writes query results to spreadsheets for offline review.
package export

import (
	"DebtGraph/backend/go/internal/debtgraph"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// Sheet names used in exported workbooks.
const (
	ResultSheet  = "result"
	SummarySheet = "summary"
)

// Table is a header plus the rows rendered as text.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable renders rows as text. The header is the sorted union of the row
// columns; graph elements are rendered with debtgraph.Label.
func NewTable(rows []debtgraph.Row) Table {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(seen))
	for k := range seen {
		header = append(header, k)
	}
	sort.Strings(header)

	out := Table{Header: header, Rows: make([][]string, len(rows))}
	for i, row := range rows {
		cells := make([]string, len(header))
		for j, col := range header {
			if v, ok := row[col]; ok {
				cells[j] = debtgraph.Label(v)
			}
		}
		out.Rows[i] = cells
	}
	return out
}

// WriteXLSX saves the page rows to the result sheet and the total count with
// element statistics to the summary sheet.
func WriteXLSX(path string, count debtgraph.Count, rows []debtgraph.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultSheet); err != nil {
		return err
	}
	table := NewTable(rows)
	if err := writeRow(f, ResultSheet, 1, table.Header); err != nil {
		return err
	}
	for i, cells := range table.Rows {
		if err := writeRow(f, ResultSheet, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	stats := debtgraph.Summarize(rows)
	summary := [][]interface{}{
		{"total", count.Total},
		{"page_rows", len(rows)},
		{"nodes", stats.Nodes},
		{"debt_edges", stats.DebtEdges},
		{"hierarchy_edges", stats.HierarchyEdges},
		{"paths", stats.Paths},
	}
	for i, line := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &line); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ReadSheets loads every sheet of an .xlsx file as rows of text.
func ReadSheets(path string) (map[string][][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := make(map[string][][]string)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	return f.SetSheetRow(sheet, cell, &values)
}
