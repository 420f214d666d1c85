// Package report exports result tables as xlsx workbooks.
package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/symreg-tools/gpsweep/pkg/resultset"
)

const sheetName = "Sheet1"

// ProblemWorkbookName returns the per-problem artifact filename.
func ProblemWorkbookName(prefix string, key resultset.Key) string {
	return fmt.Sprintf("%s_%s_%d_%d_%d.xlsx",
		prefix, key.Problem, key.PopulationSize, key.IterationCount, key.EvaluationBudget)
}

// RawWorkbookName returns the per-generation artifact filename.
func RawWorkbookName(prefix string) string {
	return fmt.Sprintf("%s_raw.xlsx", prefix)
}

// CombinedWorkbookName returns the all-problems artifact filename.
func CombinedWorkbookName(prefix string) string {
	return fmt.Sprintf("%s.xlsx", prefix)
}

// WriteTable writes one table to an xlsx workbook with a sequential
// 0..N-1 index column, followed by the meta and metric columns; NaN
// metric values render as blank cells.
func WriteTable(path string, table *resultset.Table) error {
	return writeTable(path, table, func(i int, _ resultset.Row) int {
		return i
	})
}

// WriteRunTable writes a table of final run rows. The index column
// restarts at 0 for every problem block, carrying each row's run-local
// position instead of a global counter.
func WriteRunTable(path string, table *resultset.Table) error {
	return writeTable(path, table, func(_ int, row resultset.Row) int {
		return row.RunIndex - 1
	})
}

func writeTable(path string, table *resultset.Table, index func(int, resultset.Row) int) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, len(resultset.Header())+1)
	header = append(header, nil)
	for _, label := range resultset.Header() {
		header = append(header, label)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range table.Rows() {
		cells := make([]interface{}, 0, len(header))
		cells = append(cells,
			index(i, row),
			row.Key.Problem,
			row.Key.PopulationSize,
			row.Key.IterationCount,
			row.Key.EvaluationBudget,
			row.RunIndex,
		)
		for _, v := range row.Metrics {
			if math.IsNaN(v) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row coordinate: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
