// Package resultset accumulates per-run and per-generation result rows
// and summarizes them with NaN-aware medians.
package resultset

import "sort"

// MetaColumns label the run identity fields of every row.
var MetaColumns = []string{
	"Problem",
	"Pop size",
	"Iter count",
	"Eval count",
	"Run index",
}

// MetricColumns label the tab-separated values the GP binary emits per
// generation line.
var MetricColumns = []string{
	"Elapsed",
	"Generation",
	"R2 (train)",
	"R2 (test)",
	"NMSE (train)",
	"NMSE (test)",
	"Average quality",
	"Average length",
	"Fitness evaluations",
	"Local evaluations",
	"Total evaluations",
}

// Header returns the combined meta + metric column labels.
func Header() []string {
	header := make([]string, 0, len(MetaColumns)+len(MetricColumns))
	header = append(header, MetaColumns...)
	header = append(header, MetricColumns...)
	return header
}

// Key identifies one (problem, configuration) group.
type Key struct {
	Problem          string
	PopulationSize   int
	IterationCount   int
	EvaluationBudget int
}

// Row is one result record: run identity plus a metric vector.
type Row struct {
	Key      Key
	RunIndex int
	Metrics  []float64
}

// Table is an ordered accumulation of result rows.
type Table struct {
	rows []Row
}

// Append adds a row, keeping insertion order.
func (t *Table) Append(row Row) {
	t.rows = append(t.rows, row)
}

// AppendAll adds every row of another table.
func (t *Table) AppendAll(other *Table) {
	t.rows = append(t.rows, other.rows...)
}

// Rows returns the accumulated rows in insertion order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.rows)
}

// MetaMedians returns the medians of the numeric meta columns
// (population size, iteration count, evaluation budget, run index),
// aligned with MetaColumns[1:].
func (t *Table) MetaMedians() []float64 {
	pops := make([]float64, 0, len(t.rows))
	iters := make([]float64, 0, len(t.rows))
	evals := make([]float64, 0, len(t.rows))
	runs := make([]float64, 0, len(t.rows))
	for _, row := range t.rows {
		pops = append(pops, float64(row.Key.PopulationSize))
		iters = append(iters, float64(row.Key.IterationCount))
		evals = append(evals, float64(row.Key.EvaluationBudget))
		runs = append(runs, float64(row.RunIndex))
	}
	return []float64{Median(pops), Median(iters), Median(evals), Median(runs)}
}

// ColumnMedians returns the NaN-aware median of each metric column.
// Entries for columns with no finite value are NaN.
func (t *Table) ColumnMedians() []float64 {
	width := 0
	for _, row := range t.rows {
		if len(row.Metrics) > width {
			width = len(row.Metrics)
		}
	}

	medians := make([]float64, width)
	for col := 0; col < width; col++ {
		values := make([]float64, 0, len(t.rows))
		for _, row := range t.rows {
			if col < len(row.Metrics) {
				values = append(values, row.Metrics[col])
			}
		}
		medians[col] = Median(values)
	}
	return medians
}

// GroupMedian is the per-group median summary of a table.
type GroupMedian struct {
	Key     Key
	Medians []float64
}

// GroupMedians returns per-(problem, configuration) medians sorted by
// group key.
func (t *Table) GroupMedians() []GroupMedian {
	groups := make(map[Key]*Table)
	for _, row := range t.rows {
		g, ok := groups[row.Key]
		if !ok {
			g = &Table{}
			groups[row.Key] = g
		}
		g.Append(row)
	}

	keys := make([]Key, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Problem != b.Problem {
			return a.Problem < b.Problem
		}
		if a.PopulationSize != b.PopulationSize {
			return a.PopulationSize < b.PopulationSize
		}
		if a.IterationCount != b.IterationCount {
			return a.IterationCount < b.IterationCount
		}
		return a.EvaluationBudget < b.EvaluationBudget
	})

	summaries := make([]GroupMedian, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, GroupMedian{
			Key:     key,
			Medians: groups[key].ColumnMedians(),
		})
	}
	return summaries
}
