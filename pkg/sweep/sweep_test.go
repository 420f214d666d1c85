package sweep

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/symreg-tools/gpsweep/pkg/conlog"
	"github.com/symreg-tools/gpsweep/pkg/problem"
	"github.com/symreg-tools/gpsweep/pkg/resultset"
	"github.com/symreg-tools/gpsweep/pkg/runner"
	"github.com/symreg-tools/gpsweep/pkg/sweepcfg"
)

type scriptedRunner struct {
	stdout string
	fail   bool
	calls  []runner.Invocation
}

func (r *scriptedRunner) Run(_ context.Context, inv runner.Invocation) (runner.Output, error) {
	r.calls = append(r.calls, inv)
	if r.fail {
		return runner.Output{}, fmt.Errorf("scripted failure")
	}
	return runner.ParseOutput([]byte(r.stdout))
}

func testProblem(name string) problem.Problem {
	return problem.Problem{
		Name:     name,
		Target:   "Y",
		CSVPath:  "/data/" + name + ".csv",
		Training: problem.RowRange{Start: 0, End: 100},
		Test:     problem.RowRange{Start: 100, End: 200},
	}
}

func testSweeper(t *testing.T, r runner.Runner, opts Options) (*Sweeper, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	log := conlog.NewWithWriter("test", &bytes.Buffer{})
	tracer := noop.NewTracerProvider().Tracer("test")
	return New(opts, r, log, NewMetrics(registry), tracer), registry
}

func TestProduct(t *testing.T) {
	grid := sweepcfg.GridConfig{
		PopulationSizes:   []int{100, 200},
		IterationCounts:   []int{0},
		EvaluationBudgets: []int{1000, 2000},
	}

	tuples := Product(grid)
	if len(tuples) != 4 {
		t.Fatalf("unexpected tuple count: %d", len(tuples))
	}
	first := Tuple{PopulationSize: 100, IterationCount: 0, EvaluationBudget: 1000}
	last := Tuple{PopulationSize: 200, IterationCount: 0, EvaluationBudget: 2000}
	if tuples[0] != first || tuples[3] != last {
		t.Fatalf("unexpected tuple order: %v", tuples)
	}
}

func TestRunProducesArtifacts(t *testing.T) {
	outDir := t.TempDir()
	cfg := sweepcfg.Default()
	cfg.Report.Prefix = "GP_Test"

	scripted := &scriptedRunner{stdout: "0.5\t0\t0.1\n1.5\t1\t0.9\tnan\n"}
	sweeper, registry := testSweeper(t, scripted, Options{
		BinPath:  "/opt/operon-gp",
		Problems: []problem.Problem{testProblem("poly10"), testProblem("pagie1")},
		Reps:     2,
		OutDir:   outDir,
		Config:   cfg,
	})

	summary, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Configurations != 1 || summary.Problems != 2 || summary.Runs != 4 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(scripted.calls) != 4 {
		t.Fatalf("unexpected invocation count: %d", len(scripted.calls))
	}
	if got := scripted.calls[0].PopulationSize; got != 1000 {
		t.Fatalf("unexpected population size: %d", got)
	}

	// Two per-problem workbooks plus raw plus combined.
	wantArtifacts := []string{
		filepath.Join(outDir, "GP_Test_poly10_1000_0_500000.xlsx"),
		filepath.Join(outDir, "GP_Test_pagie1_1000_0_500000.xlsx"),
		filepath.Join(outDir, "GP_Test_raw.xlsx"),
		filepath.Join(outDir, "GP_Test.xlsx"),
	}
	if len(summary.Artifacts) != len(wantArtifacts) {
		t.Fatalf("unexpected artifact count: %v", summary.Artifacts)
	}
	for _, path := range wantArtifacts {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing artifact %s: %v", path, err)
		}
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if len(metrics) == 0 {
		t.Fatal("no metrics registered")
	}
}

func TestRunCountsRunsPerProblem(t *testing.T) {
	cfg := sweepcfg.Default()
	cfg.Report.Prefix = "GP_Count"

	scripted := &scriptedRunner{stdout: "1\t0\t0.5\n"}
	sweeper, _ := testSweeper(t, scripted, Options{
		BinPath:  "/opt/operon-gp",
		Problems: []problem.Problem{testProblem("poly10")},
		Reps:     3,
		OutDir:   t.TempDir(),
		Config:   cfg,
	})

	if _, err := sweeper.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := testutil.ToFloat64(sweeper.metrics.RunsTotal.WithLabelValues("poly10")); got != 3 {
		t.Fatalf("unexpected runs counter: %v", got)
	}
	if got := testutil.ToFloat64(sweeper.metrics.RunFailuresTotal.WithLabelValues("poly10")); got != 0 {
		t.Fatalf("unexpected failure counter: %v", got)
	}
}

func TestRunAbortsOnRunFailure(t *testing.T) {
	cfg := sweepcfg.Default()
	scripted := &scriptedRunner{fail: true}
	sweeper, _ := testSweeper(t, scripted, Options{
		BinPath:  "/opt/operon-gp",
		Problems: []problem.Problem{testProblem("poly10")},
		Reps:     2,
		OutDir:   t.TempDir(),
		Config:   cfg,
	})

	if _, err := sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected sweep to abort on run failure")
	}
	if got := testutil.ToFloat64(sweeper.metrics.RunFailuresTotal.WithLabelValues("poly10")); got != 1 {
		t.Fatalf("unexpected failure counter: %v", got)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	cfg := sweepcfg.Default()
	sweeper, _ := testSweeper(t, &scriptedRunner{}, Options{
		BinPath: "/opt/operon-gp",
		Reps:    0,
		Config:  cfg,
	})
	if _, err := sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected error for zero repetitions")
	}
}

func TestRawTableKeepsLineOrderAcrossRuns(t *testing.T) {
	cfg := sweepcfg.Default()
	// Three generation lines per run; the Generation column is field 1.
	scripted := &scriptedRunner{stdout: "0.1\t0\t0.5\n0.2\t1\t0.6\n0.3\t2\t0.7\n"}
	sweeper, _ := testSweeper(t, scripted, Options{
		BinPath:  "/opt/operon-gp",
		Problems: []problem.Problem{testProblem("poly10")},
		Reps:     2,
		OutDir:   t.TempDir(),
		Config:   cfg,
	})

	runs, err := sweeper.runProblem(context.Background(), Product(cfg.Grid)[0], testProblem("poly10"))
	if err != nil {
		t.Fatalf("run problem: %v", err)
	}

	rows := runs.raw.Rows()
	if len(rows) != 6 {
		t.Fatalf("expected every generation line of every run, got %d rows", len(rows))
	}
	wantRunIndex := []int{1, 1, 1, 2, 2, 2}
	wantGeneration := []float64{0, 1, 2, 0, 1, 2}
	for i, row := range rows {
		if row.RunIndex != wantRunIndex[i] {
			t.Fatalf("row %d: run index %d, want %d", i, row.RunIndex, wantRunIndex[i])
		}
		if row.Metrics[1] != wantGeneration[i] {
			t.Fatalf("row %d: generation %g, want %g", i, row.Metrics[1], wantGeneration[i])
		}
	}

	// Final table keeps one row per run, in run order.
	finals := runs.final.Rows()
	if len(finals) != 2 {
		t.Fatalf("unexpected final row count: %d", len(finals))
	}
	if finals[0].RunIndex != 1 || finals[1].RunIndex != 2 {
		t.Fatalf("unexpected final run order: %d, %d", finals[0].RunIndex, finals[1].RunIndex)
	}
}

func TestMedianBlockIncludesMetaColumns(t *testing.T) {
	var buf bytes.Buffer
	registry := prometheus.NewRegistry()
	log := conlog.NewWithWriter("test", &buf)
	tracer := noop.NewTracerProvider().Tracer("test")
	sweeper := New(Options{Config: sweepcfg.Default()}, &scriptedRunner{}, log, NewMetrics(registry), tracer)

	table := &resultset.Table{}
	table.Append(resultset.Row{
		Key: resultset.Key{
			Problem:          "poly10",
			PopulationSize:   1000,
			IterationCount:   0,
			EvaluationBudget: 500000,
		},
		RunIndex: 1,
		Metrics:  []float64{12.5},
	})
	sweeper.logMedians(table)

	out := buf.String()
	for _, label := range []string{"Pop size", "Iter count", "Eval count", "Run index", "Elapsed"} {
		if !strings.Contains(out, label) {
			t.Fatalf("median block missing %q:\n%s", label, out)
		}
	}
}

func TestRunKeepsNaNInFinalRow(t *testing.T) {
	cfg := sweepcfg.Default()
	cfg.Report.Prefix = "GP_NaN"
	scripted := &scriptedRunner{stdout: "1\t0\tnan\n"}
	sweeper, _ := testSweeper(t, scripted, Options{
		BinPath:  "/opt/operon-gp",
		Problems: []problem.Problem{testProblem("poly10")},
		Reps:     1,
		OutDir:   t.TempDir(),
		Config:   cfg,
	})

	runs, err := sweeper.runProblem(context.Background(), Product(cfg.Grid)[0], testProblem("poly10"))
	if err != nil {
		t.Fatalf("run problem: %v", err)
	}
	rows := runs.final.Rows()
	if len(rows) != 1 {
		t.Fatalf("unexpected row count: %d", len(rows))
	}
	if !math.IsNaN(rows[0].Metrics[2]) {
		t.Fatalf("expected NaN metric, got %v", rows[0].Metrics[2])
	}
	if rows[0].RunIndex != 1 {
		t.Fatalf("run index should be 1-based, got %d", rows[0].RunIndex)
	}
}
