// Package sweep drives the configuration grid over the benchmark
// problems, invoking the GP binary and aggregating its results.
package sweep

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/symreg-tools/gpsweep/pkg/conlog"
	"github.com/symreg-tools/gpsweep/pkg/problem"
	"github.com/symreg-tools/gpsweep/pkg/report"
	"github.com/symreg-tools/gpsweep/pkg/resultset"
	"github.com/symreg-tools/gpsweep/pkg/runner"
	"github.com/symreg-tools/gpsweep/pkg/sweepcfg"
)

// Tuple is one swept configuration combination.
type Tuple struct {
	PopulationSize   int
	IterationCount   int
	EvaluationBudget int
}

// Product returns the cartesian product of the grid axes, outer axis
// first.
func Product(grid sweepcfg.GridConfig) []Tuple {
	tuples := make([]Tuple, 0,
		len(grid.PopulationSizes)*len(grid.IterationCounts)*len(grid.EvaluationBudgets))
	for _, pop := range grid.PopulationSizes {
		for _, iter := range grid.IterationCounts {
			for _, eval := range grid.EvaluationBudgets {
				tuples = append(tuples, Tuple{
					PopulationSize:   pop,
					IterationCount:   iter,
					EvaluationBudget: eval,
				})
			}
		}
	}
	return tuples
}

// Options configures one sweep.
type Options struct {
	BinPath  string
	Problems []problem.Problem
	Reps     int
	OutDir   string
	Config   sweepcfg.SweepConfig
}

// Summary reports what a completed sweep produced.
type Summary struct {
	Configurations int
	Problems       int
	Runs           int
	Artifacts      []string
}

// Sweeper runs the full grid sequentially. Run ordering is part of the
// raw table contract, so there is no cross-run concurrency.
type Sweeper struct {
	opts    Options
	runner  runner.Runner
	log     *conlog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New constructs a sweeper.
func New(opts Options, r runner.Runner, log *conlog.Logger, metrics *Metrics, tracer trace.Tracer) *Sweeper {
	return &Sweeper{
		opts:    opts,
		runner:  r,
		log:     log,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Run executes the sweep and writes all workbook artifacts.
func (s *Sweeper) Run(ctx context.Context) (Summary, error) {
	opts := s.opts
	if opts.Reps < 1 {
		return Summary{}, fmt.Errorf("repetitions must be >= 1, got %d", opts.Reps)
	}
	if len(opts.Problems) == 0 {
		return Summary{}, fmt.Errorf("no problems to sweep")
	}

	tuples := Product(opts.Config.Grid)
	prefix := opts.Config.Report.Prefix
	totalConfigs := len(tuples)
	s.metrics.PlannedRuns.Set(float64(opts.Reps * totalConfigs * len(opts.Problems)))

	raw := &resultset.Table{}
	combined := &resultset.Table{}
	summary := Summary{
		Configurations: totalConfigs,
		Problems:       len(opts.Problems),
	}

	for idx, tuple := range tuples {
		genCount := int(math.Ceil(float64(tuple.EvaluationBudget) / float64(tuple.PopulationSize)))
		s.log.Infof("derived generation count: %d", genCount)

		configStr := fmt.Sprintf("Configuration [%d/%d]\tpopulation size: %d\titerations: %d\tevaluation budget: %d",
			idx+1, totalConfigs, tuple.PopulationSize, tuple.IterationCount, tuple.EvaluationBudget)

		for i, prob := range opts.Problems {
			problemStr := fmt.Sprintf("Problem [%d/%d]\t%s\tRows: %s\tTarget: %s\tRepetitions: %d",
				i+1, len(opts.Problems), prob.Name, prob.Training, prob.Target, opts.Reps)
			s.log.Bannerf(configStr)
			s.log.Bannerf(problemStr)

			runs, err := s.runProblem(ctx, tuple, prob)
			if err != nil {
				return summary, err
			}
			summary.Runs += opts.Reps
			raw.AppendAll(runs.raw)

			s.log.Donef(configStr)
			s.log.Donef(problemStr)
			s.logMedians(runs.final)

			key := tupleKey(prob.Name, tuple)
			path := filepath.Join(opts.OutDir, report.ProblemWorkbookName(prefix, key))
			if err := report.WriteRunTable(path, runs.final); err != nil {
				return summary, err
			}
			summary.Artifacts = append(summary.Artifacts, path)
			combined.AppendAll(runs.final)
		}
	}

	rawPath := filepath.Join(opts.OutDir, report.RawWorkbookName(prefix))
	if err := report.WriteTable(rawPath, raw); err != nil {
		return summary, err
	}
	summary.Artifacts = append(summary.Artifacts, rawPath)

	combinedPath := filepath.Join(opts.OutDir, report.CombinedWorkbookName(prefix))
	if err := report.WriteRunTable(combinedPath, combined); err != nil {
		return summary, err
	}
	summary.Artifacts = append(summary.Artifacts, combinedPath)

	s.logGroupedMedians(combined)
	return summary, nil
}

// problemRuns carries both the final rows and the raw generation rows
// of one (configuration, problem) block.
type problemRuns struct {
	final *resultset.Table
	raw   *resultset.Table
}

func (s *Sweeper) runProblem(ctx context.Context, tuple Tuple, prob problem.Problem) (problemRuns, error) {
	ctx, span := s.tracer.Start(ctx, "sweep.problem", trace.WithAttributes(
		attribute.String("problem", prob.Name),
		attribute.Int("population_size", tuple.PopulationSize),
		attribute.Int("iteration_count", tuple.IterationCount),
		attribute.Int("evaluation_budget", tuple.EvaluationBudget),
	))
	defer span.End()

	inv := runner.Invocation{
		BinPath:          s.opts.BinPath,
		Problem:          prob,
		PopulationSize:   tuple.PopulationSize,
		IterationCount:   tuple.IterationCount,
		EvaluationBudget: tuple.EvaluationBudget,
		GenerationCap:    s.opts.Config.Invocation.GenerationCap,
		Threads:          s.opts.Config.Invocation.Threads,
		Symbols:          s.opts.Config.Invocation.Symbols,
		PreloadLib:       s.opts.Config.Invocation.PreloadLib,
	}
	key := tupleKey(prob.Name, tuple)
	runs := problemRuns{final: &resultset.Table{}, raw: &resultset.Table{}}

	for j := 1; j <= s.opts.Reps; j++ {
		out, err := s.runOnce(ctx, inv, prob.Name, j)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return runs, err
		}

		s.log.Infof("[%2d/%d]\t%s\t%s", j, s.opts.Reps, prob.Name, out.FinalRaw())
		runs.final.Append(resultset.Row{Key: key, RunIndex: j, Metrics: out.Final()})
		for _, line := range out.Lines {
			runs.raw.Append(resultset.Row{Key: key, RunIndex: j, Metrics: line})
		}
	}
	return runs, nil
}

func (s *Sweeper) runOnce(ctx context.Context, inv runner.Invocation, problemName string, runIndex int) (runner.Output, error) {
	runCtx := ctx
	if timeout := s.opts.Config.Invocation.RunTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	runCtx, span := s.tracer.Start(runCtx, "sweep.run", trace.WithAttributes(
		attribute.String("problem", problemName),
		attribute.Int("run_index", runIndex),
	))
	defer span.End()

	start := time.Now()
	out, err := s.runner.Run(runCtx, inv)
	s.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RunFailuresTotal.WithLabelValues(problemName).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return runner.Output{}, err
	}
	s.metrics.RunsTotal.WithLabelValues(problemName).Inc()
	return out, nil
}

// logMedians prints the median of every numeric column, the meta
// columns included.
func (s *Sweeper) logMedians(final *resultset.Table) {
	metaLabels := resultset.MetaColumns[1:]
	for i, value := range final.MetaMedians() {
		s.log.Medianf("%-22s %g", metaLabels[i], value)
	}
	for col, value := range final.ColumnMedians() {
		s.log.Medianf("%-22s %g", metricLabel(col), value)
	}
}

func (s *Sweeper) logGroupedMedians(combined *resultset.Table) {
	for _, group := range combined.GroupMedians() {
		parts := make([]string, 0, len(group.Medians))
		for _, v := range group.Medians {
			parts = append(parts, fmt.Sprintf("%g", v))
		}
		s.log.Summaryf("%s\tpop: %d\titer: %d\teval: %d\t%s",
			group.Key.Problem,
			group.Key.PopulationSize,
			group.Key.IterationCount,
			group.Key.EvaluationBudget,
			strings.Join(parts, "\t"))
	}
}

func metricLabel(col int) string {
	if col < len(resultset.MetricColumns) {
		return resultset.MetricColumns[col]
	}
	return fmt.Sprintf("Metric %d", col)
}

func tupleKey(problemName string, tuple Tuple) resultset.Key {
	return resultset.Key{
		Problem:          problemName,
		PopulationSize:   tuple.PopulationSize,
		IterationCount:   tuple.IterationCount,
		EvaluationBudget: tuple.EvaluationBudget,
	}
}
