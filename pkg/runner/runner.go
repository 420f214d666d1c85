// Package runner invokes the external genetic-programming binary and
// parses its per-generation output.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/symreg-tools/gpsweep/pkg/problem"
)

// Invocation describes one run of the GP binary.
type Invocation struct {
	BinPath          string
	Problem          problem.Problem
	PopulationSize   int
	IterationCount   int
	EvaluationBudget int
	GenerationCap    int
	Threads          int
	Symbols          string
	PreloadLib       string
}

// Args builds the binary's command-line arguments.
func (inv Invocation) Args() []string {
	return []string{
		"--threads", strconv.Itoa(inv.Threads),
		"--dataset", inv.Problem.CSVPath,
		"--target", inv.Problem.Target,
		"--train", inv.Problem.Training.String(),
		"--test", inv.Problem.Test.String(),
		"--iterations", strconv.Itoa(inv.IterationCount),
		"--evaluations", strconv.Itoa(inv.EvaluationBudget),
		"--population-size", strconv.Itoa(inv.PopulationSize),
		"--generations", strconv.Itoa(inv.GenerationCap),
		"--enable-symbols", inv.Symbols,
	}
}

// Runner abstracts binary execution so the sweep loop is testable.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Output, error)
}

// BinaryRunner executes the GP binary as a subprocess.
type BinaryRunner struct{}

// Run invokes the binary and parses its stdout. Stderr passes through
// to the driver's stderr so solver diagnostics stay visible.
func (BinaryRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	cmd := exec.CommandContext(ctx, inv.BinPath, inv.Args()...)
	cmd.Env = os.Environ()
	if inv.PreloadLib != "" {
		cmd.Env = append(cmd.Env, "LD_PRELOAD="+inv.PreloadLib)
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("run %s on %s: %w", inv.BinPath, inv.Problem.Name, ctx.Err())
		}
		return Output{}, fmt.Errorf("run %s on %s: %w", inv.BinPath, inv.Problem.Name, err)
	}

	out, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return Output{}, fmt.Errorf("parse output of %s on %s: %w", inv.BinPath, inv.Problem.Name, err)
	}
	return out, nil
}
