package sweepcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	content := `
apiVersion: sweep.symreg-tools.dev/v1
kind: SweepConfig
grid:
  population_sizes: [500, 1000]
  iteration_counts: [0]
  evaluation_budgets: [250000]
invocation:
  threads: 4
  run_timeout_ms: 1800000
report:
  prefix: GP_Test
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Grid.PopulationSizes) != 2 {
		t.Fatalf("unexpected population axis: %v", cfg.Grid.PopulationSizes)
	}
	if cfg.Invocation.Threads != 4 {
		t.Fatalf("unexpected threads: %d", cfg.Invocation.Threads)
	}
	if cfg.Invocation.RunTimeout() != 30*time.Minute {
		t.Fatalf("unexpected run timeout: %s", cfg.Invocation.RunTimeout())
	}
	if cfg.Report.Prefix != "GP_Test" {
		t.Fatalf("unexpected prefix: %q", cfg.Report.Prefix)
	}
	// Omitted fields fall back to defaults.
	if cfg.Invocation.GenerationCap != 1000 {
		t.Fatalf("unexpected generation cap: %d", cfg.Invocation.GenerationCap)
	}
	if cfg.Invocation.Symbols != "exp,log,sin,cos" {
		t.Fatalf("unexpected symbols: %q", cfg.Invocation.Symbols)
	}
}

func TestLoadRejectsBadGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	content := `
grid:
  population_sizes: [0]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive population size")
	}
}

func TestDefaultMatchesReferenceSweep(t *testing.T) {
	cfg := Default()
	if len(cfg.Grid.PopulationSizes) != 1 || cfg.Grid.PopulationSizes[0] != 1000 {
		t.Fatalf("unexpected default population axis: %v", cfg.Grid.PopulationSizes)
	}
	if cfg.Grid.EvaluationBudgets[0] != 500000 {
		t.Fatalf("unexpected default budget: %v", cfg.Grid.EvaluationBudgets)
	}
	if cfg.Report.Prefix != "GP_Brood(10,5)" {
		t.Fatalf("unexpected default prefix: %q", cfg.Report.Prefix)
	}
}
