package sweepcfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SweepConfig mirrors config/sweep.yaml.
type SweepConfig struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Grid       GridConfig       `yaml:"grid"`
	Invocation InvocationConfig `yaml:"invocation"`
	Report     ReportConfig     `yaml:"report"`
}

// GridConfig holds the swept parameter axes.
type GridConfig struct {
	PopulationSizes   []int `yaml:"population_sizes"`
	IterationCounts   []int `yaml:"iteration_counts"`
	EvaluationBudgets []int `yaml:"evaluation_budgets"`
}

// InvocationConfig tunes the external binary invocation.
type InvocationConfig struct {
	Threads       int    `yaml:"threads"`
	GenerationCap int    `yaml:"generation_cap"`
	Symbols       string `yaml:"symbols"`
	PreloadLib    string `yaml:"preload_lib"`
	RunTimeoutMS  int    `yaml:"run_timeout_ms"`
}

// RunTimeout returns the per-run timeout, zero meaning unlimited.
func (c InvocationConfig) RunTimeout() time.Duration {
	if c.RunTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(c.RunTimeoutMS) * time.Millisecond
}

// ReportConfig controls artifact naming.
type ReportConfig struct {
	Prefix string `yaml:"prefix"`
}

// Default returns v1 defaults matching the reference sweep.
func Default() SweepConfig {
	return SweepConfig{
		APIVersion: "sweep.symreg-tools.dev/v1",
		Kind:       "SweepConfig",
		Grid: GridConfig{
			PopulationSizes:   []int{1000},
			IterationCounts:   []int{0},
			EvaluationBudgets: []int{500000},
		},
		Invocation: InvocationConfig{
			Threads:       6,
			GenerationCap: 1000,
			Symbols:       "exp,log,sin,cos",
			PreloadLib:    "/usr/lib/libjemalloc.so",
		},
		Report: ReportConfig{
			Prefix: "GP_Brood(10,5)",
		},
	}
}

// Load parses and normalizes a sweep config file.
func Load(path string) (SweepConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	normalize(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func normalize(cfg *SweepConfig) {
	defaults := Default()
	if len(cfg.Grid.PopulationSizes) == 0 {
		cfg.Grid.PopulationSizes = defaults.Grid.PopulationSizes
	}
	if len(cfg.Grid.IterationCounts) == 0 {
		cfg.Grid.IterationCounts = defaults.Grid.IterationCounts
	}
	if len(cfg.Grid.EvaluationBudgets) == 0 {
		cfg.Grid.EvaluationBudgets = defaults.Grid.EvaluationBudgets
	}
	if cfg.Invocation.Threads <= 0 {
		cfg.Invocation.Threads = defaults.Invocation.Threads
	}
	if cfg.Invocation.GenerationCap <= 0 {
		cfg.Invocation.GenerationCap = defaults.Invocation.GenerationCap
	}
	if cfg.Invocation.Symbols == "" {
		cfg.Invocation.Symbols = defaults.Invocation.Symbols
	}
	if cfg.Report.Prefix == "" {
		cfg.Report.Prefix = defaults.Report.Prefix
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaults.APIVersion
	}
	if cfg.Kind == "" {
		cfg.Kind = defaults.Kind
	}
}

func validate(cfg SweepConfig) error {
	for _, p := range cfg.Grid.PopulationSizes {
		if p <= 0 {
			return fmt.Errorf("population size must be positive, got %d", p)
		}
	}
	for _, i := range cfg.Grid.IterationCounts {
		if i < 0 {
			return fmt.Errorf("iteration count must be non-negative, got %d", i)
		}
	}
	for _, e := range cfg.Grid.EvaluationBudgets {
		if e <= 0 {
			return fmt.Errorf("evaluation budget must be positive, got %d", e)
		}
	}
	if cfg.Invocation.RunTimeoutMS < 0 {
		return fmt.Errorf("run timeout must be non-negative, got %dms", cfg.Invocation.RunTimeoutMS)
	}
	return nil
}
