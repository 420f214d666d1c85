// Command gpsweep runs the configuration grid search for the external
// genetic-programming binary and exports workbook artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/symreg-tools/gpsweep/pkg/conlog"
	"github.com/symreg-tools/gpsweep/pkg/problem"
	"github.com/symreg-tools/gpsweep/pkg/runner"
	"github.com/symreg-tools/gpsweep/pkg/runtrace"
	"github.com/symreg-tools/gpsweep/pkg/schema"
	"github.com/symreg-tools/gpsweep/pkg/sweep"
	"github.com/symreg-tools/gpsweep/pkg/sweepcfg"
)

var version = "dev"

func main() {
	binPath := flag.String("bin", "", "path to the GP executable")
	dataPath := flag.String("data", "", "problem metadata file or directory")
	reps := flag.Int("reps", 0, "repetitions per configuration and problem")
	configPath := flag.String("config", "", "optional sweep config YAML")
	outDir := flag.String("out", ".", "output directory for workbook artifacts")
	prefix := flag.String("prefix", "", "artifact filename prefix (overrides config)")
	contractPath := flag.String("contract", "", "problem metadata JSON schema (default: bundled contract)")
	noValidate := flag.Bool("no-validate", false, "skip metadata contract validation")
	metricsBind := flag.String("metrics-bind", "", "optional address to serve /metrics during the sweep")
	otlpEndpoint := flag.String("otlp-endpoint", "", "optional OTLP/gRPC trace endpoint")
	traceStdout := flag.Bool("trace", false, "emit pretty spans to stdout when no OTLP endpoint is set")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	log := conlog.New("operon-gp")
	if *binPath == "" || *dataPath == "" {
		log.Fatalf("--bin and --data are required")
	}
	if *reps < 1 {
		log.Fatalf("--reps must be >= 1")
	}

	cfg := sweepcfg.Default()
	if *configPath != "" {
		loaded, err := sweepcfg.Load(*configPath)
		if err != nil {
			log.Fatalf("load sweep config: %v", err)
		}
		cfg = loaded
	}
	if *prefix != "" {
		cfg.Report.Prefix = *prefix
	}

	var contract *schema.Compiled
	if !*noValidate {
		path := *contractPath
		if path == "" {
			path = filepath.Join(projectRoot(), "docs", "contracts", "v1", "problem-metadata.schema.json")
		}
		compiled, err := schema.Compile(path)
		if err != nil {
			log.Fatalf("compile metadata contract: %v", err)
		}
		contract = compiled
	}

	problems, err := problem.LoadAll(*dataPath, contract)
	if err != nil {
		log.Fatalf("load problems: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	registry := prometheus.NewRegistry()
	metrics := sweep.NewMetrics(registry)
	if *metricsBind != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		go func() {
			if err := http.ListenAndServe(*metricsBind, mux); err != nil {
				log.Errorf("metrics endpoint: %v", err)
			}
		}()
		log.Infof("serving metrics on %s", *metricsBind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *otlpEndpoint != "" || *traceStdout {
		shutdown, err := runtrace.Setup("gpsweep", *otlpEndpoint)
		if err != nil {
			log.Fatalf("setup tracer provider: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Errorf("shutdown tracer provider: %v", err)
			}
		}()
	}

	sweeper := sweep.New(sweep.Options{
		BinPath:  *binPath,
		Problems: problems,
		Reps:     *reps,
		OutDir:   *outDir,
		Config:   cfg,
	}, runner.BinaryRunner{}, log, metrics, runtrace.Tracer())

	summary, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Infof("sweep complete: %d configurations, %d problems, %d runs, %d artifacts",
		summary.Configurations, summary.Problems, summary.Runs, len(summary.Artifacts))
}

func projectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
