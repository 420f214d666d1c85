// Command problemlint validates problem metadata documents against the
// bundled contract and checks that their datasets exist.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/symreg-tools/gpsweep/pkg/problem"
	"github.com/symreg-tools/gpsweep/pkg/schema"
)

var version = "dev"

type lintResult struct {
	Path  string `json:"path"`
	Pass  bool   `json:"pass"`
	Error string `json:"error,omitempty"`
}

func main() {
	if len(os.Args) == 2 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Println(version)
		return
	}

	dataPath := flag.String("data", "", "problem metadata file or directory")
	contractPath := flag.String("contract", "", "problem metadata JSON schema (default: bundled contract)")
	jsonOutput := flag.Bool("json", false, "emit results as JSON")
	flag.Parse()

	if *dataPath == "" {
		fmt.Fprintln(os.Stderr, "--data is required")
		os.Exit(2)
	}

	path := *contractPath
	if path == "" {
		path = filepath.Join(projectRoot(), "docs", "contracts", "v1", "problem-metadata.schema.json")
	}
	contract, err := schema.Compile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile metadata contract: %v\n", err)
		os.Exit(1)
	}

	paths, err := problem.Discover(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "discover problems: %v\n", err)
		os.Exit(1)
	}

	results := make([]lintResult, 0, len(paths))
	failed := false
	for _, p := range paths {
		result := lintResult{Path: p, Pass: true}
		if err := lintOne(p, contract); err != nil {
			result.Pass = false
			result.Error = err.Error()
			failed = true
		}
		results = append(results, result)
	}

	if *jsonOutput {
		payload, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal results: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(payload))
	} else {
		for _, result := range results {
			if result.Pass {
				fmt.Printf("ok: %s\n", result.Path)
				continue
			}
			fmt.Printf("FAIL: %s: %s\n", result.Path, result.Error)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func lintOne(path string, contract *schema.Compiled) error {
	if err := contract.ValidateFile(path); err != nil {
		return err
	}

	p, err := problem.Load(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p.CSVPath); err != nil {
		return fmt.Errorf("dataset %s: %w", p.CSVPath, err)
	}
	return nil
}

func projectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
