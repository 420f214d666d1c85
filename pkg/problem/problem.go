// Package problem loads benchmark problem descriptors from JSON
// metadata files that accompany the benchmark CSV datasets.
package problem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/symreg-tools/gpsweep/pkg/schema"
)

// RowRange is a half-open dataset row interval.
type RowRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String renders the range in the start:end form the GP binary expects.
func (r RowRange) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Count returns the number of rows covered by the range.
func (r RowRange) Count() int {
	return r.End - r.Start
}

// Metadata is the inner metadata object of a problem descriptor file.
type Metadata struct {
	Name         string   `json:"name"`
	Target       string   `json:"target"`
	Filename     string   `json:"filename"`
	TrainingRows RowRange `json:"training_rows"`
	TestRows     RowRange `json:"test_rows"`
}

type document struct {
	Metadata Metadata `json:"metadata"`
}

// Problem is one benchmark problem resolved against its base directory.
type Problem struct {
	// Name is the metadata filename stem, which takes precedence over
	// the name recorded inside the document.
	Name     string
	Target   string
	CSVPath  string
	Training RowRange
	Test     RowRange
}

// Load parses one metadata file. The dataset CSV path is resolved
// relative to the metadata file's directory.
func Load(path string) (Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Problem{}, fmt.Errorf("read problem metadata %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Problem{}, fmt.Errorf("unmarshal problem metadata %s: %w", path, err)
	}

	meta := doc.Metadata
	if meta.Target == "" {
		return Problem{}, fmt.Errorf("problem metadata %s: missing target column", path)
	}
	if meta.Filename == "" {
		return Problem{}, fmt.Errorf("problem metadata %s: missing dataset filename", path)
	}
	if meta.TrainingRows.End < meta.TrainingRows.Start {
		return Problem{}, fmt.Errorf("problem metadata %s: inverted training range %s", path, meta.TrainingRows)
	}
	if meta.TestRows.End < meta.TestRows.Start {
		return Problem{}, fmt.Errorf("problem metadata %s: inverted test range %s", path, meta.TestRows)
	}

	base := filepath.Dir(path)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Problem{
		Name:     name,
		Target:   meta.Target,
		CSVPath:  filepath.Join(base, meta.Filename),
		Training: meta.TrainingRows,
		Test:     meta.TestRows,
	}, nil
}

// Discover lists problem metadata files under a data path. A directory
// yields all of its .json entries in lexical order; a file path yields
// itself.
func Discover(dataPath string) ([]string, error) {
	info, err := os.Stat(dataPath)
	if err != nil {
		return nil, fmt.Errorf("stat data path %s: %w", dataPath, err)
	}

	if !info.IsDir() {
		return []string{dataPath}, nil
	}

	entries, err := os.ReadDir(dataPath)
	if err != nil {
		return nil, fmt.Errorf("read data directory %s: %w", dataPath, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dataPath, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no problem metadata (.json) files under %s", dataPath)
	}
	return paths, nil
}

// LoadAll validates and loads every discovered problem. A nil compiled
// schema skips contract validation.
func LoadAll(dataPath string, contract *schema.Compiled) ([]Problem, error) {
	paths, err := Discover(dataPath)
	if err != nil {
		return nil, err
	}

	problems := make([]Problem, 0, len(paths))
	for _, path := range paths {
		if contract != nil {
			if err := contract.ValidateFile(path); err != nil {
				return nil, fmt.Errorf("problem metadata contract: %w", err)
			}
		}
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}
