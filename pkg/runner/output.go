package runner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Output is the parsed stdout of one GP run: one tab-separated metric
// line per generation, the last of which is the final result.
type Output struct {
	Lines [][]float64
	Raw   []string
}

// Final returns the metric vector of the last generation line.
func (o Output) Final() []float64 {
	if len(o.Lines) == 0 {
		return nil
	}
	return o.Lines[len(o.Lines)-1]
}

// FinalRaw returns the last generation line as emitted by the binary.
func (o Output) FinalRaw() string {
	if len(o.Raw) == 0 {
		return ""
	}
	return o.Raw[len(o.Raw)-1]
}

// ParseOutput splits stdout into non-empty lines and parses each as a
// tab-separated metric vector.
func ParseOutput(stdout []byte) (Output, error) {
	var out Output
	for _, line := range strings.Split(string(stdout), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		values, err := ParseLine(line)
		if err != nil {
			return Output{}, err
		}
		out.Lines = append(out.Lines, values)
		out.Raw = append(out.Raw, line)
	}

	if len(out.Lines) == 0 {
		return Output{}, fmt.Errorf("no result lines in output")
	}
	return out, nil
}

// ParseLine parses one tab-separated metric line. The literal token
// "nan" marks a missing value and becomes NaN.
func ParseLine(line string) ([]float64, error) {
	fields := strings.Split(line, "\t")
	values := make([]float64, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "nan" {
			values = append(values, math.NaN())
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("parse metric field %q: %w", field, err)
		}
		values = append(values, v)
	}
	return values, nil
}
