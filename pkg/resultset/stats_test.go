package resultset

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "odd", values: []float64{5, 1, 3}, want: 3},
		{name: "even interpolates", values: []float64{1, 2, 3, 4}, want: 2.5},
		{name: "single", values: []float64{7}, want: 7},
		{name: "nan skipped", values: []float64{math.NaN(), 2, 4}, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Median(tc.values); got != tc.want {
				t.Fatalf("median(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}

func TestMedianAllNaN(t *testing.T) {
	if got := Median([]float64{math.NaN(), math.NaN()}); !math.IsNaN(got) {
		t.Fatalf("expected NaN, got %v", got)
	}
	if got := Median(nil); !math.IsNaN(got) {
		t.Fatalf("expected NaN for empty input, got %v", got)
	}
}

func TestQuantileBounds(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := Quantile(values, 0); got != 1 {
		t.Fatalf("q0 = %v", got)
	}
	if got := Quantile(values, 1); got != 5 {
		t.Fatalf("q1 = %v", got)
	}
	if got := Quantile(values, 0.25); got != 2 {
		t.Fatalf("q0.25 = %v", got)
	}
}
