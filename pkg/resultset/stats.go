package resultset

import (
	"math"
	"sort"
)

// Median returns the NaN-aware median of values, interpolating between
// the two middle elements for even counts. It returns NaN when no
// finite value remains.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Quantile returns the linearly interpolated q-quantile of the finite
// values, matching the aggregation used for run summaries.
func Quantile(values []float64, q float64) float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return math.NaN()
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sort.Float64s(finite)
	if len(finite) == 1 {
		return finite[0]
	}

	pos := q * float64(len(finite)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return finite[lower]
	}

	frac := pos - float64(lower)
	return finite[lower]*(1-frac) + finite[upper]*frac
}
