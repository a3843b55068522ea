package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/iafilius/SolveTrends/src/types"
)

// CeilingQuantile picks a y-axis ceiling that keeps rare very slow solves from
// flattening everything else.
const CeilingQuantile = 0.99

// Quantile returns the p-quantile (0..1) of values using linear interpolation
// between the closest ranks: h = (n-1)p, q = x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h]).
// values is not modified. Returns NaN for an empty slice.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	return quantileSorted(cp, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Minutes returns the solve durations of a filtered dataset in minutes.
func Minutes(dataset []types.SolveRecord) []float64 {
	out := make([]float64, 0, len(dataset))
	for _, r := range dataset {
		if r.SolveDurationSecs != nil {
			out = append(out, *r.SolveDurationSecs/60)
		}
	}
	return out
}

// SelectScale returns the shared y scale. A non-nil override (minutes) is used
// verbatim; otherwise the ceiling is the 99th percentile of all solve times.
// Without an override the dataset must hold at least one record.
func SelectScale(dataset []types.SolveRecord, override *int) (types.YAxisScale, error) {
	if override != nil {
		if *override <= 0 {
			return types.YAxisScale{}, fmt.Errorf("y-axis ceiling must be a positive number of minutes, got %d", *override)
		}
		return types.YAxisScale{Ceiling: float64(*override), TickInterval: types.DefaultTickInterval}, nil
	}
	mins := Minutes(dataset)
	if len(mins) == 0 {
		return types.YAxisScale{}, types.ErrEmptyDataset
	}
	return types.YAxisScale{Ceiling: Quantile(mins, CeilingQuantile), TickInterval: types.DefaultTickInterval}, nil
}
