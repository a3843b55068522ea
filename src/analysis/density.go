package analysis

import (
	"math"
	"sort"
)

// Density is a Gaussian kernel density estimate sampled on an even grid.
type Density struct {
	Values    []float64 // grid positions
	Densities []float64 // estimate at each grid position
	Bandwidth float64
	Max       float64 // largest density, for width normalization
}

// DefaultDensityPoints is the number of grid samples per estimate.
const DefaultDensityPoints = 100

// ScottFactor is the bandwidth factor n^(-1/5) used when no factor is configured.
func ScottFactor(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Pow(float64(n), -1.0/5.0)
}

// KDE estimates the density of values. The bandwidth is factor times the
// sample standard deviation; factor <= 0 selects Scott's rule. The grid spans
// the data extended by cut bandwidths on each side, never below lowerBound.
// A zero bandwidth (one value, or all values equal) yields a single-point Density.
func KDE(values []float64, factor, cut, lowerBound float64, points int) Density {
	if len(values) == 0 {
		return Density{}
	}
	if points < 2 {
		points = DefaultDensityPoints
	}
	if factor <= 0 {
		factor = ScottFactor(len(values))
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	bw := factor * stddev(sorted)
	if bw == 0 || math.IsNaN(bw) {
		return Density{Values: []float64{sorted[0]}, Densities: []float64{1}, Max: 1}
	}
	lo := math.Max(sorted[0]-cut*bw, lowerBound)
	hi := sorted[len(sorted)-1] + cut*bw
	step := (hi - lo) / float64(points-1)
	d := Density{Values: make([]float64, points), Densities: make([]float64, points), Bandwidth: bw}
	norm := 1 / (float64(len(sorted)) * bw * math.Sqrt(2*math.Pi))
	for i := 0; i < points; i++ {
		y := lo + float64(i)*step
		var acc float64
		for _, v := range sorted {
			z := (y - v) / bw
			acc += math.Exp(-0.5 * z * z)
		}
		d.Values[i] = y
		d.Densities[i] = acc * norm
		if d.Densities[i] > d.Max {
			d.Max = d.Densities[i]
		}
	}
	return d
}

// stddev is the sample (n-1) standard deviation; 0 for fewer than two values.
func stddev(v []float64) float64 {
	if len(v) < 2 {
		return 0
	}
	var mean float64
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	var ss float64
	for _, x := range v {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(v)-1))
}
