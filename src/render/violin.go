package render

import (
	"math"

	"github.com/iafilius/SolveTrends/src/analysis"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// violinHalfWidth is the widest half of a violin in x-slot units (slots are 1 apart).
const violinHalfWidth = 0.4

// side selects which halves of a violin outline are drawn.
type side int

const (
	sideBoth side = iota
	sideLeft
	sideRight
)

// clipDensity keeps the grid samples at or below ceiling. The estimate is
// sampled again at the ceiling so the outline ends flat on the top edge.
func clipDensity(d analysis.Density, ceiling float64) ([]float64, []float64) {
	var ys, ds []float64
	for i, v := range d.Values {
		if v > ceiling {
			if i > 0 {
				ys = append(ys, ceiling)
				ds = append(ds, densityAt(d, ceiling))
			}
			break
		}
		ys = append(ys, v)
		ds = append(ds, d.Densities[i])
	}
	return ys, ds
}

// densityAt linearly interpolates the estimate at y; 0 outside the grid.
func densityAt(d analysis.Density, y float64) float64 {
	n := len(d.Values)
	if n == 0 || y < d.Values[0] || y > d.Values[n-1] {
		return 0
	}
	if n == 1 {
		return d.Densities[0]
	}
	for i := 1; i < n; i++ {
		if y <= d.Values[i] {
			x0, x1 := d.Values[i-1], d.Values[i]
			if x1 == x0 {
				return d.Densities[i]
			}
			f := (y - x0) / (x1 - x0)
			return d.Densities[i-1] + f*(d.Densities[i]-d.Densities[i-1])
		}
	}
	return d.Densities[n-1]
}

// violinOutline returns the outline of one violin centered on slot x as a
// closed path. Each violin is scaled to the same widest half-width.
func violinOutline(name string, x float64, d analysis.Density, ceiling float64, which side, col drawing.Color) (chart.ContinuousSeries, bool) {
	style := chart.Style{StrokeColor: col, StrokeWidth: 1.5}
	if len(d.Values) == 1 {
		// all solves took the same time: a flat bar
		v := math.Min(d.Values[0], ceiling)
		lo, hi := x-violinHalfWidth, x+violinHalfWidth
		switch which {
		case sideLeft:
			hi = x
		case sideRight:
			lo = x
		}
		style.StrokeWidth = 2
		return chart.ContinuousSeries{Name: name, XValues: []float64{lo, hi}, YValues: []float64{v, v}, Style: style}, true
	}
	ys, ds := clipDensity(d, ceiling)
	if len(ys) < 2 || d.Max <= 0 {
		return chart.ContinuousSeries{}, false
	}
	scale := violinHalfWidth / d.Max
	var xs, yv []float64
	if which == sideRight {
		xs = append(xs, x)
		yv = append(yv, ys[0])
	}
	if which != sideLeft {
		for i := range ys {
			xs = append(xs, x+ds[i]*scale)
			yv = append(yv, ys[i])
		}
	} else {
		xs = append(xs, x)
		yv = append(yv, ys[0])
		xs = append(xs, x)
		yv = append(yv, ys[len(ys)-1])
	}
	if which != sideRight {
		for i := len(ys) - 1; i >= 0; i-- {
			xs = append(xs, x-ds[i]*scale)
			yv = append(yv, ys[i])
		}
	} else {
		xs = append(xs, x)
		yv = append(yv, ys[len(ys)-1])
	}
	// close the path
	xs = append(xs, xs[0])
	yv = append(yv, yv[0])
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: yv, Style: style}, true
}

// innerBox draws the quartile bar, the min-max whisker and the median dot of a plain violin.
func innerBox(x float64, s analysis.WeekdaySummary, ceiling float64, col drawing.Color) []chart.Series {
	clamp := func(v float64) float64 { return math.Min(v, ceiling) }
	return []chart.Series{
		chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{clamp(s.Min), clamp(s.Max)},
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 1},
		},
		chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{clamp(s.P25), clamp(s.P75)},
			Style:   chart.Style{StrokeColor: col, StrokeWidth: 6},
		},
		chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{clamp(s.Median), clamp(s.Median)},
			Style:   pointStyle(drawing.ColorWhite),
		},
	}
}

// quartileLines marks the quartiles across one half of a split violin; the median line is heavier.
func quartileLines(x float64, p *DistributionPart, ceiling float64, which side, col drawing.Color) []chart.Series {
	d := p.Density
	if d.Max <= 0 {
		return nil
	}
	scale := violinHalfWidth / d.Max
	var out []chart.Series
	for i, q := range []float64{p.Stats.P25, p.Stats.Median, p.Stats.P75} {
		if q > ceiling {
			continue
		}
		w := densityAt(d, q) * scale
		end := x + w
		if which == sideLeft {
			end = x - w
		}
		width := 1.0
		if i == 1 {
			width = 2
		}
		out = append(out, chart.ContinuousSeries{
			XValues: []float64{x, end},
			YValues: []float64{q, q},
			Style:   chart.Style{StrokeColor: col, StrokeWidth: width},
		})
	}
	return out
}

// pointStyle draws markers without connecting lines.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}
