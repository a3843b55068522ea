package render

import (
	"fmt"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
)

// maxYLabels caps the labeled y ticks.
const maxYLabels = 13

// maxMinorLines caps the minor grid; beyond it only labeled ticks get grid lines.
const maxMinorLines = 240

// yAxisTicks returns labeled ticks and grid lines for [0, ceiling]. Grid lines run
// every interval (minor) and at each labeled tick (major). Labels step by a
// multiple of interval so that at most maxYLabels are drawn.
func yAxisTicks(ceiling, interval float64) ([]chart.Tick, []chart.GridLine) {
	if interval <= 0 {
		interval = 5
	}
	if ceiling <= 0 {
		ceiling = interval
	}
	step := math.Max(1, math.Ceil(ceiling/interval/(maxYLabels-1)-1e-9)) * interval
	n := int(math.Floor(ceiling/step + 1e-9))
	ticks := make([]chart.Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := float64(i) * step
		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v)})
	}
	var grid []chart.GridLine
	if ceiling/interval > maxMinorLines {
		for i := 1; i <= n; i++ {
			if v := float64(i) * step; v < ceiling-1e-9 {
				grid = append(grid, chart.GridLine{Value: v})
			}
		}
		return ticks, grid
	}
	perStep := int(math.Round(step / interval))
	for i := 1; float64(i)*interval < ceiling-1e-9; i++ {
		grid = append(grid, chart.GridLine{Value: float64(i) * interval, IsMinor: i%perStep != 0})
	}
	return ticks, grid
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// timeStep is a calendar-aligned tick spacing.
type timeStep struct {
	days, months int
	label        string
}

// pickTimeStep selects a readable calendar step for a span of solve dates.
func pickTimeStep(span time.Duration) timeStep {
	day := 24 * time.Hour
	switch {
	case span <= 14*day:
		return timeStep{days: 1, label: "Jan 2"}
	case span <= 120*day:
		return timeStep{days: 7, label: "Jan 2"}
	case span <= 400*day:
		return timeStep{months: 1, label: "Jan 2006"}
	case span <= 3*365*day:
		return timeStep{months: 3, label: "Jan 2006"}
	case span <= 6*365*day:
		return timeStep{months: 6, label: "Jan 2006"}
	default:
		return timeStep{months: 12, label: "2006"}
	}
}

// makeTimeTicks returns calendar-aligned ticks covering [minT, maxT].
func makeTimeTicks(minT, maxT time.Time) []chart.Tick {
	minT, maxT = minT.UTC(), maxT.UTC()
	step := pickTimeStep(maxT.Sub(minT))
	var t time.Time
	if step.months > 0 {
		// align to the first day of a month that is a multiple of the step
		m := (int(minT.Month()) - 1) / step.months * step.months
		t = time.Date(minT.Year(), time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t = time.Date(minT.Year(), minT.Month(), minT.Day(), 0, 0, 0, 0, time.UTC)
	}
	var ticks []chart.Tick
	for !t.After(maxT) {
		if !t.Before(minT) {
			ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format(step.label)})
		}
		t = t.AddDate(0, step.months, step.days)
		if len(ticks) > 24 { // keep it readable
			break
		}
	}
	return ticks
}

// padTimeRange widens a degenerate span by a day on each side so go-chart gets a non-zero x range.
func padTimeRange(minT, maxT time.Time) (time.Time, time.Time) {
	if !maxT.After(minT) {
		return minT.Add(-24 * time.Hour), maxT.Add(24 * time.Hour)
	}
	return minT, maxT
}
