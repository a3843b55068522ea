package analysis

import (
	"sort"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

// WeekdaySummary holds order statistics (minutes) for one weekday group.
type WeekdaySummary struct {
	Weekday types.Weekday
	Count   int
	Min     float64
	P25     float64
	Median  float64
	P75     float64
	P90     float64
	Max     float64
	Mean    float64
	// Rolling is the latest rolling-average value; zero when no series was given.
	Rolling float64
	Best    time.Time // solve time of the fastest solve
}

// Summarize returns one summary per weekday present in the dataset, in canonical order.
// series may be nil.
func Summarize(dataset []types.SolveRecord, series map[types.Weekday]types.WeekdaySeries) []WeekdaySummary {
	groups := GroupByWeekday(dataset)
	var out []WeekdaySummary
	for _, day := range types.Weekdays {
		g := groups[day]
		if len(g) == 0 {
			continue
		}
		s := summarizeGroup(day, g)
		if ser, ok := series[day]; ok {
			if p, ok := ser.Latest(); ok {
				s.Rolling = p.Minutes
			}
		}
		out = append(out, s)
	}
	return out
}

func summarizeGroup(day types.Weekday, g []types.SolveRecord) WeekdaySummary {
	mins := Minutes(g)
	sorted := append([]float64(nil), mins...)
	sort.Float64s(sorted)
	var sum float64
	bestIdx := 0
	for i, m := range mins {
		sum += m
		if m < mins[bestIdx] {
			bestIdx = i
		}
	}
	return WeekdaySummary{
		Weekday: day,
		Count:   len(sorted),
		Min:     sorted[0],
		P25:     quantileSorted(sorted, 0.25),
		Median:  quantileSorted(sorted, 0.5),
		P75:     quantileSorted(sorted, 0.75),
		P90:     quantileSorted(sorted, 0.9),
		Max:     sorted[len(sorted)-1],
		Mean:    sum / float64(len(sorted)),
		Best:    *g[bestIdx].SolvedAt,
	}
}
