package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

// DefaultWindowDays is the 8-week rolling window used for the trend chart.
const DefaultWindowDays = 56

// MaxWindowDays is the longest window whose length fits in a time.Duration.
const MaxWindowDays = int(math.MaxInt64 / int64(24*time.Hour))

// ErrInvalidWindow is returned for a window outside [1, MaxWindowDays].
var ErrInvalidWindow = errors.New("rolling window out of range")

// GroupByWeekday partitions a filtered dataset by weekday label, keeping the input order.
func GroupByWeekday(dataset []types.SolveRecord) map[types.Weekday][]types.SolveRecord {
	groups := make(map[types.Weekday][]types.SolveRecord, len(types.Weekdays))
	for _, r := range dataset {
		groups[r.Weekday] = append(groups[r.Weekday], r)
	}
	return groups
}

// Aggregate computes, for every weekday present in the filtered dataset, the
// rolling mean solve time in minutes. The value at an observation is the mean
// over same-weekday observations solved in (t-window, t], where t is that
// observation's solve time. Weekdays without observations are omitted.
func Aggregate(dataset []types.SolveRecord, windowDays int) (map[types.Weekday]types.WeekdaySeries, error) {
	if windowDays <= 0 || windowDays > MaxWindowDays {
		return nil, fmt.Errorf("%w: %d days (want 1..%d)", ErrInvalidWindow, windowDays, MaxWindowDays)
	}
	defer logger.TimeTrack(time.Now(), "aggregate")
	window := time.Duration(windowDays) * 24 * time.Hour
	out := make(map[types.Weekday]types.WeekdaySeries, len(types.Weekdays))
	for day, group := range GroupByWeekday(dataset) {
		out[day] = types.WeekdaySeries{Weekday: day, Points: rollingMean(group, window)}
	}
	return out, nil
}

// rollingMean slides a time window over a group sorted by SolvedAt. Both window
// edges only move forward, so the whole pass is O(n).
func rollingMean(group []types.SolveRecord, window time.Duration) []types.SeriesPoint {
	pts := make([]types.SeriesPoint, len(group))
	var sum float64
	lo, hi := 0, 0 // window is group[lo:hi]
	for i, r := range group {
		t := *r.SolvedAt
		// right edge is closed: take every observation at or before t, including later ties
		for hi < len(group) && !group[hi].SolvedAt.After(t) {
			sum += *group[hi].SolveDurationSecs
			hi++
		}
		// left edge is open: drop observations at or before t-window
		start := t.Add(-window)
		for lo < hi && !group[lo].SolvedAt.After(start) {
			sum -= *group[lo].SolveDurationSecs
			lo++
		}
		pts[i] = types.SeriesPoint{At: t, Minutes: sum / float64(hi-lo) / 60}
	}
	return pts
}
