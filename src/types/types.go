// Package types holds the record and series types shared by the analysis, render and pipeline packages.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the 3-letter day label written by the crossword fetcher.
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

// Weekdays lists the labels in canonical chart/legend order.
var Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var longNames = map[Weekday]string{
	Mon: "Monday",
	Tue: "Tuesday",
	Wed: "Wednesday",
	Thu: "Thursday",
	Fri: "Friday",
	Sat: "Saturday",
	Sun: "Sunday",
}

// ParseWeekday accepts exactly one of the seven 3-letter labels.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.TrimSpace(s))
	if _, ok := longNames[w]; !ok {
		return "", fmt.Errorf("unknown weekday %q", s)
	}
	return w, nil
}

// Long returns the full English day name (e.g. "Monday").
func (w Weekday) Long() string {
	if n, ok := longNames[w]; ok {
		return n
	}
	return string(w)
}

// Index returns the position of w in Weekdays, or -1.
func (w Weekday) Index() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// SolveRecord is one row of the solve log. Nil pointers are empty cells.
type SolveRecord struct {
	PuzzleDate        time.Time
	PuzzleID          *uint32
	OpenedAt          *time.Time
	SolvedAt          *time.Time
	SolveDurationSecs *float64
	Cheated           bool
	Weekday           Weekday
}

// Solved reports whether the puzzle has a solve timestamp.
func (r SolveRecord) Solved() bool { return r.SolvedAt != nil }

// Minutes returns the solve duration in minutes (0 when unknown).
func (r SolveRecord) Minutes() float64 {
	if r.SolveDurationSecs == nil {
		return 0
	}
	return *r.SolveDurationSecs / 60
}

// SeriesPoint is one rolling-average sample.
type SeriesPoint struct {
	At      time.Time
	Minutes float64
}

// WeekdaySeries is the rolling average of one weekday group, ordered by time.
type WeekdaySeries struct {
	Weekday Weekday
	Points  []SeriesPoint
}

// Latest returns the most recent point of the series.
func (s WeekdaySeries) Latest() (SeriesPoint, bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// DefaultTickInterval is the minor y tick spacing in minutes.
const DefaultTickInterval = 5.0

// YAxisScale is the shared y ceiling (minutes) and tick spacing of a chart.
type YAxisScale struct {
	Ceiling      float64
	TickInterval float64
}
