package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

const eps = 1e-9

func TestAggregate_FirstPointIsOwnDuration(t *testing.T) {
	ds := Filter([]types.SolveRecord{
		solve(types.Mon, 0, 720),
		solve(types.Mon, 7*24*time.Hour, 360),
		solve(types.Tue, 24*time.Hour, 480),
	})
	got, err := Aggregate(ds, DefaultWindowDays)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	mon := got[types.Mon]
	if len(mon.Points) != 2 {
		t.Fatalf("want 2 Mon points, got %d", len(mon.Points))
	}
	if math.Abs(mon.Points[0].Minutes-12) > eps {
		t.Fatalf("first rolling value should equal own duration (12m), got %v", mon.Points[0].Minutes)
	}
	if math.Abs(mon.Points[1].Minutes-9) > eps {
		t.Fatalf("second rolling value should be mean(12,6)=9, got %v", mon.Points[1].Minutes)
	}
	if math.Abs(got[types.Tue].Points[0].Minutes-8) > eps {
		t.Fatalf("Tue single point should be 8m, got %v", got[types.Tue].Points[0].Minutes)
	}
}

func TestAggregate_TwoPointsOneMinuteApart(t *testing.T) {
	ds := Filter([]types.SolveRecord{
		solve(types.Sat, 0, 1200),
		solve(types.Sat, time.Minute, 1800),
	})
	got, err := Aggregate(ds, 1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	pts := got[types.Sat].Points
	if len(pts) != 2 {
		t.Fatalf("want 2 points, got %d", len(pts))
	}
	if math.Abs(pts[1].Minutes-25) > eps {
		t.Fatalf("want mean of 20m and 30m = 25m, got %v", pts[1].Minutes)
	}
}

func TestAggregate_WindowIsTimeNotCount(t *testing.T) {
	day := 24 * time.Hour
	ds := Filter([]types.SolveRecord{
		solve(types.Sun, 0, 600),      // 10m
		solve(types.Sun, 7*day, 1200), // 20m
		solve(types.Sun, 14*day, 1800),
		// long gap: only this point is inside its own window
		solve(types.Sun, 100*day, 3000),
	})
	got, err := Aggregate(ds, 14)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	pts := got[types.Sun].Points
	want := []float64{10, 15, 25, 50}
	for i, w := range want {
		if math.Abs(pts[i].Minutes-w) > eps {
			t.Fatalf("point %d: want %v got %v", i, w, pts[i].Minutes)
		}
	}
}

func TestAggregate_WindowLeftEdgeIsOpen(t *testing.T) {
	day := 24 * time.Hour
	ds := Filter([]types.SolveRecord{
		solve(types.Wed, 0, 600),
		solve(types.Wed, 7*day, 1200), // exactly one window later: first point drops out
	})
	got, err := Aggregate(ds, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if v := got[types.Wed].Points[1].Minutes; math.Abs(v-20) > eps {
		t.Fatalf("observation at t-window must be excluded; want 20 got %v", v)
	}
}

func TestAggregate_TiesShareTheWindow(t *testing.T) {
	ds := Filter([]types.SolveRecord{
		solve(types.Thu, 0, 600),
		solve(types.Thu, 0, 1200),
	})
	got, err := Aggregate(ds, 7)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for i, p := range got[types.Thu].Points {
		if math.Abs(p.Minutes-15) > eps {
			t.Fatalf("point %d: simultaneous solves should both see mean 15, got %v", i, p.Minutes)
		}
	}
}

func TestAggregate_OmitsEmptyGroupsAndRejectsBadWindow(t *testing.T) {
	got, err := Aggregate(Filter([]types.SolveRecord{solve(types.Fri, 0, 60)}), 56)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want only Fri present, got %d groups", len(got))
	}
	if _, ok := got[types.Mon]; ok {
		t.Fatalf("empty Mon group should be omitted")
	}
	empty, err := Aggregate(nil, 56)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty dataset should aggregate to an empty map, got %v, %v", empty, err)
	}
	if _, err := Aggregate(nil, 0); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("want ErrInvalidWindow, got %v", err)
	}
}

func TestAggregate_WindowBounds(t *testing.T) {
	ds := Filter([]types.SolveRecord{solve(types.Mon, 0, 600)})
	got, err := Aggregate(ds, MaxWindowDays)
	if err != nil {
		t.Fatalf("MaxWindowDays should be accepted: %v", err)
	}
	if m := got[types.Mon].Points[0].Minutes; math.Abs(m-10) > eps {
		t.Fatalf("single point under the widest window should be 10m, got %v", m)
	}
	for _, days := range []int{MaxWindowDays + 1, 200000} {
		if _, err := Aggregate(ds, days); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("%d days: want ErrInvalidWindow, got %v", days, err)
		}
	}
}

// naiveRolling is the O(n^2) reference used to cross-check the sliding window.
func naiveRolling(group []types.SolveRecord, window time.Duration) []float64 {
	out := make([]float64, len(group))
	for i, r := range group {
		var sum float64
		var n int
		for _, o := range group {
			if o.SolvedAt.After(r.SolvedAt.Add(-window)) && !o.SolvedAt.After(*r.SolvedAt) {
				sum += *o.SolveDurationSecs
				n++
			}
		}
		out[i] = sum / float64(n) / 60
	}
	return out
}

func TestAggregate_MatchesNaiveReference(t *testing.T) {
	var recs []types.SolveRecord
	for i := 0; i < 200; i++ {
		// irregular spacing with some same-instant pairs
		off := time.Duration(i*i%97) * 13 * time.Hour
		recs = append(recs, solve(types.Weekdays[i%7], off, float64(300+(i*37)%1500)))
	}
	ds := Filter(recs)
	got, err := Aggregate(ds, 21)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	groups := GroupByWeekday(ds)
	for day, g := range groups {
		want := naiveRolling(g, 21*24*time.Hour)
		pts := got[day].Points
		for i := range want {
			if math.Abs(pts[i].Minutes-want[i]) > 1e-6 {
				t.Fatalf("%s point %d: want %v got %v", day, i, want[i], pts[i].Minutes)
			}
		}
	}
}
