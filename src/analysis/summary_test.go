package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

func TestSummarize_CanonicalOrderAndStats(t *testing.T) {
	ds := Filter([]types.SolveRecord{
		solve(types.Sun, 0, 3600),
		solve(types.Mon, time.Hour, 300),
		solve(types.Mon, 2*time.Hour, 600),
		solve(types.Mon, 3*time.Hour, 900),
	})
	series, err := Aggregate(ds, 56)
	if err != nil {
		t.Fatal(err)
	}
	sums := Summarize(ds, series)
	if len(sums) != 2 || sums[0].Weekday != types.Mon || sums[1].Weekday != types.Sun {
		t.Fatalf("want Mon then Sun, got %+v", sums)
	}
	mon := sums[0]
	if mon.Count != 3 || mon.Min != 5 || mon.Max != 15 || mon.Median != 10 || mon.Mean != 10 {
		t.Fatalf("unexpected Mon stats: %+v", mon)
	}
	if math.Abs(mon.Rolling-10) > 1e-9 {
		t.Fatalf("latest rolling should be mean of all three (10m), got %v", mon.Rolling)
	}
	if !mon.Best.Equal(base.Add(time.Hour)) {
		t.Fatalf("best solve should be the 5 minute one, got %v", mon.Best)
	}
}
