package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

func minutesDataset(mins ...float64) []types.SolveRecord {
	var recs []types.SolveRecord
	for i, m := range mins {
		recs = append(recs, solve(types.Weekdays[i%7], time.Duration(i)*time.Hour, m*60))
	}
	return Filter(recs)
}

func TestSelectScale_OverrideIsVerbatim(t *testing.T) {
	override := 60
	for _, ds := range [][]types.SolveRecord{nil, minutesDataset(5, 500, 5000)} {
		s, err := SelectScale(ds, &override)
		if err != nil {
			t.Fatalf("SelectScale: %v", err)
		}
		if s.Ceiling != 60 || s.TickInterval != 5 {
			t.Fatalf("want ceiling 60 tick 5, got %+v", s)
		}
	}
}

func TestSelectScale_RejectsNonPositiveOverride(t *testing.T) {
	zero := 0
	if _, err := SelectScale(minutesDataset(10), &zero); err == nil {
		t.Fatalf("zero override should be rejected")
	}
}

func TestSelectScale_Interpolated99thPercentile(t *testing.T) {
	ds := minutesDataset(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
	s, err := SelectScale(ds, nil)
	if err != nil {
		t.Fatalf("SelectScale: %v", err)
	}
	// h = 9 * 0.99 = 8.91 -> 90 + 0.91*(100-90)
	if math.Abs(s.Ceiling-99.1) > 1e-9 {
		t.Fatalf("want 99.1, got %v", s.Ceiling)
	}
	if s.TickInterval != types.DefaultTickInterval {
		t.Fatalf("tick interval must stay %v, got %v", types.DefaultTickInterval, s.TickInterval)
	}
}

func TestSelectScale_EmptyWithoutOverride(t *testing.T) {
	_, err := SelectScale(nil, nil)
	if !errors.Is(err, types.ErrEmptyDataset) {
		t.Fatalf("want ErrEmptyDataset, got %v", err)
	}
}

func TestQuantile(t *testing.T) {
	vals := []float64{3, 1, 2, 4}
	cases := []struct {
		p, want float64
	}{
		{0, 1},
		{0.5, 2.5},
		{0.25, 1.75},
		{1, 4},
	}
	for _, c := range cases {
		if got := Quantile(vals, c.p); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Quantile(%v): want %v got %v", c.p, c.want, got)
		}
	}
	if vals[0] != 3 {
		t.Fatalf("Quantile must not sort its input")
	}
	if !math.IsNaN(Quantile(nil, 0.5)) {
		t.Fatalf("empty quantile should be NaN")
	}
	if Quantile([]float64{7}, 0.99) != 7 {
		t.Fatalf("single value quantile should be that value")
	}
}
