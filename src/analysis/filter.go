package analysis

import (
	"sort"
	"time"

	"github.com/iafilius/SolveTrends/src/types"
)

// MaxSolveSpan is the longest open-to-solve span kept. Puzzles revisited after
// a week say little about solving speed.
const MaxSolveSpan = 7 * 24 * time.Hour

// Valid reports whether r is an unaided, completed solve with a known duration
// that finished within MaxSolveSpan of being opened. A solve stamped before its
// open time is inconsistent and is dropped.
func Valid(r types.SolveRecord) bool {
	if r.SolvedAt == nil || r.Cheated || r.SolveDurationSecs == nil {
		return false
	}
	// the revisit rule cannot be checked without an open time
	if r.OpenedAt == nil {
		return false
	}
	span := r.SolvedAt.Sub(*r.OpenedAt)
	return span >= 0 && span < MaxSolveSpan
}

// Filter returns the valid records sorted ascending by solve time. The input
// slice is not modified. Ties keep their input order.
func Filter(records []types.SolveRecord) []types.SolveRecord {
	out := make([]types.SolveRecord, 0, len(records))
	for _, r := range records {
		if Valid(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SolvedAt.Before(*out[j].SolvedAt)
	})
	return out
}

// LatestSolve returns the most recent solve time of a filtered dataset.
func LatestSolve(dataset []types.SolveRecord) (time.Time, bool) {
	if len(dataset) == 0 {
		return time.Time{}, false
	}
	return *dataset[len(dataset)-1].SolvedAt, true
}

// SplitAt partitions a filtered dataset into records solved before t and at or after t.
func SplitAt(dataset []types.SolveRecord, t time.Time) (before, since []types.SolveRecord) {
	for _, r := range dataset {
		if r.SolvedAt.Before(t) {
			before = append(before, r)
		} else {
			since = append(since, r)
		}
	}
	return before, since
}
