// Package analysis turns a crossword solve log into the filtered dataset, the per-weekday rolling
// averages and the y-axis scale that the render package draws.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/types"
)

var logger = applog.For("analysis")

// Column names written by the crossword fetcher.
const (
	ColDate      = "date"
	ColPuzzleID  = "puzzle_id"
	ColWeekday   = "weekday"
	ColSolveSecs = "solve_time_secs"
	ColOpened    = "opened_unix"
	ColSolved    = "solved_unix"
	ColCheated   = "cheated"
)

// RequiredColumns must all be present in the header row; order does not matter.
var RequiredColumns = []string{ColDate, ColOpened, ColSolved, ColSolveSecs, ColCheated, ColWeekday}

const dateLayout = "2006-01-02"

// LoadSolveLog reads the CSV solve log at path.
func LoadSolveLog(path string) ([]types.SolveRecord, error) {
	defer logger.TimeTrack(time.Now(), "load "+path)
	f, err := os.Open(path)
	if err != nil {
		return nil, &types.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()
	recs, err := ReadSolveLog(f)
	if err != nil {
		return nil, err
	}
	logger.Debugf("loaded %d rows from %s", len(recs), path)
	return recs, nil
}

// ReadSolveLog parses a CSV solve log. Columns are matched by header name.
func ReadSolveLog(r io.Reader) ([]types.SolveRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &types.SchemaError{Column: RequiredColumns[0]}
		}
		return nil, &types.IOError{Op: "read header", Path: "solve log", Err: err}
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		// first occurrence wins; a BOM on the first header cell is tolerated
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, &types.SchemaError{Column: c}
		}
	}
	// puzzle_id is optional; older exports omit it
	idCol, hasID := idx[ColPuzzleID]

	var out []types.SolveRecord
	seen := map[time.Time]int{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &types.ParseError{Line: pe.Line, Column: "", Value: "", Err: pe.Err}
			}
			return nil, &types.IOError{Op: "read", Path: "solve log", Err: err}
		}
		cell := func(col string) string { return strings.TrimSpace(row[idx[col]]) }
		bad := func(col string, err error) error {
			return &types.ParseError{Line: line, Column: col, Value: cell(col), Err: err}
		}

		var rec types.SolveRecord
		d, err := time.Parse(dateLayout, cell(ColDate))
		if err != nil {
			return nil, bad(ColDate, err)
		}
		rec.PuzzleDate = d
		if rec.Weekday, err = types.ParseWeekday(cell(ColWeekday)); err != nil {
			return nil, bad(ColWeekday, err)
		}
		if rec.OpenedAt, err = parseUnix(cell(ColOpened)); err != nil {
			return nil, bad(ColOpened, err)
		}
		if rec.SolvedAt, err = parseUnix(cell(ColSolved)); err != nil {
			return nil, bad(ColSolved, err)
		}
		if rec.SolveDurationSecs, err = parseDuration(cell(ColSolveSecs)); err != nil {
			return nil, bad(ColSolveSecs, err)
		}
		if rec.Cheated, err = parseBool(cell(ColCheated)); err != nil {
			return nil, bad(ColCheated, err)
		}
		if hasID {
			if v := strings.TrimSpace(row[idCol]); v != "" {
				n, err := strconv.ParseUint(v, 10, 32)
				if err != nil {
					return nil, bad(ColPuzzleID, err)
				}
				id := uint32(n)
				rec.PuzzleID = &id
			}
		}
		if prev, dup := seen[d]; dup {
			logger.Debugf("duplicate puzzle date %s on lines %d and %d", d.Format(dateLayout), prev, line)
		} else {
			seen[d] = line
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseUnix parses epoch seconds; fractional seconds are kept. Empty means null.
func parseUnix(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("not a finite timestamp")
	}
	sec, frac := math.Modf(v)
	t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
	return &t, nil
}

func parseDuration(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("duration must be a non-negative number")
	}
	return &v, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	case "":
		return false, fmt.Errorf("empty cheated flag")
	}
	return false, fmt.Errorf("not a boolean")
}
