package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iafilius/SolveTrends/src/types"
)

const sampleLog = `date,puzzle_id,weekday,solve_time_secs,opened_unix,solved_unix,cheated
2021-01-04,18712,Mon,600,1609750000,1609750700,false
2021-01-05,18713,Tue,,1609830000,,false
2021-01-06,18714,Wed,900,1609920000,1609921000,true
2021-01-07,,Thu,,,,false
`

func TestReadSolveLog_ParsesAllColumns(t *testing.T) {
	recs, err := ReadSolveLog(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("ReadSolveLog: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("want 4 records, got %d", len(recs))
	}
	mon := recs[0]
	if mon.Weekday != types.Mon || mon.Cheated {
		t.Fatalf("unexpected first record: %+v", mon)
	}
	if mon.PuzzleDate.Format("2006-01-02") != "2021-01-04" {
		t.Fatalf("puzzle date: got %v", mon.PuzzleDate)
	}
	if mon.PuzzleID == nil || *mon.PuzzleID != 18712 {
		t.Fatalf("puzzle id not parsed: %v", mon.PuzzleID)
	}
	if mon.SolvedAt == nil || mon.SolvedAt.Unix() != 1609750700 {
		t.Fatalf("solved_at: got %v", mon.SolvedAt)
	}
	if mon.SolveDurationSecs == nil || *mon.SolveDurationSecs != 600 {
		t.Fatalf("duration: got %v", mon.SolveDurationSecs)
	}
	if recs[1].SolvedAt != nil || recs[1].SolveDurationSecs != nil {
		t.Fatalf("empty cells should be null: %+v", recs[1])
	}
	if !recs[2].Cheated {
		t.Fatalf("cheated flag lost")
	}
	if recs[3].OpenedAt != nil || recs[3].PuzzleID != nil {
		t.Fatalf("unopened row should have null open time and id: %+v", recs[3])
	}
}

func TestReadSolveLog_ColumnsByNameNotPosition(t *testing.T) {
	in := "cheated,solved_unix,weekday,extra,opened_unix,solve_time_secs,date\n" +
		"false,1609750700,Mon,ignored,1609750000,600,2021-01-04\n"
	recs, err := ReadSolveLog(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadSolveLog: %v", err)
	}
	if len(recs) != 1 || recs[0].Weekday != types.Mon || *recs[0].SolveDurationSecs != 600 {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if recs[0].PuzzleID != nil {
		t.Fatalf("puzzle_id is optional and absent here")
	}
}

func TestReadSolveLog_MissingColumn(t *testing.T) {
	in := "date,weekday,solve_time_secs,opened_unix,cheated\n2021-01-04,Mon,600,1609750000,false\n"
	_, err := ReadSolveLog(strings.NewReader(in))
	var se *types.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if se.Column != ColSolved {
		t.Fatalf("want missing %q, got %q", ColSolved, se.Column)
	}
}

func TestReadSolveLog_EmptyInputIsSchemaError(t *testing.T) {
	_, err := ReadSolveLog(strings.NewReader(""))
	var se *types.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("want SchemaError for empty input, got %v", err)
	}
}

func TestReadSolveLog_ParseErrors(t *testing.T) {
	header := "date,weekday,solve_time_secs,opened_unix,solved_unix,cheated\n"
	cases := []struct {
		name string
		row  string
		col  string
	}{
		{"bad date", "2021-13-40,Mon,600,1,2,false", ColDate},
		{"bad weekday", "2021-01-04,Monday,600,1,2,false", ColWeekday},
		{"bad duration", "2021-01-04,Mon,ten,1,2,false", ColSolveSecs},
		{"negative duration", "2021-01-04,Mon,-5,1,2,false", ColSolveSecs},
		{"bad timestamp", "2021-01-04,Mon,600,yesterday,2,false", ColOpened},
		{"bad bool", "2021-01-04,Mon,600,1,2,maybe", ColCheated},
		{"empty bool", "2021-01-04,Mon,600,1,2,", ColCheated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadSolveLog(strings.NewReader(header + tc.row + "\n"))
			var pe *types.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("want ParseError, got %v", err)
			}
			if pe.Column != tc.col || pe.Line != 2 {
				t.Fatalf("want column %q line 2, got %q line %d", tc.col, pe.Column, pe.Line)
			}
		})
	}
}

func TestLoadSolveLog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}
	recs, err := LoadSolveLog(path)
	if err != nil {
		t.Fatalf("LoadSolveLog: %v", err)
	}
	if len(recs) != 4 {
		t.Fatalf("want 4 records, got %d", len(recs))
	}
}

func TestLoadSolveLog_MissingFileIsIOError(t *testing.T) {
	_, err := LoadSolveLog(filepath.Join(t.TempDir(), "nope.csv"))
	var ioe *types.IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("want IOError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("IOError should unwrap to ErrNotExist: %v", err)
	}
}
