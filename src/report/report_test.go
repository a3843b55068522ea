package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/types"
)

func sampleSums() []analysis.WeekdaySummary {
	best := time.Date(2024, 2, 5, 7, 30, 0, 0, time.UTC)
	return []analysis.WeekdaySummary{
		{Weekday: types.Mon, Count: 40, Min: 4.5, P25: 5.5, Median: 6, P75: 7, P90: 8.25, Max: 12, Mean: 6.4, Rolling: 5.9, Best: best},
		{Weekday: types.Sat, Count: 38, Min: 15, P25: 20, Median: 24, P75: 29, P90: 35, Max: 61, Mean: 25.2, Rolling: 22.75, Best: best},
	}
}

func TestWrite_Plain(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{Source: "data.csv", Loaded: 100, Valid: 78, LatestSolve: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), WindowDays: 56}
	if err := Write(&buf, sampleSums(), meta, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want title, header and two rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "data.csv: 78 of 100 solves valid, latest 2024-03-01" {
		t.Fatalf("title %q", lines[0])
	}
	if !strings.Contains(lines[1], "Rolling 56d") {
		t.Fatalf("header should name the window: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Mon") || !strings.Contains(lines[2], "8:15") || !strings.Contains(lines[3], "22:45") {
		t.Fatalf("rows not formatted as m:ss:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("plain output must not contain escape codes")
	}
	if len(lines[1]) != len(lines[2]) || len(lines[2]) != len(lines[3]) {
		t.Fatalf("columns should be aligned:\n%s", buf.String())
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, Meta{Loaded: 3}, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no valid solves") {
		t.Fatalf("empty report: %q", buf.String())
	}
}

func TestWrite_NarrowTerminalDropsColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSums(), Meta{}, Options{Width: 40}); err != nil {
		t.Fatal(err)
	}
	for _, l := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[1:] {
		if len(l) > 40 {
			t.Fatalf("line wider than 40: %q", l)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := map[float64]string{0: "0:00", 10: "10:00", 6.5: "6:30", 59.999: "60:00", -1: "-"}
	for in, want := range cases {
		if got := FormatMinutes(in); got != want {
			t.Fatalf("FormatMinutes(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldUseColor(t *testing.T) {
	var buf bytes.Buffer
	t.Setenv("NO_COLOR", "")
	if ShouldUseColor(&buf, false) {
		t.Fatalf("a buffer is not a terminal")
	}
	if !ShouldUseColor(&buf, true) {
		t.Fatalf("force should enable color")
	}
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor(&buf, true) {
		t.Fatalf("NO_COLOR wins over force")
	}
	if TerminalWidth(&buf) != terminalWidthBackup {
		t.Fatalf("non-terminal width should fall back")
	}
}
