// Package report prints per-weekday solve statistics as a terminal table.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iafilius/SolveTrends/src/analysis"
	"golang.org/x/term"
)

const terminalWidthBackup = 100

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	fastStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	slowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// Meta is the run context printed above the table.
type Meta struct {
	Source      string
	Loaded      int
	Valid       int
	LatestSolve time.Time
	WindowDays  int
}

// Options controls rendering.
type Options struct {
	Color bool
	// Width is the terminal width; columns are dropped from the right to fit. 0 disables the limit.
	Width int
}

var headers = []string{"Day", "Solves", "Min", "P25", "Median", "P75", "P90", "Max", "Mean", "Rolling", "Best solve"}

// Write prints the summary table for sums.
func Write(w io.Writer, sums []analysis.WeekdaySummary, meta Meta, opts Options) error {
	paint := func(s lipgloss.Style, v string) string {
		if !opts.Color {
			return v
		}
		return s.Render(v)
	}

	title := fmt.Sprintf("%d of %d solves valid", meta.Valid, meta.Loaded)
	if meta.Source != "" {
		title = meta.Source + ": " + title
	}
	if !meta.LatestSolve.IsZero() {
		title += ", latest " + meta.LatestSolve.Format("2006-01-02")
	}
	if _, err := fmt.Fprintln(w, paint(titleStyle, title)); err != nil {
		return err
	}
	if len(sums) == 0 {
		_, err := fmt.Fprintln(w, paint(mutedStyle, "no valid solves"))
		return err
	}

	hdr := append([]string(nil), headers...)
	if meta.WindowDays > 0 {
		hdr[9] = fmt.Sprintf("Rolling %dd", meta.WindowDays)
	}
	rows := make([][]string, len(sums))
	fastest, slowest := 0, 0
	for i, s := range sums {
		rows[i] = []string{
			string(s.Weekday),
			fmt.Sprintf("%d", s.Count),
			FormatMinutes(s.Min),
			FormatMinutes(s.P25),
			FormatMinutes(s.Median),
			FormatMinutes(s.P75),
			FormatMinutes(s.P90),
			FormatMinutes(s.Max),
			FormatMinutes(s.Mean),
			FormatMinutes(s.Rolling),
			s.Best.Format("2006-01-02"),
		}
		if s.Rolling < sums[fastest].Rolling {
			fastest = i
		}
		if s.Rolling > sums[slowest].Rolling {
			slowest = i
		}
	}

	widths := columnWidths(hdr, rows)
	cols := fitColumns(widths, opts.Width)
	rightAlign := func(c int) bool { return c > 0 && c < 10 }

	line := make([]string, 0, cols)
	for c := 0; c < cols; c++ {
		line = append(line, paint(headerStyle, padCell(hdr[c], widths[c], rightAlign(c))))
	}
	if _, err := fmt.Fprintln(w, strings.Join(line, "  ")); err != nil {
		return err
	}
	for i, row := range rows {
		line = line[:0]
		for c := 0; c < cols; c++ {
			cell := padCell(row[c], widths[c], rightAlign(c))
			if c == 9 && len(sums) > 1 {
				switch i {
				case fastest:
					cell = paint(fastStyle, cell)
				case slowest:
					cell = paint(slowStyle, cell)
				}
			}
			line = append(line, cell)
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, "  ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatMinutes renders fractional minutes as m:ss.
func FormatMinutes(m float64) string {
	if math.IsNaN(m) || m < 0 {
		return "-"
	}
	secs := int(math.Round(m * 60))
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func columnWidths(hdr []string, rows [][]string) []int {
	widths := make([]int, len(hdr))
	for i, h := range hdr {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// fitColumns returns how many leading columns fit in total width (at least 2).
func fitColumns(widths []int, total int) int {
	if total <= 0 {
		return len(widths)
	}
	used := 0
	for i, w := range widths {
		if i > 0 {
			used += 2
		}
		used += w
		if used > total && i >= 2 {
			return i
		}
	}
	return len(widths)
}

func padCell(value string, width int, rightAlign bool) string {
	padding := width - lipgloss.Width(value)
	if padding <= 0 {
		return value
	}
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

// ShouldUseColor reports whether w is a terminal and NO_COLOR is unset. force overrides detection.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the width of the terminal behind w, or a fallback.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
