// Package pipeline runs one plot invocation: load the solve log, filter it,
// compute the scale and rolling series, compose every chart and write them.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/config"
	"github.com/iafilius/SolveTrends/src/render"
	"github.com/iafilius/SolveTrends/src/types"
)

var logger = applog.For("pipeline")

// Suffixes of the secondary chart files, inserted before the output extension.
const (
	ViolinSuffix      = "Violin Plot"
	SplitViolinSuffix = "Split Violin Plot"
)

// Options configures a run. Zero values select the defaults.
type Options struct {
	Input  string
	Output string

	// YMax overrides the computed y ceiling (minutes) when non-nil.
	YMax       *int
	Style      string
	WindowDays int
	// NoDistribution skips the violin charts.
	NoDistribution bool
	// SplitDate enables the split violin chart when non-zero.
	SplitDate   time.Time
	Labels      string
	Width       int
	Height      int
	TitlePrefix string
	Bandwidth   float64

	// Now stamps chart titles; time.Now when nil.
	Now func() time.Time
}

// FromConfig maps resolved settings onto run options for input and output.
func FromConfig(cfg config.Config, input, output string) Options {
	return Options{
		Input:          input,
		Output:         output,
		YMax:           cfg.Plot.YMax,
		Style:          cfg.Plot.Style,
		WindowDays:     cfg.Plot.WindowDays,
		NoDistribution: !cfg.Distribution.Enabled,
		SplitDate:      cfg.Distribution.SplitDate,
		Labels:         cfg.Plot.Labels,
		Width:          cfg.Plot.Width,
		Height:         cfg.Plot.Height,
		TitlePrefix:    cfg.Plot.TitlePrefix,
		Bandwidth:      cfg.Distribution.Bandwidth,
	}
}

// Output is one rendered chart and where it went.
type Output struct {
	Path  string
	Chart render.Chart
}

// Result summarizes a successful run.
type Result struct {
	Loaded      int
	Valid       int
	LatestSolve time.Time
	Scale       types.YAxisScale
	Series      map[types.Weekday]types.WeekdaySeries
	Summaries   []analysis.WeekdaySummary
	Outputs     []Output
}

// Paths lists the written files in write order.
func (r Result) Paths() []string {
	out := make([]string, len(r.Outputs))
	for i, o := range r.Outputs {
		out[i] = o.Path
	}
	return out
}

// DerivedPath inserts " <suffix>" between the base name and extension of out:
// DerivedPath("plots/trend.png", "Violin Plot") is "plots/trend Violin Plot.png".
func DerivedPath(out, suffix string) string {
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + " " + suffix + ext
}

// targets lists every output path of a run in write order.
func targets(opts Options) []string {
	paths := []string{opts.Output}
	if !opts.NoDistribution {
		paths = append(paths, DerivedPath(opts.Output, ViolinSuffix))
		if !opts.SplitDate.IsZero() {
			paths = append(paths, DerivedPath(opts.Output, SplitViolinSuffix))
		}
	}
	return paths
}

// Run executes the pipeline. Style and every output extension are checked
// before the input is read. All charts are rendered into memory before the
// first file is written, so a failed load, filter or render writes nothing.
func Run(opts Options) (Result, error) {
	defer logger.TimeTrack(time.Now(), "run")
	var res Result
	if opts.Output == "" {
		return res, fmt.Errorf("no output path")
	}
	theme, err := render.LookupTheme(opts.Style)
	if err != nil {
		return res, err
	}
	labels, err := render.ParseLabelFormat(opts.Labels)
	if err != nil {
		return res, err
	}
	paths := targets(opts)
	formats := make([]render.Format, len(paths))
	for i, p := range paths {
		if formats[i], err = render.FormatFor(p); err != nil {
			return res, err
		}
	}
	window := opts.WindowDays
	if window == 0 {
		window = analysis.DefaultWindowDays
	}
	if window < 0 || window > analysis.MaxWindowDays {
		return res, fmt.Errorf("%w: %d days", analysis.ErrInvalidWindow, window)
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	records, err := analysis.LoadSolveLog(opts.Input)
	if err != nil {
		return res, err
	}
	dataset := analysis.Filter(records)
	res.Loaded, res.Valid = len(records), len(dataset)
	logger.Infof("%d records loaded, %d valid", res.Loaded, res.Valid)
	if len(dataset) == 0 {
		return res, types.ErrEmptyDataset
	}
	res.LatestSolve, _ = analysis.LatestSolve(dataset)

	if res.Scale, err = analysis.SelectScale(dataset, opts.YMax); err != nil {
		return res, err
	}
	if res.Series, err = analysis.Aggregate(dataset, window); err != nil {
		return res, err
	}
	res.Summaries = analysis.Summarize(dataset, res.Series)
	logger.Debugf("y ceiling %.2f min, window %d days", res.Scale.Ceiling, window)

	ropts := render.Options{
		Theme:       theme,
		Labels:      labels,
		Width:       opts.Width,
		Height:      opts.Height,
		TitlePrefix: opts.TitlePrefix,
		Bandwidth:   opts.Bandwidth,
	}
	meta := render.Metadata{
		Generated:   now(),
		LatestSolve: res.LatestSolve,
		WindowDays:  window,
		Records:     len(dataset),
	}
	charts := []render.Chart{render.ComposeTrend(res.Series, res.Scale, meta, ropts)}
	if !opts.NoDistribution {
		charts = append(charts, render.ComposeDistribution(dataset, res.Scale, meta, ropts))
		if !opts.SplitDate.IsZero() {
			charts = append(charts, render.ComposeSplitDistribution(dataset, res.Scale, meta, ropts, opts.SplitDate))
		}
	}

	rendered := make([][]byte, len(charts))
	for i, c := range charts {
		if rendered[i], err = render.Render(c, formats[i]); err != nil {
			return res, err
		}
	}
	for i, c := range charts {
		// a failure here leaves the files already replaced in this loop in place
		if err := render.WriteFile(paths[i], rendered[i]); err != nil {
			return res, err
		}
		res.Outputs = append(res.Outputs, Output{Path: paths[i], Chart: c})
	}
	return res, nil
}
