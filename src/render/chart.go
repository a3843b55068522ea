// Package render composes solve-time charts and writes them as PNG or SVG through go-chart.
//
// Composition and output are separate steps: Compose* functions build a Chart value holding
// only domain data (series, distributions, scale, titles); Write turns it into go-chart
// series and encodes it. Nothing touches the filesystem before Write.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/analysis"
	"github.com/iafilius/SolveTrends/src/types"
)

// Kind selects how a Chart is drawn.
type Kind int

const (
	KindTrend Kind = iota
	KindDistribution
	KindSplitDistribution
)

func (k Kind) String() string {
	switch k {
	case KindDistribution:
		return "distribution"
	case KindSplitDistribution:
		return "split-distribution"
	}
	return "trend"
}

// LabelFormat controls how weekday names appear in legends and axes.
type LabelFormat string

const (
	LabelsShort LabelFormat = "short" // Mon
	LabelsLong  LabelFormat = "long"  // Monday
)

// ParseLabelFormat accepts "short", "long" or "" (short).
func ParseLabelFormat(s string) (LabelFormat, error) {
	switch LabelFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", LabelsShort:
		return LabelsShort, nil
	case LabelsLong:
		return LabelsLong, nil
	}
	return "", fmt.Errorf("unknown weekday label format %q (want short or long)", s)
}

func (f LabelFormat) label(w types.Weekday) string {
	if f == LabelsLong {
		return w.Long()
	}
	return string(w)
}

// Default chart size in pixels.
const (
	DefaultWidth  = 1400
	DefaultHeight = 980
)

// DefaultTitlePrefix names the puzzle in chart titles.
const DefaultTitlePrefix = "NYT Crossword"

// Options carries the presentation settings shared by every chart of a run.
type Options struct {
	Theme       Theme
	Labels      LabelFormat
	Width       int
	Height      int
	TitlePrefix string
	// Bandwidth is the KDE bandwidth factor for distribution charts; 0 selects Scott's rule.
	Bandwidth float64
}

func (o Options) withDefaults() Options {
	if o.Theme.Name == "" {
		o.Theme = themes[DefaultStyle]
	}
	if o.Labels == "" {
		o.Labels = LabelsShort
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.TitlePrefix == "" {
		o.TitlePrefix = DefaultTitlePrefix
	}
	return o
}

// Metadata describes the run a chart belongs to.
type Metadata struct {
	Generated   time.Time
	LatestSolve time.Time // zero when unknown
	WindowDays  int
	Records     int
}

// DistributionPart is one violin (or one half of a split violin).
type DistributionPart struct {
	Name    string
	Stats   analysis.WeekdaySummary
	Density analysis.Density
}

// DistributionGroup is the violin drawn in one weekday slot. Parts has one
// element for plain violins and two (before, since) for split violins; a nil
// entry means that side has no solves.
type DistributionGroup struct {
	Weekday types.Weekday
	Parts   []*DistributionPart
}

// Chart is a composed, not yet encoded chart.
type Chart struct {
	Kind    Kind
	Title   string
	XLabel  string
	YLabel  string
	Scale   types.YAxisScale
	Series  []types.WeekdaySeries
	Groups  []DistributionGroup
	Legend  []string // split part names
	Options Options
}

// ComposeTrend builds the rolling-average line chart: one series per weekday
// present in series, in Mon..Sun order regardless of map order.
func ComposeTrend(series map[types.Weekday]types.WeekdaySeries, scale types.YAxisScale, meta Metadata, opts Options) Chart {
	opts = opts.withDefaults()
	var ordered []types.WeekdaySeries
	for _, day := range types.Weekdays {
		if s, ok := series[day]; ok && len(s.Points) > 0 {
			ordered = append(ordered, s)
		}
	}
	return Chart{
		Kind:    KindTrend,
		Title:   trendTitle(opts.TitlePrefix, meta),
		XLabel:  "Solve Date",
		YLabel:  "Minutes",
		Scale:   scale,
		Series:  ordered,
		Options: opts,
	}
}

func trendTitle(prefix string, meta Metadata) string {
	window := "rolling average"
	if meta.WindowDays > 0 {
		if meta.WindowDays%7 == 0 {
			window = fmt.Sprintf("%d-week rolling average", meta.WindowDays/7)
		} else {
			window = fmt.Sprintf("%d-day rolling average", meta.WindowDays)
		}
	}
	title := fmt.Sprintf("%s solve time (%s) as of %s", prefix, window, meta.Generated.Format("2006-01-02"))
	if !meta.LatestSolve.IsZero() {
		title += fmt.Sprintf("; latest solve %s", meta.LatestSolve.Format("2006-01-02"))
	}
	return title
}

func distributionTitle(prefix string, meta Metadata) string {
	asOf := meta.LatestSolve
	if asOf.IsZero() {
		asOf = meta.Generated
	}
	return fmt.Sprintf("%d %s Solve Times by Day of Week as of %s", meta.Records, prefix, asOf.Format("Jan 02, 2006"))
}

// densityCut is how many bandwidths the violin outline extends past the data.
const densityCut = 2

func distributionPart(name string, day types.Weekday, recs []types.SolveRecord, bandwidth float64) *DistributionPart {
	if len(recs) == 0 {
		return nil
	}
	sums := analysis.Summarize(recs, nil)
	var stats analysis.WeekdaySummary
	for _, s := range sums {
		if s.Weekday == day {
			stats = s
		}
	}
	return &DistributionPart{
		Name:    name,
		Stats:   stats,
		Density: analysis.KDE(analysis.Minutes(recs), bandwidth, densityCut, 0, analysis.DefaultDensityPoints),
	}
}

// ComposeDistribution builds one violin per weekday present in the filtered dataset.
func ComposeDistribution(dataset []types.SolveRecord, scale types.YAxisScale, meta Metadata, opts Options) Chart {
	opts = opts.withDefaults()
	if meta.Records == 0 {
		meta.Records = len(dataset)
	}
	groups := analysis.GroupByWeekday(dataset)
	var out []DistributionGroup
	for _, day := range types.Weekdays {
		if p := distributionPart("", day, groups[day], opts.Bandwidth); p != nil {
			out = append(out, DistributionGroup{Weekday: day, Parts: []*DistributionPart{p}})
		}
	}
	return Chart{
		Kind:    KindDistribution,
		Title:   distributionTitle(opts.TitlePrefix, meta),
		XLabel:  "Day of Week",
		YLabel:  "Minutes to Solve",
		Scale:   scale,
		Groups:  out,
		Options: opts,
	}
}

// ComposeSplitDistribution builds split violins comparing solves before splitAt
// (left half) with solves at or after it (right half).
func ComposeSplitDistribution(dataset []types.SolveRecord, scale types.YAxisScale, meta Metadata, opts Options, splitAt time.Time) Chart {
	opts = opts.withDefaults()
	if meta.Records == 0 {
		meta.Records = len(dataset)
	}
	names := []string{
		"Before " + splitAt.Format("Jan 02, 2006"),
		"Since " + splitAt.Format("Jan 02, 2006"),
	}
	before, since := analysis.SplitAt(dataset, splitAt)
	bg, sg := analysis.GroupByWeekday(before), analysis.GroupByWeekday(since)
	var out []DistributionGroup
	for _, day := range types.Weekdays {
		b := distributionPart(names[0], day, bg[day], opts.Bandwidth)
		s := distributionPart(names[1], day, sg[day], opts.Bandwidth)
		if b == nil && s == nil {
			continue
		}
		out = append(out, DistributionGroup{Weekday: day, Parts: []*DistributionPart{b, s}})
	}
	return Chart{
		Kind:    KindSplitDistribution,
		Title:   distributionTitle(opts.TitlePrefix, meta),
		XLabel:  "Day of Week",
		YLabel:  "Minutes to Solve",
		Scale:   scale,
		Groups:  out,
		Legend:  names,
		Options: opts,
	}
}
