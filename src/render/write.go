package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/applog"
	"github.com/iafilius/SolveTrends/src/types"
	chart "github.com/wcharczuk/go-chart/v2"
)

var logger = applog.For("render")

// Format is an output encoding chosen by file extension.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ErrNothingToDraw is returned by Render for a chart without any series or distributions.
var ErrNothingToDraw = errors.New("chart has nothing to draw")

// FormatFor maps an output path to its encoding by extension (case-insensitive).
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png":
		return FormatPNG, nil
	case ".svg":
		return FormatSVG, nil
	}
	return "", &types.UnsupportedFormatError{Path: path, Ext: ext}
}

// Render encodes c in the given format.
func Render(c Chart, format Format) ([]byte, error) {
	ch, err := build(c)
	if err != nil {
		return nil, err
	}
	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	} else if format != FormatPNG {
		return nil, fmt.Errorf("render: unknown format %q", format)
	}
	var buf bytes.Buffer
	if err := ch.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", c.Kind, err)
	}
	return buf.Bytes(), nil
}

// Write renders c and writes it to path, choosing the format from the extension.
// Nothing is created when the extension is unsupported or rendering fails.
func Write(c Chart, path string) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Render(c, format)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile replaces path with data through a temporary file in the same directory.
func WriteFile(path string, data []byte) error {
	defer logger.TimeTrack(time.Now(), "write "+filepath.Base(path))
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &types.IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &types.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &types.IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		logger.Debugf("chmod %s: %v", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &types.IOError{Op: "rename", Path: path, Err: err}
	}
	logger.Infof("wrote %s (%d bytes)", path, len(data))
	return nil
}

// build converts a composed chart into a go-chart chart.
func build(c Chart) (*chart.Chart, error) {
	opts := c.Options.withDefaults()
	th := opts.Theme
	var (
		series []chart.Series
		xAxis  chart.XAxis
		legend *chart.Chart
	)
	switch c.Kind {
	case KindTrend:
		series, xAxis = trendSeries(c, th)
		legend = &chart.Chart{Series: series}
	case KindDistribution, KindSplitDistribution:
		series, xAxis = distributionSeries(c, th)
		if c.Kind == KindSplitDistribution {
			legend = splitLegend(c, th)
		}
	default:
		return nil, fmt.Errorf("render: unknown chart kind %d", c.Kind)
	}
	if len(series) == 0 {
		return nil, ErrNothingToDraw
	}

	ticks, grid := yAxisTicks(c.Scale.Ceiling, c.Scale.TickInterval)
	ceiling := c.Scale.Ceiling
	if ceiling <= 0 {
		ceiling = ticks[len(ticks)-1].Value
	}
	axisStyle := chart.Style{StrokeColor: th.Axis, FontColor: th.Text}
	xAxis.Name = c.XLabel
	xAxis.NameStyle = chart.Style{FontColor: th.Text}
	xAxis.Style = axisStyle

	ch := &chart.Chart{
		Title:      c.Title,
		TitleStyle: chart.Style{FontColor: th.Text, FontSize: 14},
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{
			FillColor: th.Background,
			Padding:   chart.Box{Top: 48, Left: 24, Right: 24, Bottom: 24},
		},
		Canvas: chart.Style{FillColor: th.Canvas},
		XAxis:  xAxis,
		YAxis: chart.YAxis{
			Name:           c.YLabel,
			NameStyle:      chart.Style{FontColor: th.Text},
			Style:          axisStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: ceiling},
			Ticks:          ticks,
			GridLines:      grid,
			GridMajorStyle: chart.Style{StrokeColor: th.GridMajor, StrokeWidth: 1.5},
			GridMinorStyle: chart.Style{StrokeColor: th.GridMinor, StrokeWidth: 0.75},
		},
		Series: series,
	}
	if legend != nil {
		ch.Elements = []chart.Renderable{chart.Legend(legend, chart.Style{
			FillColor:   th.Background,
			FontColor:   th.Text,
			StrokeColor: th.Axis,
		})}
	}
	return ch, nil
}

// trendSeries draws one line per weekday, clamped to the ceiling. A single
// sample is padded to two points so go-chart gets a non-zero x range.
func trendSeries(c Chart, th Theme) ([]chart.Series, chart.XAxis) {
	opts := c.Options.withDefaults()
	var out []chart.Series
	var minT, maxT time.Time
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]time.Time, 0, len(s.Points)+1)
		ys := make([]float64, 0, len(s.Points)+1)
		for _, p := range s.Points {
			xs = append(xs, p.At)
			ys = append(ys, clampY(p.Minutes, c.Scale.Ceiling))
			if minT.IsZero() || p.At.Before(minT) {
				minT = p.At
			}
			if p.At.After(maxT) {
				maxT = p.At
			}
		}
		col := th.seriesColor(s.Weekday.Index())
		st := chart.Style{StrokeColor: col, StrokeWidth: 2}
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(time.Second))
			ys = append(ys, ys[0])
			st = pointStyle(col)
			st.DotWidth = 6
		}
		out = append(out, chart.TimeSeries{
			Name:    opts.Labels.label(s.Weekday),
			XValues: xs,
			YValues: ys,
			Style:   st,
		})
	}
	if len(out) == 0 {
		return nil, chart.XAxis{}
	}
	minT, maxT = padTimeRange(minT, maxT)
	return out, chart.XAxis{
		Range: &chart.ContinuousRange{Min: chart.TimeToFloat64(minT), Max: chart.TimeToFloat64(maxT)},
		Ticks: makeTimeTicks(minT, maxT),
	}
}

func clampY(v, ceiling float64) float64 {
	if ceiling > 0 && v > ceiling {
		return ceiling
	}
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// distributionSeries lays the weekdays out on slots 1..7 and draws a violin in each populated slot.
func distributionSeries(c Chart, th Theme) ([]chart.Series, chart.XAxis) {
	opts := c.Options.withDefaults()
	ceiling := c.Scale.Ceiling
	var out []chart.Series
	for _, g := range c.Groups {
		idx := g.Weekday.Index()
		if idx < 0 {
			continue
		}
		x := float64(idx + 1)
		if c.Kind == KindDistribution {
			if len(g.Parts) == 0 || g.Parts[0] == nil {
				continue
			}
			col := th.seriesColor(idx)
			p := g.Parts[0]
			if s, ok := violinOutline(opts.Labels.label(g.Weekday), x, p.Density, ceiling, sideBoth, col); ok {
				out = append(out, s)
			}
			out = append(out, innerBox(x, p.Stats, ceiling, col)...)
			continue
		}
		for i, p := range g.Parts {
			if p == nil || i > 1 {
				continue
			}
			which := sideLeft
			if i == 1 {
				which = sideRight
			}
			col := th.Split[i]
			if s, ok := violinOutline(p.Name, x, p.Density, ceiling, which, col); ok {
				out = append(out, s)
			}
			out = append(out, quartileLines(x, p, ceiling, which, col)...)
		}
	}
	ticks := make([]chart.Tick, 0, len(types.Weekdays)+2)
	ticks = append(ticks, chart.Tick{Value: 0.5})
	for i, d := range types.Weekdays {
		ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: opts.Labels.label(d)})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(types.Weekdays)) + 0.5})
	return out, chart.XAxis{
		Range: &chart.ContinuousRange{Min: 0.5, Max: float64(len(types.Weekdays)) + 0.5},
		Ticks: ticks,
	}
}

// splitLegend builds a legend-only chart with one entry per split part.
func splitLegend(c Chart, th Theme) *chart.Chart {
	var proxies []chart.Series
	for i, name := range c.Legend {
		if i > 1 {
			break
		}
		proxies = append(proxies, chart.ContinuousSeries{
			Name:    name,
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeColor: th.Split[i], StrokeWidth: 3},
		})
	}
	return &chart.Chart{Series: proxies}
}
