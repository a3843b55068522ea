package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrUnknownStyle is returned by LookupTheme for a name with no theme.
var ErrUnknownStyle = errors.New("unknown chart style")

// Theme is a named visual style. Palette is indexed by weekday position (Mon=0).
type Theme struct {
	Name       string
	Background drawing.Color
	Canvas     drawing.Color
	Text       drawing.Color
	Axis       drawing.Color
	GridMajor  drawing.Color
	GridMinor  drawing.Color
	Palette    []drawing.Color
	// Split holds the before/since colors of split distribution charts.
	Split [2]drawing.Color
}

// DefaultStyle is the theme used when no style is configured.
const DefaultStyle = "Solarize_Light2"

func hex(h string) drawing.Color { return drawing.ColorFromHex(h) }

var themes = map[string]Theme{
	"default": {
		Name:       "default",
		Background: hex("ffffff"),
		Canvas:     hex("ffffff"),
		Text:       hex("222222"),
		Axis:       hex("444444"),
		GridMajor:  hex("cccccc"),
		GridMinor:  hex("eeeeee"),
		Palette:    hexes("1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd", "8c564b", "e377c2"),
		Split:      [2]drawing.Color{hex("1f77b4"), hex("ff7f0e")},
	},
	"Solarize_Light2": {
		Name:       "Solarize_Light2",
		Background: hex("fdf6e3"),
		Canvas:     hex("eee8d5"),
		Text:       hex("657b83"),
		Axis:       hex("93a1a1"),
		GridMajor:  hex("fdf6e3"),
		GridMinor:  hex("f5efdc"),
		Palette:    hexes("268bd2", "2aa198", "859900", "b58900", "cb4b16", "dc322f", "d33682"),
		Split:      [2]drawing.Color{hex("268bd2"), hex("cb4b16")},
	},
	"ggplot": {
		Name:       "ggplot",
		Background: hex("ffffff"),
		Canvas:     hex("e5e5e5"),
		Text:       hex("555555"),
		Axis:       hex("555555"),
		GridMajor:  hex("ffffff"),
		GridMinor:  hex("f0f0f0"),
		Palette:    hexes("e24a33", "348abd", "988ed5", "777777", "fbc15e", "8eba42", "ffb5b8"),
		Split:      [2]drawing.Color{hex("348abd"), hex("e24a33")},
	},
	"dark": {
		Name:       "dark",
		Background: hex("121212"),
		Canvas:     hex("1e1e1e"),
		Text:       hex("e0e0e0"),
		Axis:       hex("9e9e9e"),
		GridMajor:  hex("3a3a3a"),
		GridMinor:  hex("2a2a2a"),
		Palette:    hexes("4fc3f7", "81c784", "ffb74d", "e57373", "ba68c8", "fff176", "f06292"),
		Split:      [2]drawing.Color{hex("4fc3f7"), hex("ffb74d")},
	},
}

func hexes(hs ...string) []drawing.Color {
	out := make([]drawing.Color, len(hs))
	for i, h := range hs {
		out[i] = hex(h)
	}
	return out
}

// LookupTheme resolves a style name (case-insensitive). An empty name selects DefaultStyle.
func LookupTheme(name string) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultStyle
	}
	if t, ok := themes[name]; ok {
		return t, nil
	}
	for k, t := range themes {
		if strings.EqualFold(k, name) {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownStyle, name, strings.Join(StyleNames(), ", "))
}

// StyleNames lists the available theme names, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(themes))
	for k := range themes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// seriesColor returns the palette color for weekday position i.
func (t Theme) seriesColor(i int) drawing.Color {
	if len(t.Palette) == 0 {
		return drawing.ColorBlack
	}
	return t.Palette[i%len(t.Palette)]
}
