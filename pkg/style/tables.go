package style

import (
	"math"
	"strings"

	"github.com/ritzau/dgml-visualizer/pkg/expr"
)

// mapping translates one DGML setter property into one or more renderer attributes.
type mapping struct {
	attrs     []string
	transform func(any) any
}

var nodeMappings = map[string]mapping{
	"Background":      {attrs: []string{"background-color"}, transform: ResolveColor},
	"Foreground":      {attrs: []string{"color"}, transform: ResolveColor},
	"FontSize":        {attrs: []string{"font-size"}, transform: pixels},
	"StrokeThickness": {attrs: []string{"border-width"}, transform: identity},
	"Stroke":          {attrs: []string{"border-color"}, transform: ResolveColor},
}

// Link widths are unitless in the renderer.
var linkMappings = map[string]mapping{
	"StrokeThickness": {attrs: []string{"width"}, transform: identity},
	"Stroke":          {attrs: []string{"line-color", "target-arrow-color"}, transform: ResolveColor},
}

func mappingsFor(kind string) map[string]mapping {
	if kind == KindLink {
		return linkMappings
	}
	return nodeMappings
}

// MappedAttributes returns the renderer attributes a setter property produces for an
// element kind, or nil when the property is not styled.
func MappedAttributes(kind, property string) []string {
	m, ok := mappingsFor(kind)[property]
	if !ok {
		return nil
	}
	return append([]string(nil), m.attrs...)
}

func identity(v any) any { return v }

// pixels suffixes a length with px. Numbers are rounded half up first.
func pixels(v any) any {
	switch x := v.(type) {
	case float64:
		return expr.FormatNumber(math.Floor(x+0.5)) + "px"
	case string:
		return x + "px"
	}
	return v
}

var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"gray":   "#808080",
	"grey":   "#808080",
	"orange": "#ffa500",
	"purple": "#800080",
	"yellow": "#ffff00",
}

// ResolveColor maps a DGML colour to a renderer colour. Hex and rgb() strings pass
// through, known names are matched case-insensitively and anything else is returned as is.
// Numbers are treated as their text.
func ResolveColor(v any) any {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = expr.FormatNumber(x)
	default:
		return v
	}
	if strings.HasPrefix(s, "#") || strings.HasPrefix(s, "rgb") {
		return s
	}
	if hex, ok := namedColors[strings.ToLower(s)]; ok {
		return hex
	}
	return s
}

// Palette is the fixed colouring applied to a category when a document has no styles.
type Palette struct {
	Background string
	Border     string
	Text       string
}

func (p Palette) attributes() Attributes {
	return Attributes{
		"background-color": p.Background,
		"border-color":     p.Border,
		"color":            p.Text,
	}
}

var fallbackPalette = map[string]Palette{
	"Root":        {Background: "#808080", Border: "#606060", Text: "#fff"},
	"Type":        {Background: "#ffa500", Border: "#cc8400", Text: "#fff"},
	"Selection":   {Background: "#0000cc", Border: "#000099", Text: "#fff"},
	"AlphaMemory": {Background: "#ff0000", Border: "#cc0000", Text: "#fff"},
	"Join":        {Background: "#000080", Border: "#000060", Text: "#fff"},
	"BetaMemory":  {Background: "#008000", Border: "#006400", Text: "#fff"},
	"Aggregate":   {Background: "#8b0000", Border: "#600000", Text: "#fff"},
	"Binding":     {Background: "#87ceeb", Border: "#5f9ea0", Text: "#222"},
	"Rule":        {Background: "#800080", Border: "#600060", Text: "#fff"},
}

// FallbackPalette returns the built-in palette for a category.
func FallbackPalette(category string) (Palette, bool) {
	p, ok := fallbackPalette[category]
	return p, ok
}
