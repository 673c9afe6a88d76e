package theme

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/aclements/go-gg/palette"
	"github.com/lucasb-eyer/go-colorful"
)

// thNamed covers the CSS color keywords the chart defaults use.
var thNamed = map[string]string{
	"black":     "#000000",
	"white":     "#ffffff",
	"gray":      "#808080",
	"grey":      "#808080",
	"lightgray": "#d3d3d3",
	"steelblue": "#4682b4",
	"red":       "#ff0000",
	"green":     "#008000",
	"blue":      "#0000ff",
	"orange":    "#ffa500",
	"purple":    "#800080",
}

// Hex formats c as "#rrggbb". Fully transparent colors format as "none".
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "none"
	}
	return cf.Clamped().Hex()
}

// Parse resolves a "#rgb", "#rrggbb" or CSS keyword color.
func Parse(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if hex, ok := thNamed[s]; ok {
		s = hex
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("theme: parse color %q: %w", s, err)
	}
	return c, nil
}

// Blend mixes two colors in CIE L*a*b* space and returns the hex result.
func Blend(a, b string, t float64) (string, error) {
	ca, err := colorful.Hex(a)
	if err != nil {
		return "", fmt.Errorf("theme: blend: %w", err)
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return "", fmt.Errorf("theme: blend: %w", err)
	}
	return ca.BlendLab(cb, t).Clamped().Hex(), nil
}

// thGradient builds an evenly spaced sRGB gradient over hex stops. Invalid
// stops render black.
func thGradient(stops []string) palette.Continuous {
	g := palette.RGBGradient{Colors: make([]color.RGBA, 0, len(stops))}
	for _, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			g.Colors = append(g.Colors, color.RGBA{A: 255})
			continue
		}
		r, gr, b := c.RGB255()
		g.Colors = append(g.Colors, color.RGBA{R: r, G: gr, B: b, A: 255})
	}
	if len(g.Colors) == 0 {
		g.Colors = []color.RGBA{{A: 255}}
	}
	return g
}
