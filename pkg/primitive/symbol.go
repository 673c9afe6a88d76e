package primitive

import (
	"math"
	"strings"

	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// Symbol is a point marker shape. Sizes are areas in square pixels, as
// with d3's symbol generator, so a size of 64 draws a circle of radius
// about 4.5.
type Symbol int

const (
	SymbolCircle Symbol = iota
	SymbolSquare
	SymbolDiamond
	SymbolTriangle
	SymbolCross
)

// ParseSymbol maps a name to a Symbol, defaulting to a circle.
func ParseSymbol(name string) Symbol {
	switch strings.ToLower(name) {
	case "square":
		return SymbolSquare
	case "diamond":
		return SymbolDiamond
	case "triangle":
		return SymbolTriangle
	case "cross":
		return SymbolCross
	default:
		return SymbolCircle
	}
}

// Path returns the symbol outline centred on the origin.
func (s Symbol) Path(size float64) string {
	if !(size > 0) {
		return "M0,0Z"
	}
	var pts [][2]float64
	switch s {
	case SymbolSquare:
		w := math.Sqrt(size) / 2
		pts = [][2]float64{{-w, -w}, {w, -w}, {w, w}, {-w, w}}
	case SymbolDiamond:
		tan30 := math.Sqrt(1.0 / 3)
		y := math.Sqrt(size / (tan30 * 2))
		x := y * tan30
		pts = [][2]float64{{0, -y}, {x, 0}, {0, y}, {-x, 0}}
	case SymbolTriangle:
		sqrt3 := math.Sqrt(3)
		y := -math.Sqrt(size / (sqrt3 * 3))
		pts = [][2]float64{{0, y * 2}, {-sqrt3 * y, -y}, {sqrt3 * y, -y}}
	case SymbolCross:
		r := math.Sqrt(size/5) / 2
		pts = [][2]float64{
			{-3 * r, -r}, {-r, -r}, {-r, -3 * r}, {r, -3 * r}, {r, -r}, {3 * r, -r},
			{3 * r, r}, {r, r}, {r, 3 * r}, {-r, 3 * r}, {-r, r}, {-3 * r, r},
		}
	default:
		r := surface.FormatFloat(math.Sqrt(size / math.Pi))
		return "M" + r + ",0A" + r + "," + r + ",0,1,1,-" + r + ",0A" + r + "," + r + ",0,1,1," + r + ",0Z"
	}
	return polygon(pts)
}

// symbolRadius is the hit radius of a symbol of the given area.
func symbolRadius(size float64) float64 {
	if !(size > 0) {
		return 0
	}
	return math.Sqrt(size / math.Pi)
}

func polygon(pts [][2]float64) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteByte('M')
		} else {
			b.WriteByte('L')
		}
		b.WriteString(surface.FormatFloat(p[0]))
		b.WriteByte(',')
		b.WriteString(surface.FormatFloat(p[1]))
	}
	b.WriteByte('Z')
	return b.String()
}

func translate(x, y float64) string {
	return "translate(" + surface.FormatFloat(x) + "," + surface.FormatFloat(y) + ")"
}

func rotate(angle, x, y float64) string {
	return "rotate(" + surface.FormatFloat(angle) + "," + surface.FormatFloat(x) + "," + surface.FormatFloat(y) + ")"
}
