// Package layout provides pixel geometry for charts: rectangles and insets,
// a constraint splitter that carves a chart frame into margin and plot
// regions, auto-margin computation, and text measurement.
package layout

import "math"

// Size is a width and height in pixels.
type Size struct {
	Width, Height float64
}

// Round returns the size rounded to whole pixels, the granularity at which
// resizes are compared.
func (s Size) Round() Size {
	return Size{Width: math.Round(s.Width), Height: math.Round(s.Height)}
}

// Insets are distances from each edge of a rectangle.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Ceil rounds every side up to a whole pixel.
func (in Insets) Ceil() Insets {
	return Insets{
		Top:    math.Ceil(in.Top),
		Right:  math.Ceil(in.Right),
		Bottom: math.Ceil(in.Bottom),
		Left:   math.Ceil(in.Left),
	}
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromPoints returns the rectangle spanned by two corners in any order.
func RectFromPoints(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// Area returns Width * Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint.
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Inset shrinks r by in. Sides that would cross collapse to zero size.
func (r Rect) Inset(in Insets) Rect {
	out := Rect{
		X:      r.X + in.Left,
		Y:      r.Y + in.Top,
		Width:  r.Width - in.Left - in.Right,
		Height: r.Height - in.Top - in.Bottom,
	}
	out.Width = math.Max(0, out.Width)
	out.Height = math.Max(0, out.Height)
	return out
}

// Contains reports whether (px, py) lies inside r, edges included.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.Right() && py >= r.Y && py <= r.Bottom()
}

// Intersect returns the overlap of two rectangles, or a zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := math.Max(r.X, o.X)
	y1 := math.Max(r.Y, o.Y)
	x2 := math.Min(r.Right(), o.Right())
	y2 := math.Min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Clamp limits (px, py) to the rectangle.
func (r Rect) Clamp(px, py float64) (float64, float64) {
	return math.Min(math.Max(px, r.X), r.Right()), math.Min(math.Max(py, r.Y), r.Bottom())
}
