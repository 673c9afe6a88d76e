package layout

import "math"

// Direction controls the axis along which Split divides space.
type Direction int

const (
	// Horizontal splits left-to-right (constraints control width).
	Horizontal Direction = iota
	// Vertical splits top-to-bottom (constraints control height).
	Vertical
)

// Constraint is satisfied by Length, Percentage and Fill.
type Constraint interface {
	constraint() // sealed marker
}

// Length allocates exactly Value pixels.
type Length struct{ Value float64 }

func (Length) constraint() {}

// Percentage allocates Value percent (0-100) of the available space.
type Percentage struct{ Value float64 }

func (Percentage) constraint() {}

// Fill shares the remaining space by Weight. A Weight of 0 counts as 1.
type Fill struct{ Weight float64 }

func (Fill) constraint() {}

// Split divides area into len(cs) adjacent rectangles along dir. Fixed
// allocations that overflow the area are shrunk proportionally; Fill
// regions then get nothing.
func Split(area Rect, dir Direction, cs ...Constraint) []Rect {
	n := len(cs)
	if n == 0 {
		return nil
	}
	total := area.Width
	if dir == Vertical {
		total = area.Height
	}
	total = math.Max(0, total)

	allocs := make([]float64, n)
	var fixed, weights float64
	for i, c := range cs {
		switch v := c.(type) {
		case Length:
			allocs[i] = math.Max(0, v.Value)
			fixed += allocs[i]
		case Percentage:
			allocs[i] = total * math.Min(100, math.Max(0, v.Value)) / 100
			fixed += allocs[i]
		case Fill:
			weights += fillWeight(v)
		}
	}

	if fixed > total && fixed > 0 {
		for i := range allocs {
			allocs[i] = allocs[i] * total / fixed
		}
		fixed = total
	}
	if rem := total - fixed; rem > 0 && weights > 0 {
		for i, c := range cs {
			if f, ok := c.(Fill); ok {
				allocs[i] = rem * fillWeight(f) / weights
			}
		}
	}

	rects := make([]Rect, n)
	pos := 0.0
	for i, a := range allocs {
		if dir == Horizontal {
			rects[i] = Rect{X: area.X + pos, Y: area.Y, Width: a, Height: area.Height}
		} else {
			rects[i] = Rect{X: area.X, Y: area.Y + pos, Width: area.Width, Height: a}
		}
		pos += a
	}
	return rects
}

func fillWeight(f Fill) float64 {
	if f.Weight <= 0 {
		return 1
	}
	return f.Weight
}

// Frame splits a chart of the given size into its plot rectangle using the
// margins. The plot never has negative size.
func Frame(size Size, margin Insets) Rect {
	full := Rect{Width: size.Width, Height: size.Height}
	rows := Split(full, Vertical, Length{margin.Top}, Fill{1}, Length{margin.Bottom})
	cols := Split(rows[1], Horizontal, Length{margin.Left}, Fill{1}, Length{margin.Right})
	return cols[1]
}
