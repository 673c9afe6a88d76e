package primitive

import (
	"math"
	"slices"
)

// hitSlop is the pick tolerance in pixels around points and lines.
const hitSlop = 3

// Hit is the result of a hit test.
type Hit struct {
	Primitive Primitive
	// Key and Datum identify the shape of a batch primitive; both are
	// zero for single primitives.
	Key   string
	Datum Datum
	// Distance from the query point to the shape, zero inside areas.
	Distance float64
}

// HitTest returns the topmost batch shape, point or rectangle under the
// plot-relative pixel (px, py). Layers are searched top down and, within
// a layer, later primitives first. Hidden shapes never match.
func (e *Engine) HitTest(px, py float64) (Hit, bool) {
	layers := e.sortedLayers()
	slices.Reverse(layers)
	for _, l := range layers {
		for i := len(l.ids) - 1; i >= 0; i-- {
			p, ok := e.prims[l.ids[i]]
			if !ok {
				continue
			}
			if h, ok := hitPrimitive(p, px, py); ok {
				return h, true
			}
		}
	}
	return Hit{}, false
}

func hitPrimitive(p Primitive, px, py float64) (Hit, bool) {
	switch p := p.(type) {
	case *BatchPoints:
		return hitShapes(p, p.order, px, py, func(s *shape) float64 {
			return math.Max(0, math.Hypot(px-s.x, py-s.y)-s.r)
		}, hitSlop)
	case *BatchRectangles:
		return hitShapes(p, p.order, px, py, func(s *shape) float64 {
			return rectDistance(px, py, s.x, s.y, s.x2, s.y2)
		}, 0)
	case *BatchLines:
		return hitShapes(p, p.order, px, py, func(s *shape) float64 {
			return math.Max(0, segmentDistance(px, py, s.x, s.y, s.x2, s.y2)-s.r/2)
		}, hitSlop)
	case *Point:
		x, okX := p.convertX(p.x)
		y, okY := p.convertY(p.y)
		if !okX || !okY {
			return Hit{}, false
		}
		d := math.Max(0, math.Hypot(px-x, py-y)-symbolRadius(p.size.At(nil)))
		return Hit{Primitive: p, Distance: d}, d <= hitSlop
	case *Rectangle:
		x1, ok1 := p.convertX(p.x1)
		y1, ok2 := p.convertY(p.y1)
		x2, ok3 := p.convertX(p.x2)
		y2, ok4 := p.convertY(p.y2)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return Hit{}, false
		}
		d := rectDistance(px, py, x1, y1, x2, y2)
		return Hit{Primitive: p, Distance: d}, d == 0
	}
	return Hit{}, false
}

// hitShapes returns the closest visible shape within slop, preferring
// later shapes on ties since they draw on top.
func hitShapes(p Primitive, shapes []*shape, px, py float64, dist func(*shape) float64, slop float64) (Hit, bool) {
	var best *shape
	bestD := math.Inf(1)
	for _, s := range shapes {
		if !s.visible {
			continue
		}
		if d := dist(s); d <= slop && d <= bestD {
			best, bestD = s, d
		}
	}
	if best == nil {
		return Hit{}, false
	}
	return Hit{Primitive: p, Key: best.key, Datum: best.datum, Distance: bestD}, true
}

func rectDistance(px, py, x1, y1, x2, y2 float64) float64 {
	lx, hx := math.Min(x1, x2), math.Max(x1, x2)
	ly, hy := math.Min(y1, y2), math.Max(y1, y2)
	dx := math.Max(0, math.Max(lx-px, px-hx))
	dy := math.Max(0, math.Max(ly-py, py-hy))
	return math.Hypot(dx, dy)
}

func segmentDistance(px, py, x1, y1, x2, y2 float64) float64 {
	vx, vy := x2-x1, y2-y1
	l2 := vx*vx + vy*vy
	if l2 == 0 {
		return math.Hypot(px-x1, py-y1)
	}
	t := math.Max(0, math.Min(1, ((px-x1)*vx+(py-y1)*vy)/l2))
	return math.Hypot(px-(x1+t*vx), py-(y1+t*vy))
}
