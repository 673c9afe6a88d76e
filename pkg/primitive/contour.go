package primitive

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// ContourOptions configure AddContour.
type ContourOptions struct {
	Options
	// Thresholds is the approximate number of levels (default 10). The
	// levels are nice tick values over the field's extent.
	Thresholds int
	// Levels fixes the threshold values, overriding Thresholds.
	Levels []float64
	// Color fills each band by its threshold; nil leaves bands unfilled.
	Color scale.ColorScale
}

// Band is one iso-band: the region where the field is at least Value.
// Rings are closed polygons in grid coordinates, where sample (i, j) sits
// at (i+0.5, j+0.5).
type Band struct {
	Value float64
	Rings [][][2]float64
}

// Contour draws the filled iso-bands of a sampled scalar field.
type Contour struct {
	base
	values       []float64
	xs, ys       []float64
	thresholds   int
	levels       []float64
	color        scale.ColorScale
	paths        []*surface.Node
	lastBands    []Band
	invalidShape bool
}

// AddContour draws the field sampled at values, a row-major grid of
// len(xs) columns by len(ys) rows; xs and ys are the sample positions in
// data units.
func (e *Engine) AddContour(values, xs, ys []float64, opts ContourOptions) *Contour {
	opts.Options = opts.Options.fill("none", DefaultStroke, 1, "primitive-contours")
	if opts.Thresholds <= 0 {
		opts.Thresholds = 10
	}
	c := &Contour{thresholds: opts.Thresholds, levels: opts.Levels, color: opts.Color}
	e.add(c, KindContour, opts.Options)
	c.SetData(values, xs, ys)
	c.render = c.draw
	c.draw(0, nil)
	e.track(&c.base)
	return c
}

// SetData replaces the field. A grid whose size does not match xs and ys
// draws nothing.
func (c *Contour) SetData(values, xs, ys []float64) *Contour {
	c.values, c.xs, c.ys = values, xs, ys
	c.invalidShape = len(xs) < 2 || len(ys) < 2 || len(values) != len(xs)*len(ys)
	if c.invalidShape {
		c.e.logger.Warn("contour grid does not match its axes",
			"values", len(values), "columns", len(xs), "rows", len(ys))
	}
	return c
}

// Bands returns the iso-bands computed by the last render.
func (c *Contour) Bands() []Band { return c.lastBands }

// Levels returns the thresholds the field is banded at.
func (c *Contour) Levels() []float64 {
	if len(c.levels) > 0 {
		out := slices.Clone(c.levels)
		slices.Sort(out)
		return out
	}
	return Thresholds(c.values, c.thresholds)
}

func (c *Contour) draw(d time.Duration, ease surface.Easing) {
	var bands []Band
	if !c.invalidShape {
		bands = Contours(c.values, len(c.xs), len(c.ys), c.Levels())
	}
	c.lastBands = bands

	// keyed by index, like the batch join
	for len(c.paths) > len(bands) {
		c.paths[len(c.paths)-1].Remove()
		c.paths = c.paths[:len(c.paths)-1]
	}
	for len(c.paths) < len(bands) {
		c.paths = append(c.paths, c.node.Append("path").SetAttr("class", c.opts.ClassName))
	}

	x0, x1 := minMax(c.xs)
	y0, y1 := minMax(c.ys)
	project := func(p [2]float64) (float64, float64, bool) {
		gx := gridToData(p[0], len(c.xs), x0, x1)
		gy := gridToData(p[1], len(c.ys), y0, y1)
		px, okX := c.convertX(gx)
		py, okY := c.convertY(gy)
		return px, py, okX && okY
	}

	for i, band := range bands {
		pt := paint(c.paths[i], d, ease)
		path, ok := ringsPath(band.Rings, project)
		if !pt.visible(ok) {
			continue
		}
		fill := "none"
		if c.color != nil {
			fill = c.color.Color(band.Value)
		}
		pt.set("d", path).
			set("fill", fill).
			set("fill-rule", "evenodd").
			set("stroke", c.opts.Stroke.At(band.Value)).
			num("stroke-width", c.opts.StrokeWidth.At(band.Value)).
			num("opacity", c.opts.Opacity.At(band.Value)).
			set("data-value", surface.FormatFloat(band.Value))
	}
}

// gridToData maps a grid coordinate onto the sample extent. Coordinates on
// the outer half-cell are clamped to the first or last sample.
func gridToData(g float64, n int, lo, hi float64) float64 {
	idx := math.Max(0, math.Min(float64(n-1), g-0.5))
	return lo + idx/float64(n-1)*(hi-lo)
}

func ringsPath(rings [][][2]float64, project func([2]float64) (float64, float64, bool)) (string, bool) {
	var b strings.Builder
	for _, ring := range rings {
		for i, p := range ring {
			x, y, ok := project(p)
			if !ok {
				return "", false
			}
			if i == 0 {
				b.WriteByte('M')
			} else {
				b.WriteByte('L')
			}
			b.WriteString(surface.FormatFloat(x))
			b.WriteByte(',')
			b.WriteString(surface.FormatFloat(y))
		}
		b.WriteByte('Z')
	}
	return b.String(), true
}

func minMax(vs []float64) (float64, float64) {
	if len(vs) == 0 {
		return 0, 0
	}
	return slices.Min(vs), slices.Max(vs)
}

// Thresholds returns count nice levels over the finite extent of values:
// the tick values of the niced extent, dropping levels at or above the
// maximum and all but one level below the minimum.
func Thresholds(values []float64, count int) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return nil
	}
	nlo, nhi := scale.Nice(lo, hi, count)
	tz := scale.TickValues(nlo, nhi, count)
	for len(tz) > 0 && tz[len(tz)-1] >= hi {
		tz = tz[:len(tz)-1]
	}
	for len(tz) > 1 && tz[1] < lo {
		tz = tz[1:]
	}
	return tz
}

// Contours computes one band per level with marching squares over a
// width x height grid of row-major values. NaN samples count as below
// every level.
func Contours(values []float64, width, height int, levels []float64) []Band {
	if width < 1 || height < 1 || len(values) != width*height {
		return nil
	}
	out := make([]Band, 0, len(levels))
	for _, level := range levels {
		rings := isorings(values, width, height, level)
		for _, r := range rings {
			smoothRing(r, values, width, height, level)
		}
		out = append(out, Band{Value: level, Rings: rings})
	}
	return out
}

// marchingCases lists the segments of each of the 16 corner
// configurations, in cell-local coordinates offset by (x, y).
var marchingCases = [16][][2][2]float64{
	{},
	{{{1.0, 1.5}, {0.5, 1.0}}},
	{{{1.5, 1.0}, {1.0, 1.5}}},
	{{{1.5, 1.0}, {0.5, 1.0}}},
	{{{1.0, 0.5}, {1.5, 1.0}}},
	{{{1.0, 1.5}, {0.5, 1.0}}, {{1.0, 0.5}, {1.5, 1.0}}},
	{{{1.0, 0.5}, {1.0, 1.5}}},
	{{{1.0, 0.5}, {0.5, 1.0}}},
	{{{0.5, 1.0}, {1.0, 0.5}}},
	{{{1.0, 1.5}, {1.0, 0.5}}},
	{{{0.5, 1.0}, {1.0, 0.5}}, {{1.5, 1.0}, {1.0, 1.5}}},
	{{{1.5, 1.0}, {1.0, 0.5}}},
	{{{0.5, 1.0}, {1.5, 1.0}}},
	{{{1.0, 1.5}, {1.5, 1.0}}},
	{{{0.5, 1.0}, {1.0, 1.5}}},
	{},
}

type fragment struct {
	start, end int
	ring       [][2]float64
}

// isorings traces the closed rings bounding the region >= level. The grid
// is padded with an implicit border below every level so all rings close.
func isorings(values []float64, dx, dy int, level float64) [][][2]float64 {
	above := func(i int) int {
		if values[i] >= level {
			return 1
		}
		return 0
	}
	index := func(p [2]float64) int {
		return int(math.Round(p[0]*2 + p[1]*float64(dx+1)*4))
	}

	var rings [][][2]float64
	byStart := map[int]*fragment{}
	byEnd := map[int]*fragment{}
	var x, y int

	stitch := func(seg [2][2]float64) {
		start := [2]float64{seg[0][0] + float64(x), seg[0][1] + float64(y)}
		end := [2]float64{seg[1][0] + float64(x), seg[1][1] + float64(y)}
		si, ei := index(start), index(end)
		if f, ok := byEnd[si]; ok {
			if g, ok := byStart[ei]; ok {
				delete(byEnd, f.end)
				delete(byStart, g.start)
				if f == g {
					f.ring = append(f.ring, end)
					rings = append(rings, f.ring)
				} else {
					m := &fragment{start: f.start, end: g.end, ring: append(f.ring, g.ring...)}
					byStart[m.start], byEnd[m.end] = m, m
				}
			} else {
				delete(byEnd, f.end)
				f.ring = append(f.ring, end)
				f.end = ei
				byEnd[ei] = f
			}
		} else if f, ok := byStart[ei]; ok {
			if g, ok := byEnd[si]; ok {
				delete(byStart, f.start)
				delete(byEnd, g.end)
				if f == g {
					f.ring = append(f.ring, end)
					rings = append(rings, f.ring)
				} else {
					m := &fragment{start: g.start, end: f.end, ring: append(g.ring, f.ring...)}
					byStart[m.start], byEnd[m.end] = m, m
				}
			} else {
				delete(byStart, f.start)
				f.ring = append([][2]float64{start}, f.ring...)
				f.start = si
				byStart[si] = f
			}
		} else {
			f := &fragment{start: si, end: ei, ring: [][2]float64{start, end}}
			byStart[si], byEnd[ei] = f, f
		}
	}
	emit := func(c int) {
		for _, seg := range marchingCases[c] {
			stitch(seg)
		}
	}

	// first row
	x, y = -1, -1
	t1 := above(0)
	emit(t1 << 1)
	for x++; x < dx-1; x++ {
		t0 := t1
		t1 = above(x + 1)
		emit(t0 | t1<<1)
	}
	emit(t1)

	// intermediate rows
	for y++; y < dy-1; y++ {
		x = -1
		t1 = above(y*dx + dx)
		t2 := above(y * dx)
		emit(t1<<1 | t2<<2)
		for x++; x < dx-1; x++ {
			t0 := t1
			t1 = above(y*dx + dx + x + 1)
			t3 := t2
			t2 = above(y*dx + x + 1)
			emit(t0 | t1<<1 | t2<<2 | t3<<3)
		}
		emit(t1 | t2<<3)
	}

	// last row
	x = -1
	t2 := above(y * dx)
	emit(t2 << 2)
	for x++; x < dx-1; x++ {
		t3 := t2
		t2 = above(y*dx + x + 1)
		emit(t2<<2 | t3<<3)
	}
	emit(t2 << 3)

	return rings
}

// smoothRing moves the ring's edge midpoints to the linearly interpolated
// crossing of level between the two neighbouring samples.
func smoothRing(ring [][2]float64, values []float64, dx, dy int, level float64) {
	valid := func(v float64) float64 {
		if math.IsNaN(v) {
			return math.Inf(-1)
		}
		return v
	}
	for i := range ring {
		x, y := ring[i][0], ring[i][1]
		xt, yt := int(x), int(y)
		if yt >= dy || xt >= dx {
			continue
		}
		v1 := valid(values[yt*dx+xt])
		if x > 0 && x < float64(dx) && float64(xt) == x {
			ring[i][0] = smooth1(x, valid(values[yt*dx+xt-1]), v1, level)
		}
		if y > 0 && y < float64(dy) && float64(yt) == y {
			ring[i][1] = smooth1(y, valid(values[(yt-1)*dx+xt]), v1, level)
		}
	}
}

func smooth1(x, v0, v1, level float64) float64 {
	a, b := level-v0, v1-v0
	var d float64
	if !math.IsInf(a, 0) || !math.IsInf(b, 0) {
		d = a / b
	} else {
		d = sign(a) / sign(b)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return x
	}
	return x + d - 0.5
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func (b Band) String() string {
	return fmt.Sprintf("band(%g, %d rings)", b.Value, len(b.Rings))
}
