package primitive

import (
	"math"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// --- point ---

// PointOptions configure AddPoint and AddPoints.
type PointOptions struct {
	Options
	// Size is the symbol area in square pixels (default 64).
	Size   Attr[float64]
	Symbol Symbol
	// Key is the join key for AddPoints (default IndexKey).
	Key KeyFunc
}

func (o PointOptions) defaults(class string) PointOptions {
	o.Options = o.Options.fill(DefaultFill, "none", 1, class)
	o.Size = o.Size.or(64)
	if o.Key == nil {
		o.Key = IndexKey
	}
	return o
}

// Point is a single symbol placed by translation.
type Point struct {
	base
	x, y   any
	size   Attr[float64]
	symbol Symbol
}

// AddPoint draws a symbol at (x, y).
func (e *Engine) AddPoint(x, y any, opts PointOptions) *Point {
	opts = opts.defaults(DefaultClassName)
	p := &Point{x: x, y: y, size: opts.Size, symbol: opts.Symbol}
	e.add(p, KindPoint, opts.Options)
	p.render = p.draw
	p.draw(0, nil)
	e.track(&p.base)
	return p
}

// SetCoords moves the point on the next render.
func (p *Point) SetCoords(x, y any) *Point {
	p.x, p.y = x, y
	return p
}

// Coords returns the point's coordinates.
func (p *Point) Coords() (any, any) { return p.x, p.y }

// SetSize sets the symbol area.
func (p *Point) SetSize(size float64) *Point {
	p.size = Const(size)
	return p
}

// SetSymbol sets the symbol shape.
func (p *Point) SetSymbol(s Symbol) *Point {
	p.symbol = s
	return p
}

func (p *Point) draw(d time.Duration, ease surface.Easing) {
	x, okX := p.convertX(p.x)
	y, okY := p.convertY(p.y)
	pt := paint(p.node, d, ease)
	if !pt.visible(okX && okY) {
		return
	}
	pt.set("d", p.symbol.Path(p.size.At(nil))).
		style(p.opts, nil).
		set("transform", translate(x, y))
}

// --- line ---

// LineOptions configure AddLine and AddLines.
type LineOptions struct {
	Options
	Arrow      Arrow
	DashArray  string
	DashOffset float64
	Key        KeyFunc
}

func (o LineOptions) defaults(class string) LineOptions {
	o.Options = o.Options.fill("none", DefaultStroke, 1.5, class)
	if o.Key == nil {
		o.Key = IndexKey
	}
	return o
}

// Line is a straight segment, optionally with arrowheads.
type Line struct {
	base
	x1, y1, x2, y2 any
	arrow          Arrow
	dash           string
	dashOffset     float64
}

// AddLine draws a segment from (x1, y1) to (x2, y2).
func (e *Engine) AddLine(x1, y1, x2, y2 any, opts LineOptions) *Line {
	opts = opts.defaults(DefaultClassName)
	l := &Line{x1: x1, y1: y1, x2: x2, y2: y2, arrow: opts.Arrow, dash: opts.DashArray, dashOffset: opts.DashOffset}
	e.add(l, KindLine, opts.Options)
	l.render = l.draw
	l.draw(0, nil)
	e.track(&l.base)
	return l
}

// SetCoords moves the line ends on the next render.
func (l *Line) SetCoords(x1, y1, x2, y2 any) *Line {
	l.x1, l.y1, l.x2, l.y2 = x1, y1, x2, y2
	return l
}

// Coords returns the line ends.
func (l *Line) Coords() (x1, y1, x2, y2 any) { return l.x1, l.y1, l.x2, l.y2 }

func (l *Line) draw(d time.Duration, ease surface.Easing) {
	x1, ok1 := l.convertX(l.x1)
	y1, ok2 := l.convertY(l.y1)
	x2, ok3 := l.convertX(l.x2)
	y2, ok4 := l.convertY(l.y2)
	pt := paint(l.node, d, ease)
	if !pt.visible(ok1 && ok2 && ok3 && ok4) {
		return
	}
	drawSegment(l.e, pt, l.opts, nil, l.arrow, l.dash, l.dashOffset, x1, y1, x2, y2)
}

// drawSegment writes a line element; shared with BatchLines.
func drawSegment(e *Engine, pt painter, o Options, d Datum, arrow Arrow, dash string, dashOffset float64, x1, y1, x2, y2 float64) {
	stroke := o.Stroke.At(d)
	start, end := e.markerRefs(arrow, stroke)
	pt.num("x1", x1).num("y1", y1).num("x2", x2).num("y2", y2).
		set("marker-start", start).
		set("marker-end", end).
		set("stroke", stroke).
		num("stroke-width", o.StrokeWidth.At(d)).
		num("opacity", o.Opacity.At(d)).
		set("stroke-dasharray", dash)
	if dashOffset != 0 {
		pt.num("stroke-dashoffset", dashOffset)
	}
}

// --- rectangle ---

// RectOptions configure AddRectangle and AddRectangles.
type RectOptions struct {
	Options
	Key KeyFunc
}

func (o RectOptions) defaults(class string) RectOptions {
	o.Options = o.Options.fill(DefaultFill, "none", 1, class)
	if o.Key == nil {
		o.Key = IndexKey
	}
	return o
}

// Rectangle spans two corners given in any order.
type Rectangle struct {
	base
	x1, y1, x2, y2 any
}

// AddRectangle draws the rectangle with corners (x1, y1) and (x2, y2).
func (e *Engine) AddRectangle(x1, y1, x2, y2 any, opts RectOptions) *Rectangle {
	opts = opts.defaults(DefaultClassName)
	r := &Rectangle{x1: x1, y1: y1, x2: x2, y2: y2}
	e.add(r, KindRectangle, opts.Options)
	r.render = r.draw
	r.draw(0, nil)
	e.track(&r.base)
	return r
}

// SetCoords moves the corners on the next render.
func (r *Rectangle) SetCoords(x1, y1, x2, y2 any) *Rectangle {
	r.x1, r.y1, r.x2, r.y2 = x1, y1, x2, y2
	return r
}

// Coords returns the corners.
func (r *Rectangle) Coords() (x1, y1, x2, y2 any) { return r.x1, r.y1, r.x2, r.y2 }

func (r *Rectangle) draw(d time.Duration, ease surface.Easing) {
	x1, ok1 := r.convertX(r.x1)
	y1, ok2 := r.convertY(r.y1)
	x2, ok3 := r.convertX(r.x2)
	y2, ok4 := r.convertY(r.y2)
	pt := paint(r.node, d, ease)
	if !pt.visible(ok1 && ok2 && ok3 && ok4) {
		return
	}
	drawRect(pt, r.opts, nil, x1, y1, x2, y2)
}

func drawRect(pt painter, o Options, d Datum, x1, y1, x2, y2 float64) {
	pt.num("x", math.Min(x1, x2)).
		num("y", math.Min(y1, y2)).
		num("width", math.Abs(x2-x1)).
		num("height", math.Abs(y2-y1)).
		style(o, d)
}

// --- text ---

// TextOptions configure AddText and AddTexts.
type TextOptions struct {
	Options
	// FontSize in pixels (default 12).
	FontSize   float64
	FontFamily string
	// Anchor is the text-anchor (default "middle").
	Anchor string
	// Baseline is the dominant-baseline (default "middle").
	Baseline string
	// Angle rotates the label about its anchor point, in degrees.
	Angle Attr[float64]
	// Math renders TeX-style super- and subscripts and Greek letters.
	Math bool
	Key  KeyFunc
}

func (o TextOptions) defaults(class string) TextOptions {
	o.Options = o.Options.fill("currentColor", "none", 0, class)
	if o.FontSize == 0 {
		o.FontSize = 12
	}
	if o.Anchor == "" {
		o.Anchor = "middle"
	}
	if o.Baseline == "" {
		o.Baseline = "middle"
	}
	if o.Key == nil {
		o.Key = IndexKey
	}
	return o
}

// Text is a single label.
type Text struct {
	base
	x, y  any
	text  string
	angle float64
	topts TextOptions
}

// AddText draws s at (x, y).
func (e *Engine) AddText(s string, x, y any, opts TextOptions) *Text {
	opts = opts.defaults(DefaultClassName)
	t := &Text{x: x, y: y, text: s, angle: opts.Angle.At(nil), topts: opts}
	e.add(t, KindText, opts.Options)
	t.render = t.draw
	t.draw(0, nil)
	e.track(&t.base)
	return t
}

// SetText replaces the label on the next render.
func (t *Text) SetText(s string) *Text {
	t.text = s
	return t
}

// Text returns the label.
func (t *Text) Text() string { return t.text }

// SetCoords moves the label on the next render.
func (t *Text) SetCoords(x, y any) *Text {
	t.x, t.y = x, y
	return t
}

// SetAngle sets the rotation in degrees.
func (t *Text) SetAngle(angle float64) *Text {
	t.angle = angle
	return t
}

func (t *Text) draw(d time.Duration, ease surface.Easing) {
	x, okX := t.convertX(t.x)
	y, okY := t.convertY(t.y)
	pt := paint(t.node, d, ease)
	if !pt.visible(okX && okY) {
		return
	}
	drawLabel(pt, t.opts, t.topts, nil, t.text, t.angle, x, y)
}

func drawLabel(pt painter, o Options, to TextOptions, d Datum, s string, angle, x, y float64) {
	if to.Math {
		setMathText(pt.n, s)
	} else {
		pt.n.Clear()
		pt.n.SetText(s)
	}
	pt.num("x", x).num("y", y).
		num("font-size", to.FontSize).
		set("font-family", to.FontFamily).
		set("text-anchor", to.Anchor).
		set("dominant-baseline", to.Baseline).
		set("fill", o.Fill.At(d)).
		num("opacity", o.Opacity.At(d))
	if angle != 0 {
		pt.set("transform", rotate(angle, x, y))
	} else {
		pt.set("transform", "")
	}
}

// --- path ---

// Curve selects how a path joins its points.
type Curve int

const (
	CurveLinear Curve = iota
	// CurveStep changes y at the midpoint between points.
	CurveStep
	// CurveStepAfter holds y until the next point.
	CurveStepAfter
	// CurveStepBefore changes y at the previous point.
	CurveStepBefore
)

// PathOptions configure AddPath.
type PathOptions struct {
	Options
	Curve      Curve
	DashArray  string
	DashOffset float64
}

// Path is a polyline through accessor-derived points. Data whose x or y
// cannot be resolved break the line into separate runs.
type Path struct {
	base
	data       []Datum
	xf, yf     Accessor
	curve      Curve
	dash       string
	dashOffset float64
}

// AddPath draws a line through data using the x and y accessors.
func (e *Engine) AddPath(data []Datum, x, y Accessor, opts PathOptions) *Path {
	opts.Options = opts.Options.fill("none", DefaultStroke, 1.5, DefaultClassName)
	p := &Path{data: data, xf: x, yf: y, curve: opts.Curve, dash: opts.DashArray, dashOffset: opts.DashOffset}
	e.add(p, KindPath, opts.Options)
	p.render = p.draw
	p.draw(0, nil)
	e.track(&p.base)
	return p
}

// SetData replaces the bound data.
func (p *Path) SetData(data []Datum) *Path {
	p.data = data
	return p
}

// Data returns the bound data.
func (p *Path) Data() []Datum { return p.data }

// SetAccessors replaces the coordinate accessors.
func (p *Path) SetAccessors(x, y Accessor) *Path {
	p.xf, p.yf = x, y
	return p
}

func (p *Path) draw(d time.Duration, ease surface.Easing) {
	var runs [][][2]float64
	var run [][2]float64
	for _, datum := range p.data {
		x, okX := p.convertX(p.xf(datum))
		y, okY := p.convertY(p.yf(datum))
		if !okX || !okY {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, [2]float64{x, y})
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}

	pt := paint(p.node, d, ease)
	if !pt.visible(len(runs) > 0) {
		return
	}
	pt.set("d", curvePath(runs, p.curve)).
		style(p.opts, nil).
		set("stroke-dasharray", p.dash)
	if p.dashOffset != 0 {
		pt.num("stroke-dashoffset", p.dashOffset)
	}
}

// curvePath builds path data for the runs of defined points.
func curvePath(runs [][][2]float64, c Curve) string {
	var b strings.Builder
	pt := func(cmd byte, x, y float64) {
		b.WriteByte(cmd)
		b.WriteString(surface.FormatFloat(x))
		b.WriteByte(',')
		b.WriteString(surface.FormatFloat(y))
	}
	for _, run := range runs {
		for i, p := range run {
			if i == 0 {
				pt('M', p[0], p[1])
				continue
			}
			prev := run[i-1]
			switch c {
			case CurveStep:
				mid := (prev[0] + p[0]) / 2
				pt('L', mid, prev[1])
				pt('L', mid, p[1])
			case CurveStepAfter:
				pt('L', p[0], prev[1])
			case CurveStepBefore:
				pt('L', prev[0], p[1])
			}
			pt('L', p[0], p[1])
		}
	}
	return b.String()
}
