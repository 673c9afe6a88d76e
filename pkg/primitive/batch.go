package primitive

import (
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// shape is one joined element of a batch primitive together with the
// plot-space geometry of its last render, which hit testing reads.
type shape struct {
	key     string
	index   int
	datum   Datum
	node    *surface.Node
	visible bool

	x, y, x2, y2 float64
	r            float64
}

// group is the keyed data join shared by the batch primitives.
//
// Keys are compared as strings. When two rows produce the same key the
// later row wins: it binds to the single shape for that key, so the shape
// count always equals the number of distinct keys.
type group struct {
	data   []Datum
	key    KeyFunc
	shapes map[string]*shape
	order  []*shape
}

// SetData rebinds the data; the next render joins it against the shapes
// drawn so far.
func (g *group) SetData(data []Datum) { g.data = data }

// SetKey replaces the join key. Nil restores IndexKey.
func (g *group) SetKey(k KeyFunc) {
	if k == nil {
		k = IndexKey
	}
	g.key = k
}

// Data returns the bound data.
func (g *group) Data() []Datum { return g.data }

// Len returns the number of shapes drawn by the last render.
func (g *group) Len() int { return len(g.order) }

// Keys returns the keys of the drawn shapes in data order.
func (g *group) Keys() []string {
	out := make([]string, len(g.order))
	for i, s := range g.order {
		out[i] = s.key
	}
	return out
}

// ShapeNode returns the element bound to key.
func (g *group) ShapeNode(key string) (*surface.Node, bool) {
	s, ok := g.shapes[key]
	if !ok {
		return nil, false
	}
	return s.node, true
}

// Datum returns the datum bound to key.
func (g *group) Datum(key string) (Datum, bool) {
	s, ok := g.shapes[key]
	if !ok {
		return nil, false
	}
	return s.datum, true
}

// join runs exit, enter and update against the current data and returns
// the surviving shapes in order of each key's first appearance.
func (g *group) join(parent *surface.Node, tag, class string) []*shape {
	if g.shapes == nil {
		g.shapes = map[string]*shape{}
	}
	if g.key == nil {
		g.key = IndexKey
	}

	type bound struct {
		index int
		datum Datum
	}
	rows := make(map[string]bound, len(g.data))
	var keys []string
	for i, d := range g.data {
		k := g.key(d, i)
		if _, seen := rows[k]; !seen {
			keys = append(keys, k)
		}
		rows[k] = bound{index: i, datum: d}
	}

	// exit
	for k, s := range g.shapes {
		if _, ok := rows[k]; !ok {
			s.node.Remove()
			delete(g.shapes, k)
		}
	}

	// enter + update
	g.order = g.order[:0]
	for _, k := range keys {
		s, ok := g.shapes[k]
		if !ok {
			s = &shape{key: k, node: parent.Append(tag).SetAttr("class", class)}
			g.shapes[k] = s
		}
		s.index, s.datum = rows[k].index, rows[k].datum
		g.order = append(g.order, s)
	}
	return g.order
}

// clearShapes forgets every shape; the nodes go with the group element.
func (g *group) clearShapes() {
	clear(g.shapes)
	g.order = nil
}

// --- batch points ---

// BatchPoints draws one symbol per datum.
type BatchPoints struct {
	base
	group
	xf, yf Accessor
	size   Attr[float64]
	symbol Symbol
}

// AddPoints draws a symbol for each datum at (x(d), y(d)).
func (e *Engine) AddPoints(data []Datum, x, y Accessor, opts PointOptions) *BatchPoints {
	opts = opts.defaults("primitive-batch-points")
	p := &BatchPoints{xf: x, yf: y, size: opts.Size, symbol: opts.Symbol}
	p.data, p.key = data, opts.Key
	e.add(p, KindBatchPoints, opts.Options)
	p.render = p.draw
	p.draw(0, nil)
	e.track(&p.base)
	return p
}

// SetAccessors replaces the coordinate accessors.
func (p *BatchPoints) SetAccessors(x, y Accessor) *BatchPoints {
	p.xf, p.yf = x, y
	return p
}

// SetSize sets the symbol area, constant or per datum.
func (p *BatchPoints) SetSize(size Attr[float64]) *BatchPoints {
	p.size = size.or(64)
	return p
}

func (p *BatchPoints) draw(d time.Duration, ease surface.Easing) {
	for _, s := range p.join(p.node, "path", p.opts.ClassName) {
		x, okX := p.convertX(p.xf(s.datum))
		y, okY := p.convertY(p.yf(s.datum))
		pt := paint(s.node, d, ease)
		s.visible = pt.visible(okX && okY)
		if !s.visible {
			continue
		}
		size := p.size.At(s.datum)
		s.x, s.y, s.r = x, y, symbolRadius(size)
		pt.set("d", p.symbol.Path(size)).
			style(p.opts, s.datum).
			set("transform", translate(x, y))
	}
}

// --- batch lines ---

// BatchLines draws one segment per datum.
type BatchLines struct {
	base
	group
	x1f, y1f, x2f, y2f Accessor
	arrow              Arrow
	dash               string
	dashOffset         float64
}

// AddLines draws a segment for each datum between (x1(d), y1(d)) and
// (x2(d), y2(d)).
func (e *Engine) AddLines(data []Datum, x1, y1, x2, y2 Accessor, opts LineOptions) *BatchLines {
	opts = opts.defaults("primitive-batch-lines")
	l := &BatchLines{x1f: x1, y1f: y1, x2f: x2, y2f: y2, arrow: opts.Arrow, dash: opts.DashArray, dashOffset: opts.DashOffset}
	l.data, l.key = data, opts.Key
	e.add(l, KindBatchLines, opts.Options)
	l.render = l.draw
	l.draw(0, nil)
	e.track(&l.base)
	return l
}

// SetAccessors replaces the coordinate accessors.
func (l *BatchLines) SetAccessors(x1, y1, x2, y2 Accessor) *BatchLines {
	l.x1f, l.y1f, l.x2f, l.y2f = x1, y1, x2, y2
	return l
}

func (l *BatchLines) draw(d time.Duration, ease surface.Easing) {
	for _, s := range l.join(l.node, "line", l.opts.ClassName) {
		x1, ok1 := l.convertX(l.x1f(s.datum))
		y1, ok2 := l.convertY(l.y1f(s.datum))
		x2, ok3 := l.convertX(l.x2f(s.datum))
		y2, ok4 := l.convertY(l.y2f(s.datum))
		pt := paint(s.node, d, ease)
		s.visible = pt.visible(ok1 && ok2 && ok3 && ok4)
		if !s.visible {
			continue
		}
		s.x, s.y, s.x2, s.y2 = x1, y1, x2, y2
		s.r = l.opts.StrokeWidth.At(s.datum)
		drawSegment(l.e, pt, l.opts, s.datum, l.arrow, l.dash, l.dashOffset, x1, y1, x2, y2)
	}
}

// --- batch rectangles ---

// BatchRectangles draws one rectangle per datum.
type BatchRectangles struct {
	base
	group
	x1f, y1f, x2f, y2f Accessor
}

// AddRectangles draws a rectangle for each datum with corners
// (x1(d), y1(d)) and (x2(d), y2(d)).
func (e *Engine) AddRectangles(data []Datum, x1, y1, x2, y2 Accessor, opts RectOptions) *BatchRectangles {
	opts = opts.defaults("primitive-batch-rectangles")
	r := &BatchRectangles{x1f: x1, y1f: y1, x2f: x2, y2f: y2}
	r.data, r.key = data, opts.Key
	e.add(r, KindBatchRectangles, opts.Options)
	r.render = r.draw
	r.draw(0, nil)
	e.track(&r.base)
	return r
}

// SetAccessors replaces the corner accessors.
func (r *BatchRectangles) SetAccessors(x1, y1, x2, y2 Accessor) *BatchRectangles {
	r.x1f, r.y1f, r.x2f, r.y2f = x1, y1, x2, y2
	return r
}

func (r *BatchRectangles) draw(d time.Duration, ease surface.Easing) {
	for _, s := range r.join(r.node, "rect", r.opts.ClassName) {
		x1, ok1 := r.convertX(r.x1f(s.datum))
		y1, ok2 := r.convertY(r.y1f(s.datum))
		x2, ok3 := r.convertX(r.x2f(s.datum))
		y2, ok4 := r.convertY(r.y2f(s.datum))
		pt := paint(s.node, d, ease)
		s.visible = pt.visible(ok1 && ok2 && ok3 && ok4)
		if !s.visible {
			continue
		}
		s.x, s.y, s.x2, s.y2 = x1, y1, x2, y2
		drawRect(pt, r.opts, s.datum, x1, y1, x2, y2)
	}
}

// --- batch text ---

// BatchText draws one label per datum.
type BatchText struct {
	base
	group
	xf, yf Accessor
	textf  func(Datum) string
	topts  TextOptions
}

// AddTexts draws text(d) at (x(d), y(d)) for each datum. A nil text
// function labels each datum with its default formatting.
func (e *Engine) AddTexts(data []Datum, x, y Accessor, text func(Datum) string, opts TextOptions) *BatchText {
	opts = opts.defaults("primitive-batch-text")
	if opts.FontFamily == "" {
		opts.FontFamily = "sans-serif"
	}
	t := &BatchText{xf: x, yf: y, textf: text, topts: opts}
	t.data, t.key = data, opts.Key
	e.add(t, KindBatchText, opts.Options)
	t.render = t.draw
	t.draw(0, nil)
	e.track(&t.base)
	return t
}

// SetAccessors replaces the coordinate accessors.
func (t *BatchText) SetAccessors(x, y Accessor) *BatchText {
	t.xf, t.yf = x, y
	return t
}

// SetTextFunc replaces the label function.
func (t *BatchText) SetTextFunc(fn func(Datum) string) *BatchText {
	t.textf = fn
	return t
}

// SetAngle sets the per-datum rotation in degrees.
func (t *BatchText) SetAngle(angle Attr[float64]) *BatchText {
	t.topts.Angle = angle
	return t
}

func (t *BatchText) draw(d time.Duration, ease surface.Easing) {
	for _, s := range t.join(t.node, "text", t.opts.ClassName) {
		x, okX := t.convertX(t.xf(s.datum))
		y, okY := t.convertY(t.yf(s.datum))
		pt := paint(s.node, d, ease)
		s.visible = pt.visible(okX && okY)
		if !s.visible {
			continue
		}
		s.x, s.y = x, y
		label := defaultLabel(s.datum)
		if t.textf != nil {
			label = t.textf(s.datum)
		}
		drawLabel(pt, t.opts, t.topts, s.datum, label, t.topts.Angle.At(s.datum), x, y)
	}
}
