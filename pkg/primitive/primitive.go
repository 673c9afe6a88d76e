// Package primitive is the retained-mode shape engine charts draw with.
//
// An Engine owns a set of z-ordered layers inside the plot group and a
// table of primitives. Each primitive is a persistent handle to one shape
// (or, for batch primitives, one group of shapes joined by key) whose
// geometry is resolved through the host chart's scales on every render,
// so zooming only needs the registered update callbacks replayed.
package primitive

import (
	"fmt"
	"math"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Kind identifies a primitive variant.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindRectangle
	KindText
	KindPath
	KindContour
	KindImage
	KindBatchPoints
	KindBatchLines
	KindBatchRectangles
	KindBatchText
)

var kindNames = [...]string{
	KindPoint:           "point",
	KindLine:            "line",
	KindRectangle:       "rectangle",
	KindText:            "text",
	KindPath:            "path",
	KindContour:         "contour",
	KindImage:           "image",
	KindBatchPoints:     "batch-points",
	KindBatchLines:      "batch-lines",
	KindBatchRectangles: "batch-rectangles",
	KindBatchText:       "batch-text",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Batch reports whether the kind draws one shape per datum.
func (k Kind) Batch() bool { return k >= KindBatchPoints }

// element is the SVG element created for the primitive itself.
func (k Kind) element() string {
	switch k {
	case KindPoint, KindPath:
		return "path"
	case KindLine:
		return "line"
	case KindRectangle:
		return "rect"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "g"
	}
}

// CoordinateSystem says how primitive coordinates are interpreted.
type CoordinateSystem int

const (
	// Data coordinates pass through the host's active scales.
	Data CoordinateSystem = iota
	// Pixel coordinates are plot-relative pixels and ignore rescaling.
	Pixel
)

func (c CoordinateSystem) String() string {
	if c == Pixel {
		return "pixel"
	}
	return "data"
}

// Datum is one bound data row, usually a value.Record.
type Datum = any

// Accessor reads one coordinate from a datum. The result is anything a
// scale accepts: numbers, times or category strings.
type Accessor func(d Datum) any

// Field returns an accessor reading key from value.Record data.
func Field(key string) Accessor {
	return func(d Datum) any {
		if r, ok := d.(value.Record); ok {
			return r[key]
		}
		if m, ok := d.(map[string]any); ok {
			return m[key]
		}
		return nil
	}
}

// KeyFunc derives the join key of the i-th datum.
type KeyFunc func(d Datum, i int) string

// IndexKey is the default join key: the datum's position.
func IndexKey(_ Datum, i int) string { return fmt.Sprint(i) }

// FieldKey keys records by the label of one field.
func FieldKey(key string) KeyFunc {
	f := Field(key)
	return func(d Datum, _ int) string { return value.Label(f(d)) }
}

// Attr is a style value that is either constant or computed per datum.
// The zero Attr is unset and takes the primitive's default.
type Attr[T any] struct {
	val T
	fn  func(Datum) T
	set bool
}

// Const returns a constant style value.
func Const[T any](v T) Attr[T] { return Attr[T]{val: v, set: true} }

// By returns a data-driven style value.
func By[T any](fn func(Datum) T) Attr[T] { return Attr[T]{fn: fn, set: fn != nil} }

// IsSet reports whether a value was given.
func (a Attr[T]) IsSet() bool { return a.set }

// At evaluates the attribute for d.
func (a Attr[T]) At(d Datum) T {
	if a.fn != nil {
		return a.fn(d)
	}
	return a.val
}

// Dynamic reports whether the value depends on the datum.
func (a Attr[T]) Dynamic() bool { return a.fn != nil }

func (a Attr[T]) or(def T) Attr[T] {
	if a.set {
		return a
	}
	return Const(def)
}

// Options are the settings shared by every primitive.
type Options struct {
	Fill        Attr[string]
	Stroke      Attr[string]
	StrokeWidth Attr[float64]
	Opacity     Attr[float64]

	Coordinates   CoordinateSystem
	Layer         string
	ClassName     string
	PointerEvents string
	// DataID names the primitive in the engine table; generated when empty.
	DataID string
	// Static primitives are never re-rendered by update callbacks. Pixel
	// primitives are always static.
	Static bool
}

// Default style values.
const (
	DefaultFill          = "steelblue"
	DefaultStroke        = "currentColor"
	DefaultLayer         = "default"
	DefaultClassName     = "primitive"
	DefaultPointerEvents = "none"
)

// fill returns o with unset fields taken from the package defaults and
// the adder-specific fill, stroke and width.
func (o Options) fill(fill, stroke string, width float64, class string) Options {
	o.Fill = o.Fill.or(fill)
	o.Stroke = o.Stroke.or(stroke)
	o.StrokeWidth = o.StrokeWidth.or(width)
	o.Opacity = o.Opacity.or(1)
	if o.Layer == "" {
		o.Layer = DefaultLayer
	}
	if o.ClassName == "" {
		o.ClassName = class
	}
	if o.PointerEvents == "" {
		o.PointerEvents = DefaultPointerEvents
	}
	if o.Coordinates == Pixel {
		o.Static = true
	}
	return o
}

// Primitive is a handle to a drawn shape. The variants are *Point, *Line,
// *Rectangle, *Text, *Path, *Contour, *Image, *BatchPoints, *BatchLines,
// *BatchRectangles and *BatchText.
type Primitive interface {
	ID() string
	Kind() Kind
	Options() Options
	// Node is the element (or group, for batch and contour primitives)
	// the primitive draws into.
	Node() *surface.Node
	// Render resolves coordinates through the current scales and writes
	// the shape. A positive duration tweens from the previous state.
	Render(d time.Duration, ease surface.Easing)
	Show()
	Hide()
	// Update re-renders with the host's transition duration. It is what
	// the update-callback registry replays.
	Update()
	Remove()

	core() *base
}

// base carries the state common to every variant.
type base struct {
	id      string
	kind    Kind
	e       *Engine
	node    *surface.Node
	opts    Options
	regID   int
	removed bool
	render  func(time.Duration, surface.Easing)
}

func (b *base) ID() string          { return b.id }
func (b *base) Kind() Kind          { return b.kind }
func (b *base) Options() Options    { return b.opts }
func (b *base) Node() *surface.Node { return b.node }
func (b *base) core() *base         { return b }

// Removed reports whether the primitive was removed from its engine.
func (b *base) Removed() bool { return b.removed }

// Show restores the configured opacity.
func (b *base) Show() {
	if b.removed {
		return
	}
	op := b.opts.Opacity
	if op.Dynamic() {
		b.node.DelAttr("opacity")
		return
	}
	b.node.SetFloat("opacity", op.At(nil))
}

// Hide sets the opacity to zero without removing the shape.
func (b *base) Hide() {
	if b.removed {
		return
	}
	b.node.SetFloat("opacity", 0)
}

// Style changes the style options. The shape is redrawn on the next
// render.
func (b *base) Style(fn func(*Options)) {
	fn(&b.opts)
	if b.opts.Coordinates == Pixel {
		b.opts.Static = true
	}
}

// Update re-renders with the host transition duration.
func (b *base) Update() {
	if b.removed || b.render == nil {
		return
	}
	b.render(b.e.host.TransitionDuration(), nil)
}

// Remove detaches the primitive from its engine. Removing twice is a
// no-op.
func (b *base) Remove() {
	if b.removed {
		return
	}
	b.e.RemovePrimitive(b.id)
}

// Render redraws through the variant's render function.
func (b *base) Render(d time.Duration, ease surface.Easing) {
	if b.removed || b.render == nil {
		return
	}
	b.render(d, ease)
}

// convertX resolves an x coordinate for this primitive.
func (b *base) convertX(v any) (float64, bool) {
	return b.e.convert(v, b.opts.Coordinates, true)
}

func (b *base) convertY(v any) (float64, bool) {
	return b.e.convert(v, b.opts.Coordinates, false)
}

// painter writes attributes either immediately or through a transition.
type painter struct {
	n  *surface.Node
	tr *surface.Transition
}

func paint(n *surface.Node, d time.Duration, ease surface.Easing) painter {
	return painter{n: n, tr: n.Transition(d, ease)}
}

// set tweens name toward v. An empty value removes the attribute.
func (p painter) set(name, v string) painter {
	if v == "" {
		p.n.DelAttr(name)
		return p
	}
	p.tr.Attr(name, v)
	return p
}

func (p painter) num(name string, v float64) painter {
	return p.set(name, surface.FormatFloat(v))
}

// visible shows or hides the node for this pass. Hiding is immediate so
// an unplaceable shape never tweens toward garbage.
func (p painter) visible(ok bool) bool {
	if ok {
		p.n.DelAttr("visibility")
	} else {
		p.n.SetAttr("visibility", "hidden")
	}
	return ok
}

// style applies fill, stroke, width and opacity for datum d.
func (p painter) style(o Options, d Datum) painter {
	p.set("fill", o.Fill.At(d))
	p.set("stroke", o.Stroke.At(d))
	p.num("stroke-width", o.StrokeWidth.At(d))
	p.num("opacity", o.Opacity.At(d))
	return p
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
