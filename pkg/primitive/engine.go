package primitive

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/image"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Host is the chart the engine draws for.
type Host interface {
	ScaleX() scale.Scale
	ScaleY() scale.Scale
	// PlotSize is the size of the plot area in pixels.
	PlotSize() (float64, float64)
	TransitionDuration() time.Duration
	// Register adds an update callback and returns its handle.
	Register(fn func()) int
	Unregister(id int)
}

// InteractionLayer holds shapes that must draw above every data layer,
// such as the brush overlay and hover guides.
const (
	InteractionLayer = "interaction"
	InteractionZ     = 1000
)

type layer struct {
	name string
	z    int
	seq  int
	node *surface.Node
	ids  []string
}

// Engine owns the layers and primitives of one chart. It is not safe for
// concurrent use, with the exception of the image completion queue which
// loader goroutines post to.
type Engine struct {
	host   Host
	plot   *surface.Node
	defs   *surface.Node
	logger *slog.Logger

	layers   map[string]*layer
	layerSeq int

	prims   map[string]Primitive
	order   []string
	seq     int
	markers map[string]bool

	loader    *image.Loader
	ownLoader bool
	images    []*Image

	mu      sync.Mutex
	alive   bool
	pending []func()
}

// NewEngine creates an engine drawing into plot, with markers and other
// shared definitions written to defs. The default layer is created at
// z-index 0.
func NewEngine(host Host, plot, defs *surface.Node, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		host:    host,
		plot:    plot,
		defs:    defs,
		logger:  logger,
		layers:  map[string]*layer{},
		prims:   map[string]Primitive{},
		markers: map[string]bool{},
		alive:   true,
	}
	e.CreateLayer(DefaultLayer, 0)
	return e
}

// UseLoader makes image primitives load through l. The engine does not
// close a loader it was given.
func (e *Engine) UseLoader(l *image.Loader) {
	e.loader = l
	e.ownLoader = false
}

func (e *Engine) imageLoader() *image.Loader {
	if e.loader == nil {
		e.loader = image.NewLoader(image.LoaderOptions{Logger: e.logger})
		e.ownLoader = true
	}
	return e.loader
}

// Alive reports whether the engine has not been closed.
func (e *Engine) Alive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alive
}

// --- layers ---

// CreateLayer adds a named layer at z-index z and re-sorts the layers. An
// existing layer keeps its node and moves to the new z-index.
func (e *Engine) CreateLayer(name string, z int) *surface.Node {
	if l, ok := e.layers[name]; ok {
		l.z = z
		l.node.SetAttr("data-z-index", fmt.Sprint(z))
		e.SortLayers()
		return l.node
	}
	n := e.plot.Append("g").
		SetAttr("class", "layer-"+name).
		SetAttr("data-z-index", fmt.Sprint(z))
	e.layerSeq++
	e.layers[name] = &layer{name: name, z: z, seq: e.layerSeq, node: n}
	e.SortLayers()
	return n
}

// Layer returns the named layer, creating it at z-index 0 when missing.
func (e *Engine) Layer(name string) *surface.Node {
	if name == "" {
		name = DefaultLayer
	}
	if l, ok := e.layers[name]; ok {
		return l.node
	}
	return e.CreateLayer(name, 0)
}

// Layers returns the layer names bottom to top.
func (e *Engine) Layers() []string {
	out := make([]string, 0, len(e.layers))
	for _, l := range e.sortedLayers() {
		out = append(out, l.name)
	}
	return out
}

// SortLayers raises the layer groups in ascending z-index; layers with the
// same z-index keep their creation order. The interaction layer always
// sorts last, whatever z-index the data layers use.
func (e *Engine) SortLayers() {
	for _, l := range e.sortedLayers() {
		l.node.Raise()
	}
}

func (e *Engine) sortedLayers() []*layer {
	ls := make([]*layer, 0, len(e.layers))
	for _, l := range e.layers {
		ls = append(ls, l)
	}
	slices.SortFunc(ls, func(a, b *layer) int {
		if ai, bi := a.name == InteractionLayer, b.name == InteractionLayer; ai != bi {
			if ai {
				return 1
			}
			return -1
		}
		if a.z != b.z {
			return a.z - b.z
		}
		return a.seq - b.seq
	})
	return ls
}

// --- registration ---

// add creates the primitive's element in its layer and enters it in the
// table. A primitive with a reused DataID replaces the previous one.
func (e *Engine) add(p Primitive, kind Kind, opts Options) *base {
	b := p.core()
	b.kind = kind
	b.e = e
	b.opts = opts

	l := e.layerFor(opts.Layer)
	class := opts.ClassName
	if kind.Batch() {
		class += "-group"
	}
	b.node = l.node.Append(kind.element()).
		SetAttr("class", class).
		SetAttr("pointer-events", opts.PointerEvents)
	if opts.DataID != "" {
		b.node.SetAttr("data-id", opts.DataID)
	}

	b.id = opts.DataID
	if b.id == "" {
		e.seq++
		b.id = fmt.Sprintf("%s-%d", kind, e.seq)
	}
	if old, ok := e.prims[b.id]; ok {
		e.logger.Debug("primitive replaced", "id", b.id, "kind", old.Kind())
		e.RemovePrimitive(b.id)
	}
	e.prims[b.id] = p
	e.order = append(e.order, b.id)
	l.ids = append(l.ids, b.id)
	return b
}

func (e *Engine) layerFor(name string) *layer {
	e.Layer(name)
	if name == "" {
		name = DefaultLayer
	}
	return e.layers[name]
}

// track registers the update callback of data-space primitives.
func (e *Engine) track(b *base) {
	if b.opts.Static || b.opts.Coordinates == Pixel || b.regID != 0 {
		return
	}
	b.regID = e.host.Register(b.Update)
}

func (e *Engine) untrack(b *base) {
	if b.regID != 0 {
		e.host.Unregister(b.regID)
		b.regID = 0
	}
}

// convert maps a coordinate through the x or y scale, or passes it
// through in pixel space. Band scales resolve to the band centre.
func (e *Engine) convert(v any, cs CoordinateSystem, x bool) (float64, bool) {
	if cs == Pixel {
		f, ok := value.Finite(v)
		return f, ok
	}
	var s scale.Scale
	if x {
		s = e.host.ScaleX()
	} else {
		s = e.host.ScaleY()
	}
	if s == nil {
		return math.NaN(), false
	}
	var px float64
	var ok bool
	if b, isBand := s.(*scale.Band); isBand {
		px, ok = b.Center(v)
	} else {
		px, ok = s.Map(v)
	}
	if !ok || !finite(px) {
		return math.NaN(), false
	}
	return px, true
}

// --- management ---

// Primitive returns the primitive with the given id.
func (e *Engine) Primitive(id string) (Primitive, bool) {
	p, ok := e.prims[id]
	return p, ok
}

// MustPrimitive is Primitive for ids that must exist; it panics otherwise.
func (e *Engine) MustPrimitive(id string) Primitive {
	p, ok := e.prims[id]
	if !ok {
		panic(fmt.Sprintf("primitive: unknown primitive %q", id))
	}
	return p
}

// Len returns the number of live primitives.
func (e *Engine) Len() int { return len(e.prims) }

// RemovePrimitive removes the shape, unregisters its update callback and
// drops it from the table. Unknown ids are ignored.
func (e *Engine) RemovePrimitive(id string) {
	p, ok := e.prims[id]
	if !ok {
		return
	}
	e.discard(p)
	delete(e.prims, id)
	e.order = slices.DeleteFunc(e.order, func(s string) bool { return s == id })
	for _, l := range e.layers {
		l.ids = slices.DeleteFunc(l.ids, func(s string) bool { return s == id })
	}
}

func (e *Engine) discard(p Primitive) {
	b := p.core()
	if b.removed {
		return
	}
	b.removed = true
	e.untrack(b)
	b.node.Remove()
	if img, ok := p.(*Image); ok {
		img.cancel()
		e.images = slices.DeleteFunc(e.images, func(i *Image) bool { return i == img })
	}
}

// ClearLayer removes every primitive in the named layer and empties its
// group. The layer itself remains.
func (e *Engine) ClearLayer(name string) {
	l, ok := e.layers[name]
	if !ok {
		return
	}
	for _, id := range slices.Clone(l.ids) {
		e.RemovePrimitive(id)
	}
	l.node.Clear()
	l.ids = nil
}

// ClearAll removes every primitive from every layer.
func (e *Engine) ClearAll() {
	for _, id := range slices.Clone(e.order) {
		if p, ok := e.prims[id]; ok {
			e.discard(p)
		}
	}
	for _, l := range e.layers {
		l.node.Clear()
		l.ids = nil
	}
	clear(e.prims)
	e.order = nil
	e.images = nil
}

// PrimitivesByKind returns the primitives of kind k in creation order.
func (e *Engine) PrimitivesByKind(k Kind) []Primitive {
	var out []Primitive
	for _, id := range e.order {
		if p := e.prims[id]; p.Kind() == k {
			out = append(out, p)
		}
	}
	return out
}

// PrimitivesByLayer returns the primitives of the named layer in creation
// order. An unknown layer yields nil.
func (e *Engine) PrimitivesByLayer(name string) []Primitive {
	l, ok := e.layers[name]
	if !ok {
		return nil
	}
	out := make([]Primitive, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, e.prims[id])
	}
	return out
}

// Close removes everything and marks the engine dead: queued and future
// image completions are dropped. A loader created by the engine is shut
// down. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.alive {
		e.mu.Unlock()
		return
	}
	e.alive = false
	e.pending = nil
	e.mu.Unlock()

	e.ClearAll()
	if e.ownLoader && e.loader != nil {
		e.loader.Close()
	}
	e.loader = nil
}

// --- async completion ---

// post queues fn to run on the next Dispatch. Safe for concurrent use.
func (e *Engine) post(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.alive {
		return
	}
	e.pending = append(e.pending, fn)
}

// Pending returns the number of queued completions.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Dispatch runs queued image completions on the calling goroutine, which
// must be the one that owns the chart. It returns how many ran.
func (e *Engine) Dispatch() int {
	e.mu.Lock()
	queue := e.pending
	e.pending = nil
	alive := e.alive
	e.mu.Unlock()
	if !alive {
		return 0
	}
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// --- arrow markers ---

// Arrow selects the line ends that carry an arrowhead.
type Arrow int

const (
	ArrowNone Arrow = iota
	ArrowStart
	ArrowEnd
	ArrowBoth
)

// arrowMarker returns the id of the arrowhead marker for color and
// direction, creating it in defs on first use.
func (e *Engine) arrowMarker(color string, start bool) string {
	dir := "end"
	if start {
		dir = "start"
	}
	id := fmt.Sprintf("arrow-%s-%s", dir, strings.ReplaceAll(color, "#", ""))
	if e.markers[id] && e.defs.Find(id) != nil {
		return id
	}
	refX, d := 10.0, "M 0,-5 L 10,0 L 0,5"
	if start {
		refX, d = 0, "M 10,-5 L 0,0 L 10,5"
	}
	m := e.defs.Append("marker").
		SetAttr("id", id).
		SetAttr("viewBox", "0 -5 10 10").
		SetFloat("refX", refX).
		SetFloat("refY", 0).
		SetFloat("markerWidth", 6).
		SetFloat("markerHeight", 6).
		SetAttr("orient", "auto")
	m.Append("path").SetAttr("d", d).SetAttr("fill", color)
	e.markers[id] = true
	return id
}

// markerRefs returns the marker-start and marker-end values for a line.
func (e *Engine) markerRefs(arrow Arrow, color string) (start, end string) {
	if arrow == ArrowStart || arrow == ArrowBoth {
		start = "url(#" + e.arrowMarker(color, true) + ")"
	}
	if arrow == ArrowEnd || arrow == ArrowBoth {
		end = "url(#" + e.arrowMarker(color, false) + ")"
	}
	return start, end
}
