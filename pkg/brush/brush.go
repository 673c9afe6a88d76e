// Package brush implements the rectangular brush gesture used for zooming.
//
// A Brush is a small state machine driven by pointer events in plot
// pixels. Releasing a non-empty selection hands it to the brush callback;
// releasing an empty one (a click) while zoomed asks for a reset. The
// zoomed flag is sticky across gestures until a reset.
package brush

import (
	"fmt"
	"math"

	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// State is the gesture state.
type State int

const (
	Idle State = iota
	Brushing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Brushing:
		return "brushing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Selection is a brushed rectangle given by its start and end corners in
// plot pixels. The corners are kept in gesture order.
type Selection struct {
	X0, Y0, X1, Y1 float64
}

// Rect returns the normalized rectangle.
func (s Selection) Rect() layout.Rect {
	return layout.RectFromPoints(s.X0, s.Y0, s.X1, s.Y1)
}

// Area returns the pixel area of the selection.
func (s Selection) Area() float64 { return s.Rect().Area() }

// Empty reports whether the selection has no area.
func (s Selection) Empty() bool { return s.Rect().Empty() }

// Outcome reports what End did.
type Outcome int

const (
	// None: no gesture was active, or an empty selection while not zoomed.
	None Outcome = iota
	// Rejected: the brush callback declined the selection.
	Rejected
	// Zoomed: the brush callback accepted the selection.
	Zoomed
	// Reset: an empty selection while zoomed triggered the reset callback.
	Reset
)

func (o Outcome) String() string {
	switch o {
	case None:
		return "none"
	case Rejected:
		return "rejected"
	case Zoomed:
		return "zoomed"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Brush tracks one brush gesture at a time within extent.
type Brush struct {
	extent  layout.Rect
	onBrush func(Selection) bool
	onReset func()

	state  State
	zoomed bool
	sel    Selection

	group     *surface.Node
	selection *surface.Node
}

// New creates an idle brush. onBrush receives every non-empty selection
// on release and returns whether it zoomed; onReset runs when an empty
// selection ends a gesture while zoomed. Either callback may be nil.
func New(extent layout.Rect, onBrush func(Selection) bool, onReset func()) *Brush {
	return &Brush{extent: extent, onBrush: onBrush, onReset: onReset}
}

// Extent returns the brushable area.
func (b *Brush) Extent() layout.Rect { return b.extent }

// State returns the gesture state.
func (b *Brush) State() State { return b.state }

// Brushing reports whether a gesture is in progress.
func (b *Brush) Brushing() bool { return b.state == Brushing }

// Zoomed reports whether the last accepted gesture zoomed and no reset has
// happened since.
func (b *Brush) Zoomed() bool { return b.zoomed }

// SetZoomed overrides the sticky zoom flag, for zoom changes made outside
// the gesture such as a programmatic reset.
func (b *Brush) SetZoomed(z bool) { b.zoomed = z }

// Selection returns the current selection, clamped to the extent. It is
// empty when idle.
func (b *Brush) Selection() Selection { return b.sel }

// Start begins a gesture at (px, py). Presses outside the extent are
// ignored. Starting while already brushing restarts the gesture.
func (b *Brush) Start(px, py float64) bool {
	if !b.extent.Contains(px, py) {
		return false
	}
	b.state = Brushing
	b.sel = Selection{X0: px, Y0: py, X1: px, Y1: py}
	b.draw()
	return true
}

// Move extends the selection to (px, py), clamped to the extent.
func (b *Brush) Move(px, py float64) {
	if b.state != Brushing {
		return
	}
	b.sel.X1, b.sel.Y1 = b.extent.Clamp(px, py)
	b.draw()
}

// End releases the gesture. The visual selection is cleared before any
// callback runs so a new gesture can start from a clean state.
func (b *Brush) End() Outcome {
	if b.state != Brushing {
		return None
	}
	sel := b.sel
	b.clear()

	if sel.Empty() {
		if !b.zoomed {
			return None
		}
		b.zoomed = false
		if b.onReset != nil {
			b.onReset()
		}
		return Reset
	}
	if b.onBrush == nil || !b.onBrush(sel) {
		return Rejected
	}
	b.zoomed = true
	return Zoomed
}

// Cancel abandons the gesture without invoking any callback.
func (b *Brush) Cancel() {
	if b.state == Brushing {
		b.clear()
	}
}

func (b *Brush) clear() {
	b.state = Idle
	b.sel = Selection{}
	b.draw()
}

// --- drawing ---

// Attach draws the brush overlay into parent: a transparent rectangle over
// the extent that receives pointer events, and the selection rectangle
// which is shown only while brushing.
func (b *Brush) Attach(parent *surface.Node) *surface.Node {
	if b.group != nil {
		b.group.Remove()
	}
	b.group = parent.Append("g").SetAttr("class", "brush")
	b.group.Append("rect").
		SetAttr("class", "overlay").
		SetFloat("x", b.extent.X).
		SetFloat("y", b.extent.Y).
		SetFloat("width", b.extent.Width).
		SetFloat("height", b.extent.Height).
		SetAttr("fill", "none").
		SetAttr("pointer-events", "all").
		SetAttr("cursor", "crosshair")
	b.selection = b.group.Append("rect").
		SetAttr("class", "selection").
		SetAttr("fill", "#777").
		SetAttr("fill-opacity", "0.3").
		SetAttr("stroke", "#fff").
		SetAttr("shape-rendering", "crispEdges").
		SetAttr("display", "none")
	b.draw()
	return b.group
}

// Detach removes the overlay.
func (b *Brush) Detach() {
	if b.group != nil {
		b.group.Remove()
	}
	b.group, b.selection = nil, nil
}

func (b *Brush) draw() {
	if b.selection == nil {
		return
	}
	if b.state != Brushing {
		b.selection.SetAttr("display", "none")
		return
	}
	r := b.sel.Rect()
	b.selection.DelAttr("display").
		SetFloat("x", r.X).
		SetFloat("y", r.Y).
		SetFloat("width", math.Max(0, r.Width)).
		SetFloat("height", math.Max(0, r.Height))
}
