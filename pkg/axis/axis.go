// Package axis draws chart axes and grid lines onto a surface.
//
// Axes follow the usual bottom/left layout: the x axis hangs below the plot
// with ticks pointing down, the y axis sits at the left edge with ticks
// pointing left. Tick groups are keyed by their label so that Update moves
// surviving ticks with a transition instead of recreating them.
package axis

import (
	"math"
	"strconv"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

// tickPadding is the gap between a tick line and its label.
const tickPadding = 3

// Axes is the pair of axes of one plot.
type Axes struct {
	cfg           config.AxisConfig
	width, height float64

	group        *surface.Node
	gridX, gridY *surface.Node
	x, y         *surface.Node

	xTicks, yTicks map[string]*surface.Node
	xGrid, yGrid   map[string]*surface.Node
}

// New creates the axes group inside parent, which should be translated to
// the plot origin. width and height are the plot size.
func New(parent *surface.Node, width, height float64, cfg config.AxisConfig) *Axes {
	a := &Axes{
		cfg:    cfg,
		width:  width,
		height: height,
		xTicks: map[string]*surface.Node{},
		yTicks: map[string]*surface.Node{},
		xGrid:  map[string]*surface.Node{},
		yGrid:  map[string]*surface.Node{},
	}
	a.group = parent.Append("g").SetAttr("class", "axes").SetAttr("overflow", "visible")
	if cfg.ShowGridX {
		a.gridX = a.group.Append("g").SetAttr("class", "grid-x").SetAttr("pointer-events", "none")
	}
	if cfg.ShowGridY {
		a.gridY = a.group.Append("g").SetAttr("class", "grid-y").SetAttr("pointer-events", "none")
	}
	if cfg.ShowAxisX {
		a.x = a.group.Append("g").
			SetAttr("class", "x-axis").
			SetAttr("transform", "translate(0,"+surface.FormatFloat(height)+")").
			SetAttr("fill", "none").
			SetAttr("font-size", surface.FormatFloat(cfg.FontSize)).
			SetAttr("text-anchor", "middle")
		a.x.Append("path").
			SetAttr("class", "domain").
			SetAttr("stroke", "currentColor").
			SetAttr("d", "M0,"+surface.FormatFloat(cfg.TickSize)+"V0H"+surface.FormatFloat(width)+"V"+surface.FormatFloat(cfg.TickSize))
	}
	if cfg.ShowAxisY {
		a.y = a.group.Append("g").
			SetAttr("class", "y-axis").
			SetAttr("fill", "none").
			SetAttr("font-size", surface.FormatFloat(cfg.FontSize)).
			SetAttr("text-anchor", "end")
		ts := surface.FormatFloat(-cfg.TickSize)
		a.y.Append("path").
			SetAttr("class", "domain").
			SetAttr("stroke", "currentColor").
			SetAttr("d", "M"+ts+","+surface.FormatFloat(height)+"H0V0H"+ts)
	}
	return a
}

// Node returns the axes group.
func (a *Axes) Node() *surface.Node { return a.group }

// SetLabels adds the axis titles. Labels sit inside the margins: the x
// title near the bottom edge, the y title rotated near the left edge. An
// empty label is skipped.
func (a *Axes) SetLabels(x, y string, marginBottom, marginLeft float64) {
	fs := a.cfg.FontSize
	if x != "" && a.x != nil {
		a.x.Append("g").
			SetAttr("class", "axis-label-x").
			SetAttr("transform", "translate("+surface.FormatFloat(a.width/2)+","+surface.FormatFloat(marginBottom-fs/2)+")").
			Append("text").
			SetAttr("class", "axis-label").
			SetAttr("fill", "currentColor").
			SetAttr("text-anchor", "middle").
			SetText(x)
	}
	if y != "" && a.y != nil {
		a.y.Append("g").
			SetAttr("class", "axis-label-y").
			SetAttr("transform", "translate("+surface.FormatFloat(-marginLeft+fs)+","+surface.FormatFloat(a.height/2)+")").
			Append("text").
			SetAttr("class", "axis-label").
			SetAttr("fill", "currentColor").
			SetAttr("text-anchor", "middle").
			SetAttr("transform", "rotate(-90)").
			SetText(y)
	}
}

// Draw renders the ticks for x and y without transitions.
func (a *Axes) Draw(x, y scale.Scale) { a.Update(x, y, 0) }

// Update redraws ticks and grid lines for the current scales. Ticks whose
// label survives move to their new position over d; new ticks fade in and
// stale ones fade out and are removed.
func (a *Axes) Update(x, y scale.Scale, d time.Duration) {
	if x != nil {
		ticks := a.ticks(x, a.cfg.FormatX)
		if a.x != nil {
			a.joinTicks(a.x, a.xTicks, ticks, d, true)
		}
		if a.gridX != nil {
			a.joinGrid(a.gridX, a.xGrid, ticks, d, true)
		}
	}
	if y != nil {
		ticks := a.ticks(y, a.cfg.FormatY)
		if a.y != nil {
			a.joinTicks(a.y, a.yTicks, ticks, d, false)
		}
		if a.gridY != nil {
			a.joinGrid(a.gridY, a.yGrid, ticks, d, false)
		}
	}
}

// Remove deletes the axes group.
func (a *Axes) Remove() { a.group.Remove() }

// TickLabels returns the labels currently drawn on the x and y axes, in
// the order their tick groups were created.
func (a *Axes) TickLabels() (x, y []string) {
	return labelsOf(a.x), labelsOf(a.y)
}

func labelsOf(axis *surface.Node) []string {
	if axis == nil {
		return nil
	}
	var out []string
	for _, c := range axis.Children() {
		if cls, _ := c.Attr("class"); cls != "tick" {
			continue
		}
		if op, ok := c.Attr("opacity"); ok && op == "0" {
			continue
		}
		if kids := c.Children(); len(kids) == 2 {
			out = append(out, kids[1].Text())
		}
	}
	return out
}

type tick struct {
	label string
	pos   float64
}

func (a *Axes) ticks(s scale.Scale, format func(any) string) []tick {
	raw := s.Ticks(a.cfg.TickCount)
	band, isBand := s.(*scale.Band)
	out := make([]tick, 0, len(raw))
	for _, t := range raw {
		pos := t.Pos
		if isBand {
			if c, ok := band.Center(t.Value); ok {
				pos = c
			}
		}
		out = append(out, tick{label: tickLabel(t, format), pos: pos})
	}
	return out
}

func tickLabel(t scale.Tick, format func(any) string) string {
	if format != nil {
		return format(t.Value)
	}
	if f, ok := t.Value.(float64); ok {
		return Format(f)
	}
	return t.Label
}

func tickTransform(pos float64, horizontal bool) string {
	if horizontal {
		return "translate(" + surface.FormatFloat(pos) + ",0)"
	}
	return "translate(0," + surface.FormatFloat(pos) + ")"
}

// joinTicks keys tick groups by label.
func (a *Axes) joinTicks(axis *surface.Node, nodes map[string]*surface.Node, ticks []tick, d time.Duration, horizontal bool) {
	seen := make(map[string]bool, len(ticks))
	for _, t := range ticks {
		seen[t.label] = true
		n, ok := nodes[t.label]
		if !ok {
			n = a.newTick(axis, t, horizontal)
			nodes[t.label] = n
			if d > 0 {
				n.SetAttr("opacity", "0")
			}
		}
		n.Transition(d, nil).
			Attr("transform", tickTransform(t.pos, horizontal)).
			Attr("opacity", "1")
	}
	for label, n := range nodes {
		if seen[label] {
			continue
		}
		delete(nodes, label)
		n.Transition(d, nil).Attr("opacity", "0").OnEnd(n.Remove)
	}
}

func (a *Axes) newTick(axis *surface.Node, t tick, horizontal bool) *surface.Node {
	g := axis.Append("g").
		SetAttr("class", "tick").
		SetAttr("transform", tickTransform(t.pos, horizontal))
	line := g.Append("line").SetAttr("stroke", "currentColor")
	text := g.Append("text").SetAttr("fill", "currentColor").SetText(t.label)
	off := a.cfg.TickSize + tickPadding
	if horizontal {
		line.SetFloat("y2", a.cfg.TickSize)
		text.SetFloat("y", off).SetAttr("dy", "0.71em")
	} else {
		line.SetFloat("x2", -a.cfg.TickSize)
		text.SetFloat("x", -off).SetAttr("dy", "0.32em")
	}
	return g
}

// joinGrid draws one full-length line per tick.
func (a *Axes) joinGrid(grid *surface.Node, nodes map[string]*surface.Node, ticks []tick, d time.Duration, vertical bool) {
	seen := make(map[string]bool, len(ticks))
	for _, t := range ticks {
		seen[t.label] = true
		n, ok := nodes[t.label]
		if !ok {
			n = grid.Append("line").
				SetAttr("class", "grid").
				SetAttr("stroke", a.cfg.GridColor)
			if vertical {
				n.SetFloat("y1", 0).SetFloat("y2", a.height)
			} else {
				n.SetFloat("x1", 0).SetFloat("x2", a.width)
			}
			nodes[t.label] = n
		}
		tr := n.Transition(d, nil)
		if vertical {
			tr.Float("x1", t.pos).Float("x2", t.pos)
		} else {
			tr.Float("y1", t.pos).Float("y2", t.pos)
		}
	}
	for label, n := range nodes {
		if !seen[label] {
			delete(nodes, label)
			n.Remove()
		}
	}
}

// --- number formatting ---

var siPrefixes = []string{"", "k", "M", "G", "T", "P", "E", "Z", "Y"}

// Format is the default tick format: "0" for zero, two significant
// digits with an SI prefix from one thousand up, and the shortest exact
// decimal otherwise.
func Format(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsNaN(v) || math.IsInf(v, 0):
		return strconv.FormatFloat(v, 'f', -1, 64)
	case math.Abs(v) >= 1000:
		return formatSI(v)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

func formatSI(v float64) string {
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	p := math.Pow(10, float64(exp-1))
	r := math.Round(v/p) * p
	exp = int(math.Floor(math.Log10(math.Abs(r))))
	k := min(max(exp/3, 1), len(siPrefixes)-1)
	m := r / math.Pow(10, float64(3*k))
	decimals := max(0, 1-(exp-3*k))
	return strconv.FormatFloat(m, 'f', decimals, 64) + siPrefixes[k]
}
