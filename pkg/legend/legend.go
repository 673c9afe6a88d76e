// Package legend draws chart legends: a swatch list for categorical color
// scales and a gradient bar with a value axis for continuous ones.
//
// The legend is anchored to the top right corner of the chart, offset by
// the configured Top and Right distances, and right-aligned so its width
// follows its content.
package legend

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"gitlab.com/tinyland/lab/chartkit/pkg/axis"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
)

const (
	fontSize     = 12
	titleGap     = 5
	swatchSize   = 64
	swatchX      = 10
	labelX       = 25
	barAxisGap   = 5
	barTickSize  = 6
	barTickCount = 5
)

// gradientStops are the offsets sampled along the continuous bar.
var gradientStops = []float64{0, 0.2, 0.4, 0.6, 0.8, 1}

var gradientSeq atomic.Uint64

// Shape is the swatch drawn next to a categorical item.
type Shape string

const (
	ShapeLine     Shape = "line"
	ShapeRect     Shape = "rect"
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeCross    Shape = "cross"
)

// Item is one categorical legend entry.
type Item struct {
	Shape Shape
	Color string
	Text  string
}

// Legend is a legend drawn into a surface group.
type Legend struct {
	cfg        config.LegendConfig
	chartWidth float64

	group   *surface.Node
	content *surface.Node
	defs    *surface.Node

	title      string
	items      []Item
	gradientID string
	gradient   *surface.Node
	width      float64
	height     float64
	hidden     int
}

// New creates an empty legend in parent. defs receives the gradient for a
// continuous legend. chartWidth is the full chart width used to anchor
// the legend to the right edge.
func New(parent, defs *surface.Node, chartWidth float64, cfg config.LegendConfig) *Legend {
	l := &Legend{
		cfg:        cfg,
		chartWidth: chartWidth,
		defs:       defs,
		gradientID: "linear-gradient-" + strconv.FormatUint(gradientSeq.Add(1), 10),
		title:      cfg.Title,
	}
	l.group = parent.Append("g").
		SetAttr("class", "legend").
		SetAttr("font-size", strconv.Itoa(fontSize))
	l.content = l.group.Append("g").SetAttr("class", "legend-content")
	l.drawTitle()
	l.place()
	return l
}

// Node returns the legend group.
func (l *Legend) Node() *surface.Node { return l.group }

// GradientID returns the id of the continuous legend's gradient.
func (l *Legend) GradientID() string { return l.gradientID }

// Size returns the drawn content size.
func (l *Legend) Size() layout.Size { return layout.Size{Width: l.width, Height: l.height} }

// Items returns the categorical entries.
func (l *Legend) Items() []Item { return append([]Item(nil), l.items...) }

// Hidden returns how many categorical entries did not fit in MaxHeight.
func (l *Legend) Hidden() int { return l.hidden }

// SetTitle replaces the title. An empty title falls back to the
// configured one.
func (l *Legend) SetTitle(title string) {
	if title == "" {
		title = l.cfg.Title
	}
	l.title = title
	l.drawTitle()
	l.place()
}

func (l *Legend) drawTitle() {
	for _, c := range l.group.Children() {
		if cls, _ := c.Attr("class"); cls == "legend-title" {
			c.Remove()
		}
	}
	if l.title == "" {
		l.content.DelAttr("transform")
		return
	}
	l.group.Insert("text", 0).
		SetAttr("class", "legend-title").
		SetAttr("fill", "currentColor").
		SetAttr("text-anchor", "start").
		SetAttr("dominant-baseline", "hanging").
		SetText(l.title)
	l.content.SetAttr("transform", "translate(0,"+surface.FormatFloat(fontSize+titleGap)+")")
}

func (l *Legend) titleHeight() float64 {
	if l.title == "" {
		return 0
	}
	return fontSize + titleGap
}

// Draw renders the legend for cs: a swatch per category for ordinal
// scales, a gradient bar for sequential ones. Constant scales draw
// nothing.
func (l *Legend) Draw(cs scale.ColorScale, shape Shape) {
	switch c := cs.(type) {
	case *scale.SequentialColor:
		l.Continuous(c)
	case nil:
	default:
		if cs.Kind() != scale.KindOrdinal {
			return
		}
		d := cs.Domain()
		items := make([]Item, 0, len(d.Categories))
		for _, cat := range d.Categories {
			items = append(items, Item{Shape: shape, Color: cs.Color(cat), Text: cat})
		}
		l.SetItems(items)
	}
}

// AddItem appends a categorical entry and redraws the list.
func (l *Legend) AddItem(shape Shape, color, text string) {
	l.items = append(l.items, Item{Shape: shape, Color: color, Text: text})
	l.renderItems()
}

// SetItems replaces the categorical entries.
func (l *Legend) SetItems(items []Item) {
	l.items = append(l.items[:0], items...)
	l.renderItems()
}

func (l *Legend) renderItems() {
	l.removeGradient()
	l.content.Clear()
	h := l.cfg.CategoricalItemHeight

	n := len(l.items)
	l.hidden = 0
	if l.cfg.MaxHeight > 0 && h > 0 {
		fit := int(math.Floor((l.cfg.MaxHeight - l.titleHeight()) / h))
		if fit < n {
			// The last visible row reports the overflow.
			fit = max(fit-1, 0)
			l.hidden = n - fit
			n = fit
		}
	}

	texts := make([]string, 0, n+1)
	for i, it := range l.items[:n] {
		y := float64(i)*h + h/2
		g := l.content.Append("g").SetAttr("class", "legend-item")
		drawSwatch(g, it, y)
		g.Append("text").
			SetFloat("x", labelX).
			SetFloat("y", y).
			SetAttr("fill", "currentColor").
			SetAttr("dominant-baseline", "middle").
			SetAttr("text-anchor", "start").
			SetText(it.Text)
		texts = append(texts, it.Text)
	}
	rows := n
	if l.hidden > 0 {
		more := fmt.Sprintf("+%d more", l.hidden)
		l.content.Append("text").
			SetAttr("class", "legend-more").
			SetFloat("x", labelX).
			SetFloat("y", float64(n)*h+h/2).
			SetAttr("fill", "currentColor").
			SetAttr("dominant-baseline", "middle").
			SetText(more)
		texts = append(texts, more)
		rows++
	}

	l.width = 0
	if len(texts) > 0 {
		l.width = labelX + layout.MaxTextWidth(texts, fontSize)
	}
	l.height = float64(rows) * h
	l.place()
}

func drawSwatch(g *surface.Node, it Item, y float64) {
	switch it.Shape {
	case ShapeLine:
		g.Append("line").
			SetFloat("x1", 2).
			SetFloat("x2", 18).
			SetFloat("y1", y).
			SetFloat("y2", y).
			SetAttr("stroke", it.Color).
			SetAttr("stroke-width", "3")
	case ShapeRect:
		side := math.Sqrt(swatchSize)
		g.Append("rect").
			SetFloat("x", swatchX-side/2).
			SetFloat("y", y-side/2).
			SetFloat("width", side).
			SetFloat("height", side).
			SetAttr("fill", it.Color)
	default:
		g.Append("path").
			SetAttr("d", primitive.ParseSymbol(string(it.Shape)).Path(swatchSize)).
			SetAttr("transform", "translate("+surface.FormatFloat(swatchX)+","+surface.FormatFloat(y)+")").
			SetAttr("fill", it.Color)
	}
}

// Continuous draws a vertical gradient bar for cs with a value axis on its
// right. Low values sit at the bottom.
func (l *Legend) Continuous(cs *scale.SequentialColor) {
	l.items = nil
	l.hidden = 0
	l.content.Clear()
	l.removeGradient()

	d := cs.Domain()
	lo, hi := d.Min, d.Max
	l.gradient = l.defs.Append("linearGradient").
		SetAttr("id", l.gradientID).
		SetAttr("x1", "0").
		SetAttr("x2", "0").
		SetAttr("y1", "100").
		SetAttr("y2", "0")
	for _, t := range gradientStops {
		l.gradient.Append("stop").
			SetAttr("offset", surface.FormatFloat(t*100)).
			SetAttr("stop-color", cs.Color(lo+t*(hi-lo)))
	}

	bw, bl := l.cfg.ContinuousBarWidth, l.cfg.ContinuousBarLength
	l.content.Append("rect").
		SetAttr("class", "legend-bar").
		SetFloat("x", 0).
		SetFloat("y", 0).
		SetFloat("width", bw).
		SetFloat("height", bl).
		SetAttr("fill", "url(#"+l.gradientID+")")

	ax := l.content.Append("g").
		SetAttr("class", "y-axis").
		SetAttr("transform", "translate("+surface.FormatFloat(bw+barAxisGap)+",0)").
		SetAttr("text-anchor", "start")
	ax.Append("path").
		SetAttr("class", "domain").
		SetAttr("stroke", "currentColor").
		SetAttr("fill", "none").
		SetAttr("d", "M"+surface.FormatFloat(barTickSize)+",0H0V"+surface.FormatFloat(bl)+"H"+surface.FormatFloat(barTickSize))

	s := scale.NewLinear(domain.Numeric(lo, hi), bl, 0, false)
	labels := make([]string, 0, barTickCount+1)
	for _, t := range s.Ticks(barTickCount) {
		label := axis.Format(t.Value.(float64))
		g := ax.Append("g").
			SetAttr("class", "tick").
			SetAttr("transform", "translate(0,"+surface.FormatFloat(t.Pos)+")")
		g.Append("line").SetAttr("stroke", "currentColor").SetFloat("x2", barTickSize)
		g.Append("text").
			SetAttr("fill", "currentColor").
			SetFloat("x", barTickSize+3).
			SetAttr("dy", "0.32em").
			SetText(label)
		labels = append(labels, label)
	}

	l.width = bw + barAxisGap + barTickSize + 3 + layout.MaxTextWidth(labels, fontSize)
	l.height = bl
	l.place()
}

// Labels returns the text of the drawn entries, or the tick labels of a
// continuous legend.
func (l *Legend) Labels() []string {
	var out []string
	var walk func(n *surface.Node)
	walk = func(n *surface.Node) {
		for _, c := range n.Children() {
			if c.Tag() == "text" {
				out = append(out, c.Text())
				continue
			}
			walk(c)
		}
	}
	walk(l.content)
	return out
}

// ClearItems removes the categorical entries.
func (l *Legend) ClearItems() {
	l.items = nil
	l.renderItems()
}

// Clear removes everything drawn, including the title and gradient.
func (l *Legend) Clear() {
	l.items = nil
	l.hidden = 0
	l.title = ""
	l.drawTitle()
	l.content.Clear()
	l.removeGradient()
	l.width, l.height = 0, 0
	l.place()
}

// Remove deletes the legend from the surface.
func (l *Legend) Remove() {
	l.removeGradient()
	l.group.Remove()
}

func (l *Legend) removeGradient() {
	if l.gradient != nil {
		l.gradient.Remove()
		l.gradient = nil
	}
}

func (l *Legend) place() {
	w := l.width
	if l.title != "" {
		w = math.Max(w, layout.TextWidth(l.title, fontSize))
	}
	x := l.chartWidth - l.cfg.Right - w
	l.group.SetAttr("transform", "translate("+surface.FormatFloat(x)+","+surface.FormatFloat(l.cfg.Top)+")")
}
