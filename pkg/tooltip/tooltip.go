// Package tooltip formats hovered data for display and places the tooltip
// box next to the pointer without letting it leave the chart.
package tooltip

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Missing is shown for absent values.
const Missing = "—"

const (
	fontSize   = 12
	lineHeight = 16
	boxPadding = 6
	columnGap  = 8
)

var printer = message.NewPrinter(language.English)

// Row is one label/value line.
type Row struct {
	Label string
	Value string
}

// Tooltip holds the formatted content and position of the hover tooltip.
type Tooltip struct {
	cfg    config.TooltipConfig
	bounds layout.Size

	visible bool
	rows    []Row
	x, y    float64

	group *surface.Node
}

// New creates a hidden tooltip confined to bounds, the chart size.
func New(cfg config.TooltipConfig, bounds layout.Size) *Tooltip {
	return &Tooltip{cfg: cfg, bounds: bounds}
}

// SetBounds updates the confining size.
func (t *Tooltip) SetBounds(bounds layout.Size) { t.bounds = bounds }

// Enabled reports whether the tooltip is configured on.
func (t *Tooltip) Enabled() bool { return t.cfg.Enabled }

// Keys returns the keys to display, or fallback when none are configured.
func (t *Tooltip) Keys(fallback ...string) []string {
	if len(t.cfg.DisplayKeys) > 0 {
		return t.cfg.DisplayKeys
	}
	return fallback
}

// Visible reports whether the tooltip is shown.
func (t *Tooltip) Visible() bool { return t.visible }

// Content returns the formatted rows.
func (t *Tooltip) Content() []Row { return append([]Row(nil), t.rows...) }

// Position returns the top left corner of the box in chart pixels.
func (t *Tooltip) Position() (float64, float64) { return t.x, t.y }

// Show formats keys of datum and places the box for a pointer at (px, py)
// in chart pixels. format overrides the configured formatter when non-nil.
// A disabled tooltip stays hidden.
func (t *Tooltip) Show(px, py float64, datum value.Record, keys []string, format func(key string, v any) string) {
	if !t.cfg.Enabled {
		return
	}
	if format == nil {
		format = t.cfg.Formatter
	}
	t.rows = t.rows[:0]
	for _, k := range keys {
		v := datum[k]
		var s string
		if format != nil {
			s = format(k, v)
		} else {
			s = Format(v)
		}
		t.rows = append(t.rows, Row{Label: k, Value: s})
	}
	t.place(px, py)
	t.visible = true
	t.draw()
}

// Move repositions a visible tooltip without changing its content.
func (t *Tooltip) Move(px, py float64) {
	if !t.visible {
		return
	}
	t.place(px, py)
	t.draw()
}

// Hide hides the tooltip. The content is kept.
func (t *Tooltip) Hide() {
	t.visible = false
	if t.group != nil {
		t.group.SetAttr("opacity", "0")
	}
}

// Size returns the box size for the current content.
func (t *Tooltip) Size() layout.Size {
	if len(t.rows) == 0 {
		return layout.Size{}
	}
	var w float64
	for _, r := range t.rows {
		w = math.Max(w, layout.TextWidth(r.Label, fontSize)+columnGap+layout.TextWidth(r.Value, fontSize))
	}
	return layout.Size{
		Width:  w + 2*boxPadding,
		Height: float64(len(t.rows))*lineHeight + 2*boxPadding,
	}
}

// place puts the box at the pointer plus the offsets, flipping to the
// other side of the pointer when it would overflow the right or bottom
// edge and clamping to the top left padding.
func (t *Tooltip) place(px, py float64) {
	sz := t.Size()
	pad := t.cfg.EdgePadding

	x := px + t.cfg.OffsetX
	if x+sz.Width > t.bounds.Width-pad {
		x = px - sz.Width - t.cfg.OffsetX
	}
	x = math.Max(x, pad)

	y := py + t.cfg.OffsetY
	if y+sz.Height > t.bounds.Height-pad {
		y = py - sz.Height - t.cfg.OffsetY
	}
	y = math.Max(y, pad)

	t.x, t.y = x, y
}

// --- drawing ---

// Attach draws the tooltip into parent as a group that follows Show and
// Hide. It starts hidden.
func (t *Tooltip) Attach(parent *surface.Node) *surface.Node {
	if t.group != nil {
		t.group.Remove()
	}
	t.group = parent.Append("g").
		SetAttr("class", "tooltip").
		SetAttr("pointer-events", "none").
		SetAttr("font-size", surface.FormatFloat(fontSize)).
		SetAttr("opacity", "0")
	if t.visible {
		t.draw()
	}
	return t.group
}

// Detach removes the drawn group.
func (t *Tooltip) Detach() {
	if t.group != nil {
		t.group.Remove()
		t.group = nil
	}
}

func (t *Tooltip) draw() {
	if t.group == nil {
		return
	}
	t.group.Clear()
	sz := t.Size()
	t.group.
		SetAttr("transform", "translate("+surface.FormatFloat(t.x)+","+surface.FormatFloat(t.y)+")").
		SetAttr("opacity", "1")
	t.group.Append("rect").
		SetAttr("class", "tooltip-box").
		SetFloat("width", sz.Width).
		SetFloat("height", sz.Height).
		SetAttr("rx", "4").
		SetAttr("fill", "#ffffff").
		SetAttr("fill-opacity", "0.95").
		SetAttr("stroke", "#cccccc")
	for i, r := range t.rows {
		y := boxPadding + float64(i)*lineHeight + lineHeight/2
		row := t.group.Append("text").
			SetAttr("class", "tooltip-row").
			SetFloat("x", boxPadding).
			SetFloat("y", y).
			SetAttr("dominant-baseline", "middle")
		row.Append("tspan").SetAttr("class", "tooltip-label").SetAttr("font-weight", "bold").SetText(r.Label)
		row.Append("tspan").SetAttr("class", "tooltip-value").SetAttr("dx", surface.FormatFloat(columnGap)).SetText(r.Value)
	}
}

// --- formatting ---

// Format is the default value format: a dash for missing values, the date
// for times, grouped integers, numbers rounded to four decimals, Yes/No for
// booleans and the plain string otherwise.
func Format(v any) string {
	if v == nil {
		return Missing
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format("1/2/2006")
	case *time.Time:
		if x == nil {
			return Missing
		}
		return x.Format("1/2/2006")
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	}
	if value.KindOf(v) == value.Numeric {
		f, _ := value.Float(v)
		return formatNumber(f)
	}
	return value.Label(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	case f == math.Trunc(f) && math.Abs(f) < 1<<53:
		return printer.Sprintf("%d", int64(f))
	}
	r := math.Round(f*1e4) / 1e4
	return printer.Sprintf("%v", number.Decimal(r, number.MaxFractionDigits(4)))
}
