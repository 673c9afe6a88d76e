package chart

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// EventType is the kind of pointer event.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
	PointerLeave
	Click
)

func (t EventType) String() string {
	switch t {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case PointerLeave:
		return "pointerleave"
	case Click:
		return "click"
	default:
		return "unknown"
	}
}

// Event is a pointer event in chart pixels, relative to the top left of
// the whole chart.
type Event struct {
	Type EventType
	X, Y float64
}

// HandleEvent routes a pointer event to the brush and the hover tooltip.
// It reports whether the event changed anything.
func (c *Chart) HandleEvent(ev Event) bool {
	if c.state != Live {
		return false
	}
	px, py := ev.X-c.margin.Left, ev.Y-c.margin.Top

	switch ev.Type {
	case PointerDown:
		if c.brush != nil && c.brush.Start(px, py) {
			c.hideTooltip()
			return true
		}
		return false
	case PointerMove:
		if c.brush != nil && c.brush.Brushing() {
			c.brush.Move(px, py)
			return true
		}
		return c.hover(ev.X, ev.Y, px, py)
	case PointerUp:
		if c.brush != nil && c.brush.Brushing() {
			c.brush.End()
			return true
		}
		return false
	case PointerLeave:
		if c.brush != nil {
			c.brush.Cancel()
		}
		if h, ok := c.tmpl.(HoverHandler); ok {
			h.OnLeave(c)
		}
		return c.hideTooltip()
	case Click:
		return c.hover(ev.X, ev.Y, px, py)
	}
	return false
}

// hover shows the tooltip for the shape under the pointer. Templates that
// implement HoverHandler get the first chance.
func (c *Chart) hover(x, y, px, py float64) bool {
	if h, ok := c.tmpl.(HoverHandler); ok && h.OnHover(c, px, py) {
		return true
	}
	if c.tooltip == nil || c.engine == nil {
		return false
	}
	if !c.PlotRect().Contains(px, py) {
		return c.hideTooltip()
	}
	hit, ok := c.engine.HitTest(px, py)
	if !ok {
		return c.hideTooltip()
	}
	rec, ok := hit.Datum.(value.Record)
	if !ok {
		return c.hideTooltip()
	}
	c.tooltip.Show(x, y, rec, c.TooltipKeys(), nil)
	return true
}

// TooltipKeys returns the keys shown for a hovered record: those set by
// the template, else the configured display keys, else the x and y keys.
func (c *Chart) TooltipKeys() []string {
	if len(c.tooltipKeys) > 0 {
		return c.tooltipKeys
	}
	var fallback []string
	for _, k := range []string{c.props.XKey, c.props.YKey} {
		if k != "" {
			fallback = append(fallback, k)
		}
	}
	if c.tooltip == nil {
		return fallback
	}
	return c.tooltip.Keys(fallback...)
}

func (c *Chart) hideTooltip() bool {
	if c.tooltip == nil || !c.tooltip.Visible() {
		return false
	}
	c.tooltip.Hide()
	return true
}
