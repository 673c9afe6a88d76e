package chart

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/brush"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
)

// zoomToSelection is the brush callback. It reports whether the chart
// zoomed.
func (c *Chart) zoomToSelection(sel brush.Selection) bool {
	return c.ZoomTo(sel.Rect())
}

// ZoomTo narrows both scales to the plot pixel rectangle r and replays
// the update registry. Selections whose area does not exceed the
// configured threshold are ignored, as are charts with a categorical
// scale. Zoomed domains are never niced.
func (c *Chart) ZoomTo(r layout.Rect) bool {
	if c.state != Live {
		return false
	}
	ix, okX := c.scaleX.(scale.Invertible)
	iy, okY := c.scaleY.(scale.Invertible)
	if !okX || !okY {
		c.logger.Warn("chart: zoom needs continuous x and y scales",
			"template", c.tmpl.Name(),
			"x", c.scaleX.Kind().String(),
			"y", c.scaleY.Kind().String())
		return false
	}
	if r.Area() <= c.cfg.Theme.ZoomAreaThreshold {
		c.logger.Debug("chart: selection below zoom threshold", "area", r.Area())
		return false
	}

	dx := domain.Domain{Kind: c.scaleX.Domain().Kind, Min: ix.Invert(r.X), Max: ix.Invert(r.Right())}
	dy := domain.Domain{Kind: c.scaleY.Domain().Kind, Min: iy.Invert(r.Bottom()), Max: iy.Invert(r.Y)}
	scale.SetDomain(c.scaleX, dx, false)
	scale.SetDomain(c.scaleY, dy, false)
	c.logger.Debug("chart: zoomed", "x", dx.String(), "y", dy.String())
	c.UpdateChart()
	return true
}

// resetZoom is the brush's reset callback.
func (c *Chart) resetZoom() {
	if c.state != Live {
		return
	}
	sc := c.cfg.Scale
	if scale.IsContinuous(c.scaleX) {
		scale.SetDomain(c.scaleX, c.domX, sc.NiceX)
	}
	if scale.IsContinuous(c.scaleY) {
		scale.SetDomain(c.scaleY, c.domY, sc.NiceY)
	}
	c.UpdateChart()
}

// ResetZoom restores the domains the chart was drawn with.
func (c *Chart) ResetZoom() {
	if c.brush != nil {
		c.brush.SetZoomed(false)
	}
	c.resetZoom()
}

// EventCoords converts a point in chart pixels to plot pixels or, with
// primitive.Data, to domain values. Temporal values come back as Unix
// milliseconds. When either scale is categorical the point is returned
// in plot pixels with a warning.
func (c *Chart) EventCoords(x, y float64, cs primitive.CoordinateSystem) (float64, float64) {
	px, py := x-c.margin.Left, y-c.margin.Top
	if cs == primitive.Pixel || c.scaleX == nil || c.scaleY == nil {
		return px, py
	}
	ix, okX := c.scaleX.(scale.Invertible)
	iy, okY := c.scaleY.(scale.Invertible)
	if !okX || !okY {
		c.logger.Warn("chart: cannot invert a categorical scale, returning pixels")
		return px, py
	}
	return ix.Invert(px), iy.Invert(py)
}
