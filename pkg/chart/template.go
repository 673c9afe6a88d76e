package chart

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/brush"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
)

// Template is the chart-type specific part of a chart. The Chart calls
// ConfigureDomainAndScales and then Draw once per drawing pass.
type Template interface {
	// Name identifies the chart type in logs and errors.
	Name() string
	// Defaults is the per-chart-type configuration layer applied between
	// the global defaults and the caller's layers. It may be nil.
	Defaults() config.Layer
	// ShouldInitialize reports whether the chart has enough input to draw.
	// When it returns false the chart stays blank.
	ShouldInitialize(c *Chart) bool
	// ConfigureDomainAndScales resolves the domains and builds the scales,
	// normally through Chart.SetDomainAndScales.
	ConfigureDomainAndScales(c *Chart) error
	// Draw creates the chart's primitives.
	Draw(c *Chart) error
}

// LegendDrawer populates the legend after Draw.
type LegendDrawer interface {
	DrawLegend(c *Chart, l *legend.Legend) error
}

// TooltipDrawer prepares the tooltip after the legend, typically by
// choosing the display keys or adding hover shapes.
type TooltipDrawer interface {
	DrawTooltip(c *Chart, t *tooltip.Tooltip) error
}

// HoverHandler takes over pointer hover from the default hit-test
// tooltip. OnHover returns false to fall back to the default.
type HoverHandler interface {
	OnHover(c *Chart, px, py float64) bool
	OnLeave(c *Chart)
}

// BrushHook runs once the brush exists.
type BrushHook interface {
	OnBrushSetup(c *Chart, b *brush.Brush)
}

// ErrorHandler receives drawing errors and recovered panics before the
// chart is cleaned up.
type ErrorHandler interface {
	OnError(c *Chart, err error)
}

// CleanupHook runs at the end of every cleanup.
type CleanupHook interface {
	OnCleanup(c *Chart)
}

// UpdateHook runs after every replay of the update registry.
type UpdateHook interface {
	OnUpdateChart(c *Chart)
}

// BaseTemplate supplies the default Template behavior. Chart types embed
// it and provide Name and Draw.
type BaseTemplate struct{}

// Defaults returns no layer.
func (BaseTemplate) Defaults() config.Layer { return nil }

// ShouldInitialize always draws.
func (BaseTemplate) ShouldInitialize(*Chart) bool { return true }

// ConfigureDomainAndScales resolves both domains from the x and y keys
// and builds the scales from the configuration.
func (BaseTemplate) ConfigureDomainAndScales(c *Chart) error {
	c.SetDomainAndScales(c.DefaultDomainX(), c.DefaultDomainY(), c.ScaleOptionsX(), c.ScaleOptionsY())
	return nil
}
