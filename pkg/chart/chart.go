// Package chart drives the life of one chart: measuring, assembling the
// configuration, drawing through a Template, replaying update callbacks
// after zoom, and tearing everything down again.
//
// A Chart is owned by one goroutine. Image completions from the loader
// are queued and applied by Dispatch on that goroutine.
package chart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/axis"
	"gitlab.com/tinyland/lab/chartkit/pkg/brush"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/image"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/theme"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// ErrDestroyed is returned by operations on a destroyed chart.
var ErrDestroyed = errors.New("chart: destroyed")

// State is the lifecycle state of a chart.
type State int

const (
	Uninitialized State = iota
	Measuring
	Configuring
	Drawing
	Live
	Reconfiguring
	Destroyed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Measuring:
		return "measuring"
	case Configuring:
		return "configuring"
	case Drawing:
		return "drawing"
	case Live:
		return "live"
	case Reconfiguring:
		return "reconfiguring"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Props are the caller's inputs. They are compared by identity: a new
// Data or Config slice triggers a redraw, mutating one in place does not.
type Props struct {
	Data   []value.Record
	XKey   string
	YKey   string
	Config []config.Layer
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func propsChanged(a, b Props) bool {
	return a.XKey != b.XKey ||
		a.YKey != b.YKey ||
		!sameSlice(a.Data, b.Data) ||
		!sameSlice(a.Config, b.Config)
}

// Option configures a Chart.
type Option func(*Chart)

// WithLogger sets the logger for the chart and everything it creates.
func WithLogger(l *slog.Logger) Option {
	return func(c *Chart) { c.logger = l }
}

// WithErrorHandler sets the function receiving drawing errors when the
// template does not implement ErrorHandler.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Chart) { c.onError = fn }
}

// WithLoader shares an image loader between charts. The chart does not
// close it.
func WithLoader(l *image.Loader) Option {
	return func(c *Chart) { c.loader = l }
}

// WithStateHook observes every state transition.
func WithStateHook(fn func(from, to State)) Option {
	return func(c *Chart) { c.onState = fn }
}

var clipSeq atomic.Uint64

// Chart is one chart instance.
type Chart struct {
	tmpl    Template
	props   Props
	logger  *slog.Logger
	onError func(error)
	onState func(from, to State)
	loader  *image.Loader

	state     State
	mounted   bool
	visible   bool
	container layout.Size
	width     float64
	height    float64

	cfg      *config.Config
	margin   layout.Insets
	plotW    float64
	plotH    float64
	resolver *domain.Resolver
	registry *Registry

	surface  *surface.Surface
	plotArea *surface.Node
	plot     *surface.Node
	clipID   string

	engine      *primitive.Engine
	domX, domY  domain.Domain
	scaleX      scale.Scale
	scaleY      scale.Scale
	axes        *axis.Axes
	brush       *brush.Brush
	interaction *surface.Node
	legend      *legend.Legend
	tooltip     *tooltip.Tooltip
	tooltipKeys []string
}

// New creates an unmounted chart.
func New(t Template, props Props, opts ...Option) *Chart {
	c := &Chart{
		tmpl:     t,
		props:    props,
		registry: NewRegistry(),
		clipID:   "clip-" + strconv.FormatUint(clipSeq.Add(1), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.resolver = domain.NewResolver(c.logger)
	return c
}

// --- lifecycle ---

// Mount measures container and draws the chart if the template is ready.
// A drawing error is reported to the error hook, leaves the chart blank
// and is also returned.
func (c *Chart) Mount(container layout.Size) error {
	if c.state == Destroyed {
		return ErrDestroyed
	}
	c.mounted = true
	c.container = container
	if !c.tmpl.ShouldInitialize(c) {
		return nil
	}
	return c.initialize()
}

// SetProps replaces the props. When any prop changed by identity the
// chart is redrawn from scratch, or blanked when the template is no
// longer ready.
func (c *Chart) SetProps(p Props) error {
	if c.state == Destroyed {
		return ErrDestroyed
	}
	if !propsChanged(c.props, p) {
		return nil
	}
	c.props = p
	if !c.mounted {
		return nil
	}
	if c.tmpl.ShouldInitialize(c) {
		return c.initialize()
	}
	c.Cleanup()
	return nil
}

// Resize handles a new container size. Nothing happens unless the
// rounded chart size changes; a chart that no longer wants to initialize
// is torn down to a blank state.
func (c *Chart) Resize(container layout.Size) error {
	if c.state == Destroyed {
		return ErrDestroyed
	}
	if !c.mounted {
		c.container = container
		return nil
	}
	w, h := c.measure(c.buildConfig(), container)
	if math.Round(w) == math.Round(c.width) && math.Round(h) == math.Round(c.height) {
		return nil
	}
	c.container = container
	if c.tmpl.ShouldInitialize(c) {
		return c.initialize()
	}
	c.Cleanup()
	return nil
}

// Destroy cleans up and makes the chart unusable.
func (c *Chart) Destroy() {
	if c.state == Destroyed {
		return
	}
	c.Cleanup()
	c.setState(Destroyed)
}

// Cleanup interrupts transitions, hides the tooltip, clears the surface
// and legend, empties the update registry and closes the primitive
// engine. It is safe to call any number of times.
func (c *Chart) Cleanup() {
	c.teardown()
	if c.state != Destroyed {
		c.setState(Uninitialized)
	}
}

func (c *Chart) teardown() {
	if c.surface != nil {
		c.surface.Interrupt()
	}
	if c.tooltip != nil {
		c.tooltip.Hide()
	}
	if c.brush != nil {
		c.brush.Cancel()
	}
	if c.engine != nil {
		c.engine.Close()
	}
	if c.legend != nil {
		c.legend.Clear()
	}
	if c.surface != nil {
		c.surface.Clear()
	}
	c.registry.Clear()

	c.engine = nil
	c.axes = nil
	c.brush = nil
	c.interaction = nil
	c.legend = nil
	c.tooltip = nil
	c.tooltipKeys = nil
	c.plotArea = nil
	c.plot = nil
	c.visible = false

	if h, ok := c.tmpl.(CleanupHook); ok {
		h.OnCleanup(c)
	}
}

func (c *Chart) setState(s State) {
	if s == c.state {
		return
	}
	from := c.state
	c.state = s
	if c.onState != nil {
		c.onState(from, s)
	}
}

// initialize runs a full measuring, configuring and drawing pass.
func (c *Chart) initialize() error {
	if c.state == Live {
		c.setState(Reconfiguring)
	}
	c.teardown()

	c.setState(Measuring)
	base := c.buildConfig()
	c.width, c.height = c.measure(base, c.container)

	c.setState(Configuring)
	c.cfg = base
	c.cfg = base.WithMargins(c.autoMargins(base))
	c.margin = c.cfg.Margin.Insets()
	c.logger.Debug("chart: configured",
		"template", c.tmpl.Name(),
		"width", c.width,
		"height", c.height,
		"margin", fmt.Sprintf("%+v", c.margin))

	return c.drawChart()
}

func (c *Chart) buildConfig() *config.Config {
	layers := make([]config.Layer, 0, len(c.props.Config)+1)
	layers = append(layers, c.tmpl.Defaults())
	layers = append(layers, c.props.Config...)
	return config.Build(config.Default(), layers...)
}

// measure returns the chart size: configured dimensions win over the
// container, and a missing height follows the aspect ratio.
func (c *Chart) measure(cfg *config.Config, container layout.Size) (float64, float64) {
	w := container.Width
	if cfg.Dimensions.Width > 0 {
		w = cfg.Dimensions.Width
	}
	h := w * cfg.Dimensions.HeightToWidthRatio
	if cfg.Dimensions.Height > 0 {
		h = cfg.Dimensions.Height
	}
	return w, h
}

// autoMargins sizes the margins from labels, categorical tick labels and
// the legend, unless the caller fixed any side.
func (c *Chart) autoMargins(cfg *config.Config) layout.Insets {
	if !cfg.Margin.Auto || cfg.Margin.Explicit() {
		return cfg.Margin.Insets()
	}
	quiet := domain.NewResolver(slog.New(slog.DiscardHandler))
	dx := quiet.Resolve(c.valuesX(), c.domainOptionsX())
	dy := quiet.Resolve(c.valuesY(), c.domainOptionsY())
	metrics := func(d domain.Domain, label string, offset float64) layout.AxisMetrics {
		m := layout.AxisMetrics{HasLabel: label != "", LabelOffset: offset}
		if d.IsCategorical() {
			m.Categorical = true
			m.Categories = d.Categories
		}
		return m
	}
	return layout.AutoMargins(layout.AutoMarginInput{
		X:        metrics(dx, c.AxisLabelX(), cfg.Axis.LabelOffsetX),
		Y:        metrics(dy, c.AxisLabelY(), cfg.Axis.LabelOffsetY),
		Legend:   cfg.Legend.Enabled,
		TickSize: cfg.Axis.TickSize,
		FontSize: cfg.Axis.FontSize,
	})
}

// drawChart builds the surface and runs every drawing step. Any error or
// panic is reported and followed by a cleanup so that no half-drawn chart
// survives.
func (c *Chart) drawChart() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("chart: %s: panic: %w", c.tmpl.Name(), e)
			} else {
				err = fmt.Errorf("chart: %s: panic: %v", c.tmpl.Name(), r)
			}
		}
		if err != nil {
			c.handleDrawError(err)
			c.Cleanup()
		}
	}()

	c.setState(Drawing)
	c.initializePlot()
	c.setupPrimitives()
	if err := c.tmpl.ConfigureDomainAndScales(c); err != nil {
		return fmt.Errorf("chart: %s: configure scales: %w", c.tmpl.Name(), err)
	}
	if c.scaleX == nil || c.scaleY == nil {
		return fmt.Errorf("chart: %s: scales not configured", c.tmpl.Name())
	}
	c.setupAxes()
	c.setupBrush()
	c.setupInteractionSurface()
	if err := c.tmpl.Draw(c); err != nil {
		return fmt.Errorf("chart: %s: draw: %w", c.tmpl.Name(), err)
	}
	if err := c.setupLegend(); err != nil {
		return fmt.Errorf("chart: %s: legend: %w", c.tmpl.Name(), err)
	}
	if err := c.setupTooltip(); err != nil {
		return fmt.Errorf("chart: %s: tooltip: %w", c.tmpl.Name(), err)
	}

	c.setState(Live)
	c.visible = true
	return nil
}

func (c *Chart) handleDrawError(err error) {
	c.logger.Error("chart: draw failed", "template", c.tmpl.Name(), "error", err)
	if h, ok := c.tmpl.(ErrorHandler); ok {
		h.OnError(c, err)
		return
	}
	if c.onError != nil {
		c.onError(err)
	}
}

func (c *Chart) initializePlot() {
	if c.surface == nil {
		c.surface = surface.New(c.width, c.height)
	} else {
		c.surface.Clear()
		c.surface.Resize(c.width, c.height)
	}
	frame := layout.Frame(c.Size(), c.margin)
	c.plotW, c.plotH = frame.Width, frame.Height

	c.surface.Defs().Append("clipPath").
		SetAttr("id", c.clipID).
		Append("rect").
		SetFloat("x", 0).
		SetFloat("y", 0).
		SetFloat("width", c.plotW).
		SetFloat("height", c.plotH)
	c.plotArea = c.surface.Root().Append("g").
		SetAttr("class", "plot-area").
		SetAttr("transform", "translate("+surface.FormatFloat(c.margin.Left)+","+surface.FormatFloat(c.margin.Top)+")")
	c.plot = c.plotArea.Append("g").
		SetAttr("class", "plot").
		SetAttr("clip-path", "url(#"+c.clipID+")")
}

func (c *Chart) setupPrimitives() {
	c.engine = primitive.NewEngine(c, c.plot, c.surface.Defs(), c.logger)
	if c.loader != nil {
		c.engine.UseLoader(c.loader)
	}
}

func (c *Chart) setupAxes() {
	ac := c.cfg.Axis
	if !ac.ShowAxisX && !ac.ShowAxisY && !ac.ShowGridX && !ac.ShowGridY {
		return
	}
	c.axes = axis.New(c.plotArea, c.plotW, c.plotH, ac)
	c.axes.Draw(c.scaleX, c.scaleY)
	c.axes.SetLabels(c.AxisLabelX(), c.AxisLabelY(), c.margin.Bottom, c.margin.Left)
	c.registry.Register(func() {
		c.axes.Update(c.scaleX, c.scaleY, c.TransitionDuration())
	})
}

func (c *Chart) setupBrush() {
	if !c.cfg.Theme.EnableZoom {
		return
	}
	extent := layout.Rect{Width: c.plotW, Height: c.plotH}
	c.brush = brush.New(extent, c.zoomToSelection, c.resetZoom)
	if h, ok := c.tmpl.(BrushHook); ok {
		h.OnBrushSetup(c, c.brush)
	}
}

// setupInteractionSurface puts the pointer target in the interaction
// layer: the brush overlay when zooming is enabled, a transparent
// rectangle otherwise.
func (c *Chart) setupInteractionSurface() {
	layer := c.engine.CreateLayer(primitive.InteractionLayer, primitive.InteractionZ)
	if c.brush != nil {
		c.interaction = c.brush.Attach(layer).Children()[0]
	} else {
		c.interaction = layer.Append("rect").
			SetAttr("class", "interaction-surface").
			SetFloat("width", c.plotW).
			SetFloat("height", c.plotH).
			SetAttr("fill", "none").
			SetAttr("pointer-events", "all")
	}
	c.engine.SortLayers()
}

func (c *Chart) setupLegend() error {
	if !c.cfg.Legend.Enabled {
		return nil
	}
	lc := c.cfg.Legend
	if lc.MaxHeight <= 0 {
		lc.MaxHeight = c.plotH
	}
	c.legend = legend.New(c.surface.Root(), c.surface.Defs(), c.width, lc)
	if d, ok := c.tmpl.(LegendDrawer); ok {
		return d.DrawLegend(c, c.legend)
	}
	return nil
}

func (c *Chart) setupTooltip() error {
	if !c.cfg.Tooltip.Enabled {
		return nil
	}
	c.tooltip = tooltip.New(c.cfg.Tooltip, layout.Size{Width: c.width, Height: c.height})
	c.tooltip.Attach(c.surface.Root())
	c.tooltip.Hide()
	if d, ok := c.tmpl.(TooltipDrawer); ok {
		return d.DrawTooltip(c, c.tooltip)
	}
	return nil
}

// --- updates ---

// UpdateChart replays the update registry, then the template's update
// hook.
func (c *Chart) UpdateChart() {
	c.registry.Replay()
	if h, ok := c.tmpl.(UpdateHook); ok {
		h.OnUpdateChart(c)
	}
}

// Dispatch applies queued image completions. Call it from the goroutine
// that owns the chart.
func (c *Chart) Dispatch() int {
	if c.engine == nil {
		return 0
	}
	return c.engine.Dispatch()
}

// WaitImages waits for pending image loads and applies them.
func (c *Chart) WaitImages(ctx context.Context) error {
	if c.engine == nil {
		return nil
	}
	return c.engine.WaitImages(ctx)
}

// --- primitive.Host ---

// ScaleX returns the active x scale.
func (c *Chart) ScaleX() scale.Scale { return c.scaleX }

// ScaleY returns the active y scale.
func (c *Chart) ScaleY() scale.Scale { return c.scaleY }

// PlotSize returns the plot area size in pixels.
func (c *Chart) PlotSize() (float64, float64) { return c.plotW, c.plotH }

// TransitionDuration returns the configured transition length.
func (c *Chart) TransitionDuration() time.Duration {
	if c.cfg == nil {
		return 0
	}
	return c.cfg.Theme.TransitionDuration.Duration
}

// Register adds an update callback.
func (c *Chart) Register(fn func()) int { return c.registry.Register(fn) }

// Unregister removes an update callback.
func (c *Chart) Unregister(id int) { c.registry.Unregister(id) }

// --- accessors ---

func (c *Chart) Template() Template            { return c.tmpl }
func (c *Chart) Props() Props                  { return c.props }
func (c *Chart) State() State                  { return c.state }
func (c *Chart) Visible() bool                 { return c.visible }
func (c *Chart) Logger() *slog.Logger          { return c.logger }
func (c *Chart) Registry() *Registry           { return c.registry }
func (c *Chart) Surface() *surface.Surface     { return c.surface }
func (c *Chart) Plot() *surface.Node           { return c.plot }
func (c *Chart) Engine() *primitive.Engine     { return c.engine }
func (c *Chart) Axes() *axis.Axes              { return c.axes }
func (c *Chart) Brush() *brush.Brush           { return c.brush }
func (c *Chart) Legend() *legend.Legend        { return c.legend }
func (c *Chart) Tooltip() *tooltip.Tooltip     { return c.tooltip }
func (c *Chart) Interaction() *surface.Node    { return c.interaction }
func (c *Chart) Margin() layout.Insets         { return c.margin }
func (c *Chart) DomainX() domain.Domain        { return c.domX }
func (c *Chart) DomainY() domain.Domain        { return c.domY }
func (c *Chart) Size() layout.Size             { return layout.Size{Width: c.width, Height: c.height} }
func (c *Chart) ClipID() string                { return c.clipID }
func (c *Chart) Container() layout.Size        { return c.container }
func (c *Chart) Data() []value.Record          { return c.props.Data }
func (c *Chart) PlotRect() layout.Rect         { return layout.Rect{Width: c.plotW, Height: c.plotH} }
func (c *Chart) Resolver() *domain.Resolver    { return c.resolver }
func (c *Chart) SetTooltipKeys(keys ...string) { c.tooltipKeys = slices.Clone(keys) }

// Config returns the configuration of the current pass, margins included.
// Before the first pass it is the assembled configuration without them.
func (c *Chart) Config() *config.Config {
	if c.cfg == nil {
		return c.buildConfig()
	}
	return c.cfg
}

// AxisLabelX is the configured x label, defaulting to the x key.
func (c *Chart) AxisLabelX() string {
	if l := c.Config().Axis.LabelX; l != nil {
		return *l
	}
	return c.props.XKey
}

// AxisLabelY is the configured y label, defaulting to the y key.
func (c *Chart) AxisLabelY() string {
	if l := c.Config().Axis.LabelY; l != nil {
		return *l
	}
	return c.props.YKey
}

// --- domains and scales ---

func (c *Chart) valuesX() []any {
	if c.props.XKey == "" {
		return nil
	}
	return value.Column(c.props.Data, c.props.XKey)
}

func (c *Chart) valuesY() []any {
	if c.props.YKey == "" {
		return nil
	}
	return value.Column(c.props.Data, c.props.YKey)
}

func domainOptions(override *config.DomainSpec, fallback config.DomainSpec, padding float64, log bool) domain.Options {
	opts := domain.Options{Padding: padding, Log: log}
	if override != nil {
		if d, ok := override.Domain(); ok {
			opts.Override = &d
		}
	}
	if d, ok := fallback.Domain(); ok {
		opts.Fallback = &d
	}
	return opts
}

func (c *Chart) domainOptionsX() domain.Options {
	cfg := c.Config()
	return domainOptions(cfg.Domain.DomainX, cfg.Domain.DefaultDomainX, cfg.Domain.PaddingX, cfg.Scale.LogX)
}

func (c *Chart) domainOptionsY() domain.Options {
	cfg := c.Config()
	return domainOptions(cfg.Domain.DomainY, cfg.Domain.DefaultDomainY, cfg.Domain.PaddingY, cfg.Scale.LogY)
}

// DefaultDomainX resolves the x domain from the x key, honouring the
// configured override, padding and fallback.
func (c *Chart) DefaultDomainX() domain.Domain {
	return c.resolver.Resolve(c.valuesX(), c.domainOptionsX())
}

// DefaultDomainY resolves the y domain from the y key.
func (c *Chart) DefaultDomainY() domain.Domain {
	return c.resolver.Resolve(c.valuesY(), c.domainOptionsY())
}

// ResolveDomain resolves values with the x (or y) axis settings. An
// override configured for the axis still wins.
func (c *Chart) ResolveDomain(values []any, yAxis bool) domain.Domain {
	if yAxis {
		return c.resolver.Resolve(values, c.domainOptionsY())
	}
	return c.resolver.Resolve(values, c.domainOptionsX())
}

// DomainOverride returns the configured domain for an axis, if any.
func (c *Chart) DomainOverride(yAxis bool) (domain.Domain, bool) {
	spec := c.Config().Domain.DomainX
	if yAxis {
		spec = c.Config().Domain.DomainY
	}
	if spec == nil {
		return domain.Domain{}, false
	}
	return spec.Domain()
}

// ScaleOptionsX returns the configured x scale options.
func (c *Chart) ScaleOptionsX() scale.Options {
	sc := c.Config().Scale
	return scale.Options{Log: sc.LogX, Nice: sc.NiceX, Logger: c.logger}
}

// ScaleOptionsY returns the configured y scale options.
func (c *Chart) ScaleOptionsY() scale.Options {
	sc := c.Config().Scale
	return scale.Options{Log: sc.LogY, Nice: sc.NiceY, Logger: c.logger}
}

// SetDomainAndScales stores the original domains and builds the scales
// over the plot area. Continuous y scales grow upwards; band y scales run
// top to bottom.
func (c *Chart) SetDomainAndScales(dx, dy domain.Domain, ox, oy scale.Options) {
	c.domX, c.domY = dx, dy
	c.scaleX = scale.New(dx, 0, c.plotW, ox)
	if dy.IsCategorical() {
		c.scaleY = scale.New(dy, 0, c.plotH, oy)
	} else {
		c.scaleY = scale.New(dy, c.plotH, 0, oy)
	}
}

// ColorScale builds a color scale over d from the configured schemes:
// the categorical scheme for categories, the continuous one otherwise.
func (c *Chart) ColorScale(d domain.Domain) scale.ColorScale {
	cc := c.Config().Color
	scheme := theme.Get(cc.CategoricalScheme)
	if d.IsContinuous() {
		scheme = theme.Sequential(cc.ContinuousScheme)
	}
	return scale.NewColorScale(d, scheme, cc.DefaultColor)
}
