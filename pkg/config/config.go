// Package config provides the layered chart configuration for chartkit.
//
// A Config is assembled once per configuring pass: Build copies a base
// (normally Default()) and applies Layers left to right. Layers can come
// from Go code, TOML or YAML documents, environment variables, or the
// per-chart presets.
package config

import (
	"slices"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Config is the full chart configuration.
type Config struct {
	Margin     MarginConfig     `toml:"margin" yaml:"margin"`
	Dimensions DimensionsConfig `toml:"dimensions" yaml:"dimensions"`
	Theme      ThemeConfig      `toml:"theme" yaml:"theme"`
	Domain     DomainConfig     `toml:"domain" yaml:"domain"`
	Scale      ScaleConfig      `toml:"scale" yaml:"scale"`
	Axis       AxisConfig       `toml:"axis" yaml:"axis"`
	Legend     LegendConfig     `toml:"legend" yaml:"legend"`
	Tooltip    TooltipConfig    `toml:"tooltip" yaml:"tooltip"`
	Color      ColorConfig      `toml:"color" yaml:"color"`
}

// MarginConfig holds the plot margins in pixels. Nil sides are unset and
// take the preset value; any set side disables auto-margins.
type MarginConfig struct {
	Top    *float64 `toml:"top,omitempty" yaml:"top,omitempty"`
	Bottom *float64 `toml:"bottom,omitempty" yaml:"bottom,omitempty"`
	Left   *float64 `toml:"left,omitempty" yaml:"left,omitempty"`
	Right  *float64 `toml:"right,omitempty" yaml:"right,omitempty"`
	Auto   bool     `toml:"auto" yaml:"auto"`
}

// Explicit reports whether any side was set by the caller.
func (m MarginConfig) Explicit() bool {
	return m.Top != nil || m.Bottom != nil || m.Left != nil || m.Right != nil
}

// Insets returns the margins with unset sides filled from the presets.
func (m MarginConfig) Insets() layout.Insets {
	in := layout.Insets{
		Top:    layout.MarginTop,
		Bottom: layout.MarginBottom,
		Left:   layout.MarginLeft,
		Right:  layout.MarginRight,
	}
	if m.Top != nil {
		in.Top = *m.Top
	}
	if m.Bottom != nil {
		in.Bottom = *m.Bottom
	}
	if m.Left != nil {
		in.Left = *m.Left
	}
	if m.Right != nil {
		in.Right = *m.Right
	}
	return in
}

// DimensionsConfig fixes the chart size. Zero width follows the container;
// zero height is width * HeightToWidthRatio.
type DimensionsConfig struct {
	Width              float64 `toml:"width" yaml:"width"`
	Height             float64 `toml:"height" yaml:"height"`
	HeightToWidthRatio float64 `toml:"height_to_width_ratio" yaml:"height_to_width_ratio"`
}

// ThemeConfig holds presentation and interaction settings.
type ThemeConfig struct {
	Opacity            float64  `toml:"opacity" yaml:"opacity"`
	TransitionDuration Duration `toml:"transition_duration" yaml:"transition_duration"`
	EnableZoom         bool     `toml:"enable_zoom" yaml:"enable_zoom"`
	ZoomAreaThreshold  float64  `toml:"zoom_area_threshold" yaml:"zoom_area_threshold"`
}

// DomainConfig controls domain inference. DomainX and DomainY override
// inference entirely; the defaults are used when inference fails.
type DomainConfig struct {
	PaddingX       float64     `toml:"padding_x" yaml:"padding_x"`
	PaddingY       float64     `toml:"padding_y" yaml:"padding_y"`
	DomainX        *DomainSpec `toml:"domain_x,omitempty" yaml:"domain_x,omitempty"`
	DomainY        *DomainSpec `toml:"domain_y,omitempty" yaml:"domain_y,omitempty"`
	DefaultDomainX DomainSpec  `toml:"default_domain_x" yaml:"default_domain_x"`
	DefaultDomainY DomainSpec  `toml:"default_domain_y" yaml:"default_domain_y"`
}

// DomainSpec is the serializable form of a domain. Exactly one of the
// fields is expected to be set.
type DomainSpec struct {
	Categories []string    `toml:"categories,omitempty" yaml:"categories,omitempty"`
	Extent     []float64   `toml:"extent,omitempty" yaml:"extent,omitempty"`
	Dates      []time.Time `toml:"dates,omitempty" yaml:"dates,omitempty"`
}

// Extent returns a numeric domain spec.
func Extent(min, max float64) *DomainSpec {
	return &DomainSpec{Extent: []float64{min, max}}
}

// Categories returns a categorical domain spec.
func Categories(cats ...string) *DomainSpec {
	return &DomainSpec{Categories: slices.Clone(cats)}
}

// Dates returns a temporal domain spec.
func Dates(min, max time.Time) *DomainSpec {
	return &DomainSpec{Dates: []time.Time{min, max}}
}

// Domain converts the spec. It reports false when the spec is empty or
// malformed.
func (s DomainSpec) Domain() (domain.Domain, bool) {
	switch {
	case s.Categories != nil:
		return domain.Categorical(s.Categories...), true
	case len(s.Dates) == 2:
		return domain.Temporal(s.Dates[0], s.Dates[1]), true
	case len(s.Extent) == 2:
		return domain.Numeric(s.Extent[0], s.Extent[1]), true
	default:
		return domain.Domain{}, false
	}
}

// Spec converts a domain back to its serializable form.
func Spec(d domain.Domain) DomainSpec {
	switch {
	case d.IsCategorical():
		return DomainSpec{Categories: slices.Clone(d.Categories)}
	case d.Kind == value.Temporal:
		a, b := d.Times()
		return DomainSpec{Dates: []time.Time{a, b}}
	default:
		return DomainSpec{Extent: []float64{d.Min, d.Max}}
	}
}

func (s DomainSpec) clone() DomainSpec {
	return DomainSpec{
		Categories: slices.Clone(s.Categories),
		Extent:     slices.Clone(s.Extent),
		Dates:      slices.Clone(s.Dates),
	}
}

// ScaleConfig selects log scales and nice rounding per axis.
type ScaleConfig struct {
	LogX  bool `toml:"log_x" yaml:"log_x"`
	LogY  bool `toml:"log_y" yaml:"log_y"`
	NiceX bool `toml:"nice_x" yaml:"nice_x"`
	NiceY bool `toml:"nice_y" yaml:"nice_y"`
}

// AxisConfig controls axis and grid rendering. A nil label defaults to the
// chart's key for that axis; an empty label hides it.
type AxisConfig struct {
	ShowAxisX    bool    `toml:"show_axis_x" yaml:"show_axis_x"`
	ShowAxisY    bool    `toml:"show_axis_y" yaml:"show_axis_y"`
	ShowGridX    bool    `toml:"show_grid_x" yaml:"show_grid_x"`
	ShowGridY    bool    `toml:"show_grid_y" yaml:"show_grid_y"`
	LabelX       *string `toml:"label_x,omitempty" yaml:"label_x,omitempty"`
	LabelY       *string `toml:"label_y,omitempty" yaml:"label_y,omitempty"`
	TickCount    int     `toml:"tick_count" yaml:"tick_count"`
	TickSize     float64 `toml:"tick_size" yaml:"tick_size"`
	FontSize     float64 `toml:"font_size" yaml:"font_size"`
	LabelOffsetX float64 `toml:"label_offset_x" yaml:"label_offset_x"`
	LabelOffsetY float64 `toml:"label_offset_y" yaml:"label_offset_y"`
	GridColor    string  `toml:"grid_color" yaml:"grid_color"`

	FormatX func(v any) string `toml:"-" yaml:"-"`
	FormatY func(v any) string `toml:"-" yaml:"-"`
}

// LegendConfig controls the legend. Position offsets are measured from the
// top right corner of the chart.
type LegendConfig struct {
	Enabled               bool    `toml:"enabled" yaml:"enabled"`
	Title                 string  `toml:"title" yaml:"title"`
	MaxHeight             float64 `toml:"max_height" yaml:"max_height"`
	Top                   float64 `toml:"top" yaml:"top"`
	Right                 float64 `toml:"right" yaml:"right"`
	CategoricalItemHeight float64 `toml:"categorical_item_height" yaml:"categorical_item_height"`
	ContinuousBarWidth    float64 `toml:"continuous_bar_width" yaml:"continuous_bar_width"`
	ContinuousBarLength   float64 `toml:"continuous_bar_length" yaml:"continuous_bar_length"`
}

// TooltipConfig controls tooltip content and placement.
type TooltipConfig struct {
	Enabled     bool     `toml:"enabled" yaml:"enabled"`
	DisplayKeys []string `toml:"display_keys" yaml:"display_keys"`
	OffsetX     float64  `toml:"offset_x" yaml:"offset_x"`
	OffsetY     float64  `toml:"offset_y" yaml:"offset_y"`
	EdgePadding float64  `toml:"edge_padding" yaml:"edge_padding"`

	Formatter func(key string, v any) string `toml:"-" yaml:"-"`
}

// ColorConfig names the color schemes registered in package theme.
type ColorConfig struct {
	DefaultColor      string `toml:"default_color" yaml:"default_color"`
	CategoricalScheme string `toml:"categorical_scheme" yaml:"categorical_scheme"`
	ContinuousScheme  string `toml:"continuous_scheme" yaml:"continuous_scheme"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Margin: MarginConfig{Auto: true},
		Dimensions: DimensionsConfig{
			HeightToWidthRatio: 0.8,
		},
		Theme: ThemeConfig{
			Opacity:            1,
			TransitionDuration: Duration{500 * time.Millisecond},
			ZoomAreaThreshold:  1000,
		},
		Domain: DomainConfig{
			PaddingX:       0.05,
			PaddingY:       0.05,
			DefaultDomainX: *Extent(0, 1),
			DefaultDomainY: *Extent(0, 1),
		},
		Scale: ScaleConfig{NiceX: true, NiceY: true},
		Axis: AxisConfig{
			ShowAxisX:    true,
			ShowAxisY:    true,
			ShowGridX:    true,
			ShowGridY:    true,
			TickCount:    5,
			TickSize:     6,
			FontSize:     12,
			LabelOffsetX: 6,
			LabelOffsetY: 12,
			GridColor:    "#e5e5e5",
		},
		Legend: LegendConfig{
			Top:                   25,
			Right:                 10,
			CategoricalItemHeight: 20,
			ContinuousBarWidth:    20,
			ContinuousBarLength:   150,
		},
		Tooltip: TooltipConfig{
			Enabled:     true,
			OffsetX:     15,
			OffsetY:     -15,
			EdgePadding: 10,
		},
		Color: ColorConfig{
			DefaultColor:      "steelblue",
			CategoricalScheme: "tableau10",
			ContinuousScheme:  "viridis",
		},
	}
}

// Layer is one overlay in the configuration stack.
type Layer func(*Config)

// Build returns a copy of base with layers applied left to right. base is
// not modified; nil layers are skipped.
func Build(base *Config, layers ...Layer) *Config {
	if base == nil {
		base = Default()
	}
	cfg := base.Clone()
	for _, l := range layers {
		if l != nil {
			l(cfg)
		}
	}
	return cfg
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Margin.Top = clonePtr(c.Margin.Top)
	out.Margin.Bottom = clonePtr(c.Margin.Bottom)
	out.Margin.Left = clonePtr(c.Margin.Left)
	out.Margin.Right = clonePtr(c.Margin.Right)
	if c.Domain.DomainX != nil {
		d := c.Domain.DomainX.clone()
		out.Domain.DomainX = &d
	}
	if c.Domain.DomainY != nil {
		d := c.Domain.DomainY.clone()
		out.Domain.DomainY = &d
	}
	out.Domain.DefaultDomainX = c.Domain.DefaultDomainX.clone()
	out.Domain.DefaultDomainY = c.Domain.DefaultDomainY.clone()
	out.Axis.LabelX = clonePtr(c.Axis.LabelX)
	out.Axis.LabelY = clonePtr(c.Axis.LabelY)
	out.Tooltip.DisplayKeys = slices.Clone(c.Tooltip.DisplayKeys)
	return &out
}

// WithMargins returns a copy of c with every margin side set to in.
func (c *Config) WithMargins(in layout.Insets) *Config {
	out := c.Clone()
	out.Margin.Top = Float(in.Top)
	out.Margin.Bottom = Float(in.Bottom)
	out.Margin.Left = Float(in.Left)
	out.Margin.Right = Float(in.Right)
	return out
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s, for optional label fields.
func String(s string) *string { return &s }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
