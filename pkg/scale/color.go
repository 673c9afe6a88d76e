package scale

import (
	"math"

	"github.com/aclements/go-gg/palette"
	mscale "github.com/aclements/go-moremath/scale"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/theme"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// ColorScale maps values to CSS colors.
type ColorScale interface {
	Color(v any) string
	Kind() Kind
	Domain() domain.Domain
}

// NewColorScale builds the color scale for d: categorical domains cycle
// through the scheme's palette, continuous domains interpolate its
// gradient, and empty domains map everything to fallback.
func NewColorScale(d domain.Domain, scheme theme.Scheme, fallback string) ColorScale {
	switch {
	case d.IsCategorical() && len(d.Categories) > 0:
		colors := scheme.Colors
		if scheme.Kind == theme.Continuous {
			colors = scheme.Palette(len(d.Categories))
		}
		return &OrdinalColor{ord: NewOrdinal(d, colors), fallback: fallback}
	case d.IsContinuous():
		return NewSequentialColor(d, scheme.Gradient(), fallback)
	default:
		return ConstantColor(fallback)
	}
}

// OrdinalColor assigns palette entries to categories in domain order.
type OrdinalColor struct {
	ord      *Ordinal
	fallback string
}

func (c *OrdinalColor) Kind() Kind            { return KindOrdinal }
func (c *OrdinalColor) Domain() domain.Domain { return c.ord.Domain() }

func (c *OrdinalColor) Color(v any) string {
	if v == nil {
		return c.fallback
	}
	if s := c.ord.Map(v); s != "" {
		return s
	}
	return c.fallback
}

// SequentialColor interpolates a continuous palette over a numeric or
// temporal extent. Values outside the extent clamp to the ends.
type SequentialColor struct {
	d        domain.Domain
	lin      mscale.Linear
	pal      palette.Continuous
	fallback string
}

// NewSequentialColor returns a sequential color scale over d.
func NewSequentialColor(d domain.Domain, pal palette.Continuous, fallback string) *SequentialColor {
	lo, hi := d.Min, d.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	return &SequentialColor{d: d, lin: mscale.Linear{Min: lo, Max: hi}, pal: pal, fallback: fallback}
}

func (c *SequentialColor) Kind() Kind            { return KindSequential }
func (c *SequentialColor) Domain() domain.Domain { return c.d }

func (c *SequentialColor) Color(v any) string {
	f, ok := value.Finite(v)
	if !ok {
		return c.fallback
	}
	return c.At(c.position(f))
}

// At returns the palette color at t in [0, 1].
func (c *SequentialColor) At(t float64) string {
	return theme.Hex(c.pal.Map(math.Min(1, math.Max(0, t))))
}

func (c *SequentialColor) position(f float64) float64 {
	if c.lin.Min == c.lin.Max {
		return 0.5
	}
	return c.lin.Map(f)
}

// ConstantColor maps every value to one color.
type ConstantColor string

func (c ConstantColor) Kind() Kind            { return KindConstant }
func (c ConstantColor) Domain() domain.Domain { return domain.Categorical() }
func (c ConstantColor) Color(any) string      { return string(c) }
