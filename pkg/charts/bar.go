package charts

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// DefaultBarPadding is the inner and outer band padding of bar charts.
const DefaultBarPadding = 0.2

// Bar draws one bar per record: a band for each XKey category, rising
// from the bottom of the y domain to YKey.
type Bar struct {
	chart.BaseTemplate

	// Padding is the band padding, as a fraction of the step.
	Padding float64
	// UseDifferentColors colours each category from the categorical
	// scheme; otherwise every bar takes the default color.
	UseDifferentColors bool

	bars *primitive.BatchRectangles
}

// NewBar returns a bar chart with distinct category colors.
func NewBar() *Bar {
	return &Bar{Padding: DefaultBarPadding, UseDifferentColors: true}
}

func (b *Bar) Name() string           { return "bar" }
func (b *Bar) Defaults() config.Layer { return config.Preset("bar") }

// Bars returns the drawn batch.
func (b *Bar) Bars() *primitive.BatchRectangles { return b.bars }

// ConfigureDomainAndScales builds a band x scale over the categories and
// a y domain starting at zero, or one on a log axis, unless a y domain is
// configured.
func (b *Bar) ConfigureDomainAndScales(c *chart.Chart) error {
	dx := c.DefaultDomainX()
	if !dx.IsCategorical() {
		dx = categories(value.Column(c.Data(), c.Props().XKey))
	}

	dy, ok := c.DomainOverride(true)
	if !ok {
		dy = c.DefaultDomainY()
		if dy.IsContinuous() {
			lo := 0.0
			if c.Config().Scale.LogY {
				lo = 1
			}
			dy = domain.Domain{Kind: dy.Kind, Min: lo, Max: dy.Max}
		}
	}

	ox := c.ScaleOptionsX()
	ox.PaddingInner, ox.PaddingOuter = b.Padding, b.Padding
	c.SetDomainAndScales(dx, dy, ox, c.ScaleOptionsY())
	return nil
}

// categories labels every value, first seen first.
func categories(values []any) domain.Domain {
	seen := map[string]bool{}
	var cats []string
	for _, v := range values {
		if v == nil {
			continue
		}
		l := value.Label(v)
		if !seen[l] {
			seen[l] = true
			cats = append(cats, l)
		}
	}
	return domain.Categorical(cats...)
}

func (b *Bar) Draw(c *chart.Chart) error {
	cfg := c.Config()
	p := c.Props()
	band, ok := c.ScaleX().(*scale.Band)
	if !ok {
		return errNotBand("x")
	}
	ys := c.ScaleY()
	base, _ := ys.Map(c.DomainY().Min)

	opts := primitive.RectOptions{}
	opts.Coordinates = primitive.Pixel
	opts.ClassName = "bar"
	opts.Opacity = primitive.Const(cfg.Theme.Opacity)
	if b.UseDifferentColors {
		cs := c.ColorScale(band.Domain())
		opts.Fill = primitive.By(func(d primitive.Datum) string { return cs.Color(value.Label(field(d, p.XKey))) })
	} else {
		opts.Fill = primitive.Const(cfg.Color.DefaultColor)
	}

	x1 := func(d primitive.Datum) any {
		if px, ok := band.Map(field(d, p.XKey)); ok {
			return px
		}
		return nil
	}
	x2 := func(d primitive.Datum) any {
		if px, ok := band.Map(field(d, p.XKey)); ok {
			return px + band.Bandwidth()
		}
		return nil
	}
	y1 := func(d primitive.Datum) any {
		if py, ok := ys.Map(field(d, p.YKey)); ok {
			return py
		}
		return nil
	}
	y2 := func(primitive.Datum) any { return base }

	b.bars = c.Engine().AddRectangles(datums(c.Data()), x1, y1, x2, y2, opts)
	return nil
}
