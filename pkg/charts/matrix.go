package charts

import (
	"strconv"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// DefaultMatrixPadding is the band padding between matrix cells.
const DefaultMatrixPadding = 0.05

// Matrix draws a heat map: one cell per record at the (x, y) categories,
// coloured by ValueKey.
type Matrix struct {
	chart.BaseTemplate

	ValueKey      string
	Padding       float64
	ShowCellLabel bool

	color scale.ColorScale
	cells *primitive.BatchRectangles
	text  *primitive.BatchText
}

// NewMatrix returns a labelled heat map coloured by valueKey.
func NewMatrix(valueKey string) *Matrix {
	return &Matrix{ValueKey: valueKey, Padding: DefaultMatrixPadding, ShowCellLabel: true}
}

func (m *Matrix) Name() string           { return "matrix" }
func (m *Matrix) Defaults() config.Layer { return config.Preset("matrix") }

// Cells returns the drawn cells.
func (m *Matrix) Cells() *primitive.BatchRectangles { return m.cells }

// Labels returns the cell labels, nil when they are off.
func (m *Matrix) Labels() *primitive.BatchText { return m.text }

// ColorScale returns the value color scale of the last pass.
func (m *Matrix) ColorScale() scale.ColorScale { return m.color }

// ConfigureDomainAndScales builds band scales on both axes, treating any
// field as categories, and a color scale over the values.
func (m *Matrix) ConfigureDomainAndScales(c *chart.Chart) error {
	p := c.Props()
	dx, ok := c.DomainOverride(false)
	if !ok || !dx.IsCategorical() {
		dx = categories(value.Column(c.Data(), p.XKey))
	}
	dy, ok := c.DomainOverride(true)
	if !ok || !dy.IsCategorical() {
		dy = categories(value.Column(c.Data(), p.YKey))
	}

	ox, oy := c.ScaleOptionsX(), c.ScaleOptionsY()
	ox.PaddingInner, ox.PaddingOuter = m.Padding, m.Padding
	oy.PaddingInner, oy.PaddingOuter = m.Padding, m.Padding
	c.SetDomainAndScales(dx, dy, ox, oy)

	m.color = nil
	if m.ValueKey != "" {
		dv := c.Resolver().Resolve(value.Column(c.Data(), m.ValueKey), domain.Options{})
		m.color = c.ColorScale(dv)
	}
	return nil
}

func (m *Matrix) Draw(c *chart.Chart) error {
	bx, okX := c.ScaleX().(*scale.Band)
	if !okX {
		return errNotBand("x")
	}
	by, okY := c.ScaleY().(*scale.Band)
	if !okY {
		return errNotBand("y")
	}
	cfg := c.Config()
	p := c.Props()
	data := datums(c.Data())

	start := func(b *scale.Band, key string, end bool) primitive.Accessor {
		return func(d primitive.Datum) any {
			px, ok := b.Map(field(d, key))
			if !ok {
				return nil
			}
			if end {
				px += b.Bandwidth()
			}
			return px
		}
	}

	ro := primitive.RectOptions{}
	ro.Coordinates = primitive.Pixel
	ro.ClassName = "matrix-cell"
	ro.Opacity = primitive.Const(cfg.Theme.Opacity)
	if m.color != nil {
		cs, key := m.color, m.ValueKey
		ro.Fill = primitive.By(func(d primitive.Datum) string { return cs.Color(field(d, key)) })
	} else {
		ro.Fill = primitive.Const(cfg.Color.DefaultColor)
	}
	m.cells = c.Engine().AddRectangles(data,
		start(bx, p.XKey, false), start(by, p.YKey, false),
		start(bx, p.XKey, true), start(by, p.YKey, true),
		ro)

	m.text = nil
	if m.ShowCellLabel && m.ValueKey != "" {
		center := func(b *scale.Band, key string) primitive.Accessor {
			return func(d primitive.Datum) any {
				px, ok := b.Center(field(d, key))
				if !ok {
					return nil
				}
				return px
			}
		}
		to := primitive.TextOptions{}
		to.Coordinates = primitive.Pixel
		to.ClassName = "matrix-label"
		m.text = c.Engine().AddTexts(data, center(bx, p.XKey), center(by, p.YKey), m.cellLabel, to)
	}
	return nil
}

// cellLabel rounds numbers to two decimals and prints anything else as is.
func (m *Matrix) cellLabel(d primitive.Datum) string {
	v := field(d, m.ValueKey)
	if value.KindOf(v) == value.Numeric {
		f, _ := value.Float(v)
		return strconv.FormatFloat(round2(f), 'f', -1, 64)
	}
	return value.Label(v)
}

func (m *Matrix) DrawLegend(c *chart.Chart, l *legend.Legend) error {
	if m.color == nil {
		return nil
	}
	l.SetTitle(legendTitle(c, m.ValueKey))
	l.Draw(m.color, legend.ShapeRect)
	return nil
}

func (m *Matrix) DrawTooltip(c *chart.Chart, t *tooltip.Tooltip) error {
	p := c.Props()
	keys := []string{p.XKey, p.YKey}
	if m.ValueKey != "" {
		keys = append(keys, m.ValueKey)
	}
	c.SetTooltipKeys(t.Keys(keys...)...)
	return nil
}
