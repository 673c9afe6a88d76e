package charts

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// DefaultPointSize is the scatter symbol area in square pixels.
const DefaultPointSize = 50

// Scatter draws one symbol per record at (XKey, YKey), optionally
// coloured by ColorKey.
type Scatter struct {
	chart.BaseTemplate

	// ColorKey colours points by a categorical or continuous field.
	ColorKey string
	// PointSize is the symbol area, constant or per record.
	PointSize primitive.Attr[float64]
	// PointOpacity defaults to the theme opacity.
	PointOpacity primitive.Attr[float64]
	Symbol       primitive.Symbol

	color  scale.ColorScale
	points *primitive.BatchPoints
}

// NewScatter returns a scatter plot of circles.
func NewScatter() *Scatter {
	return &Scatter{
		PointSize: primitive.Const[float64](DefaultPointSize),
		Symbol:    primitive.SymbolCircle,
	}
}

func (s *Scatter) Name() string                         { return "scatter" }
func (s *Scatter) Defaults() config.Layer               { return config.Preset("scatter") }
func (s *Scatter) ShouldInitialize(c *chart.Chart) bool { return hasData(c) }

// Points returns the drawn batch.
func (s *Scatter) Points() *primitive.BatchPoints { return s.points }

// ColorScale returns the color scale of the last pass, nil without a
// color key.
func (s *Scatter) ColorScale() scale.ColorScale { return s.color }

func (s *Scatter) ConfigureDomainAndScales(c *chart.Chart) error {
	if err := s.BaseTemplate.ConfigureDomainAndScales(c); err != nil {
		return err
	}
	s.color = nil
	if s.ColorKey != "" {
		d := c.Resolver().Resolve(value.Column(c.Data(), s.ColorKey), domain.Options{})
		s.color = c.ColorScale(d)
	}
	return nil
}

func (s *Scatter) Draw(c *chart.Chart) error {
	cfg := c.Config()
	opts := primitive.PointOptions{
		Size:   s.PointSize,
		Symbol: s.Symbol,
	}
	opts.Opacity = s.PointOpacity
	if !opts.Opacity.IsSet() {
		opts.Opacity = primitive.Const(cfg.Theme.Opacity)
	}
	if s.color != nil {
		cs, key := s.color, s.ColorKey
		opts.Fill = primitive.By(func(d primitive.Datum) string { return cs.Color(field(d, key)) })
	} else {
		opts.Fill = primitive.Const(cfg.Color.DefaultColor)
	}
	opts.ClassName = "scatter-point"

	p := c.Props()
	s.points = c.Engine().AddPoints(datums(c.Data()), primitive.Field(p.XKey), primitive.Field(p.YKey), opts)
	return nil
}

func (s *Scatter) DrawLegend(c *chart.Chart, l *legend.Legend) error {
	if s.ColorKey == "" || s.color == nil {
		return nil
	}
	l.SetTitle(legendTitle(c, s.ColorKey))
	l.Draw(s.color, legend.ShapeCircle)
	return nil
}

func (s *Scatter) DrawTooltip(c *chart.Chart, t *tooltip.Tooltip) error {
	p := c.Props()
	keys := []string{p.XKey, p.YKey}
	if s.ColorKey != "" {
		keys = append(keys, s.ColorKey)
	}
	c.SetTooltipKeys(t.Keys(keys...)...)
	return nil
}
