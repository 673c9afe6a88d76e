package charts

import (
	"math"
	"sort"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Layers used by the line chart.
const (
	LinesLayer    = "lines"
	TooltipsLayer = "tooltips"
	tooltipsZ     = 100
)

// Line draws one path per key in YKeys against the x key, with a hover
// guide that snaps to the nearest record.
type Line struct {
	chart.BaseTemplate

	YKeys       []string
	LineWidth   float64
	LineOpacity float64
	// Guide styles the vertical hover line.
	GuideWidth float64
	GuideColor string

	color  scale.ColorScale
	paths  map[string]*primitive.Path
	guide  *primitive.Line
	points map[string]*primitive.Point
	sorted []int
	xs     []float64
}

// NewLine returns a line chart over keys.
func NewLine(keys ...string) *Line {
	return &Line{
		YKeys:       keys,
		LineWidth:   1.5,
		LineOpacity: 1,
		GuideWidth:  1,
		GuideColor:  "gray",
	}
}

func (l *Line) Name() string           { return "line" }
func (l *Line) Defaults() config.Layer { return config.Preset("line") }

// Path returns the path drawn for key.
func (l *Line) Path(key string) *primitive.Path { return l.paths[key] }

// Guide returns the hover guide line, nil when the tooltip is disabled.
func (l *Line) Guide() *primitive.Line { return l.guide }

// GuidePoint returns the hover marker of key.
func (l *Line) GuidePoint(key string) *primitive.Point { return l.points[key] }

func (l *Line) ShouldInitialize(c *chart.Chart) bool {
	if !hasData(c) {
		return false
	}
	if len(l.YKeys) == 0 {
		c.Logger().Warn("line: no y keys given")
		return false
	}
	return true
}

// ConfigureDomainAndScales resolves the y domain over every series and
// assigns each key a categorical color.
func (l *Line) ConfigureDomainAndScales(c *chart.Chart) error {
	var ys []any
	for _, k := range l.YKeys {
		ys = append(ys, value.Column(c.Data(), k)...)
	}
	dy := c.ResolveDomain(ys, true)
	c.SetDomainAndScales(c.DefaultDomainX(), dy, c.ScaleOptionsX(), c.ScaleOptionsY())
	l.color = c.ColorScale(domain.Categorical(l.YKeys...))
	l.indexX(c)
	return nil
}

// indexX sorts record indices by x for the nearest-point search.
func (l *Line) indexX(c *chart.Chart) {
	xkey := c.Props().XKey
	l.sorted = l.sorted[:0]
	l.xs = l.xs[:0]
	type entry struct {
		i int
		x float64
	}
	var es []entry
	for i, r := range c.Data() {
		if f, ok := value.Finite(r[xkey]); ok {
			es = append(es, entry{i, f})
		}
	}
	sort.SliceStable(es, func(a, b int) bool { return es[a].x < es[b].x })
	for _, e := range es {
		l.sorted = append(l.sorted, e.i)
		l.xs = append(l.xs, e.x)
	}
}

func (l *Line) Draw(c *chart.Chart) error {
	data := datums(c.Data())
	xkey := c.Props().XKey
	l.paths = make(map[string]*primitive.Path, len(l.YKeys))
	for _, k := range l.YKeys {
		opts := primitive.PathOptions{}
		opts.Stroke = primitive.Const(l.color.Color(k))
		opts.StrokeWidth = primitive.Const(l.LineWidth)
		opts.Opacity = primitive.Const(l.LineOpacity)
		opts.Layer = LinesLayer
		opts.ClassName = "line-plot line-plot-" + k
		l.paths[k] = c.Engine().AddPath(data, primitive.Field(xkey), primitive.Field(k), opts)
	}
	return nil
}

func (l *Line) DrawLegend(c *chart.Chart, lg *legend.Legend) error {
	if len(l.YKeys) < 2 {
		return nil
	}
	if t := c.Config().Legend.Title; t != "" {
		lg.SetTitle(t)
	}
	lg.Draw(l.color, legend.ShapeLine)
	return nil
}

// DrawTooltip adds the hidden hover guide: a dashed vertical line in
// pixels and one marker per series in data space. The markers are static
// so zoom replays leave them hidden; OnHover renders them.
func (l *Line) DrawTooltip(c *chart.Chart, t *tooltip.Tooltip) error {
	e := c.Engine()
	e.CreateLayer(TooltipsLayer, tooltipsZ)

	lo := primitive.LineOptions{DashArray: "4,4"}
	lo.Stroke = primitive.Const(l.GuideColor)
	lo.StrokeWidth = primitive.Const(l.GuideWidth)
	lo.Layer = TooltipsLayer
	lo.ClassName = "line-label-tooltip"
	lo.Coordinates = primitive.Pixel
	l.guide = e.AddLine(0, 0, 0, 0, lo)
	l.guide.Hide()

	l.points = make(map[string]*primitive.Point, len(l.YKeys))
	for _, k := range l.YKeys {
		po := primitive.PointOptions{Size: primitive.Const[float64](DefaultPointSize)}
		po.Fill = primitive.Const(l.color.Color(k))
		po.Stroke = primitive.Const("white")
		po.StrokeWidth = primitive.Const(1.0)
		po.Layer = TooltipsLayer
		po.ClassName = "point-label point-label-" + k
		po.Static = true
		p := e.AddPoint(0, 0, po)
		p.Hide()
		l.points[k] = p
	}

	keys := append([]string{c.Props().XKey}, l.YKeys...)
	c.SetTooltipKeys(t.Keys(keys...)...)
	return nil
}

// Nearest returns the index of the record whose x is closest to the
// plot pixel px, or -1 when there is none or x is categorical.
func (l *Line) Nearest(c *chart.Chart, px float64) int {
	sx, ok := c.ScaleX().(scale.Invertible)
	if !ok || len(l.xs) == 0 {
		return -1
	}
	x0 := sx.Invert(px)
	n := len(l.xs)
	i := sort.Search(n-1, func(k int) bool { return l.xs[k] >= x0 })
	if i > 0 && math.Abs(x0-l.xs[i-1]) < math.Abs(l.xs[i]-x0) {
		i--
	}
	return l.sorted[i]
}

// OnHover moves the guide to the nearest record and shows its values.
func (l *Line) OnHover(c *chart.Chart, px, py float64) bool {
	t := c.Tooltip()
	if t == nil || l.guide == nil {
		return false
	}
	i := l.Nearest(c, px)
	if i < 0 {
		return false
	}
	d := c.Data()[i]
	xkey := c.Props().XKey

	xPos, ok := c.ScaleX().Map(d[xkey])
	if !ok {
		return false
	}
	_, h := c.PlotSize()
	l.guide.SetCoords(xPos, 0, xPos, h).Render(0, nil)
	l.guide.Show()
	for _, k := range l.YKeys {
		p := l.points[k]
		if d[k] == nil {
			p.Hide()
			continue
		}
		p.SetCoords(d[xkey], d[k]).Render(0, nil)
		p.Show()
	}

	m := c.Margin()
	t.Show(px+m.Left, py+m.Top, d, c.TooltipKeys(), nil)
	return true
}

// OnLeave hides the guide.
func (l *Line) OnLeave(*chart.Chart) {
	if l.guide != nil {
		l.guide.Hide()
	}
	for _, p := range l.points {
		p.Hide()
	}
}

func (l *Line) OnCleanup(*chart.Chart) {
	l.guide = nil
	l.points = nil
	l.paths = nil
}
