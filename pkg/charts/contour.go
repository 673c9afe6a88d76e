package charts

import (
	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/legend"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
)

// Contour defaults.
const (
	DefaultResolution = 32
	DefaultThresholds = 10
)

// Contour samples Func over the x and y domains and draws its iso-bands.
type Contour struct {
	chart.BaseTemplate

	Func        func(x, y float64) float64
	ResolutionX int
	ResolutionY int
	Thresholds  int
	StrokeColor string
	// Shade fills the bands from the continuous scheme and adds a
	// gradient legend.
	Shade bool

	xs, ys, values []float64
	color          scale.ColorScale
	contour        *primitive.Contour
}

// NewContour returns a shaded contour plot of fn.
func NewContour(fn func(x, y float64) float64) *Contour {
	return &Contour{
		Func:        fn,
		ResolutionX: DefaultResolution,
		ResolutionY: DefaultResolution,
		Thresholds:  DefaultThresholds,
		StrokeColor: "currentColor",
		Shade:       true,
	}
}

func (ct *Contour) Name() string                         { return "contour" }
func (ct *Contour) Defaults() config.Layer               { return config.Preset("contour") }
func (ct *Contour) ShouldInitialize(c *chart.Chart) bool { return ct.Func != nil }

// Grid returns the sample positions and the row-major samples of the last
// pass.
func (ct *Contour) Grid() (xs, ys, values []float64) { return ct.xs, ct.ys, ct.values }

// Primitive returns the drawn contour.
func (ct *Contour) Primitive() *primitive.Contour { return ct.contour }

// ConfigureDomainAndScales samples the function on a grid that extends one
// threshold step past each edge of the domains.
func (ct *Contour) ConfigureDomainAndScales(c *chart.Chart) error {
	if err := ct.BaseTemplate.ConfigureDomainAndScales(c); err != nil {
		return err
	}
	dx, dy := c.DomainX(), c.DomainY()
	if !dx.IsContinuous() {
		return errNotContinuous("x")
	}
	if !dy.IsContinuous() {
		return errNotContinuous("y")
	}

	nx, ny := max(ct.ResolutionX, 2), max(ct.ResolutionY, 2)
	th := ct.Thresholds
	if th <= 0 {
		th = DefaultThresholds
	}
	padX := (dx.Max - dx.Min) / float64(th)
	padY := (dy.Max - dy.Min) / float64(th)
	ct.xs = linspace(dx.Min-padX, dx.Max+padX, nx)
	ct.ys = linspace(dy.Min-padY, dy.Max+padY, ny)

	ct.values = make([]float64, 0, nx*ny)
	for j := range ny {
		for i := range nx {
			ct.values = append(ct.values, ct.Func(ct.xs[i], ct.ys[j]))
		}
	}

	ct.color = nil
	if ct.Shade {
		vals := make([]any, len(ct.values))
		for i, v := range ct.values {
			vals[i] = v
		}
		ct.color = c.ColorScale(c.Resolver().Resolve(vals, domain.Options{}))
	}
	return nil
}

func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + (end-start)*float64(i)/float64(n-1)
	}
	return out
}

func (ct *Contour) Draw(c *chart.Chart) error {
	opts := primitive.ContourOptions{Thresholds: ct.Thresholds, Color: ct.color}
	opts.Stroke = primitive.Const(ct.StrokeColor)
	ct.contour = c.Engine().AddContour(ct.values, ct.xs, ct.ys, opts)
	return nil
}

func (ct *Contour) DrawLegend(c *chart.Chart, l *legend.Legend) error {
	if t := c.Config().Legend.Title; t != "" {
		l.SetTitle(t)
	}
	if sc, ok := ct.color.(*scale.SequentialColor); ok {
		l.Continuous(sc)
	}
	return nil
}
