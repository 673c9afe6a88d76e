package charts

import (
	"math"
	"sort"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/tooltip"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// DefaultBins is the approximate histogram bin count.
const DefaultBins = 20

// binPadding is the gap on each side of a bar, as a fraction of its bin.
const binPadding = 0.025

// Bin is one histogram bucket: the values in [X0, X1), or [X0, X1] for
// the last bin. On a log x axis the edges are log10 values.
type Bin struct {
	X0, X1 float64
	Count  int
}

// Histogram counts the XKey values into bins at nice tick boundaries of
// the (possibly niced) x domain.
type Histogram struct {
	chart.BaseTemplate

	// NumBins is a hint; the bins follow the x scale's ticks.
	NumBins int

	bins []Bin
	bars *primitive.BatchRectangles
}

// NewHistogram returns a histogram with the default bin count.
func NewHistogram() *Histogram {
	return &Histogram{NumBins: DefaultBins}
}

func (h *Histogram) Name() string                         { return "histogram" }
func (h *Histogram) Defaults() config.Layer               { return config.Preset("histogram") }
func (h *Histogram) ShouldInitialize(c *chart.Chart) bool { return hasData(c) }

// Bins returns the bins of the last pass.
func (h *Histogram) Bins() []Bin { return append([]Bin(nil), h.bins...) }

// ConfigureDomainAndScales bins the data over a linear x scale, in log10
// space when the x axis is logarithmic, and sizes the y domain to the
// tallest bin.
func (h *Histogram) ConfigureDomainAndScales(c *chart.Chart) error {
	cfg := c.Config()
	logX := cfg.Scale.LogX

	dx := c.DefaultDomainX()
	if !dx.IsContinuous() {
		return errNotContinuous("x")
	}

	values := make([]float64, 0, len(c.Data()))
	dropped := 0
	for _, v := range value.Column(c.Data(), c.Props().XKey) {
		f, ok := value.Finite(v)
		if !ok {
			continue
		}
		if logX {
			if f <= 0 {
				dropped++
				continue
			}
			f = math.Log10(f)
		}
		values = append(values, f)
	}
	if dropped > 0 {
		c.Logger().Warn("histogram: dropped non-positive values on a log x axis", "count", dropped)
	}
	if logX {
		dx = h.logDomain(c, dx, values)
	}

	ox := c.ScaleOptionsX()
	ox.Log = false
	sx, ok := scale.New(dx, 0, 1, ox).(scale.Invertible)
	if !ok {
		return errNotContinuous("x")
	}

	nb := h.NumBins
	if nb <= 0 {
		nb = DefaultBins
	}
	lo, hi := sx.Domain().Min, sx.Domain().Max
	h.bins = binValues(values, lo, hi, scale.TickValues(lo, hi, nb))

	maxCount := 0
	for _, b := range h.bins {
		maxCount = max(maxCount, b.Count)
	}
	dy := domain.Numeric(0, float64(maxCount))
	if cfg.Scale.LogY {
		dy = domain.Numeric(1, math.Max(1, float64(maxCount)))
	}

	c.SetDomainAndScales(domain.Numeric(lo, hi), dy, ox, c.ScaleOptionsY())
	return nil
}

// logDomain returns the log10 extent for binning. A domain reaching zero
// or below is replaced by the extent of the positive values (already in
// log10), or by scale.LogFallback when there are none.
func (h *Histogram) logDomain(c *chart.Chart, d domain.Domain, logValues []float64) domain.Domain {
	if d.Min > 0 && d.Max > 0 {
		return domain.Numeric(math.Log10(d.Min), math.Log10(d.Max))
	}
	if len(logValues) == 0 {
		c.Logger().Warn("histogram: log x domain must be positive, using fallback",
			"values", d.String(), "fallback", scale.LogFallback.String())
		return domain.Numeric(math.Log10(scale.LogFallback.Min), math.Log10(scale.LogFallback.Max))
	}
	lo, hi := logValues[0], logValues[0]
	for _, v := range logValues[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return domain.Numeric(lo, hi)
}

// binValues buckets values over [lo, hi]. Thresholds outside the open
// interval are dropped; values outside the closed one are not counted.
func binValues(values []float64, lo, hi float64, thresholds []float64) []Bin {
	var tz []float64
	for _, t := range thresholds {
		if t > lo && t < hi {
			tz = append(tz, t)
		}
	}
	sort.Float64s(tz)

	bins := make([]Bin, len(tz)+1)
	for i := range bins {
		bins[i].X0, bins[i].X1 = lo, hi
		if i > 0 {
			bins[i].X0 = tz[i-1]
		}
		if i < len(tz) {
			bins[i].X1 = tz[i]
		}
	}
	for _, v := range values {
		if v < lo || v > hi {
			continue
		}
		i := sort.Search(len(tz), func(k int) bool { return tz[k] > v })
		bins[i].Count++
	}
	return bins
}

func (h *Histogram) Draw(c *chart.Chart) error {
	cfg := c.Config()
	base := c.DomainY().Min
	var data []primitive.Datum
	for _, b := range h.bins {
		if b.Count == 0 {
			continue
		}
		pad := binPadding * (b.X1 - b.X0)
		data = append(data, value.Record{
			"x0":    b.X0,
			"x1":    b.X1,
			"count": b.Count,
			"left":  b.X0 + pad,
			"right": b.X1 - pad,
			"base":  base,
		})
	}

	opts := primitive.RectOptions{}
	opts.ClassName = "histogram-bar"
	opts.Fill = primitive.Const(cfg.Color.DefaultColor)
	opts.Opacity = primitive.Const(cfg.Theme.Opacity)
	opts.Key = primitive.FieldKey("x0")
	h.bars = c.Engine().AddRectangles(data,
		primitive.Field("left"), primitive.Field("count"),
		primitive.Field("right"), primitive.Field("base"),
		opts)
	return nil
}

func (h *Histogram) DrawTooltip(c *chart.Chart, t *tooltip.Tooltip) error {
	c.SetTooltipKeys(t.Keys("x0", "x1", "count")...)
	return nil
}
