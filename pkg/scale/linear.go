package scale

import (
	"log/slog"
	"math"

	mscale "github.com/aclements/go-moremath/scale"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Linear maps a numeric extent onto the range.
type Linear struct {
	s      mscale.Linear
	kind   value.Kind
	r0, r1 float64
	logger *slog.Logger
}

// NewLinear returns a linear scale over d, rounded outward when nice.
// Non-finite bounds are replaced by domain.DefaultFallback with a warning.
func NewLinear(d domain.Domain, r0, r1 float64, nice bool) *Linear {
	return newLinear(d, r0, r1, nice, nil)
}

func newLinear(d domain.Domain, r0, r1 float64, nice bool, logger *slog.Logger) *Linear {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Linear{r0: r0, r1: r1, logger: logger}
	l.setDomain(d, nice)
	return l
}

func (l *Linear) Kind() Kind { return KindLinear }

func (l *Linear) Domain() domain.Domain {
	return domain.Domain{Kind: l.kind, Min: l.s.Min, Max: l.s.Max}
}

func (l *Linear) Range() (float64, float64) { return l.r0, l.r1 }

func (l *Linear) Map(v any) (float64, bool) {
	f, ok := value.Finite(v)
	if !ok {
		return math.NaN(), false
	}
	return l.project(f), true
}

func (l *Linear) project(f float64) float64 {
	if l.s.Min == l.s.Max {
		return (l.r0 + l.r1) / 2
	}
	return lerp(l.r0, l.r1, l.s.Map(f))
}

// Invert maps px back to the domain. A degenerate domain or range returns
// the domain minimum.
func (l *Linear) Invert(px float64) float64 {
	if l.r0 == l.r1 || l.s.Min == l.s.Max {
		return l.s.Min
	}
	return lerp(l.s.Min, l.s.Max, (px-l.r0)/(l.r1-l.r0))
}

func (l *Linear) Ticks(n int) []Tick {
	vals := linearTicks(l.s.Min, l.s.Max, n)
	ticks := make([]Tick, len(vals))
	for i, v := range vals {
		ticks[i] = Tick{Value: v, Pos: l.project(v), Label: formatTick(v)}
	}
	return ticks
}

func (l *Linear) setDomain(d domain.Domain, nice bool) {
	lo, hi := finiteExtent(d, l.logger)
	if nice {
		lo, hi = Nice(lo, hi, DefaultTickCount)
	}
	l.kind = d.Kind
	if l.kind != value.Temporal {
		l.kind = value.Numeric
	}
	l.s = mscale.Linear{Min: lo, Max: hi}
}

// Log maps a positive extent logarithmically (base 10) onto the range.
type Log struct {
	lin      mscale.Linear // over log10 of the domain
	min, max float64
	r0, r1   float64
	logger   *slog.Logger
}

// LogFallback replaces a log domain that does not lie strictly above zero.
var LogFallback = domain.Numeric(1, 10)

// NewLog returns a log scale over d. Non-positive bounds are replaced by
// LogFallback with a warning.
func NewLog(d domain.Domain, r0, r1 float64, nice bool, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Log{r0: r0, r1: r1, logger: logger}
	l.setDomain(d, nice)
	return l
}

func (l *Log) Kind() Kind { return KindLog }

func (l *Log) Domain() domain.Domain { return domain.Numeric(l.min, l.max) }

func (l *Log) Range() (float64, float64) { return l.r0, l.r1 }

// Map rejects non-positive values.
func (l *Log) Map(v any) (float64, bool) {
	f, ok := value.Finite(v)
	if !ok || f <= 0 {
		return math.NaN(), false
	}
	return l.project(f), true
}

func (l *Log) project(f float64) float64 {
	if l.min == l.max {
		return (l.r0 + l.r1) / 2
	}
	return lerp(l.r0, l.r1, l.lin.Map(math.Log10(f)))
}

func (l *Log) Invert(px float64) float64 {
	if l.r0 == l.r1 || l.min == l.max {
		return l.min
	}
	return math.Pow(10, lerp(l.lin.Min, l.lin.Max, (px-l.r0)/(l.r1-l.r0)))
}

// Ticks returns every 1..9 multiple of each decade when the domain spans
// fewer than n decades, and only the powers of ten otherwise.
func (l *Log) Ticks(n int) []Tick {
	if n <= 0 {
		n = DefaultTickCount
	}
	if l.min == l.max {
		return []Tick{{Value: l.min, Pos: l.project(l.min), Label: formatTick(l.min)}}
	}
	lo, hi := math.Floor(l.lin.Min), math.Ceil(l.lin.Max)
	all := hi-lo < float64(n)
	var ticks []Tick
	for k := lo; k <= hi; k++ {
		base := math.Pow(10, k)
		for m := 1.0; m < 10; m++ {
			if m > 1 && !all {
				break
			}
			v := roundTick(m * base)
			if v < l.min || v > l.max {
				continue
			}
			ticks = append(ticks, Tick{Value: v, Pos: l.project(v), Label: formatTick(v)})
		}
	}
	return ticks
}

func (l *Log) setDomain(d domain.Domain, nice bool) {
	lo, hi := d.Min, d.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if !(lo > 0) || math.IsInf(hi, 0) || math.IsNaN(hi) {
		l.logger.Warn("scale: log domain must be positive, using fallback",
			"values", d.String(), "fallback", LogFallback.String())
		lo, hi = LogFallback.Min, LogFallback.Max
	}
	if nice {
		lo = math.Pow(10, math.Floor(math.Log10(lo)))
		hi = math.Pow(10, math.Ceil(math.Log10(hi)))
	}
	l.min, l.max = lo, hi
	l.lin = mscale.Linear{Min: math.Log10(lo), Max: math.Log10(hi)}
}
