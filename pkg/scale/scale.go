// Package scale maps domains onto pixel ranges. Band scales place
// categories; linear, log, and time scales map continuous values and can
// be inverted. Color scales map values onto a theme scheme.
package scale

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Kind identifies the scale type.
type Kind int

const (
	KindBand Kind = iota
	KindOrdinal
	KindLinear
	KindLog
	KindTime
	KindSequential
	KindConstant
)

func (k Kind) String() string {
	switch k {
	case KindBand:
		return "band"
	case KindOrdinal:
		return "ordinal"
	case KindLinear:
		return "linear"
	case KindLog:
		return "log"
	case KindTime:
		return "time"
	case KindSequential:
		return "sequential"
	case KindConstant:
		return "constant"
	default:
		return fmt.Sprintf("scale(%d)", int(k))
	}
}

// ErrDomainMismatch is the panic value (wrapped) when a categorical domain
// is set on a continuous scale or the reverse.
var ErrDomainMismatch = errors.New("scale: domain kind does not match scale type")

// Tick is one axis tick. Value is a float64 for numeric scales, a
// time.Time for time scales and the category string for band scales.
type Tick struct {
	Value any
	Pos   float64
	Label string
}

// Scale maps domain values to pixel positions.
type Scale interface {
	Kind() Kind
	Domain() domain.Domain
	Range() (float64, float64)
	// Map returns the pixel position of v. The second result is false for
	// values outside the scale's vocabulary (nil, NaN, unknown categories).
	Map(v any) (float64, bool)
	Ticks(n int) []Tick
}

// Invertible is implemented by continuous scales.
type Invertible interface {
	Scale
	// Invert maps a pixel back to domain units. Temporal scales return
	// Unix milliseconds.
	Invert(px float64) float64
}

// IsContinuous reports whether s can be inverted.
func IsContinuous(s Scale) bool {
	_, ok := s.(Invertible)
	return ok
}

// Options controls scale construction.
type Options struct {
	Log  bool
	Nice bool

	// PaddingInner and PaddingOuter apply to band scales, as fractions of
	// the step.
	PaddingInner float64
	PaddingOuter float64

	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// New builds the scale matching d's kind over the pixel range [r0, r1].
// Nice rounding is applied after any padding already present in d.
func New(d domain.Domain, r0, r1 float64, opts Options) Scale {
	switch d.Kind {
	case value.Categorical:
		return NewBand(d, r0, r1, opts.PaddingInner, opts.PaddingOuter)
	case value.Temporal:
		return newTime(d, r0, r1, opts.Nice, opts.logger())
	default:
		if opts.Log {
			return NewLog(d, r0, r1, opts.Nice, opts.logger())
		}
		return newLinear(d, r0, r1, opts.Nice, opts.logger())
	}
}

// finiteExtent returns d's bounds in ascending order. A NaN or infinite
// bound replaces the whole extent with domain.DefaultFallback.
func finiteExtent(d domain.Domain, logger *slog.Logger) (float64, float64) {
	lo, hi := d.Min, d.Max
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		logger.Warn("scale: domain bounds must be finite, using fallback",
			"values", d.String(), "fallback", domain.DefaultFallback.String())
		return domain.DefaultFallback.Min, domain.DefaultFallback.Max
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// SetDomain replaces the domain of s in place, keeping its range and type.
// Setting a categorical domain on a continuous scale, or the reverse, is a
// programming error and panics.
func SetDomain(s Scale, d domain.Domain, nice bool) {
	switch s := s.(type) {
	case *Band:
		if !d.IsCategorical() {
			panic(fmt.Errorf("%w: band scale given %s domain", ErrDomainMismatch, d.Kind))
		}
		s.setDomain(d)
	case *Linear:
		scMustContinuous(s, d)
		s.setDomain(d, nice)
	case *Log:
		scMustContinuous(s, d)
		s.setDomain(d, nice)
	case *Time:
		scMustContinuous(s, d)
		s.setDomain(d, nice)
	default:
		panic(fmt.Errorf("%w: unsupported scale %T", ErrDomainMismatch, s))
	}
}

func scMustContinuous(s Scale, d domain.Domain) {
	if !d.IsContinuous() {
		panic(fmt.Errorf("%w: %s scale given %s domain", ErrDomainMismatch, s.Kind(), d.Kind))
	}
}

// lerp maps t in [0, 1] onto [a, b].
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}
