// Package domain infers axis domains from raw values: an ordered category
// set for categorical data or a padded [min, max] extent for numbers and
// dates.
package domain

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Domain is either an ordered set of unique categories or a continuous
// [Min, Max] extent. Temporal extents are stored as Unix milliseconds.
type Domain struct {
	Kind       value.Kind
	Categories []string
	Min, Max   float64
}

// Categorical returns a categorical domain over cats in the given order.
func Categorical(cats ...string) Domain {
	return Domain{Kind: value.Categorical, Categories: slices.Clone(cats)}
}

// Numeric returns a numeric extent.
func Numeric(min, max float64) Domain {
	return Domain{Kind: value.Numeric, Min: min, Max: max}
}

// Temporal returns a date extent.
func Temporal(min, max time.Time) Domain {
	return Domain{Kind: value.Temporal, Min: value.Millis(min), Max: value.Millis(max)}
}

// IsCategorical reports whether d is a category set.
func (d Domain) IsCategorical() bool { return d.Kind == value.Categorical }

// IsContinuous reports whether d is a numeric or temporal extent.
func (d Domain) IsContinuous() bool {
	return d.Kind == value.Numeric || d.Kind == value.Temporal
}

// Extent returns the continuous bounds.
func (d Domain) Extent() (float64, float64) { return d.Min, d.Max }

// Times returns the bounds of a temporal domain as times.
func (d Domain) Times() (time.Time, time.Time) {
	return value.Time(d.Min), value.Time(d.Max)
}

// Span returns Max - Min for continuous domains and the category count
// otherwise.
func (d Domain) Span() float64 {
	if d.IsCategorical() {
		return float64(len(d.Categories))
	}
	return d.Max - d.Min
}

// Index returns the position of category c, or -1.
func (d Domain) Index(c string) int {
	return slices.Index(d.Categories, c)
}

// Equal reports whether two domains have the same kind and bounds.
func (d Domain) Equal(o Domain) bool {
	if d.Kind != o.Kind {
		return false
	}
	if d.IsCategorical() {
		return slices.Equal(d.Categories, o.Categories)
	}
	return d.Min == o.Min && d.Max == o.Max
}

func (d Domain) String() string {
	switch d.Kind {
	case value.Categorical:
		return "[" + strings.Join(d.Categories, ", ") + "]"
	case value.Temporal:
		a, b := d.Times()
		return fmt.Sprintf("[%s, %s]", a.Format(time.RFC3339), b.Format(time.RFC3339))
	default:
		return fmt.Sprintf("[%g, %g]", d.Min, d.Max)
	}
}

// Options controls domain inference.
type Options struct {
	// Override is returned unchanged when set.
	Override *Domain

	// Padding widens continuous extents by this fraction of their span on
	// each side.
	Padding float64

	// Log disables padding; a padded log domain can cross zero.
	Log bool

	// Fallback replaces the default [0, 1] when the input is empty or mixed.
	Fallback *Domain
}

// DefaultFallback is substituted when inference fails.
var DefaultFallback = Numeric(0, 1)

// Resolver infers domains and reports fallbacks through Logger.
type Resolver struct {
	Logger *slog.Logger
}

// NewResolver returns a resolver logging to logger (slog.Default when nil).
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{Logger: logger}
}

// Resolve turns raw values into a domain. It never fails: empty, mixed, or
// non-finite input produces the fallback domain and a warning.
func (r *Resolver) Resolve(values []any, opts Options) Domain {
	if opts.Override != nil {
		return *opts.Override
	}

	kind := value.Classify(values)
	switch kind {
	case value.Categorical:
		return Domain{Kind: value.Categorical, Categories: unique(values)}
	case value.Numeric, value.Temporal:
		min, max, ok := extent(values)
		if !ok {
			return r.fallback(opts, "no finite values", len(values))
		}
		p := opts.Padding
		if opts.Log {
			p = 0
		}
		span := max - min
		return Domain{Kind: kind, Min: min - p*span, Max: max + p*span}
	default:
		return r.fallback(opts, "unable to determine data domain ("+kind.String()+")", len(values))
	}
}

func (r *Resolver) fallback(opts Options, reason string, n int) Domain {
	fb := DefaultFallback
	if opts.Fallback != nil {
		fb = *opts.Fallback
	}
	r.logger().Warn("domain: "+reason+", using fallback", "values", n, "fallback", fb.String())
	return fb
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Resolve infers a domain with the default logger.
func Resolve(values []any, opts Options) Domain {
	return (&Resolver{}).Resolve(values, opts)
}

// Merge returns the union extent of continuous domains. Categorical inputs
// are concatenated in first-seen order. The kind of the first domain wins.
func Merge(domains ...Domain) Domain {
	if len(domains) == 0 {
		return DefaultFallback
	}
	out := domains[0]
	if out.IsCategorical() {
		var all []any
		for _, d := range domains {
			for _, c := range d.Categories {
				all = append(all, c)
			}
		}
		return Domain{Kind: value.Categorical, Categories: unique(all)}
	}
	for _, d := range domains[1:] {
		if !d.IsContinuous() {
			continue
		}
		out.Min = math.Min(out.Min, d.Min)
		out.Max = math.Max(out.Max, d.Max)
	}
	return out
}

func unique(values []any) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func extent(values []any) (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		f, finite := value.Finite(v)
		if !finite {
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		ok = true
	}
	return min, max, ok
}
