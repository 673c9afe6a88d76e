package scale

import (
	"math"
	"slices"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Band places each category at the start of an equal-width band. Layout
// follows d3's band scale with centred alignment.
type Band struct {
	domain       domain.Domain
	r0, r1       float64
	paddingInner float64
	paddingOuter float64

	step      float64
	bandwidth float64
	offsets   []float64
	index     map[string]int
}

// NewBand returns a band scale over the categories of d.
func NewBand(d domain.Domain, r0, r1, paddingInner, paddingOuter float64) *Band {
	b := &Band{
		r0:           r0,
		r1:           r1,
		paddingInner: math.Min(1, math.Max(0, paddingInner)),
		paddingOuter: math.Max(0, paddingOuter),
	}
	b.setDomain(d)
	return b
}

func (b *Band) Kind() Kind                { return KindBand }
func (b *Band) Domain() domain.Domain     { return b.domain }
func (b *Band) Range() (float64, float64) { return b.r0, b.r1 }

// Step is the distance between the starts of adjacent bands.
func (b *Band) Step() float64 { return b.step }

// Bandwidth is the width of each band.
func (b *Band) Bandwidth() float64 { return b.bandwidth }

// Map returns the start of v's band.
func (b *Band) Map(v any) (float64, bool) {
	if v == nil {
		return math.NaN(), false
	}
	i, ok := b.index[value.Label(v)]
	if !ok {
		return math.NaN(), false
	}
	return b.offsets[i], true
}

// Center returns the middle of v's band.
func (b *Band) Center(v any) (float64, bool) {
	px, ok := b.Map(v)
	if !ok {
		return px, false
	}
	return px + b.bandwidth/2, true
}

// Ticks returns one tick per category at the band centre; n is ignored.
func (b *Band) Ticks(int) []Tick {
	ticks := make([]Tick, len(b.domain.Categories))
	for i, c := range b.domain.Categories {
		ticks[i] = Tick{Value: c, Pos: b.offsets[i] + b.bandwidth/2, Label: c}
	}
	return ticks
}

func (b *Band) setDomain(d domain.Domain) {
	b.domain = domain.Categorical(d.Categories...)
	b.index = make(map[string]int, len(d.Categories))
	for i, c := range b.domain.Categories {
		if _, dup := b.index[c]; !dup {
			b.index[c] = i
		}
	}
	b.rescale()
}

func (b *Band) rescale() {
	n := float64(len(b.domain.Categories))
	start, stop := b.r0, b.r1
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	b.step = (stop - start) / math.Max(1, n-b.paddingInner+2*b.paddingOuter)
	start += (stop - start - b.step*(n-b.paddingInner)) * 0.5
	b.bandwidth = b.step * (1 - b.paddingInner)

	b.offsets = make([]float64, len(b.domain.Categories))
	for i := range b.offsets {
		b.offsets[i] = start + b.step*float64(i)
	}
	if reverse {
		slices.Reverse(b.offsets)
	}
}

// Ordinal maps categories onto a fixed list of range values, cycling when
// the list is shorter than the domain. Unknown categories are appended to
// the domain on first use.
type Ordinal struct {
	categories []string
	index      map[string]int
	values     []string
}

// NewOrdinal returns an ordinal scale from the categories of d to values.
func NewOrdinal(d domain.Domain, values []string) *Ordinal {
	o := &Ordinal{index: map[string]int{}, values: slices.Clone(values)}
	for _, c := range d.Categories {
		o.add(c)
	}
	return o
}

func (o *Ordinal) Kind() Kind { return KindOrdinal }

// Domain returns the categories seen so far, including implicit ones.
func (o *Ordinal) Domain() domain.Domain { return domain.Categorical(o.categories...) }

// Values returns the range.
func (o *Ordinal) Values() []string { return slices.Clone(o.values) }

// Map returns the range value for v, or "" when the range is empty.
func (o *Ordinal) Map(v any) string {
	if len(o.values) == 0 {
		return ""
	}
	i := o.add(value.Label(v))
	return o.values[i%len(o.values)]
}

func (o *Ordinal) add(c string) int {
	if i, ok := o.index[c]; ok {
		return i
	}
	i := len(o.categories)
	o.index[c] = i
	o.categories = append(o.categories, c)
	return i
}
