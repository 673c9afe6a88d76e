package scale

import (
	"log/slog"
	"math"
	"time"

	mscale "github.com/aclements/go-moremath/scale"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// Time maps dates (as Unix milliseconds) linearly onto the range. Ticks
// and nice rounding snap to calendar intervals in UTC.
type Time struct {
	s      mscale.Linear
	r0, r1 float64
	logger *slog.Logger
}

// NewTime returns a time scale over d. Non-finite bounds are replaced by
// domain.DefaultFallback with a warning.
func NewTime(d domain.Domain, r0, r1 float64, nice bool) *Time {
	return newTime(d, r0, r1, nice, nil)
}

func newTime(d domain.Domain, r0, r1 float64, nice bool, logger *slog.Logger) *Time {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Time{r0: r0, r1: r1, logger: logger}
	t.setDomain(d, nice)
	return t
}

func (t *Time) Kind() Kind { return KindTime }

func (t *Time) Domain() domain.Domain {
	return domain.Domain{Kind: value.Temporal, Min: t.s.Min, Max: t.s.Max}
}

func (t *Time) Range() (float64, float64) { return t.r0, t.r1 }

// Map accepts time.Time values and raw milliseconds.
func (t *Time) Map(v any) (float64, bool) {
	f, ok := value.Finite(v)
	if !ok {
		return math.NaN(), false
	}
	return t.project(f), true
}

func (t *Time) project(ms float64) float64 {
	if t.s.Min == t.s.Max {
		return (t.r0 + t.r1) / 2
	}
	return lerp(t.r0, t.r1, t.s.Map(ms))
}

// Invert returns Unix milliseconds.
func (t *Time) Invert(px float64) float64 {
	if t.r0 == t.r1 || t.s.Min == t.s.Max {
		return t.s.Min
	}
	return lerp(t.s.Min, t.s.Max, (px-t.r0)/(t.r1-t.r0))
}

func (t *Time) Ticks(n int) []Tick {
	if n <= 0 {
		n = DefaultTickCount
	}
	lo, hi := t.s.Min, t.s.Max
	if lo == hi {
		return []Tick{{Value: value.Time(lo), Pos: t.project(lo), Label: value.Time(lo).Format(time.RFC3339)}}
	}
	iv, ok := pickInterval(hi-lo, n)
	if !ok {
		// Sub-second spans tick on plain milliseconds.
		var ticks []Tick
		for _, ms := range linearTicks(lo, hi, n) {
			ts := value.Time(ms)
			ticks = append(ticks, Tick{Value: ts, Pos: t.project(ms), Label: ts.Format("15:04:05.000")})
		}
		return ticks
	}

	var ticks []Tick
	end := value.Time(hi)
	for ts := iv.ceil(value.Time(lo)); !ts.After(end) && len(ticks) < 1000; ts = iv.add(ts) {
		ms := value.Millis(ts)
		ticks = append(ticks, Tick{Value: ts, Pos: t.project(ms), Label: ts.Format(iv.layout)})
	}
	return ticks
}

func (t *Time) setDomain(d domain.Domain, nice bool) {
	lo, hi := finiteExtent(d, t.logger)
	if nice && hi > lo {
		if iv, ok := pickInterval(hi-lo, DefaultTickCount); ok {
			lo = value.Millis(iv.floor(value.Time(lo)))
			hi = value.Millis(iv.ceil(value.Time(hi)))
		} else {
			lo, hi = Nice(lo, hi, DefaultTickCount)
		}
	}
	t.s = mscale.Linear{Min: lo, Max: hi}
}

// interval is a calendar step: a fixed duration, or a whole number of
// months when months > 0.
type interval struct {
	d      time.Duration
	months int
	layout string
}

const day = 24 * time.Hour

var intervals = []interval{
	{d: time.Second, layout: "15:04:05"},
	{d: 5 * time.Second, layout: "15:04:05"},
	{d: 15 * time.Second, layout: "15:04:05"},
	{d: 30 * time.Second, layout: "15:04:05"},
	{d: time.Minute, layout: "15:04"},
	{d: 5 * time.Minute, layout: "15:04"},
	{d: 15 * time.Minute, layout: "15:04"},
	{d: 30 * time.Minute, layout: "15:04"},
	{d: time.Hour, layout: "15:04"},
	{d: 3 * time.Hour, layout: "15:04"},
	{d: 6 * time.Hour, layout: "15:04"},
	{d: 12 * time.Hour, layout: "Jan 02 15:04"},
	{d: day, layout: "Jan 02"},
	{d: 2 * day, layout: "Jan 02"},
	{d: 7 * day, layout: "Jan 02"},
	{months: 1, layout: "Jan 2006"},
	{months: 3, layout: "Jan 2006"},
	{months: 12, layout: "2006"},
}

func (iv interval) approx() float64 {
	if iv.months > 0 {
		return float64(iv.months) * 30 * float64(day/time.Millisecond)
	}
	return float64(iv.d / time.Millisecond)
}

// pickInterval returns the smallest interval yielding at most about n ticks
// over spanMs. Spans longer than n years step in multiples of a year.
func pickInterval(spanMs float64, n int) (interval, bool) {
	target := spanMs / float64(n)
	if target < float64(time.Second/time.Millisecond) {
		return interval{}, false
	}
	for _, iv := range intervals {
		if iv.approx() >= target {
			return iv, true
		}
	}
	years := int(math.Ceil(target / (365 * float64(day/time.Millisecond))))
	return interval{months: 12 * years, layout: "2006"}, true
}

func (iv interval) floor(t time.Time) time.Time {
	t = t.UTC()
	if iv.months == 0 {
		return t.Truncate(iv.d)
	}
	if iv.months%12 == 0 {
		years := iv.months / 12
		y := t.Year() - t.Year()%years
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	m := int(t.Month()) - 1
	m -= m % iv.months
	return time.Date(t.Year(), time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
}

func (iv interval) ceil(t time.Time) time.Time {
	f := iv.floor(t)
	if f.Equal(t) {
		return f
	}
	return iv.add(f)
}

func (iv interval) add(t time.Time) time.Time {
	if iv.months > 0 {
		return t.AddDate(0, iv.months, 0)
	}
	return t.Add(iv.d)
}
