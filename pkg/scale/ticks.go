package scale

import (
	"math"
	"slices"
	"strconv"

	mscale "github.com/aclements/go-moremath/scale"
)

// DefaultTickCount is used when a caller asks for zero ticks.
const DefaultTickCount = 10

// tickIncrement returns the d3-style tick step for count ticks over
// [start, stop]: a power of ten times 1, 2 or 5. Negative results encode
// the reciprocal of a fractional step, which keeps floor/ceil exact.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= math.Sqrt(50):
		factor = 10
	case e >= math.Sqrt(10):
		factor = 5
	case e >= math.Sqrt(2):
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// linearTicks returns at most n evenly spaced values inside [lo, hi].
func linearTicks(lo, hi float64, n int) []float64 {
	if n <= 0 {
		n = DefaultTickCount
	}
	if lo == hi {
		return []float64{lo}
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	ls := mscale.Linear{Min: lo, Max: hi}
	major, _ := ls.Ticks(mscale.TickOptions{Max: n})
	for i, v := range major {
		major[i] = roundTick(v)
	}
	return major
}

// roundTick strips the float noise accumulated by step multiplication.
func roundTick(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 12, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func formatTick(v float64) string {
	return strconv.FormatFloat(roundTick(v), 'f', -1, 64)
}

// Nice widens [lo, hi] outward to the finest tick level that spans it in
// at most count intervals. Empty or non-finite extents are returned
// unchanged.
func Nice(lo, hi float64, count int) (float64, float64) {
	if !(hi > lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return lo, hi
	}
	if count <= 0 {
		count = DefaultTickCount
	}
	// Max counts ticks, one more than the intervals between them.
	s := mscale.Linear{Min: lo, Max: hi}
	s.Nice(mscale.TickOptions{Max: count + 1})
	return roundTick(s.Min), roundTick(s.Max)
}

// TickValues returns the multiples of the tick step for count ticks that
// fall inside [start, stop], in ascending order. Unlike Linear.Ticks the
// step is chosen exactly as d3's ticks does, which keeps histogram bins and
// contour levels stable.
func TickValues(start, stop float64, count int) []float64 {
	if count <= 0 || math.IsNaN(start) || math.IsNaN(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	inc := tickIncrement(start, stop, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}
	var out []float64
	if inc > 0 {
		i1, i2 := math.Round(start/inc), math.Round(stop/inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
		for i := i1; i <= i2; i++ {
			out = append(out, roundTick(i*inc))
		}
	} else {
		inc = -inc
		i1, i2 := math.Round(start*inc), math.Round(stop*inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		for i := i1; i <= i2; i++ {
			out = append(out, roundTick(i/inc))
		}
	}
	if reverse {
		slices.Reverse(out)
	}
	return out
}
