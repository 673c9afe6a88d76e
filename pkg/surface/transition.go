package surface

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates then decelerates. It is the default easing.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// OutCubic decelerates toward the end.
func OutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// Transition interpolates attributes of one node over a fixed duration.
// Attribute values are tweened from whatever the node holds when the tween
// is added. A later transition (or SetAttr) on the same attribute takes
// over from this one.
type Transition struct {
	node    *Node
	dur     time.Duration
	ease    Easing
	elapsed time.Duration

	tweens     []*tween
	onEnd      []func()
	registered bool
	cancelled  bool
}

type tween struct {
	name      string
	to        string
	interp    func(t float64) string
	cancelled bool
}

// Duration returns the configured duration.
func (tr *Transition) Duration() time.Duration { return tr.dur }

// Attr tweens an attribute toward value.
func (tr *Transition) Attr(name, value string) *Transition {
	n := tr.node
	if n.s != nil {
		n.s.cancel(n, []string{name})
	}
	from, ok := n.attrs[name]
	if tr.dur <= 0 || n.removed || !ok || from == value {
		n.attrs[name] = value
		return tr
	}
	tr.tweens = append(tr.tweens, &tween{name: name, to: value, interp: interpolate(from, value)})
	tr.register()
	return tr
}

// Float is Attr for numbers.
func (tr *Transition) Float(name string, v float64) *Transition {
	return tr.Attr(name, FormatFloat(v))
}

// OnEnd runs fn once the transition completes. Interrupted transitions
// never run their end callbacks. With a zero duration fn runs at once.
func (tr *Transition) OnEnd(fn func()) *Transition {
	if tr.dur <= 0 || tr.node.removed {
		fn()
		return tr
	}
	tr.onEnd = append(tr.onEnd, fn)
	tr.register()
	return tr
}

func (tr *Transition) register() {
	if tr.registered || tr.node.s == nil {
		return
	}
	tr.registered = true
	tr.node.s.active = append(tr.node.s.active, tr)
}

func (tr *Transition) apply(p float64) {
	for _, tw := range tr.tweens {
		if tw.cancelled {
			continue
		}
		if p >= 1 {
			tr.node.attrs[tw.name] = tw.to
		} else {
			tr.node.attrs[tw.name] = tw.interp(tr.ease(p))
		}
	}
}

func (tr *Transition) finish() {
	for _, fn := range tr.onEnd {
		fn()
	}
	tr.onEnd = nil
}

// Active returns the number of running transitions.
func (s *Surface) Active() int {
	n := 0
	for _, tr := range s.active {
		if !tr.cancelled {
			n++
		}
	}
	return n
}

// Advance moves every running transition forward by dt and returns how
// many are still running. End callbacks run after all attributes have
// been updated.
func (s *Surface) Advance(dt time.Duration) int {
	cur := s.active
	s.active = nil
	var done []*Transition
	for _, tr := range cur {
		if tr.cancelled {
			continue
		}
		tr.elapsed += dt
		p := math.Min(1, float64(tr.elapsed)/float64(tr.dur))
		tr.apply(p)
		if p >= 1 {
			done = append(done, tr)
		} else {
			s.active = append(s.active, tr)
		}
	}
	for _, tr := range done {
		tr.finish()
	}
	return s.Active()
}

// maxFlushRounds bounds Flush when end callbacks keep starting new
// transitions.
const maxFlushRounds = 64

// Flush completes every running transition, including transitions started
// by end callbacks.
func (s *Surface) Flush() {
	for i := 0; i < maxFlushRounds && len(s.active) > 0; i++ {
		cur := s.active
		s.active = nil
		for _, tr := range cur {
			if tr.cancelled {
				continue
			}
			tr.apply(1)
			tr.finish()
		}
	}
}

// Interrupt stops every running transition where it stands.
func (s *Surface) Interrupt() {
	for _, tr := range s.active {
		tr.cancelled = true
	}
	s.active = nil
}

// cancel drops tweens of the named attributes of n, or all of n's
// transitions when names is nil.
func (s *Surface) cancel(n *Node, names []string) {
	for _, tr := range s.active {
		if tr.node != n || tr.cancelled {
			continue
		}
		if names == nil {
			tr.cancelled = true
			continue
		}
		live := 0
		for _, tw := range tr.tweens {
			if slices.Contains(names, tw.name) {
				tw.cancelled = true
			}
			if !tw.cancelled {
				live++
			}
		}
		if live == 0 && len(tr.onEnd) == 0 {
			tr.cancelled = true
		}
	}
}

var numberRe = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// interpolate picks an interpolator for two attribute values: numbers
// lerp, hex colors blend in RGB, and other strings interpolate the numbers
// embedded in them (path data, transforms).
func interpolate(from, to string) func(float64) string {
	if a, err := strconv.ParseFloat(from, 64); err == nil {
		if b, err := strconv.ParseFloat(to, 64); err == nil {
			return func(t float64) string { return FormatFloat(a + (b-a)*t) }
		}
	}
	if strings.HasPrefix(to, "#") {
		ca, errA := colorful.Hex(from)
		cb, errB := colorful.Hex(to)
		if errA == nil && errB == nil {
			return func(t float64) string { return ca.BlendRgb(cb, t).Clamped().Hex() }
		}
	}
	return interpolateString(from, to)
}

func interpolateString(from, to string) func(float64) string {
	bi := numberRe.FindAllStringIndex(to, -1)
	if len(bi) == 0 || strings.HasPrefix(to, "url(") {
		return func(float64) string { return to }
	}
	am := numberRe.FindAllString(from, -1)
	return func(t float64) string {
		var sb strings.Builder
		last := 0
		for i, loc := range bi {
			sb.WriteString(to[last:loc[0]])
			b, _ := strconv.ParseFloat(to[loc[0]:loc[1]], 64)
			if i < len(am) {
				if a, err := strconv.ParseFloat(am[i], 64); err == nil {
					b = a + (b-a)*t
				}
			}
			sb.WriteString(FormatFloat(b))
			last = loc[1]
		}
		sb.WriteString(to[last:])
		return sb.String()
	}
}
