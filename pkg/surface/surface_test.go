package surface

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// --- tree ---

func TestAppendInsertRemove(t *testing.T) {
	s := New(100, 50)
	g := s.Root().Append("g").SetAttr("id", "plot")
	a := g.Append("rect")
	c := g.Append("circle")
	b := g.Insert("line", 1)

	if got := g.Children(); len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("unexpected child order %v", got)
	}
	b.Remove()
	b.Remove()
	if g.Len() != 2 || !b.Removed() || b.Parent() != nil {
		t.Errorf("expected line detached, got len %d", g.Len())
	}
	if s.Root().Find("plot") != g {
		t.Error("expected Find to locate the group by id")
	}
}

func TestRaiseAndSort(t *testing.T) {
	s := New(10, 10)
	p := s.Root().Append("g")
	a := p.Append("g").SetFloat("z", 2)
	b := p.Append("g").SetFloat("z", 1)
	a.Raise()
	if p.Children()[1] != a {
		t.Error("expected raised node last")
	}
	p.SortChildren(func(x, y *Node) int { return int(x.Float("z") - y.Float("z")) })
	if p.Children()[0] != b {
		t.Error("expected z=1 first after sort")
	}
}

func TestClearKeepsDefs(t *testing.T) {
	s := New(10, 10)
	s.Defs().Append("marker")
	s.Root().Append("g")
	s.Clear()
	if s.Root().Len() != 1 || s.Root().Children()[0] != s.Defs() {
		t.Errorf("expected only defs left, got %d children", s.Root().Len())
	}
	if s.Defs().Len() != 0 {
		t.Errorf("expected empty defs, got %d", s.Defs().Len())
	}
}

func TestFloatAttr(t *testing.T) {
	n := New(1, 1).Root().Append("rect").SetFloat("x", 12.5)
	if n.Float("x") != 12.5 {
		t.Errorf("expected 12.5, got %v", n.Float("x"))
	}
	if !math.IsNaN(n.Float("y")) {
		t.Error("expected NaN for missing attribute")
	}
}

// --- easing ---

func TestEasings(t *testing.T) {
	for name, e := range map[string]Easing{"linear": Linear, "cubicInOut": CubicInOut, "outCubic": OutCubic} {
		if e(0) != 0 || e(1) != 1 {
			t.Errorf("%s: expected fixed endpoints, got %v, %v", name, e(0), e(1))
		}
	}
	if CubicInOut(0.5) != 0.5 {
		t.Errorf("expected symmetric midpoint, got %v", CubicInOut(0.5))
	}
	if OutCubic(0.5) != 0.875 {
		t.Errorf("expected 0.875, got %v", OutCubic(0.5))
	}
}

// --- transitions ---

func TestZeroDurationIsImmediate(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("circle").SetFloat("cx", 0)
	ended := false
	n.Transition(0, nil).Float("cx", 10).OnEnd(func() { ended = true })
	if n.Float("cx") != 10 || !ended || s.Active() != 0 {
		t.Errorf("expected immediate apply, got cx=%v ended=%v active=%d", n.Float("cx"), ended, s.Active())
	}
}

func TestAdvanceInterpolates(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("circle").SetFloat("cx", 0).SetAttr("fill", "#000000")
	n.Transition(100*time.Millisecond, Linear).Float("cx", 10).Attr("fill", "#ffffff")

	if left := s.Advance(50 * time.Millisecond); left != 1 {
		t.Fatalf("expected 1 running transition, got %d", left)
	}
	if n.Float("cx") != 5 {
		t.Errorf("expected cx 5, got %v", n.Float("cx"))
	}
	if f, _ := n.Attr("fill"); f == "#000000" || f == "#ffffff" {
		t.Errorf("expected blended fill, got %s", f)
	}
	if left := s.Advance(80 * time.Millisecond); left != 0 {
		t.Errorf("expected finished, got %d", left)
	}
	if f, _ := n.Attr("fill"); n.Float("cx") != 10 || f != "#ffffff" {
		t.Errorf("expected end values, got cx=%v fill=%s", n.Float("cx"), f)
	}
}

func TestPathDataInterpolates(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("path").SetAttr("d", "M0,0L10,10")
	n.Transition(time.Second, Linear).Attr("d", "M10,10L20,20")
	s.Advance(500 * time.Millisecond)
	if d, _ := n.Attr("d"); d != "M5,5L15,15" {
		t.Errorf("expected M5,5L15,15, got %s", d)
	}
}

func TestNewTransitionTakesOver(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("rect").SetFloat("x", 0)
	first := false
	n.Transition(time.Second, Linear).Float("x", 100)
	n.Transition(time.Second, Linear).Float("x", 10).OnEnd(func() { first = true })
	s.Flush()
	if n.Float("x") != 10 {
		t.Errorf("expected latest target 10, got %v", n.Float("x"))
	}
	if !first {
		t.Error("expected end callback to run on flush")
	}
}

func TestInterruptFreezes(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("rect").SetFloat("x", 0)
	ended := false
	n.Transition(100*time.Millisecond, Linear).Float("x", 100).OnEnd(func() { ended = true })
	s.Advance(25 * time.Millisecond)
	s.Interrupt()
	s.Advance(time.Second)
	if n.Float("x") != 25 || ended {
		t.Errorf("expected frozen at 25 without end, got %v ended=%v", n.Float("x"), ended)
	}
}

func TestRemoveCancelsTransitions(t *testing.T) {
	s := New(10, 10)
	g := s.Root().Append("g")
	n := g.Append("rect").SetFloat("x", 0)
	n.Transition(time.Second, Linear).Float("x", 100)
	g.Remove()
	if s.Active() != 0 {
		t.Errorf("expected no active transitions, got %d", s.Active())
	}
}

func TestSetAttrCancelsTween(t *testing.T) {
	s := New(10, 10)
	n := s.Root().Append("rect").SetFloat("x", 0)
	n.Transition(time.Second, Linear).Float("x", 100)
	n.SetFloat("x", 3)
	s.Flush()
	if n.Float("x") != 3 {
		t.Errorf("expected explicit value to win, got %v", n.Float("x"))
	}
}

// --- SVG ---

func TestWriteSVG(t *testing.T) {
	s := New(200, 100)
	s.Defs().Append("marker").
		SetAttr("id", "arrow-end-4682b4").
		SetFloat("refX", 10).SetFloat("refY", 0).
		SetFloat("markerWidth", 6).SetFloat("markerHeight", 6).
		SetAttr("viewBox", "0 -5 10 10").
		Append("path").SetAttr("d", "M 0,-5 L 10,0 L 0,5")
	g := s.Root().Append("g").SetAttr("class", "plot")
	g.Append("rect").SetFloat("x", 1).SetFloat("y", 2.4).SetFloat("width", 3).SetFloat("height", 4).SetAttr("fill", "red")
	g.Append("text").SetFloat("x", 5).SetFloat("y", 6).SetText("a < b")

	out := s.String()
	for _, want := range []string{
		`width="200" height="100"`,
		`<defs>`,
		`<marker id="arrow-end-4682b4" refX="10" refY="0" markerWidth="6" markerHeight="6"`,
		`viewBox="0 -5 10 10"`,
		`<g class="plot"`,
		`x="1" y="2" width="3" height="4"`,
		`fill="red"`,
		`a &lt; b`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestWriteSVGGradient(t *testing.T) {
	s := New(10, 10)
	lg := s.Defs().Append("linearGradient").SetAttr("id", "legend-gradient").
		SetAttr("x1", "0%").SetAttr("y1", "100%").SetAttr("x2", "0%").SetAttr("y2", "0%")
	lg.Append("stop").SetAttr("offset", "0%").SetAttr("stop-color", "#440154")
	lg.Append("stop").SetAttr("offset", "100%").SetAttr("stop-color", "#fde725")
	out := s.String()
	if !strings.Contains(out, `<linearGradient id="legend-gradient" x1="0%" y1="100%" x2="0%" y2="0%">`) {
		t.Errorf("missing gradient header\n%s", out)
	}
	if !strings.Contains(out, `stop-color="#fde725"`) {
		t.Errorf("missing stop\n%s", out)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSVGReportsError(t *testing.T) {
	if err := New(1, 1).WriteSVG(failWriter{}); err == nil {
		t.Error("expected write error")
	}
	var buf bytes.Buffer
	if err := New(1, 1).WriteSVG(&buf); err != nil || buf.Len() == 0 {
		t.Errorf("expected output, got %v", err)
	}
}
