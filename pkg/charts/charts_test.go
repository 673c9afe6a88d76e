package charts

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// --- helpers ---

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedLayout gives a 200x200 plot with 10px margins and unpadded,
// un-niced domains.
func fixedLayout(cfg *config.Config) {
	cfg.Margin.Top = config.Float(10)
	cfg.Margin.Right = config.Float(10)
	cfg.Margin.Bottom = config.Float(10)
	cfg.Margin.Left = config.Float(10)
	cfg.Dimensions.Width = 220
	cfg.Dimensions.Height = 220
	cfg.Domain.PaddingX = 0
	cfg.Domain.PaddingY = 0
	cfg.Scale.NiceX = false
	cfg.Scale.NiceY = false
	cfg.Theme.TransitionDuration.Duration = 0
}

func withLegend(cfg *config.Config) { cfg.Legend.Enabled = true }

func mount(t *testing.T, tmpl chart.Template, data []value.Record, x, y string, layers ...config.Layer) *chart.Chart {
	t.Helper()
	c := chart.New(tmpl, chart.Props{
		Data:   data,
		XKey:   x,
		YKey:   y,
		Config: append([]config.Layer{fixedLayout}, layers...),
	}, chart.WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 500}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func checkLive(t *testing.T, c *chart.Chart) {
	t.Helper()
	if c.State() != chart.Live {
		t.Fatalf("expected Live, got %v", c.State())
	}
}

// --- scatter ---

var flowers = []value.Record{
	{"x": 1.0, "y": 2.0, "kind": "a"},
	{"x": 2.0, "y": 3.0, "kind": "b"},
	{"x": 3.0, "y": 1.0, "kind": "a"},
}

func TestScatterColorsByCategory(t *testing.T) {
	s := NewScatter()
	s.ColorKey = "kind"
	c := mount(t, s, flowers, "x", "y", withLegend)
	checkLive(t, c)

	pts := s.Points()
	if pts == nil || pts.Len() != 3 {
		t.Fatalf("expected 3 points, got %v", pts)
	}
	fill := func(key string) string {
		n, ok := pts.ShapeNode(key)
		if !ok {
			t.Fatalf("no shape for key %q", key)
		}
		f, _ := n.Attr("fill")
		return f
	}
	if fill("0") != fill("2") {
		t.Errorf("expected same fill for the same kind, got %q and %q", fill("0"), fill("2"))
	}
	if fill("0") == fill("1") {
		t.Errorf("expected different fills for different kinds, got %q", fill("0"))
	}

	var texts []string
	for _, it := range c.Legend().Items() {
		texts = append(texts, it.Text)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts); diff != "" {
		t.Errorf("legend items (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y", "kind"}, c.TooltipKeys()); diff != "" {
		t.Errorf("tooltip keys (-want +got):\n%s", diff)
	}
}

func TestScatterWithoutColorKey(t *testing.T) {
	s := NewScatter()
	mount(t, s, flowers, "x", "y", withLegend)
	if s.ColorScale() != nil {
		t.Error("expected no color scale without a color key")
	}
	n, _ := s.Points().ShapeNode("1")
	if f, _ := n.Attr("fill"); f == "" {
		t.Error("expected the default fill")
	}
}

func TestScatterNoDataStaysBlank(t *testing.T) {
	c := chart.New(NewScatter(), chart.Props{XKey: "x", YKey: "y"}, chart.WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 300}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if c.State() == chart.Live || c.Visible() {
		t.Errorf("expected no drawing without data, got %v", c.State())
	}
}

// --- bar ---

var sales = []value.Record{
	{"k": "a", "v": 3.0},
	{"k": "b", "v": 5.0},
}

func TestBarDomainStartsAtZero(t *testing.T) {
	b := NewBar()
	c := mount(t, b, sales, "k", "v")
	checkLive(t, c)

	if d := c.DomainY(); !approx(d.Min, 0) || !approx(d.Max, 5) {
		t.Errorf("expected y domain [0, 5], got [%v, %v]", d.Min, d.Max)
	}
	if !c.DomainX().IsCategorical() {
		t.Fatalf("expected a categorical x domain, got %v", c.DomainX().Kind)
	}
	band, ok := c.ScaleX().(*scale.Band)
	if !ok {
		t.Fatalf("expected a band scale, got %T", c.ScaleX())
	}
	if !approx(band.Bandwidth(), band.Step()*(1-DefaultBarPadding)) {
		t.Errorf("expected bandwidth %v, got %v", band.Step()*(1-DefaultBarPadding), band.Bandwidth())
	}

	heights := map[string]float64{"0": 120, "1": 200}
	for key, want := range heights {
		n, ok := b.Bars().ShapeNode(key)
		if !ok {
			t.Fatalf("no bar for key %q", key)
		}
		if got := n.Float("height"); !approx(got, want) {
			t.Errorf("bar %s: expected height %v, got %v", key, want, got)
		}
	}
}

func TestBarNumericCategories(t *testing.T) {
	data := []value.Record{{"k": 2001, "v": 1.0}, {"k": 2002, "v": 2.0}, {"k": 2001, "v": 4.0}}
	c := mount(t, NewBar(), data, "k", "v")
	if diff := cmp.Diff([]string{"2001", "2002"}, c.DomainX().Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
}

func TestBarDifferentColors(t *testing.T) {
	b := NewBar()
	mount(t, b, sales, "k", "v")
	n0, _ := b.Bars().ShapeNode("0")
	n1, _ := b.Bars().ShapeNode("1")
	f0, _ := n0.Attr("fill")
	f1, _ := n1.Attr("fill")
	if f0 == f1 {
		t.Errorf("expected a color per category, both %q", f0)
	}

	b = NewBar()
	b.UseDifferentColors = false
	mount(t, b, sales, "k", "v")
	n0, _ = b.Bars().ShapeNode("0")
	n1, _ = b.Bars().ShapeNode("1")
	f0, _ = n0.Attr("fill")
	f1, _ = n1.Attr("fill")
	if f0 != f1 {
		t.Errorf("expected one color, got %q and %q", f0, f1)
	}
}

// --- histogram ---

func TestBinValues(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, -1, 11}
	bins := binValues(values, 0, 10, []float64{0, 2, 4, 6, 8, 10})
	want := []Bin{
		{X0: 0, X1: 2, Count: 2},
		{X0: 2, X1: 4, Count: 2},
		{X0: 4, X1: 6, Count: 2},
		{X0: 6, X1: 8, Count: 2},
		{X0: 8, X1: 10, Count: 3},
	}
	if diff := cmp.Diff(want, bins); diff != "" {
		t.Errorf("bins (-want +got):\n%s", diff)
	}
}

func TestBinValuesNoThresholds(t *testing.T) {
	bins := binValues([]float64{1, 2, 3}, 1, 3, nil)
	if len(bins) != 1 || bins[0].Count != 3 {
		t.Errorf("expected one bin of 3, got %+v", bins)
	}
}

func TestHistogramBinsAtTicks(t *testing.T) {
	var data []value.Record
	for i := range 11 {
		data = append(data, value.Record{"x": float64(i)})
	}
	h := NewHistogram()
	c := mount(t, h, data, "x", "")
	checkLive(t, c)

	bins := h.Bins()
	if len(bins) != 20 {
		t.Fatalf("expected 20 bins at half steps, got %d", len(bins))
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != 11 {
		t.Errorf("expected 11 values counted, got %d", total)
	}
	if d := c.DomainY(); !approx(d.Min, 0) || !approx(d.Max, 1) {
		t.Errorf("expected y domain [0, 1], got [%v, %v]", d.Min, d.Max)
	}
	if diff := cmp.Diff([]string{"x0", "x1", "count"}, c.TooltipKeys()); diff != "" {
		t.Errorf("tooltip keys (-want +got):\n%s", diff)
	}
}

func TestHistogramLogX(t *testing.T) {
	data := []value.Record{{"x": 1.0}, {"x": 10.0}, {"x": 100.0}, {"x": 1000.0}}
	h := NewHistogram()
	c := mount(t, h, data, "x", "", func(cfg *config.Config) { cfg.Scale.LogX = true })
	checkLive(t, c)
	if d := c.DomainX(); !approx(d.Min, 0) || !approx(d.Max, 3) {
		t.Errorf("expected log10 domain [0, 3], got [%v, %v]", d.Min, d.Max)
	}
}

func TestHistogramLogXDropsNonPositive(t *testing.T) {
	data := []value.Record{{"x": 0.0}, {"x": -5.0}, {"x": 10.0}, {"x": 100.0}}
	h := NewHistogram()
	c := mount(t, h, data, "x", "", func(cfg *config.Config) { cfg.Scale.LogX = true })
	checkLive(t, c)
	if d := c.DomainX(); !approx(d.Min, 1) || !approx(d.Max, 2) {
		t.Errorf("expected log10 domain of the positive values [1, 2], got [%v, %v]", d.Min, d.Max)
	}
	total := 0
	for _, b := range h.Bins() {
		total += b.Count
	}
	if total != 2 {
		t.Errorf("expected 2 binned values, got %d", total)
	}
}

func TestHistogramLogXWithoutPositiveValues(t *testing.T) {
	data := []value.Record{{"x": 0.0}, {"x": -1.0}}
	c := mount(t, NewHistogram(), data, "x", "", func(cfg *config.Config) { cfg.Scale.LogX = true })
	checkLive(t, c)
	if d := c.DomainX(); !approx(d.Min, 0) || !approx(d.Max, 1) {
		t.Errorf("expected the log10 fallback [0, 1], got [%v, %v]", d.Min, d.Max)
	}
}

// --- line ---

func lineData() []value.Record {
	var data []value.Record
	for i := range 5 {
		x := float64(i)
		data = append(data, value.Record{"x": x, "a": x, "b": 2 * x})
	}
	return data
}

func TestLineDrawsEverySeries(t *testing.T) {
	l := NewLine("a", "b")
	c := mount(t, l, lineData(), "x", "", withLegend)
	checkLive(t, c)

	if l.Path("a") == nil || l.Path("b") == nil {
		t.Fatal("expected a path per key")
	}
	if d := c.DomainY(); !approx(d.Min, 0) || !approx(d.Max, 8) {
		t.Errorf("expected y domain over both series [0, 8], got [%v, %v]", d.Min, d.Max)
	}
	if n := len(c.Legend().Items()); n != 2 {
		t.Errorf("expected 2 legend items, got %d", n)
	}
}

func TestLineNearest(t *testing.T) {
	l := NewLine("a")
	c := mount(t, l, lineData(), "x", "")

	tests := []struct {
		px   float64
		want int
	}{
		{120, 2}, // x = 2.4
		{130, 3}, // x = 2.6
		{-50, 0},
		{500, 4},
	}
	for _, tt := range tests {
		if got := l.Nearest(c, tt.px); got != tt.want {
			t.Errorf("Nearest(%v): expected %d, got %d", tt.px, tt.want, got)
		}
	}
}

func TestLineHoverGuide(t *testing.T) {
	l := NewLine("a", "b")
	c := mount(t, l, lineData(), "x", "")

	if !c.HandleEvent(chart.Event{Type: chart.PointerMove, X: 130, Y: 60}) {
		t.Fatal("expected the hover handled")
	}
	if !c.Tooltip().Visible() {
		t.Fatal("expected the tooltip shown")
	}
	want := []string{"x=2", "a=2", "b=4"}
	var got []string
	for _, r := range c.Tooltip().Content() {
		got = append(got, r.Label+"="+r.Value)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tooltip rows (-want +got):\n%s", diff)
	}
	if x := l.Guide().Node().Float("x1"); !approx(x, 100) {
		t.Errorf("expected the guide at 100, got %v", x)
	}

	c.HandleEvent(chart.Event{Type: chart.PointerLeave})
	if c.Tooltip().Visible() {
		t.Error("expected the tooltip hidden on leave")
	}
	if op := l.Guide().Node().Float("opacity"); op != 0 {
		t.Errorf("expected the guide hidden, got opacity %v", op)
	}
}

func TestLineWithoutKeysStaysBlank(t *testing.T) {
	c := chart.New(NewLine(), chart.Props{Data: lineData(), XKey: "x"}, chart.WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 300}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if c.State() == chart.Live {
		t.Error("expected no drawing without y keys")
	}
}

// --- matrix ---

var grid = []value.Record{
	{"col": "p", "row": "u", "v": 0.123},
	{"col": "q", "row": "u", "v": 1.0},
	{"col": "p", "row": "w", "v": 2.5},
	{"col": "q", "row": "w", "v": "n/a"},
}

func TestMatrixCells(t *testing.T) {
	m := NewMatrix("v")
	c := mount(t, m, grid, "col", "row")
	checkLive(t, c)

	if !c.DomainX().IsCategorical() || !c.DomainY().IsCategorical() {
		t.Fatal("expected categorical axes")
	}
	if n := m.Cells().Len(); n != 4 {
		t.Errorf("expected 4 cells, got %d", n)
	}
	var labels []string
	for _, key := range m.Labels().Keys() {
		n, _ := m.Labels().ShapeNode(key)
		labels = append(labels, n.Text())
	}
	if diff := cmp.Diff([]string{"0.12", "1", "2.5", "n/a"}, labels); diff != "" {
		t.Errorf("cell labels (-want +got):\n%s", diff)
	}
	if c.Legend() == nil {
		t.Fatal("expected the matrix legend on by default")
	}
}

func TestMatrixWithoutLabels(t *testing.T) {
	m := NewMatrix("v")
	m.ShowCellLabel = false
	mount(t, m, grid, "col", "row")
	if m.Labels() != nil {
		t.Error("expected no labels")
	}
}

func TestRound2(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0.123, 0.12},
		{0.125, 0.13},
		{-1.005, -1},
		{3, 3},
	}
	for _, tt := range tests {
		if got := round2(tt.in); !approx(got, tt.want) {
			t.Errorf("round2(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

// --- contour ---

func unitSquare(cfg *config.Config) {
	cfg.Domain.DomainX = config.Extent(-1, 1)
	cfg.Domain.DomainY = config.Extent(-1, 1)
}

func TestContourGrid(t *testing.T) {
	ct := NewContour(Functions["saddle"])
	c := mount(t, ct, nil, "", "", unitSquare)
	checkLive(t, c)

	xs, ys, values := ct.Grid()
	if len(xs) != DefaultResolution || len(ys) != DefaultResolution {
		t.Fatalf("expected a %dx%d grid, got %dx%d", DefaultResolution, DefaultResolution, len(xs), len(ys))
	}
	if len(values) != len(xs)*len(ys) {
		t.Errorf("expected %d samples, got %d", len(xs)*len(ys), len(values))
	}
	if !approx(xs[0], -1.2) || !approx(xs[len(xs)-1], 1.2) {
		t.Errorf("expected the grid padded one step, got [%v, %v]", xs[0], xs[len(xs)-1])
	}
	// row-major: the second sample moves along x
	if want := Functions["saddle"](xs[1], ys[0]); !approx(values[1], want) {
		t.Errorf("expected values[1] = %v, got %v", want, values[1])
	}
	if ct.Primitive() == nil {
		t.Error("expected the contour drawn")
	}
	if c.Legend() == nil || c.Legend().GradientID() == "" {
		t.Error("expected a continuous legend")
	}
}

func TestContourNeedsFunc(t *testing.T) {
	c := chart.New(NewContour(nil), chart.Props{}, chart.WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 300}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if c.State() == chart.Live {
		t.Error("expected no drawing without a function")
	}
}

// --- image ---

func TestImageSkipsMissingSources(t *testing.T) {
	data := []value.Record{
		{"src": "testdata/none.png", "at": []any{1.0, 2.0}, "w": 0.5},
		{"at": []any{0.0, 0.0}},
	}
	im := NewImage("src", "at", "w")
	mount(t, im, data, "", "")
	if n := len(im.Images()); n != 1 {
		t.Errorf("expected 1 image, got %d", n)
	}
}

func TestPair(t *testing.T) {
	tests := []struct {
		name string
		in   any
		ok   bool
	}{
		{"slice", []any{1.0, 2.0}, true},
		{"floats", []float64{1, 2}, true},
		{"array", [2]float64{1, 2}, true},
		{"map", map[string]any{"x": 1.0, "y": 2.0}, true},
		{"short", []any{1.0}, false},
		{"map missing y", map[string]any{"x": 1.0}, false},
		{"scalar", 1.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := pair(tt.in)
			if ok != tt.ok {
				t.Fatalf("expected ok %v, got %v", tt.ok, ok)
			}
			if ok {
				fx, _ := value.Float(x)
				fy, _ := value.Float(y)
				if fx != 1 || fy != 2 {
					t.Errorf("expected (1, 2), got (%v, %v)", x, y)
				}
			}
		})
	}
}

// --- spec ---

const scatterSpec = `
type: scatter
x: sepal
y: petal
color: kind
point_size: 20
config:
  legend:
    enabled: true
    title: Species
data:
  - {sepal: 1.5, petal: 2.5, kind: a}
  - {sepal: 2.5, petal: 1.5, kind: b}
`

func TestSpecScatter(t *testing.T) {
	s, err := ReadSpec(strings.NewReader(scatterSpec))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tmpl, err := s.Template()
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	sc, ok := tmpl.(*Scatter)
	if !ok {
		t.Fatalf("expected *Scatter, got %T", tmpl)
	}
	if sc.ColorKey != "kind" {
		t.Errorf("expected color key kind, got %q", sc.ColorKey)
	}

	props, err := s.Props(fixedLayout)
	if err != nil {
		t.Fatalf("props: %v", err)
	}
	if len(props.Config) != 2 {
		t.Fatalf("expected the extra layer and the overlay, got %d layers", len(props.Config))
	}
	cfg := config.Build(config.Default(), props.Config...)
	if !cfg.Legend.Enabled || cfg.Legend.Title != "Species" {
		t.Errorf("expected the overlay applied, got %+v", cfg.Legend)
	}

	c := chart.New(tmpl, props, chart.WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 400}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	defer c.Destroy()
	checkLive(t, c)
	if sc.Points().Len() != 2 {
		t.Errorf("expected 2 points, got %d", sc.Points().Len())
	}
}

func TestSpecTemplates(t *testing.T) {
	tests := []struct {
		doc  string
		want string
	}{
		{"type: bar\npadding: 0.5", "bar"},
		{"type: histogram\nbins: 5", "histogram"},
		{"type: line\ny: a", "line"},
		{"type: matrix\nvalue: v", "matrix"},
		{"type: contour\nfunction: gaussian", "contour"},
		{"type: image\nurl: src", "image"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s, err := ReadSpec(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			tmpl, err := s.Template()
			if err != nil {
				t.Fatalf("template: %v", err)
			}
			if tmpl.Name() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, tmpl.Name())
			}
		})
	}
}

func TestSpecOptions(t *testing.T) {
	s, _ := ReadSpec(strings.NewReader("type: line\ny: a\nline_width: 3"))
	tmpl, _ := s.Template()
	l := tmpl.(*Line)
	if diff := cmp.Diff([]string{"a"}, l.YKeys); diff != "" {
		t.Errorf("y keys (-want +got):\n%s", diff)
	}
	if l.LineWidth != 3 {
		t.Errorf("expected line width 3, got %v", l.LineWidth)
	}

	s, _ = ReadSpec(strings.NewReader("type: histogram\nbins: 5"))
	tmpl, _ = s.Template()
	if n := tmpl.(*Histogram).NumBins; n != 5 {
		t.Errorf("expected 5 bins, got %d", n)
	}
}

func TestSpecErrors(t *testing.T) {
	s, _ := ReadSpec(strings.NewReader("type: pie"))
	if _, err := s.Template(); !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	s, _ = ReadSpec(strings.NewReader("type: contour\nfunction: nope"))
	if _, err := s.Template(); !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("expected ErrUnknownFunction, got %v", err)
	}
	if _, err := ReadSpec(strings.NewReader("type: [")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestTypesMatchTemplates(t *testing.T) {
	for _, name := range Types() {
		doc := "type: " + name
		if name == "contour" {
			doc += "\nfunction: ripple"
		}
		s, _ := ReadSpec(strings.NewReader(doc))
		tmpl, err := s.Template()
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if tmpl.Name() != name {
			t.Errorf("expected %s, got %s", name, tmpl.Name())
		}
	}
}
