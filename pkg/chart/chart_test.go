package chart

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/scale"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// --- helpers ---

type pointsTemplate struct {
	BaseTemplate
	draws    int
	updates  int
	cleanups int
	errs     []error
	drawErr  error
	panicMsg string
	needData bool
	refuse   bool
}

func (t *pointsTemplate) Name() string { return "points" }

func (t *pointsTemplate) ShouldInitialize(c *Chart) bool {
	return !t.refuse && (!t.needData || len(c.Data()) > 0)
}

func (t *pointsTemplate) Draw(c *Chart) error {
	t.draws++
	if t.panicMsg != "" {
		panic(t.panicMsg)
	}
	if t.drawErr != nil {
		return t.drawErr
	}
	data := make([]primitive.Datum, len(c.Data()))
	for i, r := range c.Data() {
		data[i] = r
	}
	c.Engine().AddPoints(data, primitive.Field(c.Props().XKey), primitive.Field(c.Props().YKey), primitive.PointOptions{})
	c.Register(func() { t.updates++ })
	return nil
}

func (t *pointsTemplate) OnError(_ *Chart, err error) { t.errs = append(t.errs, err) }
func (t *pointsTemplate) OnCleanup(*Chart)            { t.cleanups++ }

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

func zoomable(cfg *config.Config) { cfg.Theme.EnableZoom = true }

var sample = []value.Record{
	{"x": 0.0, "y": 0.0},
	{"x": 5.0, "y": 5.0},
	{"x": 10.0, "y": 10.0},
}

func mountChart(t *testing.T, tmpl Template, layers ...config.Layer) *Chart {
	t.Helper()
	c := New(tmpl, Props{
		Data:   sample,
		XKey:   "x",
		YKey:   "y",
		Config: append([]config.Layer{fixedLayout}, layers...),
	}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 500}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	return c
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func checkDomain(t *testing.T, s scale.Scale, min, max float64) {
	t.Helper()
	d := s.Domain()
	if !approx(d.Min, min) || !approx(d.Max, max) {
		t.Errorf("expected domain [%v, %v], got [%v, %v]", min, max, d.Min, d.Max)
	}
}

// --- lifecycle ---

func TestMountDrawsLive(t *testing.T) {
	tmpl := &pointsTemplate{}
	var states []State
	c := New(tmpl, Props{Data: sample, XKey: "x", YKey: "y", Config: []config.Layer{fixedLayout}},
		WithLogger(quietLogger()),
		WithStateHook(func(_, to State) { states = append(states, to) }))

	if err := c.Mount(layout.Size{Width: 500}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	want := []State{Measuring, Configuring, Drawing, Live}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
	if !c.Visible() {
		t.Error("expected the chart visible")
	}
	if c.Size() != (layout.Size{Width: 220, Height: 220}) {
		t.Errorf("expected configured dimensions to win, got %+v", c.Size())
	}
	if w, h := c.PlotSize(); w != 200 || h != 200 {
		t.Errorf("expected a 200x200 plot, got %vx%v", w, h)
	}
	if c.Axes() == nil || c.Tooltip() == nil {
		t.Error("expected axes and tooltip")
	}
	if c.Legend() != nil {
		t.Error("expected no legend by default")
	}
	if c.Interaction() == nil {
		t.Fatal("expected an interaction surface")
	}
	if got, _ := c.Interaction().Attr("pointer-events"); got != "all" {
		t.Errorf("expected the interaction surface to take pointer events, got %q", got)
	}
	if c.Surface().Defs().Find(c.ClipID()) == nil {
		t.Error("expected the clip path in defs")
	}
	if got, _ := c.Plot().Attr("clip-path"); got != "url(#"+c.ClipID()+")" {
		t.Errorf("expected the plot clipped, got %q", got)
	}
}

func TestHeightFollowsRatio(t *testing.T) {
	c := New(&pointsTemplate{}, Props{Data: sample, XKey: "x", YKey: "y"}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 400}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if c.Size() != (layout.Size{Width: 400, Height: 320}) {
		t.Errorf("expected 400x320, got %+v", c.Size())
	}
}

func TestShouldInitializeFalseStaysBlank(t *testing.T) {
	tmpl := &pointsTemplate{needData: true}
	c := New(tmpl, Props{XKey: "x", YKey: "y"}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 400}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if c.State() != Uninitialized || tmpl.draws != 0 {
		t.Errorf("expected no drawing, got state %s and %d draws", c.State(), tmpl.draws)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := mountChart(t, tmpl)

	c.Cleanup()
	c.Cleanup()
	if c.State() != Uninitialized || c.Visible() {
		t.Errorf("expected a blank chart, got state %s", c.State())
	}
	if c.Registry().Len() != 0 {
		t.Errorf("expected an empty registry, got %d", c.Registry().Len())
	}
	if n := c.Surface().Root().Len(); n != 1 {
		t.Errorf("expected only defs left, got %d children", n)
	}
	if c.Surface().Defs().Len() != 0 {
		t.Error("expected empty defs")
	}
	if c.Engine() != nil {
		t.Error("expected the engine released")
	}
}

func TestDestroy(t *testing.T) {
	c := mountChart(t, &pointsTemplate{})
	c.Destroy()
	c.Destroy()
	if c.State() != Destroyed {
		t.Errorf("expected destroyed, got %s", c.State())
	}
	if err := c.Mount(layout.Size{Width: 100}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
	if err := c.SetProps(Props{XKey: "a"}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

// --- errors ---

func TestDrawErrorCleansUp(t *testing.T) {
	boom := errors.New("boom")
	tmpl := &pointsTemplate{drawErr: boom}
	c := New(tmpl, Props{Data: sample, XKey: "x", YKey: "y", Config: []config.Layer{fixedLayout}}, WithLogger(quietLogger()))

	err := c.Mount(layout.Size{Width: 500})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the draw error, got %v", err)
	}
	if len(tmpl.errs) != 1 || !errors.Is(tmpl.errs[0], boom) {
		t.Errorf("expected the error hook called once, got %v", tmpl.errs)
	}
	if c.State() != Uninitialized || c.Visible() {
		t.Errorf("expected a blank chart, got state %s", c.State())
	}
	if c.Surface().Root().Len() != 1 {
		t.Error("expected no half-drawn nodes")
	}
}

func TestDrawPanicRecovered(t *testing.T) {
	tmpl := &pointsTemplate{panicMsg: "bad data"}
	c := New(tmpl, Props{Data: sample, XKey: "x", YKey: "y"}, WithLogger(quietLogger()))

	err := c.Mount(layout.Size{Width: 500})
	if err == nil || !strings.Contains(err.Error(), "bad data") {
		t.Fatalf("expected the recovered panic, got %v", err)
	}
	if len(tmpl.errs) != 1 {
		t.Errorf("expected the error hook called, got %d", len(tmpl.errs))
	}
	if c.State() != Uninitialized {
		t.Errorf("expected uninitialized, got %s", c.State())
	}
}

type plainTemplate struct{ BaseTemplate }

func (plainTemplate) Name() string      { return "plain" }
func (plainTemplate) Draw(*Chart) error { return errors.New("no shapes") }

func TestErrorOption(t *testing.T) {
	var got error
	c := New(plainTemplate{}, Props{XKey: "x", YKey: "y"},
		WithLogger(quietLogger()),
		WithErrorHandler(func(err error) { got = err }))
	_ = c.Mount(layout.Size{Width: 100})
	if got == nil || !strings.Contains(got.Error(), "no shapes") {
		t.Errorf("expected the error option called, got %v", got)
	}
}

// --- props and resize ---

func TestSetPropsIdentity(t *testing.T) {
	tmpl := &pointsTemplate{needData: true}
	c := mountChart(t, tmpl)
	p := c.Props()

	if err := c.SetProps(p); err != nil {
		t.Fatal(err)
	}
	if tmpl.draws != 1 {
		t.Errorf("expected identical props to skip drawing, got %d draws", tmpl.draws)
	}

	var states []State
	c.onState = func(_, to State) { states = append(states, to) }
	p.Data = append([]value.Record(nil), sample...)
	if err := c.SetProps(p); err != nil {
		t.Fatal(err)
	}
	if tmpl.draws != 2 {
		t.Errorf("expected a new data slice to redraw, got %d draws", tmpl.draws)
	}
	want := []State{Reconfiguring, Measuring, Configuring, Drawing, Live}
	if diff := cmp.Diff(want, states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}

	p.Data = nil
	if err := c.SetProps(p); err != nil {
		t.Fatal(err)
	}
	if c.State() != Uninitialized || tmpl.draws != 2 {
		t.Errorf("expected empty data to blank the chart, got %s after %d draws", c.State(), tmpl.draws)
	}
}

func TestResizeRounding(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := New(tmpl, Props{Data: sample, XKey: "x", YKey: "y"}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 300}); err != nil {
		t.Fatal(err)
	}
	if err := c.Resize(layout.Size{Width: 300.2}); err != nil {
		t.Fatal(err)
	}
	if tmpl.draws != 1 {
		t.Errorf("expected a sub-pixel resize to be ignored, got %d draws", tmpl.draws)
	}
	if err := c.Resize(layout.Size{Width: 400}); err != nil {
		t.Fatal(err)
	}
	if tmpl.draws != 2 || c.Size().Width != 400 {
		t.Errorf("expected a redraw at 400, got %d draws at %v", tmpl.draws, c.Size().Width)
	}
}

func TestResizeBlanksWhenInitializeDeclines(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := New(tmpl, Props{Data: sample, XKey: "x", YKey: "y"}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 300}); err != nil {
		t.Fatal(err)
	}
	before := tmpl.cleanups

	tmpl.refuse = true
	if err := c.Resize(layout.Size{Width: 400}); err != nil {
		t.Fatal(err)
	}
	if c.State() != Uninitialized {
		t.Errorf("expected Uninitialized, got %s", c.State())
	}
	if tmpl.cleanups != before+1 {
		t.Errorf("expected one cleanup, got %d", tmpl.cleanups-before)
	}
	if tmpl.draws != 1 {
		t.Errorf("expected no redraw, got %d draws", tmpl.draws)
	}
}

// --- zoom ---

func TestSmallBrushKeepsDomains(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := mountChart(t, tmpl, zoomable)

	c.HandleEvent(Event{Type: PointerDown, X: 20, Y: 20})
	c.HandleEvent(Event{Type: PointerMove, X: 40, Y: 40})
	c.HandleEvent(Event{Type: PointerUp, X: 40, Y: 40})

	checkDomain(t, c.ScaleX(), 0, 10)
	checkDomain(t, c.ScaleY(), 0, 10)
	if tmpl.updates != 0 {
		t.Errorf("expected no update replay, got %d", tmpl.updates)
	}
	if c.Brush().Zoomed() {
		t.Error("expected the brush not zoomed")
	}
}

func TestZoomRoundTrip(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := mountChart(t, tmpl, zoomable)
	xTicks, _ := c.Axes().TickLabels()

	c.HandleEvent(Event{Type: PointerDown, X: 30, Y: 30})
	c.HandleEvent(Event{Type: PointerMove, X: 130, Y: 130})
	c.HandleEvent(Event{Type: PointerUp, X: 130, Y: 130})

	// plot pixels 20..120 on both axes
	checkDomain(t, c.ScaleX(), 1, 6)
	checkDomain(t, c.ScaleY(), 4, 9)
	if tmpl.updates != 1 {
		t.Errorf("expected one update replay, got %d", tmpl.updates)
	}
	if !c.Brush().Zoomed() {
		t.Error("expected the brush zoomed")
	}
	zoomed, _ := c.Axes().TickLabels()
	if cmp.Equal(xTicks, zoomed) {
		t.Error("expected the axes redrawn for the zoomed domain")
	}

	// an empty click resets
	c.HandleEvent(Event{Type: PointerDown, X: 50, Y: 50})
	c.HandleEvent(Event{Type: PointerUp, X: 50, Y: 50})
	checkDomain(t, c.ScaleX(), 0, 10)
	checkDomain(t, c.ScaleY(), 0, 10)
	if tmpl.updates != 2 || c.Brush().Zoomed() {
		t.Errorf("expected a reset replay, got %d updates", tmpl.updates)
	}
	if !c.DomainX().Equal(domain.Numeric(0, 10)) {
		t.Errorf("expected the original domain kept, got %s", c.DomainX())
	}
}

func TestZoomNeedsContinuousScales(t *testing.T) {
	tmpl := &pointsTemplate{}
	c := New(tmpl, Props{
		Data:   []value.Record{{"x": "a", "y": 1.0}, {"x": "b", "y": 2.0}},
		XKey:   "x",
		YKey:   "y",
		Config: []config.Layer{fixedLayout, zoomable},
	}, WithLogger(quietLogger()))
	if err := c.Mount(layout.Size{Width: 500}); err != nil {
		t.Fatal(err)
	}
	if c.ZoomTo(layout.Rect{X: 0, Y: 0, Width: 150, Height: 150}) {
		t.Error("expected a categorical x scale to refuse zooming")
	}
	if tmpl.updates != 0 {
		t.Errorf("expected no replay, got %d", tmpl.updates)
	}
}

func TestEventCoords(t *testing.T) {
	c := mountChart(t, &pointsTemplate{})
	if x, y := c.EventCoords(60, 60, primitive.Pixel); x != 50 || y != 50 {
		t.Errorf("expected plot pixels (50,50), got (%v,%v)", x, y)
	}
	x, y := c.EventCoords(60, 60, primitive.Data)
	if !approx(x, 2.5) || !approx(y, 7.5) {
		t.Errorf("expected data (2.5,7.5), got (%v,%v)", x, y)
	}
}

// --- hover ---

func TestHoverShowsTooltip(t *testing.T) {
	c := mountChart(t, &pointsTemplate{})

	// the middle point sits at plot (100,100)
	if !c.HandleEvent(Event{Type: PointerMove, X: 110, Y: 110}) {
		t.Fatal("expected the hover to show the tooltip")
	}
	rows := c.Tooltip().Content()
	if len(rows) != 2 || rows[0].Label != "x" || rows[1].Value != "5" {
		t.Errorf("unexpected tooltip content %+v", rows)
	}

	c.HandleEvent(Event{Type: PointerMove, X: 60, Y: 160})
	if c.Tooltip().Visible() {
		t.Error("expected the tooltip hidden away from points")
	}

	c.SetTooltipKeys("y")
	c.HandleEvent(Event{Type: PointerMove, X: 110, Y: 110})
	if rows := c.Tooltip().Content(); len(rows) != 1 || rows[0].Label != "y" {
		t.Errorf("expected only the y row, got %+v", rows)
	}

	c.HandleEvent(Event{Type: PointerLeave})
	if c.Tooltip().Visible() {
		t.Error("expected leave to hide the tooltip")
	}
}

// --- configuration ---

func TestAxisLabelsDefaultToKeys(t *testing.T) {
	c := mountChart(t, &pointsTemplate{})
	if c.AxisLabelX() != "x" || c.AxisLabelY() != "y" {
		t.Errorf("expected key labels, got %q %q", c.AxisLabelX(), c.AxisLabelY())
	}
	c = mountChart(t, &pointsTemplate{}, func(cfg *config.Config) { cfg.Axis.LabelX = config.String("Time") })
	if c.AxisLabelX() != "Time" {
		t.Errorf("expected the configured label, got %q", c.AxisLabelX())
	}
}

func TestDomainOverride(t *testing.T) {
	c := mountChart(t, &pointsTemplate{}, func(cfg *config.Config) { cfg.Domain.DomainX = config.Extent(-5, 5) })
	checkDomain(t, c.ScaleX(), -5, 5)
}

func TestLegendEnabled(t *testing.T) {
	c := mountChart(t, &pointsTemplate{}, func(cfg *config.Config) { cfg.Legend.Enabled = true })
	if c.Legend() == nil {
		t.Fatal("expected a legend")
	}
}
