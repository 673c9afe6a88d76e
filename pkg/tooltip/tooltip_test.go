package tooltip

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
	"gitlab.com/tinyland/lab/chartkit/pkg/surface"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

var bounds = layout.Size{Width: 400, Height: 300}

func newTooltip() *Tooltip {
	return New(config.Default().Tooltip, bounds)
}

var datum = value.Record{"x": 1.5, "y": 1234, "name": "alpha"}

// --- formatting ---

func TestFormat(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, Missing},
		{"alpha", "alpha"},
		{true, "Yes"},
		{false, "No"},
		{42, "42"},
		{1234, "1,234"},
		{-1234567.0, "-1,234,567"},
		{3.14159, "3.1416"},
		{0.5, "0.5"},
		{time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), "3/9/2024"},
		{(*time.Time)(nil), Missing},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%v): expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestShowFormatsKeys(t *testing.T) {
	tt := newTooltip()
	tt.Show(100, 100, datum, []string{"name", "y", "missing"}, nil)

	want := []Row{{"name", "alpha"}, {"y", "1,234"}, {"missing", Missing}}
	if diff := cmp.Diff(want, tt.Content()); diff != "" {
		t.Errorf("content (-want +got):\n%s", diff)
	}
	if !tt.Visible() {
		t.Error("expected the tooltip visible")
	}
}

func TestFormatterOverrides(t *testing.T) {
	cfg := config.Default().Tooltip
	cfg.Formatter = func(key string, v any) string { return strings.ToUpper(key) + "=" + Format(v) }
	tt := New(cfg, bounds)

	tt.Show(0, 0, datum, []string{"x"}, nil)
	if got := tt.Content()[0].Value; got != "X=1.5" {
		t.Errorf("expected the configured formatter, got %q", got)
	}

	tt.Show(0, 0, datum, []string{"x"}, func(string, any) string { return "custom" })
	if got := tt.Content()[0].Value; got != "custom" {
		t.Errorf("expected the per-call formatter, got %q", got)
	}
}

func TestDisabledStaysHidden(t *testing.T) {
	cfg := config.Default().Tooltip
	cfg.Enabled = false
	tt := New(cfg, bounds)
	tt.Show(10, 10, datum, []string{"x"}, nil)
	if tt.Visible() || len(tt.Content()) != 0 {
		t.Error("expected a disabled tooltip to ignore Show")
	}
}

func TestKeys(t *testing.T) {
	tt := newTooltip()
	if diff := cmp.Diff([]string{"x", "y"}, tt.Keys("x", "y")); diff != "" {
		t.Errorf("fallback keys (-want +got):\n%s", diff)
	}
	cfg := config.Default().Tooltip
	cfg.DisplayKeys = []string{"name"}
	if diff := cmp.Diff([]string{"name"}, New(cfg, bounds).Keys("x", "y")); diff != "" {
		t.Errorf("configured keys (-want +got):\n%s", diff)
	}
}

// --- placement ---

func TestPlacement(t *testing.T) {
	tt := newTooltip()
	keys := []string{"name", "y"}
	tt.Show(0, 0, datum, keys, nil)
	sz := tt.Size()
	if sz.Height != 44 {
		t.Fatalf("expected a two row box 44px tall, got %v", sz.Height)
	}

	cases := []struct {
		name   string
		px, py float64
		wx, wy float64
	}{
		{"offset", 100, 100, 115, 85},
		{"flip right", 390, 100, 390 - sz.Width - 15, 85},
		{"clamp top", 100, 5, 115, 10},
		{"flip bottom", 100, 295, 115, 295 - 44 + 15},
	}
	for _, c := range cases {
		tt.Show(c.px, c.py, datum, keys, nil)
		x, y := tt.Position()
		if x != c.wx || y != c.wy {
			t.Errorf("%s: expected (%v,%v), got (%v,%v)", c.name, c.wx, c.wy, x, y)
		}
	}
}

func TestMoveKeepsContent(t *testing.T) {
	tt := newTooltip()
	tt.Move(50, 50)
	if x, y := tt.Position(); x != 0 || y != 0 {
		t.Errorf("expected a hidden tooltip not to move, got (%v,%v)", x, y)
	}

	tt.Show(100, 100, datum, []string{"x"}, nil)
	tt.Move(200, 150)
	if x, y := tt.Position(); x != 215 || y != 135 {
		t.Errorf("expected (215,135), got (%v,%v)", x, y)
	}
	if len(tt.Content()) != 1 {
		t.Error("expected the content kept")
	}
}

// --- drawing ---

func TestAttachFollowsVisibility(t *testing.T) {
	s := surface.New(400, 300)
	tt := newTooltip()
	g := tt.Attach(s.Root())
	if op, _ := g.Attr("opacity"); op != "0" {
		t.Errorf("expected hidden on attach, got opacity %q", op)
	}

	tt.Show(100, 100, datum, []string{"name", "x"}, nil)
	if op, _ := g.Attr("opacity"); op != "1" {
		t.Errorf("expected shown, got opacity %q", op)
	}
	if got, _ := g.Attr("transform"); got != "translate(115,85)" {
		t.Errorf("expected translate(115,85), got %q", got)
	}
	if g.Len() != 3 {
		t.Fatalf("expected a box and two rows, got %d children", g.Len())
	}
	row := g.Children()[2]
	if got := row.Children()[1].Text(); got != "1.5" {
		t.Errorf("expected the value tspan, got %q", got)
	}

	tt.Hide()
	if op, _ := g.Attr("opacity"); op != "0" || tt.Visible() {
		t.Errorf("expected hidden, got opacity %q", op)
	}

	tt.Detach()
	if !g.Removed() {
		t.Error("expected the group removed")
	}
}
