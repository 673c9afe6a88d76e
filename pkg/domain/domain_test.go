package domain

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// --- helpers ----------------------------------------------------------------

// newTestResolver returns a resolver whose warnings are captured in buf.
func newTestResolver(buf *bytes.Buffer) *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(buf, nil)))
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// --- Resolve ----------------------------------------------------------------

func TestResolveNumericPadding(t *testing.T) {
	d := Resolve([]any{3, 7, 5}, Options{Padding: 0.1})
	if d.Kind != value.Numeric {
		t.Fatalf("expected numeric, got %s", d.Kind)
	}
	if !approx(d.Min, 2.6) || !approx(d.Max, 7.4) {
		t.Errorf("expected [2.6, 7.4], got %s", d)
	}
}

func TestResolveCategoricalFirstSeen(t *testing.T) {
	d := Resolve([]any{"a", "b", "a", "c"}, Options{})
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, d.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOverrideUnchanged(t *testing.T) {
	o := Numeric(-5, 5)
	d := Resolve([]any{1, 2, 3}, Options{Override: &o, Padding: 0.5})
	if !d.Equal(o) {
		t.Errorf("expected override %s, got %s", o, d)
	}
}

func TestResolveLogSkipsPadding(t *testing.T) {
	d := Resolve([]any{1, 100}, Options{Padding: 0.5, Log: true})
	if d.Min != 1 || d.Max != 100 {
		t.Errorf("expected [1, 100], got %s", d)
	}
}

func TestResolveMixedFallsBackWithWarning(t *testing.T) {
	var buf bytes.Buffer
	d := newTestResolver(&buf).Resolve([]any{"a", 1}, Options{})
	if !d.Equal(DefaultFallback) {
		t.Errorf("expected fallback [0, 1], got %s", d)
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestResolveEmptyUsesCallerFallback(t *testing.T) {
	var buf bytes.Buffer
	fb := Categorical()
	d := newTestResolver(&buf).Resolve(nil, Options{Fallback: &fb})
	if !d.IsCategorical() || len(d.Categories) != 0 {
		t.Errorf("expected empty category set, got %s", d)
	}
}

func TestResolveNonFiniteOnly(t *testing.T) {
	var buf bytes.Buffer
	d := newTestResolver(&buf).Resolve([]any{math.NaN(), math.Inf(1)}, Options{})
	if !d.Equal(DefaultFallback) {
		t.Errorf("expected fallback, got %s", d)
	}
}

func TestResolveTemporal(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(10 * time.Hour)
	d := Resolve([]any{t1, t0}, Options{Padding: 0.1})
	if d.Kind != value.Temporal {
		t.Fatalf("expected temporal, got %s", d.Kind)
	}
	lo, hi := d.Times()
	if !lo.Equal(t0.Add(-time.Hour)) || !hi.Equal(t1.Add(time.Hour)) {
		t.Errorf("expected one hour of padding each side, got %s", d)
	}
}

// Padded numeric domains always contain the data.
func TestResolveContainsValues(t *testing.T) {
	sets := [][]any{
		{0.0, 1.0},
		{-3, 12, 7},
		{42},
		{1e-9, 2e-9},
	}
	for _, vals := range sets {
		for _, p := range []float64{0, 0.05, 0.3} {
			d := Resolve(vals, Options{Padding: p})
			for _, v := range vals {
				f, _ := value.Float(v)
				if f < d.Min || f > d.Max {
					t.Errorf("value %v outside %s (padding %g)", v, d, p)
				}
			}
		}
	}
}

// --- Merge ------------------------------------------------------------------

func TestMergeContinuous(t *testing.T) {
	d := Merge(Numeric(0, 5), Numeric(-2, 3), Numeric(1, 9))
	if d.Min != -2 || d.Max != 9 {
		t.Errorf("expected [-2, 9], got %s", d)
	}
}

func TestMergeCategorical(t *testing.T) {
	d := Merge(Categorical("a", "b"), Categorical("b", "c"))
	if diff := cmp.Diff([]string{"a", "b", "c"}, d.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}
