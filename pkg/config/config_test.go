package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"gitlab.com/tinyland/lab/chartkit/pkg/domain"
	"gitlab.com/tinyland/lab/chartkit/pkg/layout"
)

// --- helpers ---

// ignoreFuncs skips formatter fields, which cmp cannot compare.
var ignoreFuncs = cmpopts.IgnoreFields(Config{}, "Axis.FormatX", "Axis.FormatY", "Tooltip.Formatter")

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

// --- Default ---

func TestDefaults(t *testing.T) {
	c := Default()
	if c.Theme.TransitionDuration.Duration != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", c.Theme.TransitionDuration)
	}
	if c.Theme.ZoomAreaThreshold != 1000 || c.Theme.EnableZoom {
		t.Errorf("unexpected zoom defaults %+v", c.Theme)
	}
	if !c.Margin.Auto || c.Margin.Explicit() {
		t.Errorf("expected auto margins without explicit sides, got %+v", c.Margin)
	}
	if c.Color.DefaultColor != "steelblue" || c.Color.CategoricalScheme != "tableau10" {
		t.Errorf("unexpected color defaults %+v", c.Color)
	}
	d, ok := c.Domain.DefaultDomainX.Domain()
	if !ok || !d.Equal(domain.Numeric(0, 1)) {
		t.Errorf("expected default domain [0, 1], got %s", d)
	}
}

func TestMarginInsetsUsePresets(t *testing.T) {
	m := MarginConfig{Left: Float(70)}
	want := layout.Insets{Top: 10, Right: 20, Bottom: 45, Left: 70}
	if got := m.Insets(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !m.Explicit() {
		t.Error("expected one set side to count as explicit")
	}
}

// --- Build / Clone ---

func TestBuildAppliesLayersInOrder(t *testing.T) {
	base := Default()
	cfg := Build(base,
		func(c *Config) { c.Theme.Opacity = 0.5 },
		nil,
		func(c *Config) { c.Theme.Opacity = 0.25 },
	)
	if cfg.Theme.Opacity != 0.25 {
		t.Errorf("expected last layer to win, got %v", cfg.Theme.Opacity)
	}
	if base.Theme.Opacity != 1 {
		t.Errorf("expected base untouched, got %v", base.Theme.Opacity)
	}
}

func TestBuildDoesNotAliasBase(t *testing.T) {
	base := Default()
	base.Domain.DomainX = Extent(0, 10)
	cfg := Build(base, func(c *Config) {
		c.Domain.DomainX.Extent[1] = 99
		c.Tooltip.DisplayKeys = append(c.Tooltip.DisplayKeys, "x")
	})
	if base.Domain.DomainX.Extent[1] != 10 {
		t.Errorf("expected base domain untouched, got %v", base.Domain.DomainX.Extent)
	}
	if len(base.Tooltip.DisplayKeys) != 0 {
		t.Errorf("expected base keys untouched, got %v", base.Tooltip.DisplayKeys)
	}
	if cfg.Domain.DomainX.Extent[1] != 99 {
		t.Errorf("expected layer edit on the copy, got %v", cfg.Domain.DomainX.Extent)
	}
}

func TestCloneEqual(t *testing.T) {
	c := Default()
	c.Axis.LabelX = String("time")
	if diff := cmp.Diff(c, c.Clone(), ignoreFuncs); diff != "" {
		t.Errorf("clone mismatch (-want +got):\n%s", diff)
	}
}

func TestWithMarginsDerivesNewConfig(t *testing.T) {
	c := Default()
	d := c.WithMargins(layout.Insets{Top: 1, Right: 2, Bottom: 3, Left: 4})
	if c.Margin.Explicit() {
		t.Error("expected original config unchanged")
	}
	want := layout.Insets{Top: 1, Right: 2, Bottom: 3, Left: 4}
	if got := d.Margin.Insets(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// --- DomainSpec ---

func TestDomainSpecRoundTrip(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, d := range []domain.Domain{
		domain.Categorical("a", "b"),
		domain.Numeric(-1, 1),
		domain.Temporal(t0, t0.Add(time.Hour)),
	} {
		got, ok := Spec(d).Domain()
		if !ok || !got.Equal(d) {
			t.Errorf("expected %s, got %s", d, got)
		}
	}
	if _, ok := (DomainSpec{}).Domain(); ok {
		t.Error("expected empty spec to be rejected")
	}
}

// --- TOML / YAML layers ---

func TestFromTOMLKeepsUnsetKeys(t *testing.T) {
	layer, err := FromTOML([]byte(`
[theme]
transition_duration = "250ms"
enable_zoom = true

[margin]
left = 80.0
`))
	if err != nil {
		t.Fatalf("FromTOML: %v", err)
	}
	cfg := Build(Default(), layer)
	if cfg.Theme.TransitionDuration.Duration != 250*time.Millisecond || !cfg.Theme.EnableZoom {
		t.Errorf("unexpected theme %+v", cfg.Theme)
	}
	if cfg.Theme.Opacity != 1 {
		t.Errorf("expected opacity default kept, got %v", cfg.Theme.Opacity)
	}
	if cfg.Margin.Left == nil || *cfg.Margin.Left != 80 {
		t.Errorf("expected explicit left margin 80, got %v", cfg.Margin.Left)
	}
}

func TestFromTOMLInvalid(t *testing.T) {
	if _, err := FromTOML([]byte(`[theme]
transition_duration = "-1s"`)); err == nil {
		t.Error("expected negative duration to be rejected")
	}
	if _, err := FromTOML([]byte(`not toml`)); err == nil {
		t.Error("expected syntax error")
	}
}

func TestFromYAML(t *testing.T) {
	layer, err := FromYAML([]byte(`
scale:
  log_y: true
theme:
  transition_duration: 1s
domain:
  domain_x:
    categories: [a, b]
`))
	if err != nil {
		t.Fatalf("FromYAML: %v", err)
	}
	cfg := Build(Default(), layer)
	if !cfg.Scale.LogY || !cfg.Scale.NiceY {
		t.Errorf("expected log_y set and nice_y kept, got %+v", cfg.Scale)
	}
	if cfg.Theme.TransitionDuration.Duration != time.Second {
		t.Errorf("expected 1s, got %s", cfg.Theme.TransitionDuration)
	}
	d, ok := cfg.Domain.DomainX.Domain()
	if !ok || !d.Equal(domain.Categorical("a", "b")) {
		t.Errorf("expected [a, b], got %s", d)
	}
}

func TestFromYAMLInvalid(t *testing.T) {
	if _, err := FromYAML([]byte("scale: [")); err == nil {
		t.Error("expected syntax error")
	}
}

// --- Files / env ---

func TestLoadFromFileByExtension(t *testing.T) {
	dir := t.TempDir()
	tp := writeFile(t, dir, "c.toml", "[legend]\nenabled = true\n")
	yp := writeFile(t, dir, "c.yaml", "legend:\n  title: Series\n")

	c, err := LoadFromFile(tp)
	if err != nil || !c.Legend.Enabled {
		t.Errorf("expected TOML legend enabled, got %v, %v", c, err)
	}
	c, err = LoadFromFile(yp)
	if err != nil || c.Legend.Title != "Series" {
		t.Errorf("expected YAML legend title, got %v, %v", c, err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	c, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff(Default(), c, ignoreFuncs); diff != "" {
		t.Errorf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadUsesXDG(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "chartkit/config.toml", "[color]\ndefault_color = \"#ff0000\"\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.Color.DefaultColor != "#ff0000" {
		t.Errorf("expected #ff0000, got %s", c.Color.DefaultColor)
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	if p, ok := FindFile(); ok {
		t.Fatalf("expected no config file, got %s", p)
	}
	want := writeFile(t, dir, "chartkit/config.toml", "[theme]\nenable_zoom = true\n")
	p, ok := FindFile()
	if !ok || p != want {
		t.Errorf("expected %s, got %q", want, p)
	}
}

func TestLoadLayer(t *testing.T) {
	dir := t.TempDir()
	tp := writeFile(t, dir, "c.toml", "[scale]\nlog_x = true\n")
	yp := writeFile(t, dir, "c.yml", "scale:\n  log_y: true\n")

	for _, p := range []string{tp, yp} {
		l, err := LoadLayer(p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		c := Build(Default(), l)
		if !c.Scale.LogX && !c.Scale.LogY {
			t.Errorf("%s: expected a log scale set", p)
		}
		if !c.Scale.NiceX {
			t.Errorf("%s: expected unset keys kept", p)
		}
	}
	if _, err := LoadLayer(filepath.Join(dir, "absent.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHARTKIT_THEME", "dark2")
	t.Setenv("CHARTKIT_ENABLE_ZOOM", "true")
	t.Setenv("CHARTKIT_TRANSITION", "0s")
	cfg := Build(Default(), Env())
	if cfg.Color.CategoricalScheme != "dark2" {
		t.Errorf("expected dark2, got %s", cfg.Color.CategoricalScheme)
	}
	if !cfg.Theme.EnableZoom {
		t.Error("expected zoom enabled")
	}
	if cfg.Theme.TransitionDuration.Duration != 0 {
		t.Errorf("expected 0s, got %s", cfg.Theme.TransitionDuration)
	}
}

func TestEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("CHARTKIT_ENABLE_ZOOM", "maybe")
	t.Setenv("CHARTKIT_TRANSITION", "soon")
	cfg := Build(Default(), Env())
	if cfg.Theme.EnableZoom || cfg.Theme.TransitionDuration.Duration != 500*time.Millisecond {
		t.Errorf("expected defaults kept, got %+v", cfg.Theme)
	}
}

// --- Presets ---

func TestPresets(t *testing.T) {
	bar := Build(Default(), Preset("bar"))
	if bar.Axis.ShowGridX || bar.Domain.PaddingY != 0 {
		t.Errorf("unexpected bar preset %+v", bar.Axis)
	}
	if Preset("nope") != nil {
		t.Error("expected nil layer for unknown preset")
	}
	if _, err := LookupPreset("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if n := len(PresetNames()); n != 7 {
		t.Errorf("expected 7 presets, got %d", n)
	}
}

// --- Duration ---

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil || d.Duration != 90*time.Second {
		t.Errorf("expected 90s, got %s (%v)", d, err)
	}
	if err := d.UnmarshalText([]byte("")); err != nil || d.Duration != 0 {
		t.Errorf("expected empty to mean zero, got %s (%v)", d, err)
	}
	b, _ := Duration{2 * time.Second}.MarshalText()
	if string(b) != "2s" {
		t.Errorf("expected 2s, got %s", b)
	}
}
