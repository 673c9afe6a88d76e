package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
)

func TestConfigReferenceListsEverySection(t *testing.T) {
	md := ConfigReference()
	for _, table := range []string{"margin", "dimensions", "theme", "domain", "scale", "axis", "legend", "tooltip", "color"} {
		if !strings.Contains(md, "## `["+table+"]`") {
			t.Errorf("expected a [%s] section", table)
		}
	}
	if !strings.Contains(md, "CHARTKIT_ENABLE_ZOOM") {
		t.Error("expected the environment overrides")
	}
}

func TestConfigReferenceDefaultsFollowCode(t *testing.T) {
	d := config.Default()
	d.Color.DefaultColor = "tomato"
	d.Theme.ZoomAreaThreshold = 42
	md := dcRenderConfigMarkdown(dcGenerateConfigRef(d))
	if !strings.Contains(md, "| `default_color` | string | `tomato` |") {
		t.Error("expected the default color read from the config")
	}
	if !strings.Contains(md, "| `zoom_area_threshold` | float | `42` |") {
		t.Error("expected the zoom threshold read from the config")
	}
}

func TestDefaultsTOMLDecodes(t *testing.T) {
	doc, err := DefaultsTOML()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var cfg config.Config
	if _, err := toml.Decode(doc, &cfg); err != nil {
		t.Fatalf("decode: %v\n%s", err, doc)
	}
	want := config.Default()
	if cfg.Theme.TransitionDuration != want.Theme.TransitionDuration {
		t.Errorf("expected transition %v, got %v", want.Theme.TransitionDuration, cfg.Theme.TransitionDuration)
	}
	if cfg.Color.ContinuousScheme != want.Color.ContinuousScheme {
		t.Errorf("expected scheme %q, got %q", want.Color.ContinuousScheme, cfg.Color.ContinuousScheme)
	}
}

func TestGuideCoversEveryPreset(t *testing.T) {
	md := Guide()
	for _, name := range config.PresetNames() {
		if !strings.Contains(md, "## "+name+"\n") {
			t.Errorf("expected a section for %s", name)
		}
	}
}

func TestStripTitle(t *testing.T) {
	in := "# Title\n\nintro\n\n## Sub\n\n```toml\n# comment\n```\n"
	want := "intro\n\n### Sub\n\n```toml\n# comment\n```\n"
	if got := dcStripTitle(in); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerateWritesSections(t *testing.T) {
	dir := t.TempDir()
	if err := Standard(dir).Generate(); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, slug := range []string{"charts", "configuration", "changelog"} {
		data, err := os.ReadFile(filepath.Join(dir, slug+".md"))
		if err != nil {
			t.Fatalf("read %s: %v", slug, err)
		}
		if !strings.HasPrefix(string(data), "# ") {
			t.Errorf("%s: expected a top-level heading", slug)
		}
	}
}

func TestGenerateSingleOrdersSections(t *testing.T) {
	out, err := Standard("").GenerateSingle()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	charts := strings.Index(out, "## Chart Types")
	cfg := strings.Index(out, "## Configuration Reference")
	log := strings.Index(out, "## Changelog")
	if charts < 0 || cfg < charts || log < cfg {
		t.Errorf("expected sections in order, got offsets %d %d %d", charts, cfg, log)
	}
}
