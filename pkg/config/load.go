package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/chartkit/config.toml
//  2. ~/.config/chartkit/config.toml
//
// If no file exists, returns Default() with environment overrides.
func Load() (*Config, error) {
	if p, ok := FindFile(); ok {
		return LoadFromFile(p)
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindFile returns the first existing file on the standard config path.
func FindFile() (string, bool) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// LoadLayer reads a TOML or YAML file, chosen by extension as in
// LoadFromFile, as a layer.
func LoadLayer(path string) (Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return FromTOML(data)
	}
}

// LoadFromFile reads configuration from a specific file path. Files ending
// in .yaml or .yml are decoded as YAML, everything else as TOML.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadFromYAMLReader(f)
	default:
		return LoadFromReader(f)
	}
}

// LoadFromReader reads TOML configuration from an io.Reader. Keys absent
// from the document keep their defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parse TOML: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromYAMLReader is LoadFromReader for YAML documents.
func LoadFromYAMLReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: parse YAML: %w", err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FromTOML returns a layer that decodes data onto the config it is applied
// to. The document is validated up front.
func FromTOML(data []byte) (Layer, error) {
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(Default()); err != nil {
		return nil, fmt.Errorf("config: parse TOML: %w", err)
	}
	return func(c *Config) {
		// Already validated against the same schema.
		_, _ = toml.NewDecoder(bytes.NewReader(data)).Decode(c)
	}, nil
}

// FromYAML is FromTOML for YAML documents.
func FromYAML(data []byte) (Layer, error) {
	if err := yaml.Unmarshal(data, Default()); err != nil {
		return nil, fmt.Errorf("config: parse YAML: %w", err)
	}
	return func(c *Config) {
		_ = yaml.Unmarshal(data, c)
	}, nil
}

// Env returns a layer applying the CHARTKIT_* environment overrides.
func Env() Layer {
	return applyEnvOverrides
}

// applyEnvOverrides checks environment variables and overrides config values.
// Unparseable values are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHARTKIT_THEME"); v != "" {
		cfg.Color.CategoricalScheme = v
	}
	if v := os.Getenv("CHARTKIT_CONTINUOUS_THEME"); v != "" {
		cfg.Color.ContinuousScheme = v
	}
	if v := os.Getenv("CHARTKIT_ENABLE_ZOOM"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Theme.EnableZoom = b
		}
	}
	if v := os.Getenv("CHARTKIT_TRANSITION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Theme.TransitionDuration = Duration{d}
		}
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "chartkit", "config.toml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "chartkit", "config.toml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// SchemeDir returns the directory user color schemes are loaded from.
func SchemeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), "chartkit", "schemes")
}
