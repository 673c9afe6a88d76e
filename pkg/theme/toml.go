package theme

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// thTOMLScheme is the TOML-serializable representation of a Scheme.
type thTOMLScheme struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	Colors []string `toml:"colors"`
}

var thHexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// LoadFromTOML parses a TOML scheme definition from raw bytes.
func LoadFromTOML(data []byte) (Scheme, error) {
	var ts thTOMLScheme
	if err := toml.Unmarshal(data, &ts); err != nil {
		return Scheme{}, fmt.Errorf("theme: parse TOML: %w", err)
	}

	s := Scheme{Name: ts.Name, Colors: ts.Colors}
	switch strings.ToLower(ts.Kind) {
	case "", "categorical":
		s.Kind = Categorical
	case "continuous", "sequential", "diverging":
		s.Kind = Continuous
	default:
		return Scheme{}, fmt.Errorf("theme: unknown scheme kind %q", ts.Kind)
	}

	if err := thValidateScheme(s); err != nil {
		return Scheme{}, err
	}
	return s, nil
}

// SaveToTOML serializes a scheme to TOML bytes.
func SaveToTOML(s Scheme) ([]byte, error) {
	ts := thTOMLScheme{Name: s.Name, Kind: s.Kind.String(), Colors: s.Colors}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(ts); err != nil {
		return nil, fmt.Errorf("theme: encode TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadDir registers every *.toml scheme in dir and returns their names in
// file order. A missing directory is not an error.
func LoadDir(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return nil, fmt.Errorf("theme: glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	var names []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return names, fmt.Errorf("theme: read %s: %w", p, err)
		}
		s, err := LoadFromTOML(data)
		if err != nil {
			return names, fmt.Errorf("theme: %s: %w", filepath.Base(p), err)
		}
		thRegister(s)
		names = append(names, s.Name)
	}
	return names, nil
}

// thValidateScheme checks the name and that every color is a valid hex value.
func thValidateScheme(s Scheme) error {
	if s.Name == "" {
		return fmt.Errorf("theme: missing required field %q", "name")
	}
	min := 1
	if s.Kind == Continuous {
		min = 2
	}
	if len(s.Colors) < min {
		return fmt.Errorf("theme: scheme %q needs at least %d colors, got %d", s.Name, min, len(s.Colors))
	}
	for i, c := range s.Colors {
		if !thHexColorRegex.MatchString(c) {
			return fmt.Errorf("theme: invalid hex color %q at colors[%d] (expected #RRGGBB)", c, i)
		}
	}
	return nil
}
