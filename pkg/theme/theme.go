package theme

import (
	"sort"
	"strings"
	"sync"

	"github.com/aclements/go-gg/palette"
)

// Kind tells how a scheme's colors are meant to be used.
type Kind int

const (
	// Categorical schemes are discrete palettes cycled over categories.
	Categorical Kind = iota
	// Continuous schemes are gradients sampled on [0, 1].
	Continuous
)

func (k Kind) String() string {
	if k == Continuous {
		return "continuous"
	}
	return "categorical"
}

// Default scheme names used when a chart does not configure one.
const (
	DefaultCategorical = "tableau10"
	DefaultContinuous  = "viridis"
)

// Scheme is a named color scheme. Colors holds "#rrggbb" values: the
// palette entries of a categorical scheme or the evenly spaced gradient
// stops of a continuous one.
type Scheme struct {
	Name   string
	Kind   Kind
	Colors []string

	// gradient overrides the stop interpolation for built-in gradients.
	gradient palette.Continuous
}

// Gradient returns the scheme as a continuous palette. Categorical schemes
// are interpolated across their entries.
func (s Scheme) Gradient() palette.Continuous {
	if s.gradient != nil {
		return s.gradient
	}
	return thGradient(s.Colors)
}

// Palette returns n colors from the scheme. Categorical schemes cycle;
// continuous schemes are sampled at evenly spaced positions.
func (s Scheme) Palette(n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	if s.Kind == Categorical && len(s.Colors) > 0 {
		for i := range out {
			out[i] = s.Colors[i%len(s.Colors)]
		}
		return out
	}
	g := s.Gradient()
	for i := range out {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = Hex(g.Map(t))
	}
	return out
}

var (
	mu       sync.RWMutex
	registry = map[string]Scheme{}
)

func init() {
	thRegisterBuiltins()
}

// Get returns a named scheme, falling back to tableau10 if not found.
func Get(name string) Scheme {
	mu.RLock()
	defer mu.RUnlock()
	if s, ok := registry[strings.ToLower(name)]; ok {
		return s
	}
	return registry[DefaultCategorical]
}

// Lookup returns a named scheme and whether it exists.
func Lookup(name string) (Scheme, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[strings.ToLower(name)]
	return s, ok
}

// Sequential returns a named scheme for continuous color scales, falling
// back to viridis when the name is unknown.
func Sequential(name string) Scheme {
	if s, ok := Lookup(name); ok {
		return s
	}
	return Get(DefaultContinuous)
}

// Names returns all available scheme names sorted alphabetically.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a user scheme, replacing any scheme of the same name.
func Register(s Scheme) error {
	if err := thValidateScheme(s); err != nil {
		return err
	}
	thRegister(s)
	return nil
}

// thRegister adds a scheme to the registry under its lowercase name.
func thRegister(s Scheme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(s.Name)] = s
}
