package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// ErrUnknownType is returned for chart types that do not exist.
var ErrUnknownType = errors.New("charts: unknown chart type")

// ErrUnknownFunction is returned for contour functions that do not exist.
var ErrUnknownFunction = errors.New("charts: unknown contour function")

// Functions are the named fields a chart description can contour.
var Functions = map[string]func(x, y float64) float64{
	"gaussian": func(x, y float64) float64 { return math.Exp(-(x*x + y*y)) },
	"saddle":   func(x, y float64) float64 { return x*x - y*y },
	"ripple":   func(x, y float64) float64 { return math.Sin(math.Hypot(x, y)) },
	"peaks": func(x, y float64) float64 {
		return 3*(1-x)*(1-x)*math.Exp(-x*x-(y+1)*(y+1)) -
			10*(x/5-x*x*x-math.Pow(y, 5))*math.Exp(-x*x-y*y) -
			math.Exp(-(x+1)*(x+1)-y*y)/3
	},
}

// Types returns the chart type names, sorted.
func Types() []string {
	return config.PresetNames()
}

// Spec is a chart description: the chart type, its keys and options, a
// configuration overlay and the data. It is what the chartkit command
// reads from YAML.
type Spec struct {
	Type  string   `yaml:"type"`
	X     string   `yaml:"x"`
	Y     string   `yaml:"y"`
	YKeys []string `yaml:"y_keys,omitempty"`
	Color string   `yaml:"color,omitempty"`
	Value string   `yaml:"value,omitempty"`

	URL    string `yaml:"url,omitempty"`
	Coords string `yaml:"coords,omitempty"`
	Width  string `yaml:"width,omitempty"`

	Function string `yaml:"function,omitempty"`

	PointSize          *float64 `yaml:"point_size,omitempty"`
	Symbol             string   `yaml:"symbol,omitempty"`
	Bins               *int     `yaml:"bins,omitempty"`
	Padding            *float64 `yaml:"padding,omitempty"`
	UseDifferentColors *bool    `yaml:"use_different_colors,omitempty"`
	ShowCellLabel      *bool    `yaml:"show_cell_label,omitempty"`
	CornerCoords       bool     `yaml:"corner_coords,omitempty"`
	Shade              *bool    `yaml:"shade,omitempty"`
	Thresholds         *int     `yaml:"thresholds,omitempty"`
	Resolution         *int     `yaml:"resolution,omitempty"`
	LineWidth          *float64 `yaml:"line_width,omitempty"`

	Config yaml.Node      `yaml:"config,omitempty"`
	Data   []value.Record `yaml:"data"`
}

// LoadSpec reads a chart description file.
func LoadSpec(path string) (*Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("charts: open spec: %w", err)
	}
	defer f.Close()
	return ReadSpec(f)
}

// ReadSpec decodes a chart description.
func ReadSpec(r io.Reader) (*Spec, error) {
	var s Spec
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("charts: decode spec: %w", err)
	}
	return &s, nil
}

// Template builds the chart type the description names.
func (s *Spec) Template() (chart.Template, error) {
	switch s.Type {
	case "scatter":
		t := NewScatter()
		t.ColorKey = s.Color
		if s.PointSize != nil {
			t.PointSize = primitive.Const(*s.PointSize)
		}
		if s.Symbol != "" {
			t.Symbol = primitive.ParseSymbol(s.Symbol)
		}
		return t, nil
	case "bar":
		t := NewBar()
		if s.Padding != nil {
			t.Padding = *s.Padding
		}
		if s.UseDifferentColors != nil {
			t.UseDifferentColors = *s.UseDifferentColors
		}
		return t, nil
	case "histogram":
		t := NewHistogram()
		if s.Bins != nil {
			t.NumBins = *s.Bins
		}
		return t, nil
	case "line":
		keys := s.YKeys
		if len(keys) == 0 && s.Y != "" {
			keys = []string{s.Y}
		}
		t := NewLine(keys...)
		if s.LineWidth != nil {
			t.LineWidth = *s.LineWidth
		}
		return t, nil
	case "matrix":
		t := NewMatrix(s.Value)
		if s.Padding != nil {
			t.Padding = *s.Padding
		}
		if s.ShowCellLabel != nil {
			t.ShowCellLabel = *s.ShowCellLabel
		}
		return t, nil
	case "contour":
		fn, ok := Functions[s.Function]
		if !ok {
			return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownFunction, s.Function, functionNames())
		}
		t := NewContour(fn)
		if s.Thresholds != nil {
			t.Thresholds = *s.Thresholds
		}
		if s.Resolution != nil {
			t.ResolutionX, t.ResolutionY = *s.Resolution, *s.Resolution
		}
		if s.Shade != nil {
			t.Shade = *s.Shade
		}
		return t, nil
	case "image":
		t := NewImage(s.URL, s.Coords, s.Width)
		t.CornerCoords = s.CornerCoords
		return t, nil
	}
	return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownType, s.Type, Types())
}

// Props returns the chart props: the data, the keys and the description's
// configuration overlay after any extra layers.
func (s *Spec) Props(layers ...config.Layer) (chart.Props, error) {
	p := chart.Props{Data: s.Data, XKey: s.X, YKey: s.Y}
	p.Config = append(p.Config, layers...)
	if s.Config.Kind != 0 {
		raw, err := yaml.Marshal(&s.Config)
		if err != nil {
			return chart.Props{}, fmt.Errorf("charts: encode config: %w", err)
		}
		l, err := config.FromYAML(raw)
		if err != nil {
			return chart.Props{}, err
		}
		p.Config = append(p.Config, l)
	}
	return p, nil
}

func functionNames() []string {
	names := make([]string, 0, len(Functions))
	for n := range Functions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
