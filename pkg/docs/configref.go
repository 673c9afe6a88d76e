package docs

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"gitlab.com/tinyland/lab/chartkit/pkg/config"
	"gitlab.com/tinyland/lab/chartkit/pkg/theme"
)

// ConfigRef holds the full configuration reference documentation.
type ConfigRef struct {
	// Sections groups config fields by TOML table.
	Sections []ConfigSection

	// Env lists the environment overrides.
	Env []ConfigField
}

// ConfigSection documents a single TOML table (e.g., [axis]).
type ConfigSection struct {
	// Name is the TOML table name (e.g., "axis").
	Name string

	// Description summarizes what this section configures.
	Description string

	// Fields lists the config keys in this section.
	Fields []ConfigField
}

// ConfigField documents a single config key.
type ConfigField struct {
	// Name is the TOML key name.
	Name string

	// Type is the TOML type (e.g., "string", "bool", "duration").
	Type string

	// Default is the default value as a string.
	Default string

	// Description explains what this field controls.
	Description string

	// Example is a TOML snippet showing usage.
	Example string
}

// ConfigReference renders the configuration reference as Markdown.
func ConfigReference() string {
	return dcRenderConfigMarkdown(dcGenerateConfigRef(config.Default()))
}

// dcGenerateConfigRef builds the configuration reference. Defaults are
// read from d so the document cannot drift from the code.
func dcGenerateConfigRef(d *config.Config) *ConfigRef {
	return &ConfigRef{
		Sections: []ConfigSection{
			dcMarginSection(d),
			dcDimensionsSection(d),
			dcThemeSection(d),
			dcDomainSection(d),
			dcScaleSection(d),
			dcAxisSection(d),
			dcLegendSection(d),
			dcTooltipSection(d),
			dcColorSection(d),
		},
		Env: []ConfigField{
			{Name: "CHARTKIT_THEME", Type: "string", Description: "Overrides `color.categorical_scheme`"},
			{Name: "CHARTKIT_CONTINUOUS_THEME", Type: "string", Description: "Overrides `color.continuous_scheme`"},
			{Name: "CHARTKIT_ENABLE_ZOOM", Type: "bool", Description: "Overrides `theme.enable_zoom`"},
			{Name: "CHARTKIT_TRANSITION", Type: "duration", Description: "Overrides `theme.transition_duration`"},
		},
	}
}

// dcRenderConfigMarkdown renders a ConfigRef as a Markdown document with TOML examples.
func dcRenderConfigMarkdown(ref *ConfigRef) string {
	var b strings.Builder

	b.WriteString("# Configuration Reference\n\n")
	b.WriteString("chartkit reads TOML or YAML configuration; both use the keys below.\n\n")
	b.WriteString("Config file location: `$XDG_CONFIG_HOME/chartkit/config.toml`\n\n")
	b.WriteString("Each chart type applies its own preset over these defaults before the\n")
	b.WriteString("file, the environment and the chart description's `config` block.\n\n")

	for _, s := range ref.Sections {
		b.WriteString(fmt.Sprintf("## `[%s]`\n\n", s.Name))
		b.WriteString(s.Description + "\n\n")

		b.WriteString("| Key | Type | Default | Description |\n")
		b.WriteString("|-----|------|---------|-------------|\n")
		for _, f := range s.Fields {
			def := f.Default
			if def == "" {
				def = "-"
			}
			b.WriteString(fmt.Sprintf("| `%s` | %s | `%s` | %s |\n",
				f.Name, f.Type, def, f.Description))
		}
		b.WriteString("\n")

		b.WriteString("**Example:**\n\n")
		b.WriteString("```toml\n")
		b.WriteString(fmt.Sprintf("[%s]\n", s.Name))
		for _, f := range s.Fields {
			if f.Example != "" {
				b.WriteString(f.Example + "\n")
			}
		}
		b.WriteString("```\n\n")
	}

	if len(ref.Env) > 0 {
		b.WriteString("## Environment\n\n")
		b.WriteString("| Variable | Type | Description |\n")
		b.WriteString("|----------|------|-------------|\n")
		for _, f := range ref.Env {
			b.WriteString(fmt.Sprintf("| `%s` | %s | %s |\n", f.Name, f.Type, f.Description))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Color schemes\n\n")
	b.WriteString("Built in: " + strings.Join(theme.Names(), ", ") + ".\n\n")
	b.WriteString("More can be added as TOML files under `$XDG_CONFIG_HOME/chartkit/schemes`.\n\n")

	b.WriteString("## Chart presets\n\n")
	b.WriteString("Presets exist for: " + strings.Join(config.PresetNames(), ", ") + ".\n")
	return b.String()
}

// DefaultsTOML encodes the default configuration as a TOML document.
func DefaultsTOML() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config.Default()); err != nil {
		return "", fmt.Errorf("encode defaults: %w", err)
	}
	return buf.String(), nil
}

func dcNum(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
func dcBool(b bool) string   { return strconv.FormatBool(b) }

func dcExtent(s config.DomainSpec) string {
	if len(s.Extent) == 2 {
		return fmt.Sprintf("[%s, %s]", dcNum(s.Extent[0]), dcNum(s.Extent[1]))
	}
	return ""
}

func dcMarginSection(d *config.Config) ConfigSection {
	in := d.Margin.Insets()
	return ConfigSection{
		Name:        "margin",
		Description: "Plot margins in pixels. Setting any side turns auto-margins off.",
		Fields: []ConfigField{
			{Name: "top", Type: "float", Default: dcNum(in.Top), Description: "Top margin", Example: `top = 20`},
			{Name: "bottom", Type: "float", Default: dcNum(in.Bottom), Description: "Bottom margin, room for the x axis", Example: `bottom = 40`},
			{Name: "left", Type: "float", Default: dcNum(in.Left), Description: "Left margin, room for the y axis", Example: `left = 60`},
			{Name: "right", Type: "float", Default: dcNum(in.Right), Description: "Right margin"},
			{
				Name:        "auto",
				Type:        "bool",
				Default:     dcBool(d.Margin.Auto),
				Description: "Grow the left and bottom margins to fit tick labels and axis titles",
			},
		},
	}
}

func dcDimensionsSection(d *config.Config) ConfigSection {
	return ConfigSection{
		Name:        "dimensions",
		Description: "Chart size. Zero width follows the container width.",
		Fields: []ConfigField{
			{Name: "width", Type: "float", Default: dcNum(d.Dimensions.Width), Description: "Fixed width in pixels", Example: `width = 640`},
			{Name: "height", Type: "float", Default: dcNum(d.Dimensions.Height), Description: "Fixed height in pixels"},
			{
				Name:        "height_to_width_ratio",
				Type:        "float",
				Default:     dcNum(d.Dimensions.HeightToWidthRatio),
				Description: "Height as a fraction of width when height is zero",
				Example:     `height_to_width_ratio = 0.6`,
			},
		},
	}
}

func dcThemeSection(d *config.Config) ConfigSection {
	return ConfigSection{
		Name:        "theme",
		Description: "Presentation and interaction settings.",
		Fields: []ConfigField{
			{Name: "opacity", Type: "float", Default: dcNum(d.Theme.Opacity), Description: "Opacity of data marks"},
			{
				Name:        "transition_duration",
				Type:        "duration",
				Default:     d.Theme.TransitionDuration.String(),
				Description: "Length of animated updates such as zooming",
				Example:     `transition_duration = "250ms"`,
			},
			{
				Name:        "enable_zoom",
				Type:        "bool",
				Default:     dcBool(d.Theme.EnableZoom),
				Description: "Brush to zoom, click to reset",
				Example:     `enable_zoom = true`,
			},
			{
				Name:        "zoom_area_threshold",
				Type:        "float",
				Default:     dcNum(d.Theme.ZoomAreaThreshold),
				Description: "Smallest brush area in square pixels that zooms",
			},
		},
	}
}

func dcDomainSection(d *config.Config) ConfigSection {
	return ConfigSection{
		Name:        "domain",
		Description: "Domain inference. An explicit domain replaces inference for its axis.",
		Fields: []ConfigField{
			{Name: "padding_x", Type: "float", Default: dcNum(d.Domain.PaddingX), Description: "Fraction of the x extent added on each side"},
			{Name: "padding_y", Type: "float", Default: dcNum(d.Domain.PaddingY), Description: "Fraction of the y extent added on each side"},
			{
				Name:        "domain_x",
				Type:        "table",
				Description: "Explicit x domain: `extent`, `categories` or `dates`",
				Example:     `domain_x = { extent = [0, 100] }`,
			},
			{
				Name:        "domain_y",
				Type:        "table",
				Description: "Explicit y domain",
				Example:     `domain_y = { categories = ["low", "mid", "high"] }`,
			},
			{Name: "default_domain_x", Type: "table", Default: dcExtent(d.Domain.DefaultDomainX), Description: "Used when x inference fails"},
			{Name: "default_domain_y", Type: "table", Default: dcExtent(d.Domain.DefaultDomainY), Description: "Used when y inference fails"},
		},
	}
}

func dcScaleSection(d *config.Config) ConfigSection {
	return ConfigSection{
		Name:        "scale",
		Description: "Scale type and rounding per axis. Log scales need positive domains.",
		Fields: []ConfigField{
			{Name: "log_x", Type: "bool", Default: dcBool(d.Scale.LogX), Description: "Logarithmic x axis", Example: `log_x = true`},
			{Name: "log_y", Type: "bool", Default: dcBool(d.Scale.LogY), Description: "Logarithmic y axis"},
			{Name: "nice_x", Type: "bool", Default: dcBool(d.Scale.NiceX), Description: "Round the x domain to tick steps"},
			{Name: "nice_y", Type: "bool", Default: dcBool(d.Scale.NiceY), Description: "Round the y domain to tick steps"},
		},
	}
}

func dcAxisSection(d *config.Config) ConfigSection {
	a := d.Axis
	return ConfigSection{
		Name:        "axis",
		Description: "Axes and grid lines. Labels default to the chart's keys; an empty label hides the title.",
		Fields: []ConfigField{
			{Name: "show_axis_x", Type: "bool", Default: dcBool(a.ShowAxisX), Description: "Draw the x axis"},
			{Name: "show_axis_y", Type: "bool", Default: dcBool(a.ShowAxisY), Description: "Draw the y axis"},
			{Name: "show_grid_x", Type: "bool", Default: dcBool(a.ShowGridX), Description: "Vertical grid lines"},
			{Name: "show_grid_y", Type: "bool", Default: dcBool(a.ShowGridY), Description: "Horizontal grid lines", Example: `show_grid_y = false`},
			{Name: "label_x", Type: "string", Description: "x axis title; `$...$` segments render as math", Example: `label_x = "time (s)"`},
			{Name: "label_y", Type: "string", Description: "y axis title"},
			{Name: "tick_count", Type: "int", Default: strconv.Itoa(a.TickCount), Description: "Approximate ticks per axis"},
			{Name: "tick_size", Type: "float", Default: dcNum(a.TickSize), Description: "Tick length in pixels"},
			{Name: "font_size", Type: "float", Default: dcNum(a.FontSize), Description: "Tick and title font size"},
			{Name: "label_offset_x", Type: "float", Default: dcNum(a.LabelOffsetX), Description: "Gap between the x tick labels and title"},
			{Name: "label_offset_y", Type: "float", Default: dcNum(a.LabelOffsetY), Description: "Gap between the y tick labels and title"},
			{Name: "grid_color", Type: "string", Default: a.GridColor, Description: "Grid line color"},
		},
	}
}

func dcLegendSection(d *config.Config) ConfigSection {
	l := d.Legend
	return ConfigSection{
		Name:        "legend",
		Description: "The color legend, placed from the top right corner.",
		Fields: []ConfigField{
			{Name: "enabled", Type: "bool", Default: dcBool(l.Enabled), Description: "Draw the legend", Example: `enabled = true`},
			{Name: "title", Type: "string", Description: "Legend title; defaults to the color key", Example: `title = "Species"`},
			{Name: "max_height", Type: "float", Default: dcNum(l.MaxHeight), Description: "Categorical items beyond this height collapse into \"+N more\"; zero uses the plot height"},
			{Name: "top", Type: "float", Default: dcNum(l.Top), Description: "Offset from the top edge"},
			{Name: "right", Type: "float", Default: dcNum(l.Right), Description: "Offset from the right edge"},
			{Name: "categorical_item_height", Type: "float", Default: dcNum(l.CategoricalItemHeight), Description: "Row height of categorical items"},
			{Name: "continuous_bar_width", Type: "float", Default: dcNum(l.ContinuousBarWidth), Description: "Thickness of the gradient bar"},
			{Name: "continuous_bar_length", Type: "float", Default: dcNum(l.ContinuousBarLength), Description: "Length of the gradient bar"},
		},
	}
}

func dcTooltipSection(d *config.Config) ConfigSection {
	t := d.Tooltip
	return ConfigSection{
		Name:        "tooltip",
		Description: "The hover tooltip.",
		Fields: []ConfigField{
			{Name: "enabled", Type: "bool", Default: dcBool(t.Enabled), Description: "Show values on hover"},
			{
				Name:        "display_keys",
				Type:        "[]string",
				Description: "Record keys to list; defaults depend on the chart type",
				Example:     `display_keys = ["name", "value"]`,
			},
			{Name: "offset_x", Type: "float", Default: dcNum(t.OffsetX), Description: "Horizontal offset from the pointer"},
			{Name: "offset_y", Type: "float", Default: dcNum(t.OffsetY), Description: "Vertical offset from the pointer"},
			{Name: "edge_padding", Type: "float", Default: dcNum(t.EdgePadding), Description: "Minimum distance from the chart edge"},
		},
	}
}

func dcColorSection(d *config.Config) ConfigSection {
	c := d.Color
	return ConfigSection{
		Name:        "color",
		Description: "Color schemes by name.",
		Fields: []ConfigField{
			{Name: "default_color", Type: "string", Default: c.DefaultColor, Description: "Color of uncoloured marks"},
			{
				Name:        "categorical_scheme",
				Type:        "string",
				Default:     c.CategoricalScheme,
				Description: "Palette for categorical color keys",
				Example:     `categorical_scheme = "dark2"`,
			},
			{
				Name:        "continuous_scheme",
				Type:        "string",
				Default:     c.ContinuousScheme,
				Description: "Gradient for continuous color keys",
				Example:     `continuous_scheme = "blues"`,
			},
		},
	}
}
