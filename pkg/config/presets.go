package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownPreset is returned by LookupPreset for unregistered chart types.
var ErrUnknownPreset = errors.New("config: unknown preset")

var presets = map[string]Layer{
	"scatter":   scatterPreset,
	"bar":       barPreset,
	"histogram": histogramPreset,
	"line":      linePreset,
	"matrix":    matrixPreset,
	"contour":   contourPreset,
	"image":     imagePreset,
}

// Preset returns the per-chart-type defaults layer for name. Unknown names
// return a nil layer, which Build skips.
func Preset(name string) Layer {
	return presets[name]
}

// LookupPreset is Preset with an error for unknown names.
func LookupPreset(name string) (Layer, error) {
	l, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return l, nil
}

// PresetNames returns the chart types with presets, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// scatterPreset keeps the global defaults.
func scatterPreset(c *Config) {}

// barPreset drops vertical grid lines; bars start at zero so the y axis
// is not padded.
func barPreset(c *Config) {
	c.Axis.ShowGridX = false
	c.Domain.PaddingY = 0
}

func histogramPreset(c *Config) {
	c.Axis.ShowGridX = false
	c.Domain.PaddingX = 0
	c.Domain.PaddingY = 0
}

func linePreset(c *Config) {
	c.Domain.PaddingX = 0
}

// matrixPreset shows cells edge to edge with a color legend.
func matrixPreset(c *Config) {
	c.Axis.ShowGridX = false
	c.Axis.ShowGridY = false
	c.Legend.Enabled = true
}

// contourPreset draws the sampled field exactly over its extent.
func contourPreset(c *Config) {
	c.Axis.ShowGridX = false
	c.Axis.ShowGridY = false
	c.Domain.PaddingX = 0
	c.Domain.PaddingY = 0
	c.Scale.NiceX = false
	c.Scale.NiceY = false
	c.Legend.Enabled = true
}

func imagePreset(c *Config) {
	c.Axis.ShowGridX = false
	c.Axis.ShowGridY = false
	c.Tooltip.Enabled = false
}
