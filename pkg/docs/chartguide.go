package docs

import (
	"fmt"
	"strings"
)

// ChartGuide documents the chart types a description file can name.
type ChartGuide struct {
	// Charts lists one entry per chart type.
	Charts []ChartInfo
}

// ChartInfo documents a single chart type.
type ChartInfo struct {
	// Type is the value of the description's type key.
	Type string

	// Summary is a one-line description.
	Summary string

	// Keys lists the description keys the type reads, as "key: meaning".
	Keys []string

	// Notes lists behavior worth knowing.
	Notes []string

	// Example is a complete description file.
	Example string
}

// Guide renders the chart type guide as Markdown.
func Guide() string {
	return dcRenderChartMarkdown(dcGenerateChartGuide())
}

func dcGenerateChartGuide() *ChartGuide {
	return &ChartGuide{
		Charts: []ChartInfo{
			dcScatterChart(),
			dcBarChart(),
			dcHistogramChart(),
			dcLineChart(),
			dcMatrixChart(),
			dcContourChart(),
			dcImageChart(),
		},
	}
}

func dcRenderChartMarkdown(guide *ChartGuide) string {
	var b strings.Builder

	b.WriteString("# Chart Types\n\n")
	b.WriteString(fmt.Sprintf("chartkit draws %d chart types from a YAML description:\n\n", len(guide.Charts)))
	b.WriteString("```sh\nchartkit -spec chart.yaml -out chart.svg\n```\n\n")
	b.WriteString("Every description may carry a `config` block using the keys of the\n")
	b.WriteString("configuration reference, and a `data` list of records.\n\n")

	for _, c := range guide.Charts {
		b.WriteString(fmt.Sprintf("## %s\n\n", c.Type))
		b.WriteString(c.Summary + "\n\n")

		b.WriteString("### Keys\n\n")
		for _, k := range c.Keys {
			name, desc, _ := strings.Cut(k, ": ")
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", name, desc))
		}
		b.WriteString("\n")

		if len(c.Notes) > 0 {
			b.WriteString("### Notes\n\n")
			for _, n := range c.Notes {
				b.WriteString(fmt.Sprintf("- %s\n", n))
			}
			b.WriteString("\n")
		}

		b.WriteString("### Example\n\n")
		b.WriteString("```yaml\n")
		b.WriteString(c.Example)
		b.WriteString("\n```\n\n")
	}
	return b.String()
}

func dcScatterChart() ChartInfo {
	return ChartInfo{
		Type:    "scatter",
		Summary: "One symbol per record.",
		Keys: []string{
			"x: x field",
			"y: y field",
			"color: optional field to color by, categorical or continuous",
			"point_size: symbol area in square pixels (default 50)",
			"symbol: circle, square, diamond, triangle or cross",
		},
		Example: `type: scatter
x: sepal_length
y: petal_length
color: species
config:
  legend: {enabled: true}
  theme: {enable_zoom: true}
data:
  - {sepal_length: 5.1, petal_length: 1.4, species: setosa}
  - {sepal_length: 7.0, petal_length: 4.7, species: versicolor}
  - {sepal_length: 6.3, petal_length: 6.0, species: virginica}`,
	}
}

func dcBarChart() ChartInfo {
	return ChartInfo{
		Type:    "bar",
		Summary: "One bar per category, rising from zero.",
		Keys: []string{
			"x: category field; numbers are used as labels",
			"y: bar height field",
			"padding: band padding between bars (default 0.2)",
			"use_different_colors: color each category (default true)",
		},
		Notes: []string{
			"A configured `domain.domain_y` replaces the zero-based y domain",
			"On a log y axis bars rise from 1",
		},
		Example: `type: bar
x: fruit
y: count
data:
  - {fruit: apples, count: 12}
  - {fruit: pears, count: 7}
  - {fruit: plums, count: 3}`,
	}
}

func dcHistogramChart() ChartInfo {
	return ChartInfo{
		Type:    "histogram",
		Summary: "Counts of the x field in bins at nice tick boundaries.",
		Keys: []string{
			"x: value field",
			"bins: approximate bin count (default 20)",
		},
		Notes: []string{
			"With `scale.log_x` the values are binned in log10 space",
			"The tooltip shows each bin's edges and count",
		},
		Example: `type: histogram
x: latency_ms
bins: 10
data:
  - {latency_ms: 12}
  - {latency_ms: 15}
  - {latency_ms: 31}`,
	}
}

func dcLineChart() ChartInfo {
	return ChartInfo{
		Type:    "line",
		Summary: "One path per y key, sharing the x field.",
		Keys: []string{
			"x: x field",
			"y_keys: the series fields; `y` is used when this is empty",
			"line_width: stroke width (default 1.5)",
		},
		Notes: []string{
			"Hovering moves a guide to the nearest x and lists every series",
			"The legend lists the series when there are two or more",
		},
		Example: `type: line
x: day
y_keys: [min, max]
data:
  - {day: 1, min: 3, max: 11}
  - {day: 2, min: 4, max: 14}
  - {day: 3, min: 2, max: 9}`,
	}
}

func dcMatrixChart() ChartInfo {
	return ChartInfo{
		Type:    "matrix",
		Summary: "A heat map of cells at (x, y) categories.",
		Keys: []string{
			"x: column field",
			"y: row field",
			"value: field that colors each cell",
			"padding: gap between cells (default 0.05)",
			"show_cell_label: print values rounded to two decimals (default true)",
		},
		Example: `type: matrix
x: to
y: from
value: weight
data:
  - {from: a, to: a, weight: 1.0}
  - {from: a, to: b, weight: 0.25}
  - {from: b, to: a, weight: 0.5}
  - {from: b, to: b, weight: 1.0}`,
	}
}

func dcContourChart() ChartInfo {
	return ChartInfo{
		Type:    "contour",
		Summary: "Filled iso-bands of a function sampled over the domains.",
		Keys: []string{
			"function: gaussian, saddle, ripple or peaks",
			"thresholds: approximate number of levels (default 10)",
			"resolution: samples per axis (default 32)",
			"shade: fill bands from the continuous scheme (default true)",
		},
		Notes: []string{
			"Set `domain.domain_x` and `domain.domain_y` to choose the sampled region",
		},
		Example: `type: contour
function: peaks
thresholds: 12
config:
  domain:
    domain_x: {extent: [-3, 3]}
    domain_y: {extent: [-3, 3]}`,
	}
}

func dcImageChart() ChartInfo {
	return ChartInfo{
		Type:    "image",
		Summary: "Raster images placed at data coordinates.",
		Keys: []string{
			"url: field holding a file path, http(s) URL or data URI",
			"coords: field holding [x, y]",
			"width: field holding the width in x units",
			"corner_coords: place the top left corner instead of the centre",
		},
		Notes: []string{
			"Height follows the image aspect ratio",
			"Images load concurrently; chartkit waits for them before writing",
		},
		Example: `type: image
url: src
coords: at
width: w
data:
  - {src: cat.png, at: [1, 2], w: 0.5}`,
	}
}
