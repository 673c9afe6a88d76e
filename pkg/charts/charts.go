// Package charts provides the chart types built on pkg/chart: scatter,
// bar, histogram, line, matrix, contour and image plots.
//
// Each type is a chart.Template. Construct one with its New function,
// adjust the exported fields, and hand it to chart.New.
package charts

import (
	"math"

	"gitlab.com/tinyland/lab/chartkit/pkg/chart"
	"gitlab.com/tinyland/lab/chartkit/pkg/primitive"
	"gitlab.com/tinyland/lab/chartkit/pkg/value"
)

// datums converts records for the primitive engine.
func datums(records []value.Record) []primitive.Datum {
	out := make([]primitive.Datum, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}

// field reads key from a record datum.
func field(d primitive.Datum, key string) any {
	if r, ok := d.(value.Record); ok {
		return r[key]
	}
	return nil
}

// legendTitle is the configured legend title, or fallback.
func legendTitle(c *chart.Chart, fallback string) string {
	if t := c.Config().Legend.Title; t != "" {
		return t
	}
	return fallback
}

// pair reads a two element coordinate such as [x, y].
func pair(v any) (any, any, bool) {
	switch p := v.(type) {
	case []any:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case []float64:
		if len(p) == 2 {
			return p[0], p[1], true
		}
	case [2]float64:
		return p[0], p[1], true
	case map[string]any:
		x, okX := p["x"]
		y, okY := p["y"]
		return x, y, okX && okY
	}
	return nil, nil, false
}

// round2 rounds to two decimals for cell labels.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// hasData is the ShouldInitialize shared by data-driven charts.
func hasData(c *chart.Chart) bool {
	return len(c.Data()) > 0
}
