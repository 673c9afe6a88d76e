package layout

import "math"

// Margin presets in pixels.
const (
	MarginTop             = 10
	MarginBottom          = 45
	MarginLeft            = 55
	MarginRight           = 20
	MarginBottomNoLabel   = 30
	MarginLeftNoLabel     = 40
	MarginRightWithLegend = 90
)

// AxisMetrics describes one axis for auto-margin purposes. Categories is
// non-nil only when the axis domain is categorical.
type AxisMetrics struct {
	Categories  []string
	Categorical bool
	HasLabel    bool
	LabelOffset float64
}

// AutoMarginInput collects what the margins depend on.
type AutoMarginInput struct {
	X, Y     AxisMetrics
	Legend   bool
	TickSize float64
	FontSize float64
}

// AutoMargins computes plot margins from axis labels, categorical tick
// label widths, and the legend. Every side is rounded up.
func AutoMargins(in AutoMarginInput) Insets {
	xLabelHeight := in.FontSize + 10
	yLabelHeight := in.FontSize

	var left float64
	if in.Y.Categorical {
		left = MaxTextWidth(in.Y.Categories, in.FontSize) + in.TickSize
		if in.Y.HasLabel {
			left += yLabelHeight + in.Y.LabelOffset
		}
	} else if in.Y.HasLabel {
		left = MarginLeft
	} else {
		left = MarginLeftNoLabel
	}

	var bottom float64
	if in.X.Categorical {
		bottom = in.FontSize + in.TickSize
		if in.X.HasLabel {
			bottom += xLabelHeight + in.X.LabelOffset
		}
	} else if in.X.HasLabel {
		bottom = MarginBottom
	} else {
		bottom = MarginBottomNoLabel
	}

	var right float64
	switch {
	case in.Legend:
		right = MarginRightWithLegend
	case in.X.Categorical:
		right = math.Max(MaxTextWidth(in.X.Categories, in.FontSize)/2, MarginRight)
	default:
		right = MarginRight
	}

	return Insets{Top: MarginTop, Bottom: bottom, Left: left, Right: right}.Ceil()
}
