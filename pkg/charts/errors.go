package charts

import (
	"errors"
	"fmt"
)

// ErrScaleKind is returned when a chart type is drawn over a scale of the
// wrong kind, such as a matrix over numeric axes.
var ErrScaleKind = errors.New("charts: unexpected scale kind")

func errNotBand(axis string) error {
	return fmt.Errorf("%w: %s scale is not a band scale", ErrScaleKind, axis)
}

func errNotContinuous(axis string) error {
	return fmt.Errorf("%w: %s scale is not continuous", ErrScaleKind, axis)
}
