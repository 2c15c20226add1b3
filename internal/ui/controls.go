package ui

import (
	"image"
	"math"
	"strconv"

	"campfire/internal/core"
)

// nextValue steps value one increment in direction. ok is false when the
// bound is already reached.
func nextValue(ctrl core.ParameterControl, value float64, direction int) (float64, bool) {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	target := ctrl.Clamp(value + float64(direction)*step)
	return target, math.Abs(target-value) >= 1e-9
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	var precision int
	switch {
	case step >= 1:
		precision = 0
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	default:
		precision = 1
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return x >= rect.Min.X && x < rect.Max.X && y >= rect.Min.Y && y < rect.Max.Y
}
