package ui

import (
	"strconv"

	"worldmorph/internal/core"
)

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

// formatFloat picks a precision from the control's step size.
func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// stepControl returns the value one step away from current in direction,
// clamped to the control bounds, and whether it differs from current.
func stepControl(ctrl core.ParameterControl, current float64, direction int) (float64, bool) {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	target := ctrl.Clamp(current + float64(direction)*step)
	if diff := target - current; diff < 1e-9 && diff > -1e-9 {
		return current, false
	}
	return target, true
}
