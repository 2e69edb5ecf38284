package converter

import (
	"math"
	"strconv"

	"github.com/kataras/figma-jsx/pkg/figma"
)

// formatNumber renders integers without decimals and anything fractional with 3 decimals.
func formatNumber(v float64) string {
	if v == 0 {
		return "0" // also folds -0
	}
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func px(v float64) string {
	return formatNumber(v) + "px"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// numeric dereferences an optional number, rejecting malformed values and infinities.
func numeric(v *figma.Number) (float64, bool) {
	if v == nil || !v.Valid() {
		return 0, false
	}
	return float64(*v), true
}
