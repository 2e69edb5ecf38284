package converter

import (
	"fmt"
	"math"

	"github.com/kataras/figma-jsx/pkg/figma"
)

// literalColor renders a Figma color (0-1 channels) as #rrggbb, or as rgba() when alpha < 1.
func literalColor(c *figma.Color, alpha float64) (string, bool) {
	if c == nil || !finite(c.R) || !finite(c.G) || !finite(c.B) || !finite(alpha) {
		return "", false
	}

	r, g, b := channel(c.R), channel(c.G), channel(c.B)
	if alpha < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, b, math.Max(alpha, 0)), true
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), true
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	switch {
	case n < 0:
		return 0
	case n > 255:
		return 255
	}
	return n
}
