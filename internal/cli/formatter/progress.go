package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampFraction(f float64) float64 {
	return min(max(f, 0), 1)
}

// RenderBar renders value as a horizontal bar scaled against peak. A zero
// peak renders an empty bar.
func RenderBar(value, peak float64, width int) string {
	width = max(width, 1)
	frac := 0.0
	if peak > 0 {
		frac = clampFraction(value / peak)
	}
	filled := int(frac*float64(width) + 0.5)
	if value > 0 && filled == 0 {
		filled = 1
	}
	return StyleBlue.Render(strings.Repeat(filledBlock, filled)) +
		StyleDim.Render(strings.Repeat(emptyBlock, width-filled))
}

// RenderShare renders a subject's share of total study time like
// [████░░░░] 45%. The bar is green from two thirds up, yellow from one
// third, red below.
func RenderShare(share float64, width int) string {
	share = clampFraction(share)
	width = max(width, 2)
	filled := int(share * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if share < 0.33 {
		style = StyleRed
	} else if share < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), share*100)
}
