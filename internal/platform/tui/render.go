package tui

import (
	"strings"

	"github.com/AppIemon/umm-sub002/internal/core"
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same glyph to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen, theme Theme) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			glyph := s.Get(x, y)

			// Collect consecutive cells with the same glyph
			var run strings.Builder
			for x < s.Width() && s.Get(x, y) == glyph {
				run.WriteRune(glyph)
				x++
			}
			sb.WriteString(theme.Style(glyph).Render(run.String()))
		}
	}
	return sb.String()
}

// centerText pads text on the left so it appears centered in width columns.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
