package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/cashpulse/internal/tui/theme"
)

// Sparkline renders daily values as unicode blocks scaled to the peak.
func Sparkline(values []int64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(float64(max(v, 0)) / float64(peak) * float64(len(blocks)-1))
		buf.WriteRune(blocks[min(idx, len(blocks)-1)])
	}

	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}
