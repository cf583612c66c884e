package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const bannerTitle = "s p i l l t a g"

// RenderBanner returns the header block: title, a context line and an
// underline sized to the wider of the two.
func RenderBanner(context string) string {
	title := BannerStyle.Render(bannerTitle)
	subtitleText := "CloudSpill tag editor"
	if context = strings.TrimSpace(context); context != "" {
		subtitleText += " • " + context
	}

	blockWidth := max(lipgloss.Width(bannerTitle), lipgloss.Width(subtitleText))

	center := lipgloss.NewStyle().Width(blockWidth).Align(lipgloss.Center)
	subtitle := center.Foreground(ColorMuted).Render(subtitleText)
	underline := center.Foreground(ColorBorder).Render(strings.Repeat("─", lipgloss.Width(subtitleText)))

	return center.Render(title) + "\n" + subtitle + "\n" + underline
}
