package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	hintKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#16161d")).
			Background(lipgloss.Color("#888ba4")).
			Bold(true).
			Padding(0, 1)
	hintDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ba0bf"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c78854")).
			Bold(true)
	statusBarLine = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#273540"))
)

const hintGap = "  "

// KeyHints renders the enabled bindings as hint segments.
func KeyHints(bindings []key.Binding) []string {
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		if h.Key == "" {
			continue
		}
		hints = append(hints, Hint(h.Key, h.Desc))
	}
	return hints
}

// Hint formats one keybind hint like "enter add".
func Hint(keyText, desc string) string {
	out := hintKeyStyle.Render(strings.TrimSpace(SanitizeOneLine(keyText)))
	if desc = strings.TrimSpace(SanitizeOneLine(desc)); desc != "" {
		out += " " + hintDescStyle.Render(desc)
	}
	return out
}

// StatusBar renders the bottom bar under a rule line. A non-empty status
// leads the first row; hints wrap onto further rows when width is short.
func StatusBar(status string, hints []string, width int) string {
	segments := make([]string, 0, len(hints)+1)
	if status = strings.TrimSpace(SanitizeOneLine(status)); status != "" {
		segments = append(segments, statusStyle.Render(status))
	}
	segments = append(segments, hints...)
	if len(segments) == 0 {
		return ""
	}

	rows := wrapSegments(segments, width)
	block := strings.Join(rows, "\n")
	if width <= 0 {
		return statusBarLine.Render(block)
	}
	return statusBarLine.Width(width).Render(block)
}

func wrapSegments(segments []string, width int) []string {
	if width <= 0 {
		return []string{strings.Join(segments, hintGap)}
	}
	gap := lipgloss.Width(hintGap)
	var rows []string
	var current []string
	currentWidth := 0
	for _, seg := range segments {
		segWidth := lipgloss.Width(seg)
		if len(current) > 0 && currentWidth+gap+segWidth > width {
			rows = append(rows, strings.Join(current, hintGap))
			current, currentWidth = nil, 0
		}
		if len(current) > 0 {
			currentWidth += gap
		}
		current = append(current, seg)
		currentWidth += segWidth
	}
	if len(current) > 0 {
		rows = append(rows, strings.Join(current, hintGap))
	}
	return rows
}
