package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plain strips styling and collapses the padding around key caps.
func plain(s string) string {
	return strings.Join(strings.Fields(SanitizeText(s)), " ")
}

func TestKeyHintsSkipsDisabledBindings(t *testing.T) {
	enter := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add tag"))
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	hidden.SetEnabled(false)
	noHelp := key.NewBinding(key.WithKeys("y"))

	hints := KeyHints([]key.Binding{enter, hidden, noHelp})
	require.Len(t, hints, 1)
	assert.Equal(t, "enter add tag", plain(hints[0]))
}

func TestHintStripsControlSequences(t *testing.T) {
	assert.Equal(t, "esc close", plain(Hint("esc", "close\x1b[31m\n")))
}

func TestStatusBarLeadsWithStatus(t *testing.T) {
	out := SanitizeText(StatusBar("saving", []string{Hint("esc", "close")}, 0))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "─")
	assert.True(t, strings.HasPrefix(lines[1], "saving"))
	assert.Equal(t, "saving esc close", plain(lines[1]))
}

func TestStatusBarWithoutSegmentsIsEmpty(t *testing.T) {
	assert.Empty(t, StatusBar("  ", nil, 40))
}

func TestWrapSegmentsWrapsWhenNarrow(t *testing.T) {
	rows := wrapSegments([]string{"123456", "abcdef", "ghijkl"}, 10)
	assert.Equal(t, []string{"123456", "abcdef", "ghijkl"}, rows)

	rows = wrapSegments([]string{"ab", "cd", "efghij"}, 10)
	assert.Equal(t, []string{"ab  cd", "efghij"}, rows)
	for _, row := range rows {
		assert.LessOrEqual(t, lipgloss.Width(row), 10)
	}
}
