package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/spilltag/internal/tags"
)

// --- Key Map ---

// KeyMap defines the tag widget and host bindings.
type KeyMap struct {
	Left, Right, Up, Down key.Binding

	Backspace, Delete key.Binding
	Enter, Comma      key.Binding

	Close key.Binding
	Quit  key.Binding
	Help  key.Binding
}

// DefaultKeyMap returns the bindings used by the tag editor.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev tag")),
		Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next tag")),
		Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev match")),
		Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next match")),

		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("bksp", "remove left")),
		Delete:    key.NewBinding(key.WithKeys("delete"), key.WithHelp("del", "remove right")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add tag")),
		Comma:     key.NewBinding(key.WithKeys(","), key.WithHelp(",", "add and continue")),

		Close: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Comma, k.Backspace, k.Close, k.Help}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Enter, k.Comma, k.Backspace, k.Delete},
		{k.Close, k.Quit, k.Help},
	}
}

// --- Key Conversion ---

// editorKey translates a terminal key press into an editor key. ok is false
// for keys the editor never looks at.
func (k KeyMap) editorKey(msg tea.KeyMsg) (tags.Key, bool) {
	out := tags.Key{Alt: msg.Alt}
	switch {
	case msg.Type == tea.KeyRunes:
		// A lone comma is the commit key; pasted text keeps its commas.
		if !msg.Paste && !msg.Alt && key.Matches(msg, k.Comma) {
			out.Type = tags.KeyComma
			return out, true
		}
		out.Type = tags.KeyRunes
		out.Runes = msg.Runes
	case msg.Type == tea.KeySpace:
		out.Type = tags.KeyRunes
		out.Runes = []rune{' '}
	case key.Matches(msg, k.Left):
		out.Type = tags.KeyLeft
	case key.Matches(msg, k.Right):
		out.Type = tags.KeyRight
	case key.Matches(msg, k.Up):
		out.Type = tags.KeyUp
	case key.Matches(msg, k.Down):
		out.Type = tags.KeyDown
	case key.Matches(msg, k.Backspace):
		out.Type = tags.KeyBackspace
	case key.Matches(msg, k.Delete):
		out.Type = tags.KeyDelete
	case key.Matches(msg, k.Enter):
		out.Type = tags.KeyEnter
	case key.Matches(msg, k.Close):
		out.Type = tags.KeyEscape
	default:
		return tags.Key{}, false
	}
	return out, true
}
