package tags

import (
	"slices"
	"strings"
	"unicode"
)

// KeyType identifies the keys the editor reacts to.
type KeyType int

const (
	KeyRunes KeyType = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyBackspace
	KeyDelete
	KeyEnter
	KeyEscape
	KeyComma
)

// Key is a toolkit-independent key press.
type Key struct {
	Type  KeyType
	Runes []rune
	Alt   bool
}

// Result describes what a transition produced.
type Result struct {
	// Handled is false when the key should pass through to the host.
	Handled bool
	// Ops are tag changes to hand to the submission queue, in order.
	Ops []string
	// Exit asks the host to leave edit mode.
	Exit bool
}

// Editor is the tag list model: an ordered tag list, a cursor between tags
// and an optional stub being typed at the cursor.
//
// The cursor is always within [0, len(tags)]. The stub exists only while it
// is non-empty and is split at its own text cursor into prefix and suffix.
type Editor struct {
	tags   []string
	cursor int
	prefix []rune
	suffix []rune

	index    *Index
	matches  []string
	selected int
}

// NewEditor creates an editor over initial with the cursor after the last tag.
func NewEditor(initial []string, index *Index) *Editor {
	tags := append([]string{}, initial...)
	return &Editor{
		tags:     tags,
		cursor:   len(tags),
		index:    index,
		selected: -1,
	}
}

// --- Accessors ---

// Tags returns a copy of the current tag list.
func (e *Editor) Tags() []string {
	return append([]string{}, e.tags...)
}

// Cursor returns the cursor position.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Editing reports whether a stub is present.
func (e *Editor) Editing() bool {
	return len(e.prefix)+len(e.suffix) > 0
}

// Stub returns the stub text before and after its text cursor.
func (e *Editor) Stub() (string, string) {
	return string(e.prefix), string(e.suffix)
}

// StubText returns the whole stub.
func (e *Editor) StubText() string {
	return string(e.prefix) + string(e.suffix)
}

// Popup returns the rendered matches and the selected option. ok is false
// when no popup is shown.
func (e *Editor) Popup() (matches []string, selected int, ok bool) {
	if len(e.matches) == 0 {
		return nil, -1, false
	}
	return append([]string{}, e.matches...), e.selected, true
}

// SetIndex swaps the autocomplete index. The popup is left alone until the
// next stub mutation.
func (e *Editor) SetIndex(index *Index) {
	e.index = index
}

// --- Transitions ---

// HandleKey applies a key press.
func (e *Editor) HandleKey(k Key) Result {
	if k.Alt {
		return Result{}
	}
	if e.Editing() {
		return e.handleEditing(k)
	}
	return e.handleIdle(k)
}

func (e *Editor) handleIdle(k Key) Result {
	switch k.Type {
	case KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
		return Result{Handled: true}
	case KeyRight:
		if e.cursor < len(e.tags) {
			e.cursor++
		}
		return Result{Handled: true}
	case KeyBackspace:
		if e.cursor == 0 {
			return Result{Handled: true}
		}
		tag := e.removeAt(e.cursor - 1)
		e.cursor--
		return Result{Handled: true, Ops: []string{Removal(tag)}}
	case KeyDelete:
		if e.cursor >= len(e.tags) {
			return Result{Handled: true}
		}
		tag := e.removeAt(e.cursor)
		return Result{Handled: true, Ops: []string{Removal(tag)}}
	case KeyRunes:
		if len(k.Runes) == 0 {
			return Result{}
		}
		return e.insertRunes(k.Runes)
	}
	return Result{}
}

func (e *Editor) handleEditing(k Key) Result {
	switch k.Type {
	case KeyLeft:
		if n := len(e.prefix); n > 0 {
			e.suffix = append([]rune{e.prefix[n-1]}, e.suffix...)
			e.prefix = e.prefix[:n-1]
		}
		return Result{Handled: true}
	case KeyRight:
		if len(e.suffix) > 0 {
			e.prefix = append(e.prefix, e.suffix[0])
			e.suffix = e.suffix[1:]
		}
		return Result{Handled: true}
	case KeyUp:
		if len(e.matches) == 0 {
			return Result{}
		}
		if e.selected > 0 {
			e.selected--
		}
		return Result{Handled: true}
	case KeyDown:
		if len(e.matches) == 0 {
			return Result{}
		}
		if e.selected < len(e.matches)-1 {
			e.selected++
		}
		return Result{Handled: true}
	case KeyBackspace:
		if n := len(e.prefix); n > 0 {
			e.prefix = e.prefix[:n-1]
			e.afterStubEdit()
		}
		return Result{Handled: true}
	case KeyDelete:
		if len(e.suffix) > 0 {
			e.suffix = e.suffix[1:]
			e.afterStubEdit()
		}
		return Result{Handled: true}
	case KeyRunes:
		if len(k.Runes) == 0 {
			return Result{}
		}
		return e.insertRunes(k.Runes)
	case KeyComma:
		return e.commitAtComma()
	case KeyEnter:
		if option, ok := e.selectedOption(); ok {
			return e.commitLiteral(option, nil, nil)
		}
		return e.commitLiteral(Normalize(e.StubText()), nil, nil)
	case KeyEscape:
		if len(e.matches) > 0 {
			e.ClosePopup()
			return Result{Handled: true}
		}
		return Result{Handled: true, Exit: true}
	}
	return Result{}
}

// Commit normalizes value and inserts it at the cursor, replacing the stub.
// A value holding commas is inserted as one tag per piece.
func (e *Editor) Commit(value string) Result {
	res := Result{Handled: true}
	e.DiscardStub()
	for _, piece := range strings.Split(value, ",") {
		res.Ops = append(res.Ops, e.commitLiteral(Normalize(piece), nil, nil).Ops...)
	}
	return res
}

// ChooseOption commits popup option i verbatim.
func (e *Editor) ChooseOption(i int) Result {
	if i < 0 || i >= len(e.matches) {
		return Result{}
	}
	return e.commitLiteral(e.matches[i], nil, nil)
}

// PlaceAtEnd moves the cursor, and the stub with it, after the last tag.
func (e *Editor) PlaceAtEnd() {
	e.cursor = len(e.tags)
}

// ClosePopup hides the popup without touching the stub.
func (e *Editor) ClosePopup() {
	e.matches = nil
	e.selected = -1
}

// DiscardStub drops the stub and popup.
func (e *Editor) DiscardStub() {
	e.prefix = nil
	e.suffix = nil
	e.ClosePopup()
}

// insertRunes types runes at the text cursor. Pasted text is committed up
// to each comma it carries, so the stub never holds a comma.
func (e *Editor) insertRunes(runes []rune) Result {
	e.prefix = append(e.prefix, runes...)
	res := Result{Handled: true}
	for slices.Contains(e.prefix, ',') {
		res.Ops = append(res.Ops, e.commitAtComma().Ops...)
	}
	if e.Editing() {
		e.refresh()
	}
	return res
}

// commitAtComma commits the stub up to its first comma (or up to the text
// cursor when the prefix has none) and re-seeds the stub with the rest.
func (e *Editor) commitAtComma() Result {
	head := e.prefix
	var rest []rune
	for i, r := range e.prefix {
		if r == ',' {
			head = e.prefix[:i]
			rest = e.prefix[i+1:]
			break
		}
	}
	return e.commitLiteral(Normalize(string(head)), rest, e.suffix)
}

// commitLiteral inserts value at the cursor when it is non-empty, then sets
// the stub to the trimmed remainder formed by rest and suffix.
func (e *Editor) commitLiteral(value string, rest, suffix []rune) Result {
	res := Result{Handled: true}
	if value != "" {
		e.tags = append(e.tags, "")
		copy(e.tags[e.cursor+1:], e.tags[e.cursor:])
		e.tags[e.cursor] = value
		e.cursor++
		res.Ops = []string{value}
	}
	e.prefix, e.suffix = reseed(rest, suffix)
	e.ClosePopup()
	if e.Editing() {
		e.refresh()
	}
	return res
}

func (e *Editor) selectedOption() (string, bool) {
	if e.selected < 0 || e.selected >= len(e.matches) {
		return "", false
	}
	return e.matches[e.selected], true
}

func (e *Editor) afterStubEdit() {
	if !e.Editing() {
		e.DiscardStub()
		return
	}
	e.refresh()
}

func (e *Editor) refresh() {
	e.matches = e.index.Match(e.StubText())
	if len(e.matches) == 0 {
		e.ClosePopup()
		return
	}
	e.selected = 0
}

func (e *Editor) removeAt(i int) string {
	tag := e.tags[i]
	e.tags = append(e.tags[:i], e.tags[i+1:]...)
	return tag
}

// reseed trims the remainder as a whole while keeping the text cursor at the
// boundary between prefix and suffix.
func reseed(prefix, suffix []rune) ([]rune, []rune) {
	text := string(prefix) + string(suffix)
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	lead := len([]rune(text)) - len([]rune(strings.TrimLeftFunc(text, unicode.IsSpace)))
	split := len(prefix) - lead
	runes := []rune(trimmed)
	if split < 0 {
		split = 0
	}
	if split > len(runes) {
		split = len(runes)
	}
	return append([]rune{}, runes[:split]...), append([]rune{}, runes[split:]...)
}
