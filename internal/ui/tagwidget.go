package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/gravitrone/spilltag/internal/logging"
	"github.com/gravitrone/spilltag/internal/tags"
	"github.com/gravitrone/spilltag/internal/ui/components"
)

const (
	knownTagsTimeout = 10 * time.Second
	maxPopupRows     = 8
)

// KnownTagsFunc loads the tag vocabulary used for autocomplete.
type KnownTagsFunc func(ctx context.Context) ([]string, error)

// KnownTags lets a KnownTagsFunc serve as a tags.KnownTagSource.
func (f KnownTagsFunc) KnownTags(ctx context.Context) ([]string, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx)
}

// TagWidgetConfig configures a TagWidget.
type TagWidgetConfig struct {
	Tags      []string
	KnownTags KnownTagsFunc
	// Submit sends one comma-joined change spec to the server. Required.
	Submit tags.SubmitFunc
	Logger *log.Logger
	// Partial reports tags carried by only part of a selection.
	Partial func(tag string) bool
	Width   int
}

// --- Messages ---

type knownTagsMsg struct {
	widget string
	index  *tags.Index
	err    error
}

type queueEventMsg struct {
	widget string
	event  tags.QueueEvent
}

// tagsFlushedMsg reports one finished submission to the host.
type tagsFlushedMsg struct {
	spec string
	err  error
}

// --- Tag Widget ---

// TagWidget binds a tags.Editor and a tags.Queue to the terminal: key
// presses drive the editor, resulting ops go through the queue, and queue
// events come back as messages.
type TagWidget struct {
	id      string
	editor  *tags.Editor
	queue   *tags.Queue
	known   KnownTagsFunc
	partial func(string) bool
	keys    KeyMap
	logger  *log.Logger
	spinner spinner.Model
	width   int

	busy   bool
	closed bool

	events    chan tags.QueueEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewTagWidget creates a widget with the cursor after the last initial tag.
// The autocomplete index starts empty until Init's load finishes.
func NewTagWidget(cfg TagWidgetConfig) *TagWidget {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger, id := logging.WithSession(logger, "widget")

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = BusyStyle

	w := &TagWidget{
		id:      id,
		editor:  tags.NewEditor(cfg.Tags, tags.NewIndex(nil)),
		known:   cfg.KnownTags,
		partial: cfg.Partial,
		keys:    DefaultKeyMap(),
		logger:  logger,
		spinner: sp,
		width:   cfg.Width,
		events:  make(chan tags.QueueEvent),
		done:    make(chan struct{}),
	}
	w.queue = tags.NewQueue(cfg.Submit,
		tags.WithLogger(logger),
		tags.WithNotify(w.forward),
		tags.WithBaseContext(log.WithContext(context.Background(), logger)),
	)
	logger.Debug("widget opened", "tags", len(cfg.Tags))
	return w
}

func (w *TagWidget) Init() tea.Cmd {
	return tea.Batch(w.loadKnownTags(), w.listen(), w.spinner.Tick)
}

// Update handles everything except key presses, which go through HandleKey
// so the host sees the editor result.
func (w *TagWidget) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		_, cmd := w.HandleKey(msg)
		return cmd
	case knownTagsMsg:
		if msg.widget != w.id {
			return nil
		}
		if msg.err != nil {
			w.logger.Warn("known tags unavailable, autocomplete disabled", "err", msg.err)
		}
		w.editor.SetIndex(msg.index)
		w.logger.Debug("known tags loaded", "count", msg.index.Len())
		return nil
	case queueEventMsg:
		if msg.widget != w.id || w.closed {
			return nil
		}
		return w.handleQueueEvent(msg.event)
	case spinner.TickMsg:
		if !w.busy {
			return nil
		}
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return cmd
	}
	return nil
}

// HandleKey runs a key press through the editor and enqueues resulting ops.
// Unhandled keys are left for the host.
func (w *TagWidget) HandleKey(msg tea.KeyMsg) (tags.Result, tea.Cmd) {
	if w.closed {
		return tags.Result{}, nil
	}
	k, ok := w.keys.editorKey(msg)
	if !ok {
		return tags.Result{}, nil
	}
	res := w.editor.HandleKey(k)
	return res, w.submit(res.Ops)
}

// HandleMouse handles a click at widget-relative coordinates. Row 0 is the
// tag row, the popup options follow it.
func (w *TagWidget) HandleMouse(x, y int) tea.Cmd {
	if w.closed {
		return nil
	}
	if x < 0 || y < 0 {
		w.editor.ClosePopup()
		return nil
	}
	if y == 0 {
		w.editor.PlaceAtEnd()
		return nil
	}
	matches, selected, ok := w.editor.Popup()
	if ok {
		start, end := popupWindow(len(matches), selected)
		if i := start + y - 1; i < end {
			return w.submit(w.editor.ChooseOption(i).Ops)
		}
	}
	w.editor.ClosePopup()
	return nil
}

// Close removes the stub and popup, stops listening for queue events and
// returns the final tag list. Queued submissions keep running.
func (w *TagWidget) Close() []string {
	w.closeOnce.Do(func() {
		w.closed = true
		w.editor.DiscardStub()
		close(w.done)
		w.logger.Debug("widget closed", "tags", w.editor.Tags(), "busy", w.queue.Busy(), "pending", len(w.queue.Pending()))
	})
	return w.editor.Tags()
}

// Drain waits for in-flight submissions.
func (w *TagWidget) Drain(ctx context.Context) error {
	return w.queue.Drain(ctx)
}

// Tags returns the current tag list.
func (w *TagWidget) Tags() []string {
	return w.editor.Tags()
}

// Busy reports whether the busy marker is shown.
func (w *TagWidget) Busy() bool {
	return w.busy
}

func (w *TagWidget) SetWidth(width int) {
	w.width = width
}

// --- Internals ---

func (w *TagWidget) submit(ops []string) tea.Cmd {
	if len(ops) == 0 {
		return nil
	}
	w.logger.Debug("tag ops", "ops", ops)
	w.queue.Enqueue(ops)
	return w.syncBusy()
}

// syncBusy mirrors the queue state into the busy marker and starts the
// spinner when it turns on.
func (w *TagWidget) syncBusy() tea.Cmd {
	was := w.busy
	w.busy = w.queue.Busy()
	if w.busy && !was {
		return w.spinner.Tick
	}
	return nil
}

func (w *TagWidget) handleQueueEvent(ev tags.QueueEvent) tea.Cmd {
	cmds := []tea.Cmd{w.listen(), w.syncBusy()}
	if ev.Kind == tags.QueueFlushed {
		spec, err := ev.Spec, ev.Err
		cmds = append(cmds, func() tea.Msg {
			return tagsFlushedMsg{spec: spec, err: err}
		})
	}
	return tea.Batch(cmds...)
}

// forward hands queue events to the listener without blocking the queue
// goroutine or Enqueue's caller.
func (w *TagWidget) forward(ev tags.QueueEvent) {
	go func() {
		select {
		case w.events <- ev:
		case <-w.done:
		}
	}()
}

func (w *TagWidget) listen() tea.Cmd {
	id, events, done := w.id, w.events, w.done
	return func() tea.Msg {
		select {
		case ev := <-events:
			return queueEventMsg{widget: id, event: ev}
		case <-done:
			return nil
		}
	}
}

func (w *TagWidget) loadKnownTags() tea.Cmd {
	if w.known == nil {
		return nil
	}
	id, source := w.id, w.known
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), knownTagsTimeout)
		defer cancel()
		index, err := tags.LoadIndex(ctx, source)
		return knownTagsMsg{widget: id, index: index, err: err}
	}
}

// --- View ---

func (w *TagWidget) View() string {
	row := w.renderRow()
	if w.busy {
		row += " " + w.spinner.View()
	}
	lines := append([]string{row}, w.renderPopup()...)
	return strings.Join(lines, "\n")
}

func (w *TagWidget) renderRow() string {
	list := w.editor.Tags()
	cursor := w.editor.Cursor()
	parts := make([]string, 0, len(list)+1)
	for i, tag := range list {
		if i == cursor && !w.closed {
			parts = append(parts, w.renderCursor())
		}
		parts = append(parts, w.renderChip(tag))
	}
	if cursor == len(list) && !w.closed {
		parts = append(parts, w.renderCursor())
	}
	if len(parts) == 0 {
		return MutedStyle.Render("no tags")
	}
	return strings.Join(parts, " ")
}

func (w *TagWidget) renderChip(tag string) string {
	label := components.SanitizeOneLine(tag)
	if w.partial != nil && w.partial(tag) {
		return PartialChipStyle.Render("[~" + label + "]")
	}
	return ChipStyle.Render("[" + label + "]")
}

func (w *TagWidget) renderCursor() string {
	caret := CaretStyle.Render("│")
	if !w.editor.Editing() {
		return caret
	}
	prefix, suffix := w.editor.Stub()
	out := ""
	if prefix != "" {
		out += StubStyle.Render(components.SanitizeOneLine(prefix))
	}
	out += caret
	if suffix != "" {
		out += StubStyle.Render(components.SanitizeOneLine(suffix))
	}
	return out
}

func (w *TagWidget) renderPopup() []string {
	matches, selected, ok := w.editor.Popup()
	if !ok {
		return nil
	}
	width := w.width - 2
	start, end := popupWindow(len(matches), selected)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		label := components.ClampTextWidth(matches[i], width)
		if i == selected {
			lines = append(lines, PopupSelectedStyle.Render(label))
		} else {
			lines = append(lines, PopupOptionStyle.Render(label))
		}
	}
	return lines
}

// popupWindow returns the slice of options rendered, keeping the selected
// one visible.
func popupWindow(n, selected int) (int, int) {
	if n <= maxPopupRows {
		return 0, n
	}
	start := 0
	if selected >= maxPopupRows {
		start = selected - maxPopupRows + 1
	}
	return start, start + maxPopupRows
}
