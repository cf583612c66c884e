package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/gravitrone/spilltag/internal/api"
	"github.com/gravitrone/spilltag/internal/config"
	"github.com/gravitrone/spilltag/internal/logging"
	"github.com/gravitrone/spilltag/internal/ui/components"
)

const (
	loadTimeout  = 30 * time.Second
	widgetIndent = 2
)

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}

type itemsLoadedMsg struct {
	tags      []string
	selection *Selection
}

type drainedMsg struct{ err error }

type appToast struct {
	level string
	text  string
}

// --- App Model ---

// App hosts one tag widget for one item or for a selection of items.
type App struct {
	client *api.Client
	config *config.Config
	logger *log.Logger
	ids    []int64

	keys KeyMap
	help help.Model

	width  int
	height int

	loading   bool
	err       string
	errCode   string
	toast     *appToast
	selection *Selection
	widget    *TagWidget

	quitting bool
	final    []string
	closed   bool
}

// NewApp creates the host for editing the tags of ids. More than one id
// starts a selection session.
func NewApp(client *api.Client, cfg *config.Config, logger *log.Logger, ids []int64) App {
	if logger == nil {
		logger = logging.Discard()
	}
	a := App{
		client:  client,
		config:  cfg,
		logger:  logger,
		ids:     append([]int64{}, ids...),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		loading: len(ids) > 0,
	}
	if len(ids) == 0 {
		a.setError(fmt.Errorf("no items selected"))
	}
	return a
}

func (a App) Init() tea.Cmd {
	if !a.loading {
		return nil
	}
	return a.loadItemsCmd()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.widget != nil {
			a.widget.SetWidth(msg.Width - widgetIndent)
		}
		return a, nil

	case errMsg:
		a.loading = false
		a.setError(msg.err)
		a.logger.Error("tag editor failed", "err", msg.err)
		return a, nil

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case itemsLoadedMsg:
		a.loading = false
		if a.widget != nil || a.quitting {
			return a, nil
		}
		a.selection = msg.selection
		a.widget = NewTagWidget(a.widgetConfig(msg))
		return a, a.widget.Init()

	case tagsFlushedMsg:
		if msg.err != nil {
			return a, a.setToast("error", fmt.Sprintf("Saving %q failed: %v", msg.spec, msg.err))
		}
		return a, a.setToast("success", fmt.Sprintf("Saved %s", msg.spec))

	case drainedMsg:
		if msg.err != nil {
			a.logger.Warn("quit before tag edits were saved", "err", msg.err)
		}
		a.selection = nil
		a.closed = true
		return a, tea.Quit

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.widget != nil {
		return a, a.widget.Update(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.quitting {
		// Second ctrl+c skips waiting for the queue.
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		return a, nil
	}
	if key.Matches(msg, a.keys.Quit) {
		return a.quit()
	}
	if key.Matches(msg, a.keys.Help) {
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}
	if a.widget == nil {
		if key.Matches(msg, a.keys.Close) {
			return a.quit()
		}
		return a, nil
	}

	res, cmd := a.widget.HandleKey(msg)
	if res.Exit || (!res.Handled && key.Matches(msg, a.keys.Close)) {
		model, quitCmd := a.quit()
		return model, tea.Batch(cmd, quitCmd)
	}
	return a, cmd
}

func (a App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.widget == nil || a.quitting {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return a, nil
	}
	return a, a.widget.HandleMouse(msg.X-widgetIndent, msg.Y-a.widgetTop())
}

// quit closes the widget and waits, bounded by the configured timeout, for
// queued tag edits to reach the server.
func (a App) quit() (App, tea.Cmd) {
	if a.widget == nil {
		a.closed = true
		return a, tea.Quit
	}
	a.final = a.widget.Close()
	a.quitting = true
	widget, timeout := a.widget, a.drainTimeout()
	return a, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return drainedMsg{err: widget.Drain(ctx)}
	}
}

// FinalTags returns the tag list the widget ended with.
func (a App) FinalTags() []string {
	return append([]string{}, a.final...)
}

func (a App) drainTimeout() time.Duration {
	if a.config == nil {
		return config.DefaultDrainTimeout
	}
	return a.config.DrainTimeout()
}

func (a App) widgetConfig(msg itemsLoadedMsg) TagWidgetConfig {
	cfg := TagWidgetConfig{
		Tags:   msg.tags,
		Logger: a.logger,
		Width:  a.width - widgetIndent,
	}
	client := a.client
	if client == nil {
		return cfg
	}
	cfg.KnownTags = client.KnownTags
	if msg.selection != nil {
		cfg.Submit = msg.selection.Transport(client)
		cfg.Partial = msg.selection.Partial
		return cfg
	}
	id := a.ids[0]
	cfg.Submit = func(ctx context.Context, spec string) error {
		return client.PutItemTags(ctx, id, spec)
	}
	return cfg
}

func (a App) loadItemsCmd() tea.Cmd {
	client, ids := a.client, a.ids
	return func() tea.Msg {
		if client == nil {
			return errMsg{err: fmt.Errorf("not logged in; run spilltag login")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if len(ids) == 1 {
			list, err := client.ItemTags(ctx, ids[0])
			if err != nil {
				return errMsg{err: err}
			}
			return itemsLoadedMsg{tags: list}
		}
		sel, err := LoadSelection(ctx, client, ids)
		if err != nil {
			return errMsg{err: err}
		}
		return itemsLoadedMsg{tags: sel.Tags(), selection: sel}
	}
}

// --- View ---

func (a App) View() string {
	if a.closed {
		return ""
	}
	header := centerBlockUniform(a.renderHeader(), a.width)

	var body string
	switch {
	case a.loading:
		body = MutedStyle.Render("Loading tags…")
	case a.widget != nil:
		body = a.widget.View()
	}
	if a.quitting {
		body = MutedStyle.Render("Saving tags…")
	}
	body = components.Indent(body, widgetIndent)

	feedback := ""
	if a.err != "" {
		title := "Error"
		if a.errCode != "" {
			title = a.errCode
		}
		feedback = "\n\n" + components.ErrorBox(title, a.err, a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + a.renderToast()
	}

	hints := components.StatusBar(a.status(), components.KeyHints(a.keys.ShortHelp()), a.width)
	if a.help.ShowAll {
		hints += "\n\n" + components.ActiveTitledBox("Keys", a.help.View(a.keys), a.width)
	}

	return fmt.Sprintf("%s\n\n%s%s\n\n%s", header, body, feedback, hints)
}

func (a App) renderHeader() string {
	switch {
	case len(a.ids) == 1:
		return RenderBanner(fmt.Sprintf("item %d", a.ids[0]))
	case len(a.ids) > 1:
		return RenderBanner(fmt.Sprintf("%d items", len(a.ids)))
	}
	return RenderBanner("")
}

// widgetTop is the screen row of the widget's tag row.
func (a App) widgetTop() int {
	return lipgloss.Height(a.renderHeader()) + 1
}

// status is the leading status bar segment.
func (a App) status() string {
	if a.widget != nil && a.widget.Busy() {
		return "saving"
	}
	return ""
}

func (a *App) setError(err error) {
	text := components.SanitizeText(err.Error())
	a.errCode, a.err = parseErrorCodeAndMessage(text)
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(2500*time.Millisecond, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	switch a.toast.level {
	case "success":
		return components.TitledBox("Saved", SuccessStyle.Render(a.toast.text), a.width)
	case "error":
		return components.ErrorBox("Error", ErrorStyle.Render(a.toast.text), a.width)
	}
	return components.TitledBox("Info", a.toast.text, a.width)
}

// parseErrorCodeAndMessage splits "CODE: message" server errors.
func parseErrorCodeAndMessage(errText string) (string, string) {
	text := strings.TrimSpace(errText)
	if text == "" {
		return "", ""
	}
	parts := strings.SplitN(text, ":", 2)
	if len(parts) != 2 {
		return "", text
	}
	code := strings.TrimSpace(parts[0])
	if code == "" || strings.HasPrefix(strings.ToUpper(code), "HTTP ") {
		return "", text
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return "", text
		}
	}
	return code, strings.TrimSpace(parts[1])
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		w := lipgloss.Width(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
