package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/samarth/internal/core/domain"
)

// errIndexUnavailable is shown when reindexing is requested without an
// index service.
var errIndexUnavailable = errors.New("indexing is not available")

// chromeHeight is the number of rows used by the title, input and status bar.
const chromeHeight = 6

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input      *input.QuestionInput
	transcript *chat.View
	statusBar  *status.Bar

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: chat.NewView(s),
		statusBar:  status.NewBar(s, km),
	}
	if ports.Index != nil {
		a.statusBar.SetIndexStatus(ports.Index.Status())
	}
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("samarth"),
		a.input.Init(),
		a.statusBar.Init(),
	}
	if a.indexing() {
		cmds = append(cmds, a.pollStatus())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.transcript.Resolve(msg.Query, msg.Response, msg.Err)
		a.statusBar.SetThinking(a.transcript.Pending())
		if msg.Err != nil {
			a.statusBar.SetError(msg.Err)
		}
		return a, nil

	case messages.IndexStarted:
		a.statusBar.SetIndexStatus(msg.Status)
		if msg.Started {
			a.statusBar.SetMessage("Indexing started")
		} else {
			a.statusBar.SetError(domain.ErrIndexingInProgress)
		}
		return a, a.pollStatus()

	case messages.IndexStatusUpdated:
		a.statusBar.SetIndexStatus(msg.Status)
		if msg.Status.State == domain.IndexStateInProgress {
			return a, a.pollStatus()
		}
		a.statusBar.ClearMessage()
		return a, nil
	}

	var cmd tea.Cmd
	a.statusBar, cmd = a.statusBar.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Ask):
		query := strings.TrimSpace(a.input.Value())
		if query == "" {
			return a, nil
		}
		a.input.Reset()
		a.transcript.Ask(query)
		a.statusBar.SetThinking(true)
		a.statusBar.ClearMessage()
		return a, a.ask(query)

	case keymap.Matches(k, a.keymap.Clear):
		if a.input.Value() != "" {
			a.input.Reset()
		} else if !a.transcript.Pending() {
			a.transcript.Clear()
		}
		a.statusBar.ClearMessage()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollUp):
		a.transcript.PageUp()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollDown):
		a.transcript.PageDown()
		return a, nil

	case keymap.Matches(k, a.keymap.Reindex):
		if a.ports.Index == nil {
			a.statusBar.SetError(errIndexUnavailable)
			return a, nil
		}
		return a, a.startIndex()
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	title := a.styles.Title.Render("Samarth") +
		a.styles.Muted.Render("  Indian agriculture and climate Q&A")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		a.transcript.View(),
		a.input.View(),
		a.statusBar.View(),
	)
}

func (a *App) setSize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.transcript.SetDimensions(width, height-chromeHeight)
}

// ask answers query off the event loop.
func (a *App) ask(query string) tea.Cmd {
	ctx := a.ctx
	answers := a.ports.Answer
	return func() tea.Msg {
		resp, err := answers.Answer(ctx, query)
		return messages.AnswerReceived{Query: query, Response: resp, Err: err}
	}
}

// startIndex requests a background indexing run.
func (a *App) startIndex() tea.Cmd {
	ctx := a.ctx
	index := a.ports.Index
	return func() tea.Msg {
		st, started := index.Start(ctx)
		return messages.IndexStarted{Status: st, Started: started}
	}
}

// pollStatus schedules the next indexing status refresh.
func (a *App) pollStatus() tea.Cmd {
	index := a.ports.Index
	if index == nil {
		return nil
	}
	return tea.Tick(messages.StatusPollInterval, func(time.Time) tea.Msg {
		return messages.IndexStatusUpdated{Status: index.Status()}
	})
}

// indexing reports whether a run was already active at startup.
func (a *App) indexing() bool {
	return a.ports.Index != nil && a.ports.Index.Status().State == domain.IndexStateInProgress
}

// Transcript returns the chat transcript.
func (a *App) Transcript() []chat.Entry {
	return a.transcript.Entries()
}

// Ready returns whether the app has received its first window size.
func (a *App) Ready() bool {
	return a.ready
}
