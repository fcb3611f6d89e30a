// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/samarth/internal/core/domain"
)

// Bar shows the indexing state, activity and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model

	index    domain.IndexStatus
	thinking bool
	message  string
	isError  bool
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		index:   domain.IndexStatus{State: domain.IndexStateNotStarted},
		width:   80,
	}
}

// Init starts the spinner.
func (b *Bar) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update advances the spinner while work is in flight.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	parts := []string{b.renderIndex()}

	if b.thinking {
		parts = append(parts, b.spinner.View()+b.styles.Muted.Render("Thinking..."))
	}
	if b.message != "" {
		if b.isError {
			parts = append(parts, b.styles.Error.Render("Error: "+b.message))
		} else {
			parts = append(parts, b.styles.Normal.Render(b.message))
		}
	}
	return strings.Join(parts, "  ")
}

func (b *Bar) renderIndex() string {
	switch b.index.State {
	case domain.IndexStateInProgress:
		return b.spinner.View() + b.styles.Warning.Render("Indexing...")
	case domain.IndexStateComplete:
		return b.styles.Success.Render(fmt.Sprintf("Indexed (%d docs)", b.index.DocumentsAdded))
	case domain.IndexStateFailed:
		if b.index.Reason != "" {
			return b.styles.Error.Render("Index failed: " + b.index.Reason)
		}
		return b.styles.Error.Render("Index failed")
	case domain.IndexStateNotStarted:
		return b.styles.Muted.Render("Not indexed")
	}
	return b.styles.Muted.Render(b.index.State.String())
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Help.Render(strings.Join(hints, " | "))
}

// SetIndexStatus records the latest indexing status.
func (b *Bar) SetIndexStatus(status domain.IndexStatus) {
	b.index = status
}

// IndexStatus returns the last recorded indexing status.
func (b *Bar) IndexStatus() domain.IndexStatus {
	return b.index
}

// SetThinking toggles the answering indicator.
func (b *Bar) SetThinking(thinking bool) {
	b.thinking = thinking
}

// Thinking reports whether a question is being answered.
func (b *Bar) Thinking() bool {
	return b.thinking
}

// SetMessage shows an informational message.
func (b *Bar) SetMessage(message string) {
	b.message = message
	b.isError = false
}

// SetError shows an error message.
func (b *Bar) SetError(err error) {
	if err == nil {
		b.ClearMessage()
		return
	}
	b.message = err.Error()
	b.isError = true
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// IsError reports whether the current message is an error.
func (b *Bar) IsError() bool {
	return b.isError
}

// ClearMessage removes any message.
func (b *Bar) ClearMessage() {
	b.message = ""
	b.isError = false
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
