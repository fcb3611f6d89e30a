// Package chat provides the question and answer transcript view.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/samarth/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/samarth/internal/core/domain"
)

// Entry is one exchange in the transcript. Response is nil while the
// answer is pending.
type Entry struct {
	Query    string
	Response *domain.AnswerResponse
	Err      error
}

// View renders the transcript inside a scrollable viewport.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	entries  []Entry
	width    int
	height   int
}

// NewView creates an empty transcript.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	v := &View{
		styles:   s,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   20,
	}
	v.refresh()
	return v
}

// Update forwards mouse wheel events to the viewport. Keys are handled
// by the caller so typing never scrolls.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if _, ok := msg.(tea.MouseMsg); !ok {
		return v, nil
	}
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the visible part of the transcript.
func (v *View) View() string {
	return v.viewport.View()
}

// Ask appends a pending question.
func (v *View) Ask(query string) {
	v.entries = append(v.entries, Entry{Query: query})
	v.refresh()
}

// Resolve attaches a response or error to the newest pending entry for
// query.
func (v *View) Resolve(query string, resp domain.AnswerResponse, err error) {
	for i := len(v.entries) - 1; i >= 0; i-- {
		e := &v.entries[i]
		if e.Query != query || e.Response != nil || e.Err != nil {
			continue
		}
		if err != nil {
			e.Err = err
		} else {
			e.Response = &resp
		}
		break
	}
	v.refresh()
}

// Pending reports whether any question still awaits its answer.
func (v *View) Pending() bool {
	for _, e := range v.entries {
		if e.Response == nil && e.Err == nil {
			return true
		}
	}
	return false
}

// Entries returns the transcript.
func (v *View) Entries() []Entry {
	return v.entries
}

// Clear empties the transcript.
func (v *View) Clear() {
	v.entries = nil
	v.refresh()
}

// PageUp scrolls one screen towards older entries.
func (v *View) PageUp() {
	v.viewport.SetYOffset(v.viewport.YOffset - v.viewport.Height)
}

// PageDown scrolls one screen towards newer entries.
func (v *View) PageDown() {
	v.viewport.SetYOffset(v.viewport.YOffset + v.viewport.Height)
}

// AtBottom reports whether the newest entry is visible.
func (v *View) AtBottom() bool {
	return v.viewport.AtBottom()
}

// SetDimensions sizes the transcript area.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = max(height, 1)
	v.viewport.Width = width
	v.viewport.Height = v.height
	v.refresh()
}

// refresh re-renders the content and follows the newest entry.
func (v *View) refresh() {
	v.viewport.SetContent(v.render())
	v.viewport.GotoBottom()
}

func (v *View) render() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render(
			"Ask about crop production or rainfall across Indian states.\n" +
				"For example: What was the wheat production in Punjab in 2010?")
	}

	wrap := max(v.width-4, 20)
	var b strings.Builder
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("> " + e.Query))
		b.WriteString("\n")

		switch {
		case e.Err != nil:
			b.WriteString(v.styles.Error.Width(wrap).PaddingLeft(2).Render("Error: " + e.Err.Error()))
		case e.Response == nil:
			b.WriteString(v.styles.Muted.PaddingLeft(2).Render("..."))
		default:
			b.WriteString(v.styles.Answer.Width(wrap).Render(e.Response.Answer))
			if sources := renderSources(e.Response.Sources); sources != "" {
				b.WriteString("\n")
				b.WriteString(v.styles.Citation.Width(wrap).Render(sources))
			}
		}
	}
	return b.String()
}

// renderSources lists cited sources, one per line.
func renderSources(sources []domain.Source) string {
	if len(sources) == 0 {
		return ""
	}
	lines := make([]string, 0, len(sources))
	for i, src := range sources {
		lines = append(lines, fmt.Sprintf("[%d] %s (%s, %.2f)", i+1, src.Source, src.Type, src.Relevance))
	}
	return strings.Join(lines, "\n")
}
