package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(nil)

	assert.True(t, q.Focused())
	assert.Empty(t, q.Value())
	assert.Contains(t, q.View(), "Ask:")
}

func TestQuestionInput_Typing(t *testing.T) {
	q := NewQuestionInput(nil)

	q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("wheat")})
	assert.Equal(t, "wheat", q.Value())

	q.Reset()
	assert.Empty(t, q.Value())
}

func TestQuestionInput_SetValue(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetValue("rainfall in Kerala")
	assert.Equal(t, "rainfall in Kerala", q.Value())
}

func TestQuestionInput_FocusAndBlur(t *testing.T) {
	q := NewQuestionInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())
	assert.Equal(t, 88, q.textinput.Width)

	q.SetWidth(10)
	assert.Equal(t, minInputWidth, q.textinput.Width)
}
