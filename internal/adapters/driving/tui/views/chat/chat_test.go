package chat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

func TestNewView_ShowsHint(t *testing.T) {
	v := NewView(nil)

	assert.Empty(t, v.Entries())
	assert.Contains(t, v.View(), "Ask about crop production")
}

func TestView_AskAndResolve(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(120, 20)

	v.Ask("wheat in Punjab")
	assert.True(t, v.Pending())
	assert.Contains(t, v.View(), "> wheat in Punjab")

	v.Resolve("wheat in Punjab", domain.AnswerResponse{
		Answer: "Punjab produced 1,250,000 tonnes. [Source 1]",
		Sources: []domain.Source{{
			Source:    domain.SourceMinistryOfAgriculture,
			Type:      "crop_production",
			Relevance: 0.5,
		}},
	}, nil)

	assert.False(t, v.Pending())
	view := v.View()
	assert.Contains(t, view, "1,250,000 tonnes")
	assert.Contains(t, view, "[1] data.gov.in - Ministry of Agriculture (crop_production, 0.50)")
}

func TestView_ResolveError(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(120, 20)

	v.Ask("rainfall")
	v.Resolve("rainfall", domain.AnswerResponse{}, errors.New("embed query: timeout"))

	require.Len(t, v.Entries(), 1)
	assert.Error(t, v.Entries()[0].Err)
	assert.Contains(t, v.View(), "Error: embed query: timeout")
}

func TestView_ResolveNewestPendingOnly(t *testing.T) {
	v := NewView(nil)

	v.Ask("same")
	v.Resolve("same", domain.AnswerResponse{Answer: "first"}, nil)
	v.Ask("same")
	v.Resolve("same", domain.AnswerResponse{Answer: "second"}, nil)

	entries := v.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Response.Answer)
	assert.Equal(t, "second", entries[1].Response.Answer)
}

func TestView_ResolveUnknownQueryIgnored(t *testing.T) {
	v := NewView(nil)

	v.Ask("asked")
	v.Resolve("never asked", domain.AnswerResponse{Answer: "x"}, nil)

	assert.True(t, v.Pending())
}

func TestView_Clear(t *testing.T) {
	v := NewView(nil)
	v.Ask("q")

	v.Clear()

	assert.Empty(t, v.Entries())
	assert.Contains(t, v.View(), "Ask about crop production")
}

func TestView_Scrolling(t *testing.T) {
	v := NewView(nil)
	v.SetDimensions(80, 5)

	for i := range 10 {
		q := fmt.Sprintf("question %d", i)
		v.Ask(q)
		v.Resolve(q, domain.AnswerResponse{Answer: "answer"}, nil)
	}
	assert.True(t, v.AtBottom())

	v.PageUp()
	assert.False(t, v.AtBottom())

	v.PageDown()
	v.PageDown()
	assert.True(t, v.AtBottom())
}

func TestRenderSources_Empty(t *testing.T) {
	assert.Empty(t, renderSources(nil))
}
