package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

func TestParseQuery_PunjabWheat(t *testing.T) {
	info := ParseQuery("What was the wheat production in Punjab in 2020?")

	assert.Equal(t, "What was the wheat production in Punjab in 2020?", info.OriginalQuery)
	assert.Equal(t, []string{"Punjab"}, info.States)
	assert.Equal(t, []string{"Wheat"}, info.Crops)
	assert.Equal(t, []int{2020}, info.Years)
	assert.Empty(t, info.Numbers)
	assert.Equal(t, domain.QueryTypeAgriculture, info.QueryType)
}

func TestParseQuery_EmptyListsNotNil(t *testing.T) {
	info := ParseQuery("hello")

	assert.NotNil(t, info.States)
	assert.NotNil(t, info.Crops)
	assert.NotNil(t, info.Years)
	assert.NotNil(t, info.Numbers)
	assert.Equal(t, domain.QueryTypeGeneral, info.QueryType)
}

func TestExtractYears(t *testing.T) {
	assert.Equal(t, []int{1998, 2015}, ExtractYears("between 1998 and 2015, not 1850 or 12345"))
}

func TestExtractNumbers(t *testing.T) {
	assert.Equal(t, []int{5, 3}, ExtractNumbers("top 5 crops over last 3 years since 2010"))
}

func TestDetermineQueryType(t *testing.T) {
	tests := []struct {
		query string
		want  domain.QueryType
	}{
		{"Compare rice in Kerala vs Assam", domain.QueryTypeComparison},
		{"Rice trend over time in Bihar", domain.QueryTypeTrendAnalysis},
		{"impact of monsoon on farmers", domain.QueryTypeCorrelation},
		{"Which policy should we recommend", domain.QueryTypePolicyAnalysis},
		{"highest producing district", domain.QueryTypeRanking},
		{"How does rainfall affect crop output", domain.QueryTypeClimateAgricultureCorrelation},
		{"annual rainfall in Konkan", domain.QueryTypeClimate},
		{"maize yield in Karnataka", domain.QueryTypeAgriculture},
		{"tell me something", domain.QueryTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineQueryType(tt.query))
		})
	}
}

func TestDetermineQueryType_WordBoundaries(t *testing.T) {
	// "canvas" must not match "vs" and "stop" must not match "top".
	assert.Equal(t, domain.QueryTypeGeneral, DetermineQueryType("canvas bags stop"))
}

func TestMatchNames_ListOrder(t *testing.T) {
	got := matchNames("west bengal and assam", IndianStates)
	assert.Equal(t, []string{"Assam", "West Bengal"}, got)
}
