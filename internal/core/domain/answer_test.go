package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityFromDistance(t *testing.T) {
	assert.Equal(t, 1.0, SimilarityFromDistance(0))
	assert.Equal(t, 0.5, SimilarityFromDistance(1))

	prev := SimilarityFromDistance(0)
	for _, d := range []float64{0.01, 0.5, 1, 10, 1000} {
		s := SimilarityFromDistance(d)
		assert.Less(t, s, prev, "similarity must strictly decrease with distance")
		assert.Greater(t, s, 0.0)
		prev = s
	}
}

func TestAnswerResponse_MarshalJSON_NotIndexed(t *testing.T) {
	resp := AnswerResponse{Answer: AnswerNotIndexed, Outcome: OutcomeNotIndexed}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.JSONEq(t, `{"answer":"`+AnswerNotIndexed+`","sources":[],"query_info":{}}`, string(data))
}

func TestAnswerResponse_JSONRoundTrip(t *testing.T) {
	resp := AnswerResponse{
		Answer: "Punjab produced 50000 tonnes.",
		Sources: []Source{{
			Text:      "In Punjab...",
			Source:    SourceMinistryOfAgriculture,
			Type:      "crop_production",
			Metadata:  punjabWheat(),
			Relevance: 0.8,
		}},
		QueryInfo: &QueryInfo{
			OriginalQuery: "wheat production in Punjab",
			QueryType:     QueryTypeAgriculture,
			States:        []string{"Punjab"},
			Crops:         []string{"Wheat"},
			Years:         []int{},
			Numbers:       []int{},
		},
		Outcome: OutcomeGenerated,
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "generated")

	var decoded AnswerResponse
	require.NoError(t, json.Unmarshal(data, &decoded))

	resp.Outcome = ""
	assert.Equal(t, resp, decoded)
}
