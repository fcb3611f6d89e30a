package domain

import "encoding/json"

// Canned answers for the defined non-generated outcomes.
const (
	AnswerNotIndexed = "The system is not yet indexed. Please run the indexing process first."
	AnswerNoResults  = "I couldn't find relevant information in the database. Please try rephrasing your question."
	// AnswerApologyPrefix precedes the error detail in degraded answers.
	AnswerApologyPrefix = "I apologize, but I encountered an error: "
)

// Outcome tags which branch of the answer pipeline produced a response.
type Outcome string

// Answer outcomes.
const (
	OutcomeNotIndexed Outcome = "not_indexed"
	OutcomeCacheHit   Outcome = "cache_hit"
	OutcomeNoResults  Outcome = "no_results"
	OutcomeGenerated  Outcome = "generated"
	OutcomeDegraded   Outcome = "degraded"
)

// QueryType is the detected category of a user question.
type QueryType string

// Query categories, in detection priority order.
const (
	QueryTypeComparison                    QueryType = "comparison"
	QueryTypeTrendAnalysis                 QueryType = "trend_analysis"
	QueryTypeCorrelation                   QueryType = "correlation"
	QueryTypePolicyAnalysis                QueryType = "policy_analysis"
	QueryTypeRanking                       QueryType = "ranking"
	QueryTypeClimateAgricultureCorrelation QueryType = "climate_agriculture_correlation"
	QueryTypeClimate                       QueryType = "climate_query"
	QueryTypeAgriculture                   QueryType = "agriculture_query"
	QueryTypeGeneral                       QueryType = "general_query"
)

// QueryInfo annotates a query with detected entities. It is used for
// response metadata and logging only and never affects retrieval.
type QueryInfo struct {
	OriginalQuery string    `json:"original_query"`
	QueryType     QueryType `json:"query_type"`
	States        []string  `json:"states"`
	Crops         []string  `json:"crops"`
	Years         []int     `json:"years"`
	Numbers       []int     `json:"numbers"`
}

// Source is one cited document in an answer.
type Source struct {
	// Text is a truncated preview of the document.
	Text string `json:"text"`

	// Source is the metadata source label or "Unknown".
	Source string `json:"source"`

	// Type is the metadata type tag or "Unknown".
	Type string `json:"type"`

	// Metadata is the full record metadata.
	Metadata Metadata `json:"metadata"`

	// Relevance is the similarity score of the hit.
	Relevance float64 `json:"relevance"`
}

// AnswerResponse is the packaged result of answering a query.
type AnswerResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`

	// QueryInfo is nil for the not-indexed reply and serializes as {}.
	QueryInfo *QueryInfo `json:"query_info"`

	// Outcome records which pipeline branch produced this response.
	Outcome Outcome `json:"-"`
}

// MarshalJSON writes a nil QueryInfo as an empty object and nil sources as [].
func (r AnswerResponse) MarshalJSON() ([]byte, error) {
	type alias AnswerResponse
	out := struct {
		alias
		Sources   []Source `json:"sources"`
		QueryInfo any      `json:"query_info"`
	}{alias: alias(r), Sources: r.Sources, QueryInfo: r.QueryInfo}

	if out.Sources == nil {
		out.Sources = []Source{}
	}
	if r.QueryInfo == nil {
		out.QueryInfo = struct{}{}
	}
	return json.Marshal(out)
}
