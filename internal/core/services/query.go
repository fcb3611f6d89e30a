package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/samarth/internal/core/domain"
)

// IndianStates are the state names recognised in queries, in match order.
var IndianStates = []string{
	"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar", "Chhattisgarh",
	"Goa", "Gujarat", "Haryana", "Himachal Pradesh", "Jharkhand", "Karnataka",
	"Kerala", "Madhya Pradesh", "Maharashtra", "Manipur", "Meghalaya", "Mizoram",
	"Nagaland", "Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
	"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand", "West Bengal",
}

// CommonCrops are the crop names recognised in queries, in match order.
var CommonCrops = []string{
	"Rice", "Wheat", "Maize", "Jowar", "Bajra", "Ragi", "Barley",
	"Cotton", "Jute", "Sugarcane", "Groundnut", "Soybean", "Sunflower",
	"Coconut", "Arecanut", "Tea", "Coffee", "Rubber",
}

var (
	yearPattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	numberPattern = regexp.MustCompile(`\b\d+\b`)
)

// keywordGroup maps a set of keywords to the query type they signal.
type keywordGroup struct {
	queryType domain.QueryType
	pattern   *regexp.Regexp
}

func keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

var (
	queryTypeGroups = []keywordGroup{
		{domain.QueryTypeComparison, keywords("compare", "comparison", "versus", "vs")},
		{domain.QueryTypeTrendAnalysis, keywords("trend", "over time", "decade", "years")},
		{domain.QueryTypeCorrelation, keywords("correlate", "correlation", "relationship", "impact")},
		{domain.QueryTypePolicyAnalysis, keywords("policy", "recommend", "argument", "support")},
		{domain.QueryTypeRanking, keywords("highest", "lowest", "maximum", "minimum", "top", "best")},
	}
	rainfallWords    = keywords("rainfall", "rain", "precipitation")
	cropClimateWords = keywords("crop", "production", "agriculture")
	agricultureWords = keywords("crop", "production", "yield", "agriculture")
)

// ParseQuery annotates a query with its detected type and entities.
// The result is informational and never influences retrieval.
func ParseQuery(query string) domain.QueryInfo {
	return domain.QueryInfo{
		OriginalQuery: query,
		QueryType:     DetermineQueryType(query),
		States:        matchNames(query, IndianStates),
		Crops:         matchNames(query, CommonCrops),
		Years:         ExtractYears(query),
		Numbers:       ExtractNumbers(query),
	}
}

// DetermineQueryType returns the first matching keyword category.
func DetermineQueryType(query string) domain.QueryType {
	q := strings.ToLower(query)

	for _, g := range queryTypeGroups {
		if g.pattern.MatchString(q) {
			return g.queryType
		}
	}

	if rainfallWords.MatchString(q) {
		if cropClimateWords.MatchString(q) {
			return domain.QueryTypeClimateAgricultureCorrelation
		}
		return domain.QueryTypeClimate
	}

	if agricultureWords.MatchString(q) {
		return domain.QueryTypeAgriculture
	}
	return domain.QueryTypeGeneral
}

// ExtractYears returns every 19xx or 20xx token as a full year.
func ExtractYears(query string) []int {
	matches := yearPattern.FindAllString(query, -1)
	years := make([]int, 0, len(matches))
	for _, m := range matches {
		if y, err := strconv.Atoi(m); err == nil {
			years = append(years, y)
		}
	}
	return years
}

// ExtractNumbers returns every integer token of at most two digits,
// e.g. the N in "last 5 years".
func ExtractNumbers(query string) []int {
	matches := numberPattern.FindAllString(query, -1)
	numbers := make([]int, 0, len(matches))
	for _, m := range matches {
		if len(m) > 2 {
			continue
		}
		if n, err := strconv.Atoi(m); err == nil {
			numbers = append(numbers, n)
		}
	}
	return numbers
}

// matchNames returns each name that occurs in the query, case-insensitively.
func matchNames(query string, names []string) []string {
	q := strings.ToLower(query)
	found := make([]string, 0)
	for _, name := range names {
		if strings.Contains(q, strings.ToLower(name)) {
			found = append(found, name)
		}
	}
	return found
}
