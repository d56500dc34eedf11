package analyzer

import "github.com/blackrose-blackhat/cybershield/backend/internal/similarity"

// Category is the overall verdict for a message
type Category string

const (
	CategorySafe       Category = "safe"
	CategoryMild       Category = "mild"
	CategoryHarassment Category = "harassment"
	CategoryHighRisk   Category = "high-risk"
)

// Severity grades a crime pattern
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight orders severities; unknown values weigh 0.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// CrimePattern is the best-effort incident type inferred for a message
type CrimePattern struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Confidence  int      `json:"confidence"` // 0-100
}

// SimilarExample is a reference corpus message close to the analyzed one
type SimilarExample = similarity.Match

// AnalysisResult is the scored verdict for one message. Results may be
// shared through the cache and must not be modified.
type AnalysisResult struct {
	Category        Category         `json:"category"`
	ToxicityScore   int              `json:"toxicity_score"`   // 0-100
	ConfidenceScore int              `json:"confidence_score"` // 0-100
	MatchedKeywords []string         `json:"matched_keywords"`
	Summary         string           `json:"summary"`
	CrimePattern    *CrimePattern    `json:"crime_pattern,omitempty"`
	SimilarExamples []SimilarExample `json:"similar_examples,omitempty"`
	Sentiment       *Sentiment       `json:"sentiment,omitempty"`
}

// EmptyResult is returned for blank messages
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		Category:        CategorySafe,
		MatchedKeywords: []string{},
		Summary:         "Message is empty.",
	}
}
