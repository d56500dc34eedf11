package analyzer

import (
	"math"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
)

// signals are the raw detector outputs for one message
type signals struct {
	keywords  KeywordMatches
	sentiment Sentiment
	similar   []SimilarExample
}

// collect runs every detector over message
func (e *Engine) collect(message string, c *corpus.Corpus) signals {
	return signals{
		keywords:  e.keywords.Detect(message),
		sentiment: e.sentiment.Estimate(message),
		similar:   e.matcher.TopMatches(message, c),
	}
}

// score turns detector outputs into the final result
func (e *Engine) score(message string, s signals) AnalysisResult {
	toxicity := toxicityScore(s.keywords, s.sentiment, s.similar, e.labels)
	category := categorize(toxicity, s.keywords)
	matched := s.keywords.All()
	sentiment := s.sentiment

	result := AnalysisResult{
		Category:        category,
		ToxicityScore:   int(math.Round(toxicity)),
		ConfidenceScore: int(math.Round(confidenceScore(message, s.keywords, s.similar))),
		MatchedKeywords: matched,
		Summary:         summarize(category, matched, s.sentiment, s.similar),
		CrimePattern:    inferCrimePattern(s.keywords, s.similar, e.labels),
		Sentiment:       &sentiment,
	}
	if len(s.similar) > 0 {
		result.SimilarExamples = s.similar
	}
	return result
}
