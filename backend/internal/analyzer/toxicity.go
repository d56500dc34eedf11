package analyzer

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	threatWeight     = 30
	harassmentWeight = 15
	fraudWeight      = 20
	sentimentWeight  = 2
	similarityWeight = 0.5

	baseConfidence        = 70
	keywordConfidence     = 10
	longMessageConfidence = 10
	shortMessagePenalty   = 20
	maxSimilarityBoost    = 15
)

// Labels is the corpus label vocabulary the scorer reacts to. Each entry
// is matched as a substring of a corpus toxicity label.
type Labels struct {
	HighRisk   []string `toml:"high_risk"`  // boosts toxicity when present in a similar example
	Critical   []string `toml:"critical"`   // pattern severity critical
	Harassment []string `toml:"harassment"` // pattern severity high
	Mild       []string `toml:"mild"`       // pattern severity low
}

// DefaultLabels matches the labels used by the bundled reference corpus.
func DefaultLabels() Labels {
	return Labels{
		HighRisk:   []string{"High-Risk", "Threat"},
		Critical:   []string{"High-Risk", "Critical"},
		Harassment: []string{"Harassment"},
		Mild:       []string{"Mild"},
	}
}

// SeverityFor maps a corpus toxicity label to a pattern severity.
func (l Labels) SeverityFor(label string) Severity {
	switch {
	case containsAny(label, l.Critical):
		return SeverityCritical
	case containsAny(label, l.Harassment):
		return SeverityHigh
	case containsAny(label, l.Mild):
		return SeverityLow
	default:
		return SeverityMedium
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// toxicityScore combines keyword hits, negative sentiment and high-risk
// corpus neighbours into a value clamped to [0,100].
func toxicityScore(kw KeywordMatches, sentiment Sentiment, similar []SimilarExample, labels Labels) float64 {
	score := float64(threatWeight*len(kw.Threats) +
		harassmentWeight*len(kw.Harassment) +
		fraudWeight*len(kw.Fraud))

	if sentiment.Score < 0 {
		score += float64(-sentiment.Score * sentimentWeight)
	}

	if len(similar) > 0 {
		var total float64
		highRisk := false
		for _, ex := range similar {
			total += ex.Similarity
			if containsAny(ex.ToxicityLabel, labels.HighRisk) {
				highRisk = true
			}
		}
		if highRisk {
			score += total / float64(len(similar)) * similarityWeight
		}
	}

	return clamp(score)
}

// categorize applies keyword overrides first, then score thresholds.
func categorize(score float64, kw KeywordMatches) Category {
	switch {
	case len(kw.Threats) > 0, len(kw.Fraud) > 0:
		return CategoryHighRisk
	case score > 60:
		return CategoryHighRisk
	case score > 30:
		return CategoryHarassment
	case score > 10:
		return CategoryMild
	default:
		return CategorySafe
	}
}

func confidenceScore(message string, kw KeywordMatches, similar []SimilarExample) float64 {
	confidence := float64(baseConfidence)

	if kw.Any() {
		confidence += keywordConfidence
	}
	length := utf8.RuneCountInString(message)
	if length > 20 {
		confidence += longMessageConfidence
	}
	if length < 5 {
		confidence -= shortMessagePenalty
	}
	if len(similar) > 0 {
		confidence += math.Min(maxSimilarityBoost, similar[0].Similarity/5)
	}

	return clamp(confidence)
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
