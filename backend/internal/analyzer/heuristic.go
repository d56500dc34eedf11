package analyzer

import (
	"fmt"
	"math"
	"strings"
)

const noCrimeType = "None"

// keywordPatterns are the fallbacks used when no corpus neighbour names a
// crime type, in priority order.
var keywordPatterns = []struct {
	matched func(KeywordMatches) bool
	pattern CrimePattern
}{
	{
		matched: func(k KeywordMatches) bool { return len(k.Threats) > 0 },
		pattern: CrimePattern{
			Type:        "Criminal Threat",
			Description: "Message contains keywords associated with physical threats or severe bullying.",
			Severity:    SeverityHigh,
			Confidence:  85,
		},
	},
	{
		matched: func(k KeywordMatches) bool { return len(k.Fraud) > 0 },
		pattern: CrimePattern{
			Type:        "Financial Fraud",
			Description: "Message contains keywords associated with financial scams or fraud.",
			Severity:    SeverityHigh,
			Confidence:  80,
		},
	},
	{
		matched: func(k KeywordMatches) bool { return len(k.Harassment) > 0 },
		pattern: CrimePattern{
			Type:        "Online Harassment",
			Description: "Message contains harassing language.",
			Severity:    SeverityMedium,
			Confidence:  75,
		},
	},
}

// inferCrimePattern prefers the crime type of the closest corpus message
// and falls back to keyword priority. It returns nil when neither applies.
func inferCrimePattern(kw KeywordMatches, similar []SimilarExample, labels Labels) *CrimePattern {
	if len(similar) > 0 && similar[0].CrimeType != noCrimeType {
		top := similar[0]
		return &CrimePattern{
			Type:        top.CrimeType,
			Description: fmt.Sprintf("Message matches patterns similar to %s cases in our database.", top.CrimeType),
			Severity:    labels.SeverityFor(top.ToxicityLabel),
			Confidence:  int(math.Round(top.Similarity)),
		}
	}

	for _, kp := range keywordPatterns {
		if kp.matched(kw) {
			p := kp.pattern
			return &p
		}
	}
	return nil
}

func summarize(category Category, keywords []string, sentiment Sentiment, similar []SimilarExample) string {
	if category == CategorySafe {
		return fmt.Sprintf("The message appears safe with %s sentiment.", sentiment.Polarity())
	}

	found := strings.Join(keywords, ", ")
	if found == "" {
		found = "None"
	}
	summary := fmt.Sprintf("Detected %s content. Found keywords: %s. Sentiment is %s.", category, found, sentiment.Polarity())

	if len(similar) > 0 {
		summary += fmt.Sprintf(" This message is %d%% similar to known %s cases in our database.",
			int(math.Round(similar[0].Similarity)), similar[0].ToxicityLabel)
	}
	return summary
}
