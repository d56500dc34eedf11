package analyzer

import "strings"

// Sentiment is a lexicon polarity estimate for a message.
type Sentiment struct {
	Score       int      `json:"score"`
	Comparative float64  `json:"comparative"`
	Tokens      []string `json:"tokens"`
	Words       []string `json:"words"`
	Positive    []string `json:"positive"`
	Negative    []string `json:"negative"`
}

// Polarity names the sign of the score.
func (s Sentiment) Polarity() string {
	switch {
	case s.Score > 0:
		return "positive"
	case s.Score < 0:
		return "negative"
	default:
		return "neutral"
	}
}

// SentimentEstimator counts exact lexicon hits. It does no stemming and
// ignores negation.
type SentimentEstimator struct {
	positive map[string]bool
	negative map[string]bool
}

// NewSentimentEstimator uses the built-in positive and negative lexicons.
func NewSentimentEstimator() *SentimentEstimator {
	s := &SentimentEstimator{
		positive: make(map[string]bool, len(positiveWords)),
		negative: make(map[string]bool, len(negativeWords)),
	}
	for _, w := range positiveWords {
		s.positive[w] = true
	}
	for _, w := range negativeWords {
		s.negative[w] = true
	}
	return s
}

// Estimate scores message as positive hits minus negative hits.
func (s *SentimentEstimator) Estimate(message string) Sentiment {
	tokens := strings.Fields(strings.ToLower(message))
	result := Sentiment{
		Tokens:   tokens,
		Words:    []string{},
		Positive: []string{},
		Negative: []string{},
	}

	for _, t := range tokens {
		switch {
		case s.positive[t]:
			result.Positive = append(result.Positive, t)
			result.Words = append(result.Words, t)
			result.Score++
		case s.negative[t]:
			result.Negative = append(result.Negative, t)
			result.Words = append(result.Words, t)
			result.Score--
		}
	}

	if len(tokens) > 0 {
		result.Comparative = float64(result.Score) / float64(len(tokens))
	}
	return result
}
