// Package similarity compares free text against labeled reference messages.
//
// Two algorithms live here. Jaccard scores whole-word overlap against every
// corpus row and feeds the message scoring engine. FindSimilarMessages is a
// typo tolerant matcher that ranks dataset entries by how many of the
// caller's meaningful words they contain.
package similarity

import (
	"sort"
	"strings"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
)

const (
	// MinJaccardSimilarity is the exclusive lower bound for a corpus match.
	MinJaccardSimilarity = 10.0
	// TopK bounds the number of matches returned by both matchers.
	TopK = 5

	noCrimeType = "None"
)

// Match is a corpus row scored against an input message.
type Match struct {
	Message       string  `json:"message"`
	ToxicityLabel string  `json:"toxicity_label"`
	CrimeType     string  `json:"crime_type"`
	Similarity    float64 `json:"similarity"` // 0-100
}

// Jaccard scores messages by |A∩B| / |A∪B| over lowercase whitespace
// separated word sets.
type Jaccard struct{}

// NewJaccard creates a Jaccard matcher.
func NewJaccard() *Jaccard {
	return &Jaccard{}
}

// TopMatches returns at most TopK rows with similarity above
// MinJaccardSimilarity, most similar first. Ties keep corpus order.
func (j *Jaccard) TopMatches(message string, c *corpus.Corpus) []Match {
	words := wordSet(message)
	if len(words) == 0 || c.Len() == 0 {
		return nil
	}

	var matches []Match
	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)
		sim := JaccardSimilarity(words, wordSet(row.MessageText))
		if sim <= MinJaccardSimilarity {
			continue
		}

		crimeType := row.CrimeType
		if crimeType == "" {
			crimeType = noCrimeType
		}
		matches = append(matches, Match{
			Message:       row.MessageText,
			ToxicityLabel: row.ToxicityLabel,
			CrimeType:     crimeType,
			Similarity:    sim,
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Similarity > matches[b].Similarity
	})
	if len(matches) > TopK {
		matches = matches[:TopK]
	}
	return matches
}

// JaccardSimilarity returns the overlap of two word sets scaled to 0-100.
// Two empty sets have similarity 0.
func JaccardSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union) * 100
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
