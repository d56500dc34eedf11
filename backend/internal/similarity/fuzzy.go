package similarity

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
)

const (
	exactMatchScore    = 100.0
	containsMatchScore = 80.0
	tokenCoverageScale = 70.0
	// MinFuzzyScore is the exclusive lower bound for a fuzzy match.
	MinFuzzyScore = 30.0

	minInputTokenLen = 3 // input tokens shorter than this are ignored
	minEntryTokenLen = 4 // entry tokens shorter than this are never compared
	maxLenDifference = 2
)

var fuzzyStopwords = map[string]bool{
	"the":  true,
	"and":  true,
	"for":  true,
	"that": true,
	"this": true,
	"with": true,
	"from": true,
}

// Entry is a dataset record for the fuzzy path. Datasets name the message
// column differently, so several text fields are accepted; Body picks one.
type Entry struct {
	MessageText string `json:"message_text,omitempty"`
	Message     string `json:"message,omitempty"`
	Text        string `json:"text,omitempty"`
	Content     string `json:"content,omitempty"`
	Category    string `json:"category,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	Label       string `json:"label,omitempty"`
}

// Body returns the first non-empty message field.
func (e Entry) Body() string {
	for _, s := range []string{e.MessageText, e.Message, e.Text, e.Content} {
		if s != "" {
			return s
		}
	}
	return ""
}

// EntriesFromCorpus converts corpus rows into fuzzy dataset entries.
func EntriesFromCorpus(c *corpus.Corpus) []Entry {
	entries := make([]Entry, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)
		entries = append(entries, Entry{
			MessageText: row.MessageText,
			Category:    row.CrimeType,
			Severity:    row.SeverityLevel,
			Keywords:    row.MatchedKeywords,
			Label:       row.ToxicityLabel,
		})
	}
	return entries
}

// ScoredEntry pairs an entry with its fuzzy score.
type ScoredEntry struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"` // 0-100
}

// FindSimilarMessages returns up to TopK entries that resemble text, best
// first.
func FindSimilarMessages(text string, dataset []Entry) []Entry {
	ranked := RankEntries(text, dataset)
	entries := make([]Entry, len(ranked))
	for i, r := range ranked {
		entries[i] = r.Entry
	}
	return entries
}

// RankEntries scores every entry against text and keeps the TopK entries
// scoring above MinFuzzyScore. A blank input matches nothing.
func RankEntries(text string, dataset []Entry) []ScoredEntry {
	input := strings.ToLower(strings.TrimSpace(text))
	if input == "" {
		return nil
	}
	inputTokens := meaningfulTokens(input)

	var ranked []ScoredEntry
	for _, entry := range dataset {
		body := strings.ToLower(strings.TrimSpace(entry.Body()))
		if body == "" {
			continue
		}
		score := fuzzyScore(input, inputTokens, body)
		if score > MinFuzzyScore {
			ranked = append(ranked, ScoredEntry{Entry: entry, Score: score})
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if len(ranked) > TopK {
		ranked = ranked[:TopK]
	}
	return ranked
}

func fuzzyScore(input string, inputTokens []string, body string) float64 {
	switch {
	case body == input:
		return exactMatchScore
	case strings.Contains(body, input) || strings.Contains(input, body):
		return containsMatchScore
	}
	if len(inputTokens) == 0 {
		return 0
	}

	var bodyTokens []string
	for _, t := range strings.Fields(body) {
		if utf8.RuneCountInString(t) >= minEntryTokenLen {
			bodyTokens = append(bodyTokens, t)
		}
	}

	matched := 0
	for _, in := range inputTokens {
		for _, candidate := range bodyTokens {
			if tokensMatch(in, candidate) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(inputTokens)) * tokenCoverageScale
}

func meaningfulTokens(input string) []string {
	var tokens []string
	for _, t := range strings.Fields(input) {
		if utf8.RuneCountInString(t) < minInputTokenLen || fuzzyStopwords[t] {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// tokensMatch allows one edit for words up to four runes and two edits
// otherwise. Words whose lengths differ by more than two never match.
func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if abs(la-lb) > maxLenDifference {
		return false
	}

	dist := levenshtein.ComputeDistance(a, b)
	if max(la, lb) <= 4 {
		return dist <= 1
	}
	return dist <= 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
