package analyzer

import (
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// KeywordMatches lists which keywords of each set occur in a message, in
// keyword-set order.
type KeywordMatches struct {
	Threats    []string `json:"threats"`
	Harassment []string `json:"harassment"`
	Fraud      []string `json:"fraud"`
}

// All concatenates the matches as threats, harassment, fraud.
func (k KeywordMatches) All() []string {
	all := make([]string, 0, len(k.Threats)+len(k.Harassment)+len(k.Fraud))
	all = append(all, k.Threats...)
	all = append(all, k.Harassment...)
	return append(all, k.Fraud...)
}

// Any reports whether any keyword matched.
func (k KeywordMatches) Any() bool {
	return len(k.Threats)+len(k.Harassment)+len(k.Fraud) > 0
}

// keywordSet is one Aho-Corasick automaton over a deduplicated keyword list.
type keywordSet struct {
	mu       sync.Mutex // the automaton keeps match state between calls
	matcher  *ahocorasick.Matcher
	keywords []string
}

func newKeywordSet(keywords []string) *keywordSet {
	seen := make(map[string]bool, len(keywords))
	unique := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, k)
	}
	s := &keywordSet{keywords: unique}
	if len(unique) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(unique)
	}
	return s
}

// match returns the keywords found in lowered, in list order.
func (s *keywordSet) match(lowered []byte) []string {
	if len(s.keywords) == 0 {
		return nil
	}

	s.mu.Lock()
	hits := s.matcher.Match(lowered)
	s.mu.Unlock()

	sort.Ints(hits)
	var found []string
	for i, idx := range hits {
		if idx >= len(s.keywords) || (i > 0 && hits[i-1] == idx) {
			continue
		}
		found = append(found, s.keywords[idx])
	}
	return found
}

// KeywordDetector matches messages against the threat, harassment and
// fraud keyword sets.
type KeywordDetector struct {
	threats    *keywordSet
	harassment *keywordSet
	fraud      *keywordSet
}

// NewKeywordDetector builds a detector over the built-in keyword sets.
func NewKeywordDetector() *KeywordDetector {
	return NewKeywordDetectorWith(threatKeywords, harassmentKeywords, fraudKeywords)
}

// NewKeywordDetectorWith builds a detector over custom keyword sets.
// Duplicate entries are dropped, keeping the first occurrence.
func NewKeywordDetectorWith(threats, harassment, fraud []string) *KeywordDetector {
	return &KeywordDetector{
		threats:    newKeywordSet(threats),
		harassment: newKeywordSet(harassment),
		fraud:      newKeywordSet(fraud),
	}
}

// Detect returns the keywords of each set contained in message.
func (d *KeywordDetector) Detect(message string) KeywordMatches {
	lowered := []byte(strings.ToLower(message))
	return KeywordMatches{
		Threats:    d.threats.match(lowered),
		Harassment: d.harassment.match(lowered),
		Fraud:      d.fraud.match(lowered),
	}
}
