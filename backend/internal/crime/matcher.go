// Package crime maps message text to categorized incident types with
// severity, legal references and recommended investigation steps.
//
// Rules are data: a YAML table (embedded by default) of keyword sets and
// regular expressions per category. A Matcher compiles the table once and
// evaluates every rule independently, so one message can match several
// categories.
package crime

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/blackrose-blackhat/cybershield/backend/internal/metrics"
)

const (
	baseConfidence    = 0.5
	keywordConfidence = 0.85 // two or more keywords
	patternConfidence = 0.9
)

type compiledRule struct {
	rule     Rule
	patterns []*regexp.Regexp
}

type ruleMapping struct {
	rule    int
	keyword int
}

// Matcher evaluates a compiled rule table. It is safe for concurrent use.
type Matcher struct {
	rules   []compiledRule
	version string

	mu        sync.Mutex // the automaton keeps match state between calls
	automaton *ahocorasick.Matcher
	keywords  []string
	kwToRules map[string][]ruleMapping
}

// NewMatcher compiles rs. The rule set must have passed ParseRules.
func NewMatcher(rs *RuleSet) *Matcher {
	m := &Matcher{
		rules:     make([]compiledRule, len(rs.Rules)),
		version:   rs.Version,
		kwToRules: make(map[string][]ruleMapping),
	}

	for i, r := range rs.Rules {
		cr := compiledRule{rule: r}
		for _, p := range r.Patterns {
			cr.patterns = append(cr.patterns, regexp.MustCompile(p))
		}
		m.rules[i] = cr

		for j, kw := range r.Keywords {
			normalized := strings.ToLower(kw)
			if _, known := m.kwToRules[normalized]; !known {
				m.keywords = append(m.keywords, normalized)
			}
			m.kwToRules[normalized] = append(m.kwToRules[normalized], ruleMapping{rule: i, keyword: j})
		}
	}

	if len(m.keywords) > 0 {
		m.automaton = ahocorasick.NewStringMatcher(m.keywords)
	}
	return m
}

// NewDefaultMatcher compiles the built-in rule table.
func NewDefaultMatcher() (*Matcher, error) {
	rs, err := DefaultRuleSet()
	if err != nil {
		return nil, err
	}
	return NewMatcher(rs), nil
}

// LoadMatcher compiles the rule table at path, or the built-in one when
// path is empty.
func LoadMatcher(path string) (*Matcher, error) {
	rs, err := LoadRules(path)
	if err != nil {
		return nil, err
	}
	return NewMatcher(rs), nil
}

// Version returns the rule table version
func (m *Matcher) Version() string {
	return m.version
}

// Rules returns the rule definitions in evaluation order
func (m *Matcher) Rules() []Rule {
	rules := make([]Rule, len(m.rules))
	for i, cr := range m.rules {
		rules[i] = cr.rule
	}
	return rules
}

// Detect returns one Match per rule that fires on text, highest
// confidence first and then most severe. Equal matches keep rule order.
func (m *Matcher) Detect(text string) []Match {
	hitKeywords := m.keywordHits(strings.ToLower(text))

	var matches []Match
	for i, cr := range m.rules {
		var matched []string
		for j, kw := range cr.rule.Keywords {
			if hitKeywords[i][j] {
				matched = append(matched, kw)
			}
		}

		patternHit := false
		for _, re := range cr.patterns {
			if re.MatchString(text) {
				patternHit = true
				break
			}
		}

		if len(matched) == 0 && !patternHit {
			continue
		}

		confidence := baseConfidence
		if len(matched) >= 2 {
			confidence = keywordConfidence
		}
		if patternHit && confidence < patternConfidence {
			confidence = patternConfidence
		}

		if matched == nil {
			matched = []string{}
		}
		matches = append(matches, Match{
			Category:                    cr.rule.Name,
			RuleID:                      cr.rule.ID,
			Confidence:                  confidence,
			Severity:                    cr.rule.Severity,
			MatchedKeywords:             matched,
			LegalReferences:             cr.rule.LegalReferences,
			InvestigationSteps:          cr.rule.InvestigationSteps,
			RequiresImmediateEscalation: cr.rule.Severity == SeverityCritical,
		})
		metrics.RecordCrimeMatch(cr.rule.Name)
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Confidence != matches[b].Confidence {
			return matches[a].Confidence > matches[b].Confidence
		}
		return matches[a].Severity.Weight() > matches[b].Severity.Weight()
	})
	return matches
}

// keywordHits runs the automaton once and returns, per rule, which keyword
// positions occur in lowered.
func (m *Matcher) keywordHits(lowered string) map[int]map[int]bool {
	hits := make(map[int]map[int]bool)
	if m.automaton == nil {
		return hits
	}

	m.mu.Lock()
	found := m.automaton.Match([]byte(lowered))
	m.mu.Unlock()

	for _, idx := range found {
		if idx >= len(m.keywords) {
			continue
		}
		for _, mapping := range m.kwToRules[m.keywords[idx]] {
			if hits[mapping.rule] == nil {
				hits[mapping.rule] = make(map[int]bool)
			}
			hits[mapping.rule][mapping.keyword] = true
		}
	}
	return hits
}
