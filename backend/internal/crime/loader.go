package crime

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// ErrInvalidRule is returned when a rule definition cannot be used
var ErrInvalidRule = errors.New("invalid crime rule")

// DefaultRuleSet returns the built-in rule table.
func DefaultRuleSet() (*RuleSet, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule table from a YAML file. An empty path selects
// the built-in table.
func LoadRules(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// ParseRules decodes and validates a YAML rule table
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules defined", ErrInvalidRule)
	}

	seen := make(map[string]bool, len(rs.Rules))
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidRule, r.ID)
		}
		seen[r.ID] = true
	}
	if rs.Version == "" {
		rs.Version = "1.0.0"
	}
	return &rs, nil
}

// validateRule checks required fields and fills defaults
func validateRule(r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRule)
	}
	if r.Name == "" {
		r.Name = r.ID
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: %s: unknown severity %q", ErrInvalidRule, r.ID, r.Severity)
	}
	if len(r.Keywords) == 0 && len(r.Patterns) == 0 {
		return fmt.Errorf("%w: %s: needs at least one keyword or pattern", ErrInvalidRule, r.ID)
	}
	for _, k := range r.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: %s: empty keyword", ErrInvalidRule, r.ID)
		}
	}
	for _, p := range r.Patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: %s: pattern %q: %v", ErrInvalidRule, r.ID, p, err)
		}
	}
	return nil
}
