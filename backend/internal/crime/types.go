package crime

// Severity grades a crime category
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Weight orders severities for ranking; unknown values weigh 0.
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

// Valid reports whether s is one of the four known severities
func (s Severity) Valid() bool {
	return s.Weight() > 0
}

// LegalReference cites the law a category falls under
type LegalReference struct {
	Code        string `yaml:"code" json:"code"`
	Section     string `yaml:"section" json:"section"`
	Description string `yaml:"description" json:"description"`
}

// InvestigationStep is a recommended response action
type InvestigationStep struct {
	ID            string   `yaml:"id" json:"id"`
	Action        string   `yaml:"action" json:"action"`
	Description   string   `yaml:"description" json:"description"`
	RequiredTools []string `yaml:"required_tools,omitempty" json:"required_tools,omitempty"`
	Priority      Severity `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// Rule defines one crime category: how to recognize it and what to do
// about it.
type Rule struct {
	ID                 string              `yaml:"id" json:"id"`
	Name               string              `yaml:"name" json:"name"`
	Severity           Severity            `yaml:"severity" json:"severity"`
	Keywords           []string            `yaml:"keywords" json:"keywords"`
	Patterns           []string            `yaml:"patterns" json:"patterns"`
	LegalReferences    []LegalReference    `yaml:"legal_references" json:"legal_references"`
	InvestigationSteps []InvestigationStep `yaml:"investigation_steps" json:"investigation_steps"`
}

// RuleSet is the root of a rules file
type RuleSet struct {
	Version string `yaml:"version" json:"version"`
	Rules   []Rule `yaml:"rules" json:"rules"`
}

// Match is one category detected in a message. Matches are ordered by
// priority.
type Match struct {
	Category                    string              `json:"category"`
	RuleID                      string              `json:"rule_id"`
	Confidence                  float64             `json:"confidence"` // 0-1
	Severity                    Severity            `json:"severity"`
	MatchedKeywords             []string            `json:"matched_keywords"`
	LegalReferences             []LegalReference    `json:"legal_references"`
	InvestigationSteps          []InvestigationStep `json:"investigation_steps"`
	RequiresImmediateEscalation bool                `json:"requires_immediate_escalation"`
}

// Summary aggregates every match for a message
type Summary struct {
	Detected           bool                `json:"detected"`
	Categories         []string            `json:"categories"`
	Severity           Severity            `json:"severity"`
	LegalProvisions    []LegalReference    `json:"legal_provisions"`
	InvestigationSteps []InvestigationStep `json:"investigation_steps"`
	MatchedKeywords    []string            `json:"matched_keywords"`
}
