package analyzer

import (
	"regexp"
)

// PIIType names a kind of personal data found in a message
type PIIType string

const (
	PIIEmail      PIIType = "email"
	PIIPhone      PIIType = "phone"
	PIISSN        PIIType = "ssn"
	PIICreditCard PIIType = "credit_card"
)

// piiRules are applied in order. Cards run before phones so a card number
// is not half-masked as a phone number.
var piiRules = []struct {
	kind        PIIType
	re          *regexp.Regexp
	placeholder string
}{
	{PIIEmail, regexp.MustCompile(`(?i)[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), "[EMAIL]"},
	{PIISSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), "[SSN]"},
	{PIICreditCard, regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`), "[CREDIT_CARD]"},
	{PIIPhone, regexp.MustCompile(`(?:\+\d{1,3}[\s-]?)?\(?\d{3,5}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`), "[PHONE]"},
}

// PIIDetector finds and masks personal data before a message is shared
// in a report.
type PIIDetector struct{}

// NewPIIDetector creates a new PIIDetector
func NewPIIDetector() *PIIDetector {
	return &PIIDetector{}
}

// Detect lists the kinds of personal data present in text
func (p *PIIDetector) Detect(text string) []PIIType {
	var found []PIIType
	for _, rule := range piiRules {
		if rule.re.MatchString(text) {
			found = append(found, rule.kind)
		}
	}
	return found
}

// Sanitize replaces every detected item with a type placeholder
func (p *PIIDetector) Sanitize(text string) string {
	for _, rule := range piiRules {
		text = rule.re.ReplaceAllString(text, rule.placeholder)
	}
	return text
}
