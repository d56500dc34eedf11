// Package report assembles incident reports from a message verdict,
// its crime pattern matches and the escalation policy decision.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
	"github.com/blackrose-blackhat/cybershield/backend/internal/audit"
	"github.com/blackrose-blackhat/cybershield/backend/internal/cedar"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
)

// Analyzer scores a message
type Analyzer interface {
	Analyze(ctx context.Context, message string) analyzer.AnalysisResult
}

// Detector finds crime categories in a message
type Detector interface {
	Detect(text string) []crime.Match
}

// Escalator routes a report
type Escalator interface {
	Evaluate(f cedar.Facts) cedar.Result
}

// Message is the reported content
type Message struct {
	Content   string `json:"content"`
	Sanitized string `json:"sanitized"`
	Source    string `json:"source,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// Agent is the analyst or system filing the report
type Agent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Investigation is the response plan attached to a report
type Investigation struct {
	Steps             []crime.InvestigationStep `json:"steps"`
	EvidenceCollected []string                  `json:"evidence_collected"`
}

// Report is a complete incident report
type Report struct {
	ID            string                  `json:"id"`
	Timestamp     time.Time               `json:"timestamp"`
	Severity      crime.Severity          `json:"severity"`
	Message       Message                 `json:"message"`
	Analysis      analyzer.AnalysisResult `json:"analysis"`
	CrimeSummary  crime.Summary           `json:"crime_summary"`
	CrimePatterns []crime.Match           `json:"crime_patterns"`
	Investigation Investigation           `json:"investigation"`
	Agent         Agent                   `json:"agent"`
	Escalation    cedar.Result            `json:"escalation"`
}

// Input describes what is being reported
type Input struct {
	Message  string
	Source   string
	Platform string
	Sender   string
	Agent    Agent
	Evidence []string
}

// Builder assembles reports. Audit is optional.
type Builder struct {
	analyzer  Analyzer
	detector  Detector
	escalator Escalator
	pii       *analyzer.PIIDetector
	audit     *audit.Logger
	logger    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewBuilder creates a report builder. auditLog may be nil.
func NewBuilder(a Analyzer, d Detector, e Escalator, auditLog *audit.Logger, logger zerolog.Logger) *Builder {
	return &Builder{
		analyzer:  a,
		detector:  d,
		escalator: e,
		pii:       analyzer.NewPIIDetector(),
		audit:     auditLog,
		logger:    logger.With().Str("component", "report").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Build analyzes the message, matches crime patterns, decides on
// escalation and records the result in the audit log.
func (b *Builder) Build(ctx context.Context, in Input) Report {
	start := time.Now()

	result := b.analyzer.Analyze(ctx, in.Message)
	matches := b.detector.Detect(in.Message)
	if matches == nil {
		matches = []crime.Match{}
	}
	summary := crime.Summarize(matches)

	evidence := in.Evidence
	if evidence == nil {
		evidence = []string{}
	}

	r := Report{
		ID:        b.newID(),
		Timestamp: b.now(),
		Severity:  OverallSeverity(result, matches),
		Message: Message{
			Content:   in.Message,
			Sanitized: b.pii.Sanitize(in.Message),
			Source:    in.Source,
			Platform:  in.Platform,
			Sender:    in.Sender,
		},
		Analysis:      result,
		CrimeSummary:  summary,
		CrimePatterns: matches,
		Investigation: Investigation{
			Steps:             summary.InvestigationSteps,
			EvidenceCollected: evidence,
		},
		Agent: in.Agent,
	}

	r.Escalation = b.escalator.Evaluate(FactsFor(r))

	b.logger.Debug().
		Str("report_id", r.ID).
		Str("severity", string(r.Severity)).
		Str("decision", string(r.Escalation.Decision)).
		Msg("report built")

	b.audit.Log(audit.Entry{
		Timestamp:       r.Timestamp,
		ReportID:        r.ID,
		Agent:           audit.Agent{ID: r.Agent.ID, Name: r.Agent.Name},
		Source:          r.Message.Source,
		Platform:        r.Message.Platform,
		Sanitized:       r.Message.Sanitized,
		Category:        string(r.Analysis.Category),
		Toxicity:        r.Analysis.ToxicityScore,
		Confidence:      r.Analysis.ConfidenceScore,
		Severity:        string(r.Severity),
		CrimeCategories: summary.Categories,
		Decision:        string(r.Escalation.Decision),
		PolicyID:        r.Escalation.PolicyID,
		Reason:          r.Escalation.Reason,
		Latency:         time.Since(start),
	})

	return r
}

// OverallSeverity is the highest of the crime match severities and the
// analysis crime pattern severity. Reports with neither are Low.
func OverallSeverity(result analyzer.AnalysisResult, matches []crime.Match) crime.Severity {
	best := crime.SeverityLow
	for _, m := range matches {
		if m.Severity.Weight() > best.Weight() {
			best = m.Severity
		}
	}
	if result.CrimePattern != nil {
		if s := fromPattern(result.CrimePattern.Severity); s.Weight() > best.Weight() {
			best = s
		}
	}
	return best
}

func fromPattern(s analyzer.Severity) crime.Severity {
	switch s {
	case analyzer.SeverityCritical:
		return crime.SeverityCritical
	case analyzer.SeverityHigh:
		return crime.SeverityHigh
	case analyzer.SeverityMedium:
		return crime.SeverityMedium
	default:
		return crime.SeverityLow
	}
}

// FactsFor extracts the escalation policy context from a report
func FactsFor(r Report) cedar.Facts {
	critical := false
	for _, m := range r.CrimePatterns {
		if m.RequiresImmediateEscalation {
			critical = true
			break
		}
	}

	categories := make([]string, 0, len(r.CrimePatterns))
	for _, m := range r.CrimePatterns {
		categories = append(categories, m.Category)
	}

	return cedar.Facts{
		Category:      string(r.Analysis.Category),
		Toxicity:      r.Analysis.ToxicityScore,
		Confidence:    r.Analysis.ConfidenceScore,
		Severity:      r.Severity.Weight(),
		CriticalMatch: critical,
		MatchCount:    len(r.CrimePatterns),
		Categories:    categories,
	}
}

// Headline is a one-line description of a report for listings
func Headline(r Report) string {
	var b strings.Builder
	b.WriteString(string(r.Severity))
	b.WriteString(" ")
	b.WriteString(string(r.Analysis.Category))
	if len(r.CrimeSummary.Categories) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(r.CrimeSummary.Categories, ", "))
	}
	b.WriteString(" -> ")
	b.WriteString(string(r.Escalation.Decision))
	return b.String()
}
