package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
	"github.com/blackrose-blackhat/cybershield/backend/internal/audit"
	"github.com/blackrose-blackhat/cybershield/backend/internal/cedar"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
)

type stubAnalyzer struct {
	result analyzer.AnalysisResult
}

func (s stubAnalyzer) Analyze(context.Context, string) analyzer.AnalysisResult {
	return s.result
}

type stubDetector struct {
	matches []crime.Match
}

func (s stubDetector) Detect(string) []crime.Match {
	return s.matches
}

type recordingEscalator struct {
	facts cedar.Facts
}

func (r *recordingEscalator) Evaluate(f cedar.Facts) cedar.Result {
	r.facts = f
	return cedar.Result{Decision: cedar.REVIEW, PolicyID: "stub", Reason: "stub"}
}

func TestOverallSeverity(t *testing.T) {
	tests := []struct {
		name    string
		pattern *analyzer.CrimePattern
		matches []crime.Match
		want    crime.Severity
	}{
		{name: "nothing is low", want: crime.SeverityLow},
		{
			name:    "highest match wins",
			matches: []crime.Match{{Severity: crime.SeverityMedium}, {Severity: crime.SeverityHigh}},
			want:    crime.SeverityHigh,
		},
		{
			name:    "analysis pattern can raise severity",
			pattern: &analyzer.CrimePattern{Severity: analyzer.SeverityCritical},
			matches: []crime.Match{{Severity: crime.SeverityMedium}},
			want:    crime.SeverityCritical,
		},
		{
			name:    "analysis pattern alone",
			pattern: &analyzer.CrimePattern{Severity: analyzer.SeverityMedium},
			want:    crime.SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := analyzer.AnalysisResult{CrimePattern: tt.pattern}
			assert.Equal(t, tt.want, OverallSeverity(result, tt.matches))
		})
	}
}

func TestBuild_AssemblesReport(t *testing.T) {
	result := analyzer.AnalysisResult{
		Category:        analyzer.CategoryHighRisk,
		ToxicityScore:   80,
		ConfidenceScore: 90,
		MatchedKeywords: []string{"leak"},
	}
	matches := []crime.Match{
		{
			Category: "Extortion / Blackmail",
			Severity: crime.SeverityHigh,
			InvestigationSteps: []crime.InvestigationStep{
				{ID: "ex-1", Action: "Do Not Pay"},
			},
		},
		{
			Category:                    "Threats and Violence",
			Severity:                    crime.SeverityCritical,
			RequiresImmediateEscalation: true,
			InvestigationSteps: []crime.InvestigationStep{
				{ID: "th-1", Action: "Immediate Safety"},
				{ID: "ex-1", Action: "Do Not Pay"},
			},
		},
	}
	esc := &recordingEscalator{}

	var auditBuf bytes.Buffer
	b := NewBuilder(stubAnalyzer{result}, stubDetector{matches}, esc, audit.NewWriterLogger(&auditBuf, zerolog.Nop()), zerolog.Nop())
	fixed := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	b.newID = func() string { return "report-1" }

	r := b.Build(context.Background(), Input{
		Message:  "pay or I leak it, call +1 555-123-4567",
		Source:   "dm",
		Platform: "instagram",
		Sender:   "@anon",
		Agent:    Agent{ID: "a-1", Name: "Officer Rao"},
		Evidence: []string{"screenshot.png"},
	})

	assert.Equal(t, "report-1", r.ID)
	assert.Equal(t, fixed, r.Timestamp)
	assert.Equal(t, crime.SeverityCritical, r.Severity)
	assert.Equal(t, "pay or I leak it, call [PHONE]", r.Message.Sanitized)
	assert.Equal(t, "instagram", r.Message.Platform)
	assert.Equal(t, "@anon", r.Message.Sender)
	assert.Equal(t, []string{"Extortion / Blackmail", "Threats and Violence"}, r.CrimeSummary.Categories)
	assert.Len(t, r.Investigation.Steps, 2)
	assert.Equal(t, []string{"screenshot.png"}, r.Investigation.EvidenceCollected)
	assert.Equal(t, cedar.REVIEW, r.Escalation.Decision)

	assert.Equal(t, cedar.Facts{
		Category:      "high-risk",
		Toxicity:      80,
		Confidence:    90,
		Severity:      4,
		CriticalMatch: true,
		MatchCount:    2,
		Categories:    []string{"Extortion / Blackmail", "Threats and Violence"},
	}, esc.facts)

	var entry audit.Entry
	require.NoError(t, json.Unmarshal(auditBuf.Bytes(), &entry))
	assert.Equal(t, "report-1", entry.ReportID)
	assert.Equal(t, "REVIEW", entry.Decision)
	assert.Equal(t, "Critical", entry.Severity)
	assert.Equal(t, "pay or I leak it, call [PHONE]", entry.Sanitized)
	assert.Equal(t, "Officer Rao", entry.Agent.Name)
}

func TestBuild_EmptyCollections(t *testing.T) {
	b := NewBuilder(stubAnalyzer{analyzer.EmptyResult()}, stubDetector{}, &recordingEscalator{}, nil, zerolog.Nop())

	r := b.Build(context.Background(), Input{})

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, crime.SeverityLow, r.Severity)
	assert.NotNil(t, r.CrimePatterns)
	assert.NotNil(t, r.Investigation.Steps)
	assert.NotNil(t, r.Investigation.EvidenceCollected)
}

func TestBuild_WithDefaultComponents(t *testing.T) {
	matcher, err := crime.NewDefaultMatcher()
	require.NoError(t, err)
	policy, err := cedar.NewEngine("", zerolog.Nop())
	require.NoError(t, err)
	b := NewBuilder(analyzer.NewEngine(nil, analyzer.Options{}), matcher, policy, nil, zerolog.Nop())

	tests := []struct {
		message  string
		severity crime.Severity
		decision cedar.Decision
	}{
		{"i will kill you", crime.SeverityCritical, cedar.ESCALATE},
		{"have a nice day", crime.SeverityLow, cedar.ARCHIVE},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r := b.Build(context.Background(), Input{Message: tt.message})
			assert.Equal(t, tt.severity, r.Severity)
			assert.Equal(t, tt.decision, r.Escalation.Decision)
		})
	}
}

func TestHeadline(t *testing.T) {
	r := Report{
		Severity:     crime.SeverityHigh,
		Analysis:     analyzer.AnalysisResult{Category: analyzer.CategoryHighRisk},
		CrimeSummary: crime.Summary{Categories: []string{"Financial Fraud"}},
		Escalation:   cedar.Result{Decision: cedar.ESCALATE},
	}
	assert.Equal(t, "High high-risk: Financial Fraud -> ESCALATE", Headline(r))

	r.CrimeSummary.Categories = nil
	r.Escalation.Decision = cedar.ARCHIVE
	assert.Equal(t, "High high-risk -> ARCHIVE", Headline(r))
}
