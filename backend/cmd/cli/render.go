package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
	"github.com/blackrose-blackhat/cybershield/backend/internal/cedar"
	"github.com/blackrose-blackhat/cybershield/backend/internal/corpus"
	"github.com/blackrose-blackhat/cybershield/backend/internal/crime"
	"github.com/blackrose-blackhat/cybershield/backend/internal/phishing"
	"github.com/blackrose-blackhat/cybershield/backend/internal/report"
	"github.com/blackrose-blackhat/cybershield/backend/internal/similarity"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

const messageWidth = 60

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func categoryColor(c analyzer.Category) string {
	switch c {
	case analyzer.CategoryHighRisk:
		return colorRed
	case analyzer.CategoryHarassment, analyzer.CategoryMild:
		return colorYellow
	default:
		return colorGreen
	}
}

func printAnalysis(w io.Writer, r analyzer.AnalysisResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s  %s  %s\n", colorBold, categoryColor(r.Category), strings.ToUpper(string(r.Category)), colorReset)
	fmt.Fprintf(w, "%sSummary:%s %s\n", colorBold, colorReset, r.Summary)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s┌─ Scores ───────────────────────────────────────────%s\n", colorYellow, colorReset)
	fmt.Fprintf(w, "│ Toxicity:   %d/100\n", r.ToxicityScore)
	fmt.Fprintf(w, "│ Confidence: %d/100\n", r.ConfidenceScore)
	keywords := "None"
	if len(r.MatchedKeywords) > 0 {
		keywords = colorRed + strings.Join(r.MatchedKeywords, ", ") + colorReset
	}
	fmt.Fprintf(w, "│ Keywords:   %s\n", keywords)
	if r.Sentiment != nil {
		fmt.Fprintf(w, "│ Sentiment:  %s (%d)\n", r.Sentiment.Polarity(), r.Sentiment.Score)
	}
	if p := r.CrimePattern; p != nil {
		fmt.Fprintf(w, "│ Pattern:    %s [%s, %d%%]\n", p.Type, p.Severity, p.Confidence)
	}
	fmt.Fprintf(w, "%s└────────────────────────────────────────────────────%s\n", colorYellow, colorReset)

	if len(r.SimilarExamples) > 0 {
		t := newTable(w)
		t.SetTitle("Similar reference messages")
		t.AppendHeader(table.Row{"Similarity", "Label", "Crime Type", "Message"})
		for _, ex := range r.SimilarExamples {
			t.AppendRow(table.Row{fmt.Sprintf("%.1f", ex.Similarity), ex.ToxicityLabel, ex.CrimeType, truncate(ex.Message, messageWidth)})
		}
		t.Render()
	}
}

func printMatches(w io.Writer, matches []crime.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "%sNo cyber crime patterns detected.%s\n", colorGreen, colorReset)
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Severity", "Confidence", "Keywords", "Escalate"})
	for _, m := range matches {
		escalate := "no"
		if m.RequiresImmediateEscalation {
			escalate = "YES"
		}
		t.AppendRow(table.Row{m.Category, m.Severity, fmt.Sprintf("%.2f", m.Confidence), strings.Join(m.MatchedKeywords, ", "), escalate})
	}
	t.Render()
}

func printSummary(w io.Writer, s crime.Summary) {
	if !s.Detected {
		return
	}
	if len(s.LegalProvisions) > 0 {
		t := newTable(w)
		t.SetTitle("Legal provisions")
		t.AppendHeader(table.Row{"Code", "Section", "Description"})
		for _, ref := range s.LegalProvisions {
			t.AppendRow(table.Row{ref.Code, ref.Section, ref.Description})
		}
		t.Render()
	}
	printSteps(w, s.InvestigationSteps)
}

func printSteps(w io.Writer, steps []crime.InvestigationStep) {
	if len(steps) == 0 {
		return
	}
	fmt.Fprintf(w, "%s┌─ Investigation ────────────────────────────────────%s\n", colorCyan, colorReset)
	for i, step := range steps {
		fmt.Fprintf(w, "│ %d. %s%s%s: %s\n", i+1, colorBold, step.Action, colorReset, step.Description)
		if len(step.RequiredTools) > 0 {
			fmt.Fprintf(w, "│    tools: %s\n", strings.Join(step.RequiredTools, ", "))
		}
	}
	fmt.Fprintf(w, "%s└────────────────────────────────────────────────────%s\n", colorCyan, colorReset)
}

func printURL(w io.Writer, rawURL string, r phishing.Result) {
	fmt.Fprintln(w)
	switch {
	case r.SafeDomain:
		fmt.Fprintf(w, "%s%s  TRUSTED  %s %s\n", colorBold, colorGreen, colorReset, rawURL)
	case r.IsSuspicious:
		fmt.Fprintf(w, "%s%s  SUSPICIOUS  %s %s\n", colorBold, colorRed, colorReset, rawURL)
	default:
		fmt.Fprintf(w, "%s%s  NOT FLAGGED  %s %s\n", colorBold, colorYellow, colorReset, rawURL)
	}
	fmt.Fprintf(w, "%sRisk score:%s %d/100\n", colorBold, colorReset, r.Score)
	for _, reason := range r.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
}

func printSimilar(w io.Writer, ranked []similarity.ScoredEntry) {
	if len(ranked) == 0 {
		fmt.Fprintln(w, "No similar messages found.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Score", "Category", "Severity", "Label", "Message"})
	for _, r := range ranked {
		t.AppendRow(table.Row{fmt.Sprintf("%.0f", r.Score), r.Entry.Category, r.Entry.Severity, r.Entry.Label, truncate(r.Entry.Body(), messageWidth)})
	}
	t.Render()
}

func printCorpus(w io.Writer, stats corpus.LoadStats, categories map[string]int, keywords []string, keywordLimit int) {
	fmt.Fprintf(w, "%sRows:%s %d (skipped %d)\n", colorBold, colorReset, stats.Rows, stats.Skipped)

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if categories[names[i]] != categories[names[j]] {
			return categories[names[i]] > categories[names[j]]
		}
		return names[i] < names[j]
	})

	t := newTable(w)
	t.AppendHeader(table.Row{"Crime Type", "Rows"})
	for _, name := range names {
		t.AppendRow(table.Row{name, categories[name]})
	}
	t.Render()

	if len(keywords) > keywordLimit {
		keywords = keywords[:keywordLimit]
	}
	fmt.Fprintf(w, "%sKeywords:%s %s\n", colorBold, colorReset, strings.Join(keywords, ", "))
}

func decisionColor(d cedar.Decision) string {
	switch d {
	case cedar.ESCALATE:
		return colorRed
	case cedar.REVIEW:
		return colorYellow
	default:
		return colorGreen
	}
}

func printReport(w io.Writer, r report.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s%s  %s  %s %s\n", colorBold, decisionColor(r.Escalation.Decision), r.Escalation.Decision, colorReset, report.Headline(r))
	fmt.Fprintf(w, "%sReason:%s %s\n", colorBold, colorReset, r.Escalation.Reason)
	fmt.Fprintf(w, "%sReport:%s %s (%s)\n", colorBold, colorReset, r.ID, r.Timestamp.Format("2006-01-02 15:04:05Z07:00"))
	fmt.Fprintf(w, "%sMessage:%s %s\n", colorBold, colorReset, r.Message.Sanitized)

	printAnalysis(w, r.Analysis)
	printMatches(w, r.CrimePatterns)
	printSummary(w, r.CrimeSummary)
	if len(r.Investigation.EvidenceCollected) > 0 {
		fmt.Fprintf(w, "%sEvidence:%s %s\n", colorBold, colorReset, strings.Join(r.Investigation.EvidenceCollected, ", "))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
