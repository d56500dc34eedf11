// Package corpus holds the labeled reference messages that incoming text is
// compared against. A Corpus is built once and never mutated afterwards.
package corpus

// Column names expected in the header row of a tabular corpus source.
const (
	ColMessageText     = "message_text"
	ColToxicityLabel   = "toxicity_label"
	ColToxicityScore   = "toxicity_score"
	ColConfidence      = "confidence"
	ColCrimeType       = "crime_type"
	ColSeverityLevel   = "severity_level"
	ColLegalSection    = "legal_section"
	ColMatchedKeywords = "matched_keywords"
)

// Columns lists the known columns in their canonical order.
var Columns = []string{
	ColMessageText,
	ColToxicityLabel,
	ColToxicityScore,
	ColConfidence,
	ColCrimeType,
	ColSeverityLevel,
	ColLegalSection,
	ColMatchedKeywords,
}

// Row is a single labeled reference message.
type Row struct {
	MessageText     string `json:"message_text"`
	ToxicityLabel   string `json:"toxicity_label"`
	ToxicityScore   string `json:"toxicity_score"`
	Confidence      string `json:"confidence"`
	CrimeType       string `json:"crime_type"`
	SeverityLevel   string `json:"severity_level"`
	LegalSection    string `json:"legal_section"`
	MatchedKeywords string `json:"matched_keywords"`
}

// set assigns a value to the field named by a header column.
// Unknown columns are ignored.
func (r *Row) set(column, value string) {
	switch column {
	case ColMessageText:
		r.MessageText = value
	case ColToxicityLabel:
		r.ToxicityLabel = value
	case ColToxicityScore:
		r.ToxicityScore = value
	case ColConfidence:
		r.Confidence = value
	case ColCrimeType:
		r.CrimeType = value
	case ColSeverityLevel:
		r.SeverityLevel = value
	case ColLegalSection:
		r.LegalSection = value
	case ColMatchedKeywords:
		r.MatchedKeywords = value
	}
}

// Corpus is an immutable, ordered collection of rows.
type Corpus struct {
	rows []Row
}

// New builds a Corpus from rows. The slice is copied so later changes by
// the caller are not observed.
func New(rows []Row) *Corpus {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Corpus{rows: cp}
}

// Empty returns a corpus with no rows.
func Empty() *Corpus {
	return &Corpus{}
}

// Len returns the number of rows. A nil corpus has zero rows.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// Row returns the i-th row.
func (c *Corpus) Row(i int) Row {
	return c.rows[i]
}

// Rows returns a copy of all rows.
func (c *Corpus) Rows() []Row {
	if c == nil {
		return nil
	}
	cp := make([]Row, len(c.rows))
	copy(cp, c.rows)
	return cp
}
