package crime

// Summarize folds matches into one view: every category, the highest
// severity, and deduplicated legal provisions, steps and keywords in order
// of first appearance. No matches yields a Low, undetected summary.
func Summarize(matches []Match) Summary {
	s := Summary{
		Detected:           len(matches) > 0,
		Categories:         []string{},
		Severity:           SeverityLow,
		LegalProvisions:    []LegalReference{},
		InvestigationSteps: []InvestigationStep{},
		MatchedKeywords:    []string{},
	}

	seenLegal := make(map[string]bool)
	seenStep := make(map[string]bool)
	seenKeyword := make(map[string]bool)

	for _, m := range matches {
		s.Categories = append(s.Categories, m.Category)
		if m.Severity.Weight() > s.Severity.Weight() {
			s.Severity = m.Severity
		}

		for _, ref := range m.LegalReferences {
			key := ref.Code + "|" + ref.Section
			if seenLegal[key] {
				continue
			}
			seenLegal[key] = true
			s.LegalProvisions = append(s.LegalProvisions, ref)
		}

		for _, step := range m.InvestigationSteps {
			if seenStep[step.ID] {
				continue
			}
			seenStep[step.ID] = true
			s.InvestigationSteps = append(s.InvestigationSteps, step)
		}

		for _, kw := range m.MatchedKeywords {
			if seenKeyword[kw] {
				continue
			}
			seenKeyword[kw] = true
			s.MatchedKeywords = append(s.MatchedKeywords, kw)
		}
	}
	return s
}
