package corpus

import (
	"regexp"
	"strings"
)

var (
	significantWord = regexp.MustCompile(`\b\w{4,}\b`)
	keywordSplit    = regexp.MustCompile(`[,;|]`)
)

var extractStopwords = map[string]bool{
	"this": true,
	"that": true,
	"with": true,
	"from": true,
	"have": true,
}

// ExtractKeywords collects candidate keywords from the matched_keywords
// column and from significant message words, in order of first appearance.
func ExtractKeywords(c *Corpus) []string {
	seen := make(map[string]bool)
	var keywords []string
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	for i := 0; i < c.Len(); i++ {
		row := c.Row(i)

		if kws := strings.Trim(row.MatchedKeywords, `"`); kws != "" {
			for _, k := range keywordSplit.Split(kws, -1) {
				k = strings.ToLower(strings.TrimSpace(k))
				if k == "none" {
					continue
				}
				add(k)
			}
		}

		for _, w := range significantWord.FindAllString(strings.ToLower(row.MessageText), -1) {
			if extractStopwords[w] {
				continue
			}
			add(w)
		}
	}
	return keywords
}

// CategoryCounts returns how many rows carry each crime type. Rows without
// one are counted as "unknown".
func CategoryCounts(c *Corpus) map[string]int {
	counts := make(map[string]int)
	for i := 0; i < c.Len(); i++ {
		category := c.Row(i).CrimeType
		if category == "" {
			category = "unknown"
		}
		counts[category]++
	}
	return counts
}
