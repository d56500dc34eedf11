// Package phishing scores URLs for phishing risk with structural
// heuristics: protocol, host shape, suspicious keywords and TLDs, URL
// shorteners and typosquatting of well-known brands.
package phishing

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/blackrose-blackhat/cybershield/backend/internal/metrics"
)

const (
	insecureScore      = 40
	sensitiveHTTPScore = 30
	ipHostScore        = 80
	longHostScore      = 20
	subdomainScore     = 30
	keywordScore       = 25
	homographScore     = 40
	atSignScore        = 60
	shortenerScore     = 25
	tldScore           = 30
	typosquatScore     = 80

	maxHostLength       = 50
	maxHostDots         = 3
	suspiciousThreshold = 50
	typosquatSimilarity = 0.75
	minTyposquatLabel   = 4
)

const (
	ReasonTrusted  = "Trusted Domain"
	ReasonInvalid  = "Invalid URL format"
	ReasonNoThreat = "No specific threats detected, but proceed with caution"
)

// Result is the risk verdict for one URL
type Result struct {
	IsSuspicious bool     `json:"is_suspicious"`
	Score        int      `json:"score"` // 0-100
	Reasons      []string `json:"reasons"`
	SafeDomain   bool     `json:"safe_domain"`
}

// Analyze scores rawURL. A URL without a scheme is treated as https. An
// unparseable URL is reported as maximum risk.
func Analyze(rawURL string) Result {
	r := analyze(rawURL)
	switch {
	case r.SafeDomain:
		metrics.RecordURLVerdict("trusted")
	case r.IsSuspicious:
		metrics.RecordURLVerdict("suspicious")
	default:
		metrics.RecordURLVerdict("clean")
	}
	return r
}

func analyze(rawURL string) Result {
	normalized := strings.ToLower(rawURL)
	if !strings.HasPrefix(normalized, "http") {
		normalized = "https://" + normalized
	}

	u, err := url.Parse(normalized)
	if err != nil || u.Hostname() == "" {
		return Result{IsSuspicious: true, Score: 100, Reasons: []string{ReasonInvalid}}
	}
	host := u.Hostname()

	for _, d := range trustedDomains {
		if strings.HasSuffix(host, d) {
			return Result{Score: 0, Reasons: []string{ReasonTrusted}, SafeDomain: true}
		}
	}

	var score int
	var reasons []string
	add := func(points int, reason string) {
		score += points
		reasons = append(reasons, reason)
	}

	if u.Scheme == "http" {
		add(insecureScore, "Uses insecure HTTP protocol (no encryption)")
		if sensitivePage.MatchString(normalized) {
			add(sensitiveHTTPScore, "HTTP used on sensitive page (major security risk)")
		}
	}

	if dottedQuad.MatchString(host) {
		add(ipHostScore, "Uses IP address instead of domain name")
	}

	if utf8.RuneCountInString(host) > maxHostLength {
		add(longHostScore, "Domain name is suspiciously long")
	}

	if strings.Count(host, ".") > maxHostDots {
		add(subdomainScore, "Excessive number of subdomains")
	}

	for _, kw := range suspiciousKeywords {
		if kw.re.MatchString(normalized) {
			add(keywordScore, "Contains suspicious keyword: "+kw.source)
		}
	}

	// rn renders like m in many fonts
	if strings.Contains(host, "rn") && strings.Contains(host, "m") {
		add(homographScore, "Potential homograph attack detected")
	}

	if strings.Contains(rawURL, "@") {
		add(atSignScore, "Contains identity masking (@ symbol)")
	}

	if containsAny(host, urlShorteners) {
		add(shortenerScore, "Uses URL shortener (hides real destination)")
	}

	if hasAnySuffix(host, suspiciousTLDs) {
		add(tldScore, "Uses suspicious top-level domain (TLD)")
	}

	if brand := Typosquatted(host); brand != "" {
		add(typosquatScore, fmt.Sprintf("Possible typosquatting of '%s'", brand))
	}

	if len(reasons) == 0 {
		reasons = []string{ReasonNoThreat}
	}
	return Result{
		IsSuspicious: score > suspiciousThreshold,
		Score:        min(score, 100),
		Reasons:      reasons,
	}
}

// Typosquatted returns the first brand the leftmost host label imitates,
// or "" if none. A label imitates a brand when it contains the brand
// without being equal to it, or when it is at least four characters long
// and within 75% edit similarity of it.
func Typosquatted(host string) string {
	label, _, _ := strings.Cut(host, ".")

	for _, brand := range brands {
		if label == brand {
			continue
		}
		if strings.Contains(label, brand) {
			return brand
		}
		if Similarity(label, brand) >= typosquatSimilarity && utf8.RuneCountInString(label) >= minTyposquatLabel {
			return brand
		}
	}
	return ""
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)).
func Similarity(a, b string) float64 {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
