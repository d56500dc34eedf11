package phishing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_TyposquattedPhishingURL(t *testing.T) {
	r := Analyze("http://paypal-verify-login.xyz")

	assert.True(t, r.IsSuspicious)
	assert.Equal(t, 100, r.Score)
	assert.False(t, r.SafeDomain)
	assert.Equal(t, []string{
		"Uses insecure HTTP protocol (no encryption)",
		"HTTP used on sensitive page (major security risk)",
		"Contains suspicious keyword: login",
		"Contains suspicious keyword: verify",
		"Contains suspicious keyword: paypal",
		"Contains suspicious keyword: pay",
		"Uses suspicious top-level domain (TLD)",
		"Possible typosquatting of 'paypal'",
	}, r.Reasons)
}

func TestAnalyze_TrustedDomains(t *testing.T) {
	for _, u := range []string{"https://github.com", "github.com", "https://docs.github.com/en", "HTTPS://GITHUB.COM"} {
		t.Run(u, func(t *testing.T) {
			r := Analyze(u)
			assert.False(t, r.IsSuspicious)
			assert.Equal(t, 0, r.Score)
			assert.Equal(t, []string{ReasonTrusted}, r.Reasons)
			assert.True(t, r.SafeDomain)
		})
	}
}

func TestAnalyze_InvalidURL(t *testing.T) {
	for _, u := range []string{"http://", "https://exa mple.com", "https://host:port"} {
		t.Run(u, func(t *testing.T) {
			r := Analyze(u)
			assert.True(t, r.IsSuspicious)
			assert.Equal(t, 100, r.Score)
			assert.Equal(t, []string{ReasonInvalid}, r.Reasons)
		})
	}
}

func TestAnalyze_Heuristics(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		score      int
		suspicious bool
		reasons    []string
	}{
		{
			name:       "no findings",
			url:        "https://example.org",
			score:      0,
			suspicious: false,
			reasons:    []string{ReasonNoThreat},
		},
		{
			name:       "ip host over http",
			url:        "http://192.168.10.5/",
			score:      100,
			suspicious: true,
			reasons:    []string{"Uses insecure HTTP protocol (no encryption)", "Uses IP address instead of domain name"},
		},
		{
			name:       "shortener",
			url:        "https://bit.ly/abc",
			score:      25,
			suspicious: false,
			reasons:    []string{"Uses URL shortener (hides real destination)"},
		},
		{
			name:       "many subdomains",
			url:        "https://a.b.c.d.e.com",
			score:      30,
			suspicious: false,
			reasons:    []string{"Excessive number of subdomains"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.url)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.suspicious, r.IsSuspicious)
			assert.Equal(t, tt.reasons, r.Reasons)
			assert.False(t, r.SafeDomain)
		})
	}
}

func TestAnalyze_IndividualSignals(t *testing.T) {
	assert.Contains(t, Analyze("https://rnicrosoft-support.com").Reasons, "Potential homograph attack detected")
	assert.Contains(t, Analyze("https://www.bank.com@evil.example").Reasons, "Contains identity masking (@ symbol)")
	assert.Contains(t,
		Analyze("https://this-is-a-really-long-hostname-that-keeps-going-and-going.net").Reasons,
		"Domain name is suspiciously long")
}

func TestTyposquatted(t *testing.T) {
	tests := map[string]string{
		"paypa1.com":        "paypal",
		"micros0ft.net":     "microsoft",
		"secure-chase.info": "chase",
		"google.com":        "",
		"bit.ly":            "",
	}
	for host, want := range tests {
		assert.Equal(t, want, Typosquatted(host), host)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("paypal", "paypal"), 1e-9)
	assert.InDelta(t, 5.0/6, Similarity("paypa1", "paypal"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}
