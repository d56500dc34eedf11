package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Standard Prometheus collectors for CyberShield
var (
	// cybershield_analyses_total{category=safe|mild|harassment|high-risk}
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_analyses_total",
		Help: "Number of analyzed messages by verdict category",
	}, []string{"category"})

	// cybershield_analysis_latency_seconds (histogram): scoring duration
	AnalysisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cybershield_analysis_latency_seconds",
		Help:    "Message scoring latency in seconds, including corpus wait",
		Buckets: prometheus.DefBuckets,
	})

	// cybershield_cache_hits_total (counter)
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cybershield_cache_hits_total",
		Help: "Number of analyses served from the result cache",
	})

	// cybershield_corpus_wait_timeouts_total (counter)
	CorpusWaitTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cybershield_corpus_wait_timeouts_total",
		Help: "Number of analyses that proceeded without the reference corpus",
	})

	// cybershield_corpus_rows (gauge)
	CorpusRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cybershield_corpus_rows",
		Help: "Rows in the loaded reference corpus",
	})

	// cybershield_crime_matches_total{category=...}
	CrimeMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_crime_matches_total",
		Help: "Number of crime pattern matches by category",
	}, []string{"category"})

	// cybershield_url_verdicts_total{verdict=suspicious|clean|trusted}
	URLVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_url_verdicts_total",
		Help: "Number of URL risk verdicts",
	}, []string{"verdict"})

	// cybershield_escalation_decisions_total{decision=ESCALATE|REVIEW|ARCHIVE}
	EscalationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cybershield_escalation_decisions_total",
		Help: "Number of report escalation decisions made by the Cedar engine",
	}, []string{"decision"})
)

// RecordAnalysis counts a scored message and its latency
func RecordAnalysis(category string, took time.Duration) {
	AnalysesTotal.WithLabelValues(category).Inc()
	AnalysisLatency.Observe(took.Seconds())
}

// RecordCrimeMatch increments the crime match counter
func RecordCrimeMatch(category string) {
	CrimeMatches.WithLabelValues(category).Inc()
}

// RecordURLVerdict increments the URL verdict counter
func RecordURLVerdict(verdict string) {
	URLVerdicts.WithLabelValues(verdict).Inc()
}

// RecordEscalation increments the escalation decision counter
func RecordEscalation(decision string) {
	EscalationDecisions.WithLabelValues(decision).Inc()
}
