package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(AnalysesTotal.WithLabelValues("harassment"))
	RecordAnalysis("harassment", 5*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(AnalysesTotal.WithLabelValues("harassment")))

	before = testutil.ToFloat64(CrimeMatches.WithLabelValues("Financial Fraud"))
	RecordCrimeMatch("Financial Fraud")
	RecordCrimeMatch("Financial Fraud")
	assert.Equal(t, before+2, testutil.ToFloat64(CrimeMatches.WithLabelValues("Financial Fraud")))

	before = testutil.ToFloat64(URLVerdicts.WithLabelValues("trusted"))
	RecordURLVerdict("trusted")
	assert.Equal(t, before+1, testutil.ToFloat64(URLVerdicts.WithLabelValues("trusted")))

	before = testutil.ToFloat64(EscalationDecisions.WithLabelValues("REVIEW"))
	RecordEscalation("REVIEW")
	assert.Equal(t, before+1, testutil.ToFloat64(EscalationDecisions.WithLabelValues("REVIEW")))
}
