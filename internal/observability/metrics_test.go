package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordTokenLookup(OutcomeFound)
	m.RecordTokenLookup(OutcomeFound)
	m.RecordTokenLookup(OutcomeNotFound)
	m.RecordMentionArtifact(OutcomeCreated)
	m.RecordUpstream("DexScreener", nil, 10*time.Millisecond)
	m.RecordUpstream("DexScreener", errors.New("boom"), 10*time.Millisecond)
	m.RecordTask("findTokenInformations", nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TokenLookups.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenLookups.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MentionArtifacts.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("DexScreener", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("DexScreener", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TasksProcessed.WithLabelValues("findTokenInformations", OutcomeSuccess)))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTokenLookup(OutcomeFound)
		m.RecordMentionArtifact(OutcomeCreated)
		m.RecordUpstream("x", nil, time.Second)
		m.RecordTask("x", nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("")
	m.RecordTokenLookup(OutcomeFound)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `defai_resolver_token_lookups_total{outcome="found"} 1`)
}
