// Package observability provides Prometheus metrics for the agent.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeCreated  = "created"
	OutcomeSuccess  = "success"
)

// Metrics holds all Prometheus metrics of the agent. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	TokenLookups     *prometheus.CounterVec
	MentionArtifacts *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	TasksProcessed   *prometheus.CounterVec
}

// NewMetrics creates metrics registered on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "defai"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TokenLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "token_lookups_total",
			Help:      "Total number of token resolutions by outcome",
		}, []string{"outcome"}),
		MentionArtifacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "mention_artifacts_total",
			Help:      "Total number of per-mention artifacts by outcome",
		}, []string{"outcome"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of external API requests by source and outcome",
		}, []string{"source", "outcome"}),
		UpstreamLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "External API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		TasksProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "tasks_processed_total",
			Help:      "Total number of agent tasks by capability and outcome",
		}, []string{"capability", "outcome"}),
	}
}

// RecordTokenLookup counts a token resolution.
func (m *Metrics) RecordTokenLookup(outcome string) {
	if m == nil {
		return
	}
	m.TokenLookups.WithLabelValues(outcome).Inc()
}

// RecordMentionArtifact counts a per-mention artifact.
func (m *Metrics) RecordMentionArtifact(outcome string) {
	if m == nil {
		return
	}
	m.MentionArtifacts.WithLabelValues(outcome).Inc()
}

// RecordUpstream counts an external request and its latency.
func (m *Metrics) RecordUpstream(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordTask counts a processed agent task.
func (m *Metrics) RecordTask(capability string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.TasksProcessed.WithLabelValues(capability, outcome).Inc()
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
