// Package observability provides prometheus instrumentation for the reply
// resolution pipeline, wired into the engine via domain.LifecycleHooks.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/replyflow/replyflow/pkg/domain"
)

// Metrics holds the collectors for the resolution pipeline.
type Metrics struct {
	Resolutions *prometheus.CounterVec
	RAGFailures prometheus.Counter
	RAGDuration prometheus.Histogram
}

// NewMetrics creates and registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "replyflow_resolutions_total",
				Help: "Total resolved user messages, by answering tier",
			},
			[]string{"tier"},
		),
		RAGFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "replyflow_rag_failures_total",
				Help: "Total RAG calls that failed or violated the contract",
			},
		),
		RAGDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "replyflow_rag_duration_seconds",
				Help: "Duration of RAG collaborator calls",
			},
		),
	}
	reg.MustRegister(m.Resolutions, m.RAGFailures, m.RAGDuration)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			m.Resolutions.WithLabelValues(e.Tier).Inc()
		},
		OnRAGReturn: func(ctx context.Context, e *domain.RAGEvent) {
			m.RAGDuration.Observe(e.Duration.Seconds())
			if e.IsError {
				m.RAGFailures.Inc()
			}
		},
	}
}
