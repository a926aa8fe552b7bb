// Package metrics holds subcue's Prometheus collectors. Only the orchestration
// layer records into them; the cue engine stays free of global state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensSkippedTotal counts transcript items dropped by the normalizer.
	// Labels: reason (missing_timestamps/empty_content/inverted_timestamps/orphan_punctuation)
	TokensSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subcue_tokens_skipped_total",
			Help: "Total number of transcript items skipped during normalization by reason",
		},
		[]string{"reason"},
	)

	// CuesTotal counts cues produced, by final screen position.
	CuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subcue_cues_total",
			Help: "Total number of subtitle cues produced by position",
		},
		[]string{"position"},
	)

	// TasksTotal counts finished tasks by terminal status.
	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subcue_tasks_total",
			Help: "Total number of subtitle tasks by terminal status",
		},
		[]string{"status"},
	)

	// DegradedTotal counts optional stages that failed and were skipped.
	// Labels: stage (text_detection/translation)
	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subcue_degraded_total",
			Help: "Total number of optional stages skipped after a collaborator failure",
		},
		[]string{"stage"},
	)

	// CapabilityAvailable reports detected optional collaborators (0 or 1).
	CapabilityAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subcue_capability_available",
			Help: "Whether an optional collaborator is configured and reachable (0=no, 1=yes)",
		},
		[]string{"capability"},
	)

	// StageDuration observes per-stage wall time in seconds.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subcue_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds by stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"stage"},
	)
)

func RecordTokenSkipped(reason string) {
	TokensSkippedTotal.WithLabelValues(reason).Inc()
}

func RecordCue(position string) {
	CuesTotal.WithLabelValues(position).Inc()
}

func RecordTask(status string) {
	TasksTotal.WithLabelValues(status).Inc()
}

func RecordDegraded(stage string) {
	DegradedTotal.WithLabelValues(stage).Inc()
}

func SetCapability(name string, available bool) {
	if available {
		CapabilityAvailable.WithLabelValues(name).Set(1)
	} else {
		CapabilityAvailable.WithLabelValues(name).Set(0)
	}
}

// RecordStageDuration records a stage's duration in seconds.
func RecordStageDuration(stage string, seconds float64) {
	StageDuration.WithLabelValues(stage).Observe(seconds)
}
