package checkpoint

import (
	"math"

	"github.com/mrz1836/cadence/internal/domain"
)

// Metrics computes progress metrics for a backlog given the session
// history observed so far.
//
// EstimatedSessionsRemaining is derived from historical throughput
// (features completed per session). With zero completed sessions — or
// sessions that completed nothing, leaving throughput at zero — the
// estimate is nil ("unknown"), never a division error.
func Metrics(b *domain.Backlog, sessionsRun, featuresCompleted int) domain.ProgressMetrics {
	total, passing := b.Counts()
	pending := total - passing

	m := domain.ProgressMetrics{
		TotalFeatures:     total,
		CompletedFeatures: passing,
		PendingFeatures:   pending,
	}

	if total > 0 {
		pct := float64(passing) / float64(total) * 100
		m.CompletionPercentage = math.Round(pct*100) / 100
	}

	if sessionsRun > 0 && featuresCompleted > 0 {
		throughput := float64(featuresCompleted) / float64(sessionsRun)
		estimate := int(math.Ceil(float64(pending) / throughput))
		m.EstimatedSessionsRemaining = &estimate
	}

	return m
}
