// Package scheduler provides the session state machine for CADENCE.
package scheduler

import (
	"time"

	"github.com/mrz1836/cadence/internal/domain"
)

// Metrics collects metrics about session execution.
// Implementations can send these to monitoring systems like Prometheus,
// StatsD, or custom observability platforms.
type Metrics interface {
	// SessionStarted is called when a new session begins.
	SessionStarted(sessionID string)

	// SessionCompleted is called when a session ends (any outcome).
	SessionCompleted(sessionID string, duration time.Duration, outcome domain.SessionOutcome)

	// StateTransition is called on every scheduler state change.
	StateTransition(from, to State)
}

// NoopMetrics is a no-op implementation of Metrics for default behavior.
// Use this when metrics collection is not needed.
type NoopMetrics struct{}

// Ensure NoopMetrics implements Metrics interface.
var _ Metrics = (*NoopMetrics)(nil)

// SessionStarted implements Metrics.
func (NoopMetrics) SessionStarted(string) {}

// SessionCompleted implements Metrics.
func (NoopMetrics) SessionCompleted(string, time.Duration, domain.SessionOutcome) {}

// StateTransition implements Metrics.
func (NoopMetrics) StateTransition(State, State) {}
