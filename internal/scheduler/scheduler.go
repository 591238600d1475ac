// Package scheduler provides the session state machine for CADENCE.
//
// This file implements the Scheduler, which drives sessions against a
// project backlog: it computes the ready set, selects the next feature by
// priority, delegates to the external implement/verify/commit
// collaborators, and records outcomes durably.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/cadence/internal/backlog"
	"github.com/mrz1836/cadence/internal/clock"
	"github.com/mrz1836/cadence/internal/constants"
	"github.com/mrz1836/cadence/internal/contracts"
	"github.com/mrz1836/cadence/internal/domain"
	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
	"github.com/mrz1836/cadence/internal/graph"
	"github.com/mrz1836/cadence/internal/progress"
)

// RoleCodingAgent is the agent role recorded in progress log entries.
const RoleCodingAgent = "coding-agent"

// progressTailLines is how much progress log history is handed to the
// implement collaborator as accumulated context.
const progressTailLines = 40

// recentCommitCount is how many commit subjects are handed to the
// implement collaborator.
const recentCommitCount = 10

// Mode gates how many SELECTING→RECORDING cycles execute per invocation
// and how failures are surfaced. It does not change per-cycle logic.
type Mode string

// Run modes.
const (
	// ModeSingleFeature runs sessions until one feature completes
	// successfully, bounded by Config.SingleFeatureMaxSessions.
	ModeSingleFeature Mode = "single-feature"

	// ModeManual runs exactly one session regardless of outcome.
	ModeManual Mode = "manual"

	// ModeAutonomous loops sessions until Done, Blocked, stop signal,
	// or the Config.MaxSessions safety limit.
	ModeAutonomous Mode = "autonomous"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSingleFeature, ModeManual, ModeAutonomous:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q must be one of [single-feature manual autonomous]", cadenceerrors.ErrInvalidMode, s)
	}
}

// CheckpointSaver snapshots project state after a successful RECORDING.
// Implemented by checkpoint.Manager.
type CheckpointSaver interface {
	Save(ctx context.Context, sessionID, description string) (string, error)
}

// CommitLogReader supplies recent commit subjects for the implement
// collaborator's context. Implemented by git.Runner.
type CommitLogReader interface {
	RecentCommits(ctx context.Context, n int) ([]string, error)
}

// ProgressLog is the subset of progress.Log the scheduler uses.
type ProgressLog interface {
	Append(ctx context.Context, e progress.Entry) error
	Tail(ctx context.Context, maxLines int) (string, error)
}

// Config holds configuration for the Scheduler.
type Config struct {
	// Mode selects the run mode.
	Mode Mode

	// MaxSessions caps the autonomous loop as a safety limit.
	MaxSessions int

	// SingleFeatureMaxSessions caps retries in single-feature mode.
	SingleFeatureMaxSessions int

	// SessionDelay is the pause between autonomous sessions.
	SessionDelay time.Duration

	// AutoCheckpoint snapshots project state at every successful RECORDING.
	AutoCheckpoint bool
}

// DefaultConfig returns sensible defaults for manual mode.
func DefaultConfig() Config {
	return Config{
		Mode:                     ModeManual,
		MaxSessions:              constants.DefaultMaxSessions,
		SingleFeatureMaxSessions: constants.DefaultSingleFeatureMaxSessions,
		SessionDelay:             constants.DefaultSessionDelay,
		AutoCheckpoint:           true,
	}
}

// Scheduler drives sessions against one project backlog.
// It is not designed for concurrent invocation against the same backlog —
// sessions are strictly sequential.
type Scheduler struct {
	store       backlog.Store
	implementer contracts.Implementer
	verifier    contracts.Verifier
	committer   contracts.Committer
	progressLog ProgressLog
	checkpoints CheckpointSaver
	commitLog   CommitLogReader
	projectPath string
	cfg         Config
	logger      zerolog.Logger
	clock       clock.Clock
	metrics     Metrics
	state       State

	sessionIDs map[string]bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCheckpoints enables checkpoint-on-RECORDING via the given saver.
func WithCheckpoints(saver CheckpointSaver) Option {
	return func(s *Scheduler) {
		s.checkpoints = saver
	}
}

// WithCommitLog sets the reader used to include recent commit subjects in
// the implement collaborator's context.
func WithCommitLog(reader CommitLogReader) Option {
	return func(s *Scheduler) {
		s.commitLog = reader
	}
}

// WithClock overrides the clock used for session IDs and timestamps.
func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clk
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m Metrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a Scheduler with the given dependencies.
// The store persists the backlog; implementer, verifier, and committer are
// the external collaborators; progressLog receives one entry per session.
func New(
	projectPath string,
	store backlog.Store,
	implementer contracts.Implementer,
	verifier contracts.Verifier,
	committer contracts.Committer,
	progressLog ProgressLog,
	cfg Config,
	logger zerolog.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		store:       store,
		implementer: implementer,
		verifier:    verifier,
		committer:   committer,
		progressLog: progressLog,
		projectPath: projectPath,
		cfg:         cfg,
		logger:      logger,
		clock:       clock.RealClock{},
		metrics:     NoopMetrics{},
		state:       StateIdle,
		sessionIDs:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the scheduler's current state.
func (s *Scheduler) State() State {
	return s.state
}

// Result summarizes one Run invocation.
type Result struct {
	// Final is the state the run ended in: Done, Blocked, or Idle when the
	// mode's cycle budget was spent or the stop signal fired.
	Final State

	// SessionsRun counts the sessions executed in this invocation.
	SessionsRun int

	// CompletedFeatures lists feature IDs recorded as passing in this run.
	CompletedFeatures []string

	// Sessions holds the per-session records in execution order.
	Sessions []domain.Session

	// Cycles holds the dependency cycles found when Final is Blocked.
	Cycles []graph.Cycle

	// Warnings holds the data-integrity warnings found when Final is Blocked.
	Warnings []graph.IntegrityWarning
}

// BlockedCause renders the cycle and integrity detail for a blocked result.
func (r *Result) BlockedCause() string {
	var sb strings.Builder
	for _, c := range r.Cycles {
		sb.WriteString("cycle: " + c.String() + "\n")
	}
	for _, w := range r.Warnings {
		sb.WriteString(fmt.Sprintf("unresolved dependency: %s -> %s\n", w.FeatureID, w.MissingDependency))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Run executes sessions per the configured mode and returns the summary.
//
// The stop signal (ctx cancellation) is checked only between cycles, at
// IDLE — never mid-cycle — so cancellation always lands on a clean
// RECORDING-committed boundary. A Blocked result is returned with
// ErrBlocked so callers can map it to a non-zero exit.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	result := &Result{Final: StateIdle}

	for {
		// Stop-signal boundary: only at IDLE.
		select {
		case <-ctx.Done():
			s.logger.Info().Int("sessions_run", result.SessionsRun).Msg("stop signal received at idle")
			return result, nil
		default:
		}

		if s.cfg.Mode == ModeAutonomous && result.SessionsRun >= s.cfg.MaxSessions {
			s.logger.Warn().Int("max_sessions", s.cfg.MaxSessions).Msg("autonomous session limit reached")
			return result, nil
		}
		if s.cfg.Mode == ModeSingleFeature && result.SessionsRun >= s.cfg.SingleFeatureMaxSessions {
			s.logger.Warn().Int("max_sessions", s.cfg.SingleFeatureMaxSessions).Msg("single-feature session limit reached")
			return result, nil
		}

		session, err := s.runSession(ctx)
		if err != nil {
			return result, err
		}

		switch session.Outcome {
		case domain.OutcomeDone:
			result.Final = StateDone
			return result, nil
		case domain.OutcomeBlocked:
			result.SessionsRun++
			result.Sessions = append(result.Sessions, *session)
			result.Final = StateBlocked
			result.Cycles, result.Warnings = s.blockedDetail(ctx)
			return result, cadenceerrors.ErrBlocked
		case domain.OutcomeCompleted:
			result.SessionsRun++
			result.Sessions = append(result.Sessions, *session)
			result.CompletedFeatures = append(result.CompletedFeatures, session.FeatureID)
		case domain.OutcomeImplementFailed, domain.OutcomeVerifyFailed:
			result.SessionsRun++
			result.Sessions = append(result.Sessions, *session)
		}

		done, err := s.shouldStop(session)
		if err != nil {
			return result, err
		}
		if done {
			return result, nil
		}

		s.pause(ctx)
	}
}

// shouldStop applies the per-mode cycle budget after one session.
func (s *Scheduler) shouldStop(session *domain.Session) (bool, error) {
	switch s.cfg.Mode {
	case ModeManual:
		// Exactly one SELECTING→RECORDING cycle regardless of outcome.
		return true, nil
	case ModeSingleFeature:
		return session.Outcome == domain.OutcomeCompleted, nil
	case ModeAutonomous:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", cadenceerrors.ErrInvalidMode, s.cfg.Mode)
	}
}

// pause sleeps between autonomous sessions, returning early when the stop
// signal fires so the IDLE check observes it promptly.
func (s *Scheduler) pause(ctx context.Context) {
	if s.cfg.Mode != ModeAutonomous || s.cfg.SessionDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.cfg.SessionDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// runSession executes one full cycle: SELECTING through RECORDING, or an
// early DONE/BLOCKED determination. Collaborator failures end the session
// with a failure outcome; store errors abort the run.
func (s *Scheduler) runSession(ctx context.Context) (*domain.Session, error) {
	started := s.clock.Now().UTC()
	session := &domain.Session{
		ID:        backlog.GenerateSessionIDUnique(started, s.sessionIDs),
		StartedAt: started,
	}
	s.sessionIDs[session.ID] = true
	s.metrics.SessionStarted(session.ID)

	if err := s.transition(StateSelecting); err != nil {
		return nil, err
	}

	b, err := s.store.Load(ctx)
	if err != nil {
		s.resetIdle()
		return nil, err
	}

	ready, warnings := graph.ReadySet(b)
	for _, w := range warnings {
		s.logger.Warn().
			Str("feature_id", w.FeatureID).
			Str("missing_dependency", w.MissingDependency).
			Msg("dependency references unknown feature")
	}

	if len(ready) == 0 {
		if b.AllPass() {
			if err := s.transition(StateDone); err != nil {
				return nil, err
			}
			s.finishSession(session, domain.OutcomeDone, "all features pass")
			s.resetIdle()
			return session, nil
		}
		if err := s.transition(StateBlocked); err != nil {
			return nil, err
		}
		s.finishSession(session, domain.OutcomeBlocked, s.describeBlockage(b, warnings))
		s.appendProgress(ctx, session)
		s.resetIdle()
		return session, nil
	}

	feature := selectNext(ready)
	session.FeatureID = feature.ID
	s.logger.Info().
		Str("session_id", session.ID).
		Str("feature_id", feature.ID).
		Str("priority", string(feature.Priority)).
		Msg("feature selected")

	if err := s.transition(StateImplementing); err != nil {
		return nil, err
	}

	implResult, implErr := s.implementer.Implement(ctx, &feature, s.buildContext(ctx))
	if implErr != nil || !implResult.Success {
		detail := "implementation reported failure"
		if implErr != nil {
			detail = implErr.Error()
		} else if implResult.Details != "" {
			detail = implResult.Details
		}
		if err := s.transition(StateRecording); err != nil {
			return nil, err
		}
		s.finishSession(session, domain.OutcomeImplementFailed, detail)
		s.appendProgress(ctx, session)
		s.logger.Error().
			Str("session_id", session.ID).
			Str("feature_id", feature.ID).
			Str("cause", detail).
			Msg("implementation failed")
		return session, s.transition(StateIdle)
	}

	if err := s.transition(StateVerifying); err != nil {
		return nil, err
	}

	verifyResult, verifyErr := s.verifier.Verify(ctx, &feature)
	if verifyErr != nil || !verifyResult.Passed {
		detail := "verification reported failure"
		if verifyErr != nil {
			detail = verifyErr.Error()
		} else if verifyResult.Details != "" {
			detail = verifyResult.Details
		}
		if err := s.transition(StateRecording); err != nil {
			return nil, err
		}
		// Implementation changes are NOT reverted here; that is the
		// version-control layer's concern.
		s.finishSession(session, domain.OutcomeVerifyFailed, detail)
		s.appendProgress(ctx, session)
		s.logger.Error().
			Str("session_id", session.ID).
			Str("feature_id", feature.ID).
			Str("cause", detail).
			Msg("verification failed")
		return session, s.transition(StateIdle)
	}

	if err := s.transition(StateRecording); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, feature.ID, func(f *domain.Feature) {
		f.Passes = true
	}); err != nil {
		s.resetIdle()
		return nil, err
	}

	notes := implResult.ChangesSummary
	commitHash, commitErr := s.committer.Commit(ctx, implResult.ChangesSummary)
	if commitErr != nil {
		// The feature passed; a failed commit is recorded, not fatal.
		s.logger.Warn().Err(commitErr).Str("feature_id", feature.ID).Msg("commit failed after passing verification")
		notes = strings.TrimSpace(notes + "\ncommit failed: " + commitErr.Error())
	} else {
		session.CommitHash = commitHash
	}

	s.finishSession(session, domain.OutcomeCompleted, notes)
	s.appendProgress(ctx, session)

	if s.cfg.AutoCheckpoint && s.checkpoints != nil {
		if _, err := s.checkpoints.Save(ctx, session.ID, "after "+feature.ID); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("checkpoint save failed")
		}
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("feature_id", feature.ID).
		Str("commit", session.CommitHash).
		Msg("feature completed")

	return session, s.transition(StateIdle)
}

// selectNext picks the highest-priority ready feature, tie-broken by
// backlog insertion order (ready preserves it, so the first occurrence of
// the best rank wins).
func selectNext(ready []domain.Feature) domain.Feature {
	best := ready[0]
	for _, f := range ready[1:] {
		if f.Priority.Rank() < best.Priority.Rank() {
			best = f
		}
	}
	return best
}

// buildContext assembles the accumulated project context handed to the
// implement collaborator. Failures here degrade the context, never the
// session.
func (s *Scheduler) buildContext(ctx context.Context) *domain.ProjectContext {
	pctx := &domain.ProjectContext{ProjectPath: s.projectPath}

	if tail, err := s.progressLog.Tail(ctx, progressTailLines); err == nil {
		pctx.RecentProgress = tail
	} else {
		s.logger.Warn().Err(err).Msg("failed to read progress log tail")
	}

	if s.commitLog != nil {
		if commits, err := s.commitLog.RecentCommits(ctx, recentCommitCount); err == nil {
			pctx.RecentCommits = commits
		} else {
			s.logger.Warn().Err(err).Msg("failed to read recent commits")
		}
	}

	return pctx
}

// blockedDetail recomputes the cycles and warnings that caused a blockage
// for the run result.
func (s *Scheduler) blockedDetail(ctx context.Context) ([]graph.Cycle, []graph.IntegrityWarning) {
	b, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reload backlog for blockage detail")
		return nil, nil
	}
	cycles := graph.DetectCycles(b)
	_, warnings := graph.ReadySet(b)
	return cycles, warnings
}

// describeBlockage summarizes why no feature is ready.
func (s *Scheduler) describeBlockage(b *domain.Backlog, warnings []graph.IntegrityWarning) string {
	var sb strings.Builder
	sb.WriteString("no ready features while unpassed features remain")
	for _, c := range graph.DetectCycles(b) {
		sb.WriteString("\ncycle: " + c.String())
	}
	for _, w := range warnings {
		sb.WriteString(fmt.Sprintf("\nunresolved dependency: %s -> %s", w.FeatureID, w.MissingDependency))
	}
	return sb.String()
}

// finishSession stamps the session end and notifies metrics.
func (s *Scheduler) finishSession(session *domain.Session, outcome domain.SessionOutcome, notes string) {
	session.Outcome = outcome
	session.Notes = notes
	session.CompletedAt = s.clock.Now().UTC()
	s.metrics.SessionCompleted(session.ID, session.CompletedAt.Sub(session.StartedAt), outcome)
}

// appendProgress writes the session's progress entry, preserving the audit
// trail even for failures. Append errors are logged, not propagated — the
// durable backlog write already happened.
func (s *Scheduler) appendProgress(ctx context.Context, session *domain.Session) {
	entry := progress.Entry{
		Timestamp: session.CompletedAt,
		Role:      RoleCodingAgent,
		SessionID: session.ID,
		FeatureID: session.FeatureID,
		Outcome:   session.Outcome,
		Notes:     session.Notes,
	}
	if err := s.progressLog.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to append progress entry")
	}
}

// resetIdle forces the machine back to IDLE after a terminal or aborted
// session so a subsequent invocation can run.
func (s *Scheduler) resetIdle() {
	s.state = StateIdle
}

// IsBlocked reports whether err is the blocked sentinel.
func IsBlocked(err error) bool {
	return errors.Is(err, cadenceerrors.ErrBlocked)
}
