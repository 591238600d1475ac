// Package tui provides terminal output components for CADENCE.
//
// This package provides a centralized style system using Lip Gloss. All
// colors use AdaptiveColor for light/dark terminal support.
//
// Call CheckNoColor() at the start of commands to respect the NO_COLOR
// environment variable. Colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/cadence/internal/domain"
)

//nolint:gochecknoglobals // Intentional package-level constants for styling API
var (
	// ColorPrimary is blue, used for active states and primary information.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for passing features and completed sessions.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warnings and attention-required items.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failures and blocked runs.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Bold: lipgloss.NewStyle().
			Bold(true),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb, following https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}

// PriorityColors returns the semantic color definitions for feature
// priorities.
func PriorityColors() map[domain.Priority]lipgloss.AdaptiveColor {
	return map[domain.Priority]lipgloss.AdaptiveColor{
		domain.PriorityCritical: {Light: "#AF0000", Dark: "#FF5F5F"}, // Red
		domain.PriorityHigh:     {Light: "#AF8700", Dark: "#FFD700"}, // Yellow
		domain.PriorityMedium:   {Light: "#0087AF", Dark: "#00D7FF"}, // Blue
		domain.PriorityLow:      {Light: "#585858", Dark: "#6C6C6C"}, // Gray
	}
}

// FeatureStatusIcon returns the icon for a feature's pass state.
// Triple redundancy is maintained for status displays: icon + color + text.
func FeatureStatusIcon(passes bool) string {
	if passes {
		return "✓"
	}
	return "○"
}

// OutcomeIcon returns the icon for a session outcome.
func OutcomeIcon(outcome domain.SessionOutcome) string {
	switch outcome {
	case domain.OutcomeCompleted, domain.OutcomeDone:
		return "✓"
	case domain.OutcomeImplementFailed, domain.OutcomeVerifyFailed, domain.OutcomeBlocked:
		return "✗"
	default:
		return "○"
	}
}
