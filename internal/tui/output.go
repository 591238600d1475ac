// Package tui provides terminal output components for CADENCE.
package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/cadence/internal/domain"
)

// Line icons shared by every command so session summaries, status listings,
// and checkpoint output stay consistent.
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "⚠"
)

// Output renders command results for a single writer.
//
// TTYOutput writes styled, icon-prefixed lines for humans. JSONOutput stays
// silent outside Error and JSON so piped stdout remains machine-parseable.
type Output interface {
	// Success prints a completed-action line.
	Success(msg string)
	// Error prints a failure line.
	Error(err error)
	// Warning prints an attention-required line.
	Warning(msg string)
	// Info prints a neutral line.
	Info(msg string)
	// List prints a header followed by indented items.
	List(header string, items []string)
	// FeatureLine prints one backlog feature with its pass icon and
	// priority, colored by priority.
	FeatureLine(f *domain.Feature)
	// JSON writes v as indented JSON.
	JSON(v any) error
}

// NewOutput selects the implementation for the requested format.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}

// encodeJSON writes v as indented JSON. Shared by both implementations so
// explicit payloads format identically regardless of output mode.
func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// TTYOutput renders styled lines for interactive terminals.
type TTYOutput struct {
	w      io.Writer
	styles *OutputStyles
}

// NewTTYOutput creates a TTYOutput writing to w.
func NewTTYOutput(w io.Writer) *TTYOutput {
	return &TTYOutput{w: w, styles: NewOutputStyles()}
}

// line writes one styled line, prefixing the icon when present.
func (o *TTYOutput) line(style lipgloss.Style, icon, msg string) {
	if icon != "" {
		msg = icon + " " + msg
	}
	_, _ = fmt.Fprintln(o.w, style.Render(msg))
}

// Success prints a completed-action line.
func (o *TTYOutput) Success(msg string) { o.line(o.styles.Success, iconSuccess, msg) }

// Error prints a failure line.
func (o *TTYOutput) Error(err error) { o.line(o.styles.Error, iconError, err.Error()) }

// Warning prints an attention-required line.
func (o *TTYOutput) Warning(msg string) { o.line(o.styles.Warning, iconWarning, msg) }

// Info prints a neutral line.
func (o *TTYOutput) Info(msg string) { o.line(o.styles.Info, "", msg) }

// List prints a header followed by two-space indented items.
func (o *TTYOutput) List(header string, items []string) {
	o.Info(header)
	for _, item := range items {
		o.line(o.styles.Dim, "", "  "+item)
	}
}

// FeatureLine renders a feature as "<icon> <id> (priority: <p>)" in the
// priority's semantic color.
func (o *TTYOutput) FeatureLine(f *domain.Feature) {
	style := lipgloss.NewStyle().Foreground(PriorityColors()[f.Priority])
	o.line(style, FeatureStatusIcon(f.Passes), fmt.Sprintf("%s (priority: %s)", f.ID, f.Priority))
}

// JSON writes v as indented JSON.
func (o *TTYOutput) JSON(v any) error { return encodeJSON(o.w, v) }

// JSONOutput suppresses decorative output so stdout stays machine-readable.
type JSONOutput struct {
	w io.Writer
}

// NewJSONOutput creates a JSONOutput writing to w.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{w: w}
}

// Success is silent in JSON mode.
func (o *JSONOutput) Success(string) {}

// Error writes the error as a one-line JSON object.
func (o *JSONOutput) Error(err error) {
	_, _ = fmt.Fprintf(o.w, "{\"error\": %q}\n", err.Error())
}

// Warning is silent in JSON mode.
func (o *JSONOutput) Warning(string) {}

// Info is silent in JSON mode.
func (o *JSONOutput) Info(string) {}

// List is silent in JSON mode.
func (o *JSONOutput) List(string, []string) {}

// FeatureLine is silent in JSON mode.
func (o *JSONOutput) FeatureLine(*domain.Feature) {}

// JSON writes v as indented JSON.
func (o *JSONOutput) JSON(v any) error { return encodeJSON(o.w, v) }
