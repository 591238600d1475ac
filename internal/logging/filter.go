// Package logging provides logging utilities including sensitive data filtering.
// CADENCE invokes agent CLIs that authenticate via API keys in the
// environment; this package keeps those credentials out of log files.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting
// sensitive values in log output. These cover the credential formats of the
// agent CLIs CADENCE drives plus generic key/token shapes.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Anthropic API keys (sk-ant-api...)
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),

	// OpenAI API keys (sk-...)
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// Google API keys (AIza...)
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_)
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// Generic API keys (api_key, apikey, api-key followed by a value)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// Generic secret patterns (secret, password, credential, token with values)
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// SSH private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveFieldNames contains field names whose values are always redacted.
// Case-insensitive matching is performed.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"api_key",
	"apikey",
	"api-key",
	"password",
	"passwd",
	"secret",
	"credential",
	"credentials",
	"private_key",
	"access_token",
	"refresh_token",
	"bearer",
	"authorization",
	"anthropic_api_key",
	"gemini_api_key",
	"openai_api_key",
	"github_token",
}

// SensitiveDataHook is a zerolog hook that flags log entries containing
// sensitive data. Zerolog hooks cannot rewrite the message itself, so the
// hook marks the entry; actual redaction happens in FilteringWriter and via
// SafeValue at call sites.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data patterns.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces any matches of sensitive patterns with
// [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if lowerName == sensitive || strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns a filtered value for a field, redacting the whole value
// when the field name itself indicates a secret.
//
// Usage:
//
//	log.Info().Str("env", logging.SafeValue("env", envValue)).Msg("agent environment")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// This wraps log file writers so credentials never reach disk, even when
// they appear inside agent output quoted in log messages.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It returns the original length so callers don't see a short write when
// redaction changes the byte count.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
