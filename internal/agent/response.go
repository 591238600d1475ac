package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CLIResponse represents the JSON envelope printed by the agent CLI when
// invoked with --output-format json.
type CLIResponse struct {
	// Type indicates the response type (e.g., "result").
	Type string `json:"type"`

	// Subtype provides additional type information.
	Subtype string `json:"subtype"`

	// IsError indicates whether the response represents an error.
	IsError bool `json:"is_error"`

	// Result contains the agent's text output.
	Result string `json:"result"`

	// SessionID identifies the agent session for debugging.
	SessionID string `json:"session_id"`

	// Duration is how long the agent session took in milliseconds.
	Duration int `json:"duration_ms"`

	// NumTurns is how many conversation turns occurred.
	NumTurns int `json:"num_turns"`
}

// parseCLIResponse parses the JSON envelope from the agent CLI.
func parseCLIResponse(data []byte, sentinel error) (*CLIResponse, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty response", sentinel)
	}

	var resp CLIResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse json response: %s", sentinel, err.Error())
	}

	return &resp, nil
}

// implementVerdict is the JSON verdict the implementation prompt instructs
// the agent to print as its final line.
type implementVerdict struct {
	Success bool   `json:"success"`
	Summary string `json:"summary"`
	Details string `json:"details,omitempty"`
}

// verifyVerdict is the JSON verdict the verification prompt instructs the
// agent to print as its final line.
type verifyVerdict struct {
	Passed  bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

// extractVerdict scans the agent's text output bottom-up for the last line
// that parses as the expected verdict JSON. The agent may print narration
// before the verdict; only the final parseable line counts.
//
// target must be a pointer; required is the key that must be present for a
// line to qualify, guarding against unrelated JSON in the output.
func extractVerdict(output string, required string, target any, sentinel error) error {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") || !strings.Contains(line, required) {
			continue
		}
		if err := json.Unmarshal([]byte(line), target); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no verdict found in agent output", sentinel)
}
