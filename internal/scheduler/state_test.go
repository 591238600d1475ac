package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"idle to selecting", StateIdle, StateSelecting, true},
		{"selecting to implementing", StateSelecting, StateImplementing, true},
		{"selecting to done", StateSelecting, StateDone, true},
		{"selecting to blocked", StateSelecting, StateBlocked, true},
		{"implementing to verifying", StateImplementing, StateVerifying, true},
		{"implementing to recording", StateImplementing, StateRecording, true},
		{"verifying to recording", StateVerifying, StateRecording, true},
		{"recording to idle", StateRecording, StateIdle, true},

		{"idle to implementing skips selecting", StateIdle, StateImplementing, false},
		{"selecting to verifying skips implementing", StateSelecting, StateVerifying, false},
		{"verifying to idle skips recording", StateVerifying, StateIdle, false},
		{"recording to selecting", StateRecording, StateSelecting, false},

		{"same state is not a transition", StateIdle, StateIdle, false},
		{"done is terminal", StateDone, StateIdle, false},
		{"blocked is terminal", StateBlocked, StateIdle, false},
		{"unknown state", State("bogus"), StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to),
				"transition %s -> %s", tt.from, tt.to)
		})
	}
}

func TestIsTerminalState(t *testing.T) {
	assert.True(t, IsTerminalState(StateDone))
	assert.True(t, IsTerminalState(StateBlocked))

	assert.False(t, IsTerminalState(StateIdle))
	assert.False(t, IsTerminalState(StateSelecting))
	assert.False(t, IsTerminalState(StateImplementing))
	assert.False(t, IsTerminalState(StateVerifying))
	assert.False(t, IsTerminalState(StateRecording))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{"single-feature", "single-feature", ModeSingleFeature, false},
		{"manual", "manual", ModeManual, false},
		{"autonomous", "autonomous", ModeAutonomous, false},
		{"empty", "", "", true},
		{"unknown", "turbo", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
