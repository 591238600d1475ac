package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

func TestParseCLIResponse(t *testing.T) {
	t.Run("valid envelope", func(t *testing.T) {
		data := []byte(`{"type":"result","subtype":"success","is_error":false,"result":"done",` +
			`"session_id":"abc","duration_ms":1500,"num_turns":3}`)

		resp, err := parseCLIResponse(data, cadenceerrors.ErrImplementation)
		require.NoError(t, err)
		assert.Equal(t, "result", resp.Type)
		assert.False(t, resp.IsError)
		assert.Equal(t, "done", resp.Result)
		assert.Equal(t, "abc", resp.SessionID)
		assert.Equal(t, 1500, resp.Duration)
		assert.Equal(t, 3, resp.NumTurns)
	})

	t.Run("empty response", func(t *testing.T) {
		_, err := parseCLIResponse(nil, cadenceerrors.ErrImplementation)
		assert.ErrorIs(t, err, cadenceerrors.ErrImplementation)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseCLIResponse([]byte("not json"), cadenceerrors.ErrVerification)
		assert.ErrorIs(t, err, cadenceerrors.ErrVerification)
	})
}

func TestExtractVerdict(t *testing.T) {
	t.Run("final line verdict", func(t *testing.T) {
		output := "I implemented the login form.\n" +
			`{"success": true, "summary": "added login form"}`

		var v implementVerdict
		require.NoError(t, extractVerdict(output, `"success"`, &v, cadenceerrors.ErrImplementation))
		assert.True(t, v.Success)
		assert.Equal(t, "added login form", v.Summary)
	})

	t.Run("last parseable line wins over earlier json", func(t *testing.T) {
		output := `{"success": false, "summary": "first attempt"}` + "\n" +
			"Retried after fixing the test.\n" +
			`{"success": true, "summary": "second attempt"}`

		var v implementVerdict
		require.NoError(t, extractVerdict(output, `"success"`, &v, cadenceerrors.ErrImplementation))
		assert.True(t, v.Success)
		assert.Equal(t, "second attempt", v.Summary)
	})

	t.Run("unrelated json lines are skipped", func(t *testing.T) {
		output := `{"passed": true, "details": "all steps ok"}` + "\n" +
			`{"event": "log", "message": "shutting down"}`

		var v verifyVerdict
		require.NoError(t, extractVerdict(output, `"passed"`, &v, cadenceerrors.ErrVerification))
		assert.True(t, v.Passed)
		assert.Equal(t, "all steps ok", v.Details)
	})

	t.Run("failure verdict", func(t *testing.T) {
		output := `{"passed": false, "details": "step 2 returned 500"}`

		var v verifyVerdict
		require.NoError(t, extractVerdict(output, `"passed"`, &v, cadenceerrors.ErrVerification))
		assert.False(t, v.Passed)
		assert.Equal(t, "step 2 returned 500", v.Details)
	})

	t.Run("no verdict present", func(t *testing.T) {
		var v implementVerdict
		err := extractVerdict("just narration, no json", `"success"`, &v, cadenceerrors.ErrImplementation)
		assert.ErrorIs(t, err, cadenceerrors.ErrImplementation)
	})

	t.Run("empty output", func(t *testing.T) {
		var v verifyVerdict
		err := extractVerdict("", `"passed"`, &v, cadenceerrors.ErrVerification)
		assert.ErrorIs(t, err, cadenceerrors.ErrVerification)
	})
}
