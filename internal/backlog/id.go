package backlog

import (
	"fmt"
	"time"
)

// GenerateSessionID generates a session ID with format sess-YYYYMMDD-HHMMSS.
// IDs generated within the same second will be identical.
// Use GenerateSessionIDUnique for scenarios requiring uniqueness checks.
func GenerateSessionID(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("sess-%s-%s",
		now.Format("20060102"),
		now.Format("150405"))
}

// GenerateSessionIDUnique generates a session ID, adding milliseconds if
// needed for uniqueness. It checks against the provided set of existing IDs.
func GenerateSessionIDUnique(now time.Time, existingIDs map[string]bool) string {
	id := GenerateSessionID(now)
	if !existingIDs[id] {
		return id
	}
	utc := now.UTC()
	return fmt.Sprintf("sess-%s-%s-%03d",
		utc.Format("20060102"),
		utc.Format("150405"),
		utc.Nanosecond()/1000000)
}
