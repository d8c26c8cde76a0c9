package sync

import "time"

// IsFresh reports whether a check made at lastCheckedAt is still within window at now.
// A user that was never checked is never fresh.
func IsFresh(lastCheckedAt *time.Time, now time.Time, window time.Duration) bool {
	if lastCheckedAt == nil {
		return false
	}
	return now.Sub(*lastCheckedAt) < window
}
