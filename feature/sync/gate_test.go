package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsFresh(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	tests := []struct {
		name   string
		last   *time.Time
		expect bool
	}{
		{"Checked an hour ago", at(time.Hour), true},
		{"Checked 25 hours ago", at(25 * time.Hour), false},
		{"Never checked", nil, false},
		{"Exactly at the window edge", at(24 * time.Hour), false},
		{"Just inside the window", at(24*time.Hour - time.Nanosecond), true},
		{"Checked in the future", at(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, IsFresh(tt.last, now, 24*time.Hour))
		})
	}
}
