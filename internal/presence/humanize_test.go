package presence

import (
	"testing"
	"time"
)

func TestLastSeenLabel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastSeen time.Time
		want     string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"under a minute", now.Add(-59 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5 min ago"},
		{"just under an hour", now.Add(-59 * time.Minute), "59 min ago"},
		{"hours", now.Add(-3 * time.Hour), "3 h ago"},
		{"just under a day", now.Add(-23 * time.Hour), "23 h ago"},
		{"days", now.Add(-50 * time.Hour), "2 d ago"},
		{"never seen", time.Time{}, "never"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastSeenLabel(tt.lastSeen, now); got != tt.want {
				t.Errorf("LastSeenLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
