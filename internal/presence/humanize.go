package presence

import (
	"fmt"
	"time"
)

// LastSeenLabel buckets the elapsed time since lastSeen for display. Purely
// presentational; the raw timestamp stays the source of truth.
func LastSeenLabel(lastSeen, now time.Time) string {
	if lastSeen.IsZero() {
		return "never"
	}

	elapsed := now.Sub(lastSeen)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%d min ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d h ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%d d ago", int(elapsed.Hours()/24))
	}
}
