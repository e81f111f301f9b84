package util //nolint:revive // package name util hosts shared formatting helpers for reports and notifications

import "time"

// FormatElapsed formats a wait duration for display.
// Returns "-" for zero or negative durations and truncates to milliseconds otherwise.
func FormatElapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Truncate(time.Millisecond).String()
	}
}
