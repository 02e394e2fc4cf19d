// Package timefmt formats elapsed call/stream durations for notifications.
package timefmt

import (
	"fmt"
	"time"
)

// FormatDuration renders the elapsed time between start and end as HH:MM:SS.
// It returns ok=false when the elapsed time is under minSeconds, meaning the
// notification should be suppressed. The hours field is not capped at two
// digits; a call running past 99 hours widens the field.
func FormatDuration(start, end time.Time, minSeconds int) (string, bool) {
	elapsed := end.Sub(start).Milliseconds()
	if elapsed < int64(minSeconds)*1000 {
		return "", false
	}

	hours := elapsed / 3600000
	minutes := (elapsed / 60000) % 60
	seconds := (elapsed / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds), true
}
