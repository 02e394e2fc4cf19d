package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		elapsed    time.Duration
		minSeconds int
		want       string
		wantOK     bool
	}{
		{name: "below threshold suppressed", elapsed: 10 * time.Second, minSeconds: 30, wantOK: false},
		{name: "just below threshold", elapsed: 30*time.Second - time.Millisecond, minSeconds: 30, wantOK: false},
		{name: "exactly at threshold", elapsed: 30 * time.Second, minSeconds: 30, want: "00:00:30", wantOK: true},
		{name: "forty five seconds", elapsed: 45 * time.Second, minSeconds: 30, want: "00:00:45", wantOK: true},
		{name: "zero threshold zero elapsed", elapsed: 0, minSeconds: 0, want: "00:00:00", wantOK: true},
		{name: "sub-second rounds down", elapsed: 59*time.Second + 900*time.Millisecond, minSeconds: 0, want: "00:00:59", wantOK: true},
		{name: "minutes and seconds", elapsed: 3*time.Minute + 7*time.Second, minSeconds: 30, want: "00:03:07", wantOK: true},
		{name: "hours", elapsed: 2*time.Hour + 15*time.Minute + 9*time.Second, minSeconds: 30, want: "02:15:09", wantOK: true},
		{name: "hours field widens past 99", elapsed: 100*time.Hour + 30*time.Minute, minSeconds: 30, want: "100:30:00", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatDuration(base, base.Add(tt.elapsed), tt.minSeconds)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDurationThresholdBoundary(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Suppressed iff elapsed < minSeconds*1000 ms, for a spread of thresholds.
	for _, minSeconds := range []int{0, 1, 30, 60, 3600} {
		for _, deltaMs := range []int64{-1, 0, 1} {
			elapsedMs := int64(minSeconds)*1000 + deltaMs
			if elapsedMs < 0 {
				continue
			}
			end := base.Add(time.Duration(elapsedMs) * time.Millisecond)
			_, ok := FormatDuration(base, end, minSeconds)
			assert.Equal(t, deltaMs >= 0, ok, "minSeconds=%d deltaMs=%d", minSeconds, deltaMs)
		}
	}
}
