package health

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// VoiceEventsProcessed counts voice state changes handled by the tracker.
	VoiceEventsProcessed prometheus.Counter

	// NotificationsSent counts notifications by kind
	// (call_start, call_end, stream_start, stream_end).
	NotificationsSent *prometheus.CounterVec

	// NotificationsSuppressed counts sessions that ended under the threshold.
	NotificationsSuppressed prometheus.Counter
)

// InitMetrics registers metrics (idempotent).
func InitMetrics() {
	once.Do(func() {
		VoiceEventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicewatch_voice_events_total",
			Help: "Number of voice state change events processed",
		})
		NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "voicewatch_notifications_sent_total",
			Help: "Number of notifications sent by kind",
		}, []string{"kind"})
		NotificationsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
			Name: "voicewatch_notifications_suppressed_total",
			Help: "Number of end notifications suppressed by the minimum duration threshold",
		})
	})
}

// CountNotification increments the sent counter for a notification kind.
func CountNotification(kind string) {
	if NotificationsSent != nil {
		NotificationsSent.WithLabelValues(kind).Inc()
	}
}

// CountSuppressed increments the suppressed counter.
func CountSuppressed() {
	if NotificationsSuppressed != nil {
		NotificationsSuppressed.Inc()
	}
}

// CountVoiceEvent increments the processed event counter.
func CountVoiceEvent() {
	if VoiceEventsProcessed != nil {
		VoiceEventsProcessed.Inc()
	}
}
