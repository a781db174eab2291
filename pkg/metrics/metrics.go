package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Subscription registry metrics
	SubscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_subscriptions_total",
			Help: "Total number of active subscriptions by kind",
		},
		[]string{"kind"},
	)

	// Dataplane metrics
	EventsProcessedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_events_processed_total",
			Help: "Total number of events handed to the matcher",
		},
	)

	NotificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_notifications_sent_total",
			Help: "Total number of notifications dispatched to egress, by kind",
		},
		[]string{"kind"},
	)

	NotificationsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_notifications_dropped_total",
			Help: "Total number of notifications dropped because egress could not accept them",
		},
	)

	EventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_dropped_total",
			Help: "Total number of malformed events dropped on the ingress path, by reason",
		},
		[]string{"reason"},
	)

	MatchLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_match_latency_seconds",
			Help:    "Time taken to evaluate one event against the subscription registry",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
		},
	)

	// Window manager metrics
	WindowFiresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_window_fires_total",
			Help: "Total number of times a tumbling window reached capacity and emitted an aggregate",
		},
		[]string{"aggregation"},
	)

	// Control-plane metrics
	ControlRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_control_requests_total",
			Help: "Total number of control-plane requests by type and outcome",
		},
		[]string{"type", "status"},
	)

	// Heartbeat metrics
	HeartbeatsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_heartbeats_sent_total",
			Help: "Total number of broker heartbeats emitted",
		},
	)
)

func init() {
	prometheus.MustRegister(SubscriptionsTotal)
	prometheus.MustRegister(EventsProcessedTotal)
	prometheus.MustRegister(NotificationsSentTotal)
	prometheus.MustRegister(NotificationsDroppedTotal)
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(MatchLatency)
	prometheus.MustRegister(WindowFiresTotal)
	prometheus.MustRegister(ControlRequestsTotal)
	prometheus.MustRegister(HeartbeatsSentTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
