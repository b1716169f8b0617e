package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "podstream"

var supervisorStates = []string{"starting", "watching", "reconnecting", "stopped"}

var (
	watchEventsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_events_total",
			Help:      "Total number of watch events applied to the pod mirror, by event type.",
		},
		[]string{"type"},
	)

	parseErrorsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_parse_errors_total",
			Help:      "Total number of malformed watch events skipped.",
		},
	)

	reconnectsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Total number of watch reconnects, by failure kind.",
		},
		[]string{"kind"},
	)

	resyncsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resyncs_total",
			Help:      "Total number of requested relists (scheduled or manual).",
		},
	)

	pods = promauto.With(prometheus.DefaultRegisterer).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pods",
			Help:      "Number of pods currently mirrored.",
		},
	)

	subscribers = promauto.With(prometheus.DefaultRegisterer).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Number of live subscribers.",
		},
	)

	subscriberOverflowsTotal = promauto.With(prometheus.DefaultRegisterer).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscriber_overflows_total",
			Help:      "Total number of subscribers disconnected because their queue overflowed.",
		},
	)

	supervisorState = promauto.With(prometheus.DefaultRegisterer).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "supervisor_state",
			Help:      "1 for the current supervisor state, 0 for the others.",
		},
		[]string{"state"},
	)

	pingDuration = promauto.With(prometheus.DefaultRegisterer).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ping_duration_seconds",
			Help:      "Latency of component health pings.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 6),
		},
		[]string{"component", "result"},
	)
)

// RecordWatchEvent counts an applied watch event.
func RecordWatchEvent(eventType string) {
	watchEventsTotal.WithLabelValues(eventType).Inc()
}

// RecordParseError counts a skipped malformed watch event.
func RecordParseError() {
	parseErrorsTotal.Inc()
}

// RecordReconnect counts a watch reconnect caused by kind.
func RecordReconnect(kind string) {
	reconnectsTotal.WithLabelValues(kind).Inc()
}

func RecordResync() {
	resyncsTotal.Inc()
}

func SetPods(n int) {
	pods.Set(float64(n))
}

func SetSubscribers(n int) {
	subscribers.Set(float64(n))
}

func RecordSubscriberOverflow() {
	subscriberOverflowsTotal.Inc()
}

// SetSupervisorState flips the state gauge to state.
func SetSupervisorState(state string) {
	for _, s := range supervisorStates {
		value := 0.0
		if s == state {
			value = 1
		}

		supervisorState.WithLabelValues(s).Set(value)
	}
}

// ObservePing records a health ping of component.
func ObservePing(component string, latency time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}

	pingDuration.WithLabelValues(component, result).Observe(latency.Seconds())
}
