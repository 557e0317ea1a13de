package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultInvalid  = "malformed"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorched",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scorched",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "scorched",
			Subsystem: "validator",
			Name:      "transitions_total",
			Help:      "Validated transitions by verdict.",
		},
		[]string{"source", "result", "class", "reason"},
	)
	transitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "scorched",
			Subsystem: "validator",
			Name:      "transition_duration_seconds",
			Help:      "Transition validation duration in seconds.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
		[]string{"source", "result"},
	)
	openChannels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "scorched",
			Subsystem: "channel",
			Name:      "open",
			Help:      "Channels held by the referee registry.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, transitions, transitionDuration, openChannels)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordTransition counts one verdict. class and reason are empty for
// accepted transitions.
func RecordTransition(source, result, class, reason string, duration time.Duration) {
	RegisterMetrics()
	transitions.WithLabelValues(source, result, class, reason).Inc()
	transitionDuration.WithLabelValues(source, result).Observe(duration.Seconds())
}

func SetOpenChannels(n int) {
	RegisterMetrics()
	openChannels.Set(float64(n))
}
