package metrics

import (
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveryAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "delivery",
		Name:      "attempts_total",
		Help:      "Count of callback attempts.",
	}, []string{"channel", "status"})
	deliveryAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "delivery",
		Name:      "attempt_duration_seconds",
		Help:      "Duration of callback attempts.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"channel", "status"})
	deliveryOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "delivery",
		Name:      "outcomes_total",
		Help:      "Count of tasks reaching a terminal state.",
	}, []string{"channel", "state"})
	deliveryInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "delivery",
		Name:      "in_flight",
		Help:      "Number of tasks currently being delivered.",
	})
)

// Delivery tracks callback delivery.
type Delivery struct{}

// NewDelivery creates a Delivery metrics collector.
func NewDelivery() *Delivery {
	return &Delivery{}
}

// ObserveAttempt records a single callback attempt.
func (Delivery) ObserveAttempt(channel string, err error, started time.Time) {
	s := status(err)
	deliveryAttemptsTotal.WithLabelValues(channel, s).Inc()
	deliveryAttemptDuration.WithLabelValues(channel, s).Observe(time.Since(started).Seconds())
}

// ObserveOutcome counts a task that reached a terminal state.
func (Delivery) ObserveOutcome(channel string, state model.DeliveryState) {
	deliveryOutcomesTotal.WithLabelValues(channel, string(state)).Inc()
}

// ObserveInFlight adjusts the in-flight gauge.
func (Delivery) ObserveInFlight(delta int) {
	deliveryInFlight.Add(float64(delta))
}
