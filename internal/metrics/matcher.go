package metrics

import (
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matcherEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "events_total",
		Help:      "Count of matched transaction events.",
	}, []string{"source", "status"})
	matcherEventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "event_duration_seconds",
		Help:      "Duration of matching a single transaction event.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "status"})
	matcherMatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "matches_total",
		Help:      "Count of delivery tasks produced by matching.",
	}, []string{"source"})
	matcherFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "fetch_total",
		Help:      "Count of oversized transaction fetches.",
	}, []string{"status"})
	matcherFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of oversized transaction fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	matcherLookupErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matcher",
		Name:      "lookup_errors_total",
		Help:      "Count of failed registry lookups while matching.",
	})
)

// Matcher tracks transaction matching.
type Matcher struct{}

// NewMatcher creates a Matcher metrics collector.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// ObserveMatch records one matched event and the number of tasks it produced.
func (Matcher) ObserveMatch(source model.EventSource, err error, matches int, started time.Time) {
	src := string(source)
	if src == "" {
		src = "unknown"
	}
	s := status(err)
	matcherEventsTotal.WithLabelValues(src, s).Inc()
	matcherEventDuration.WithLabelValues(src, s).Observe(time.Since(started).Seconds())
	if matches > 0 {
		matcherMatchesTotal.WithLabelValues(src).Add(float64(matches))
	}
}

// ObserveFetch records an oversized transaction fetch.
func (Matcher) ObserveFetch(err error, started time.Time) {
	s := status(err)
	matcherFetchTotal.WithLabelValues(s).Inc()
	matcherFetchDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
}

// ObserveLookupError counts a failed registry lookup.
func (Matcher) ObserveLookupError() {
	matcherLookupErrorsTotal.Inc()
}
