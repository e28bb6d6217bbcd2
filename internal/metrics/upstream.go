package metrics

import (
	"time"

	"github.com/goodnatureofminers/bithook-backend/internal/hook/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamPublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "publish_total",
		Help:      "Count of filter publications to the event source.",
	}, []string{"status"})
	upstreamPublishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "publish_duration_seconds",
		Help:      "Duration of filter publications.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	upstreamEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "events_total",
		Help:      "Count of transaction events received from the event source.",
	}, []string{"source"})
	upstreamStreamErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "stream_errors_total",
		Help:      "Count of errors reported by the event stream.",
	})
)

// Upstream tracks the event source.
type Upstream struct{}

// NewUpstream creates an Upstream metrics collector.
func NewUpstream() *Upstream {
	return &Upstream{}
}

func (Upstream) ObservePublish(err error, started time.Time) {
	s := status(err)
	upstreamPublishTotal.WithLabelValues(s).Inc()
	upstreamPublishDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
}

func (Upstream) ObserveEvent(source model.EventSource) {
	upstreamEventsTotal.WithLabelValues(string(source)).Inc()
}

func (Upstream) ObserveStreamError() {
	upstreamStreamErrorsTotal.Inc()
}
