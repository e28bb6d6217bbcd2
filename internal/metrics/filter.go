package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filterSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "sync_total",
		Help:      "Count of filter synchronizations that published a new descriptor set.",
	}, []string{"status"})
	filterSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "sync_duration_seconds",
		Help:      "Duration of filter synchronizations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})
	filterDescriptors = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "descriptors",
		Help:      "Number of distinct descriptors in the last published filter.",
	})
	filterPausesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "pauses_total",
		Help:      "Count of synchronizations that found an empty registry and stopped the source.",
	})
	filterSkipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "skips_total",
		Help:      "Count of synchronizations skipped because the descriptor set was unchanged.",
	})
)

type Filter struct{}

func NewFilter() *Filter {
	return &Filter{}
}

func (Filter) ObserveSync(err error, descriptors int, started time.Time) {
	s := status(err)
	filterSyncTotal.WithLabelValues(s).Inc()
	filterSyncDuration.WithLabelValues(s).Observe(time.Since(started).Seconds())
	if err == nil {
		filterDescriptors.Set(float64(descriptors))
	}
}

func (Filter) ObservePause() {
	filterPausesTotal.Inc()
	filterDescriptors.Set(0)
}

func (Filter) ObserveSkip() {
	filterSkipsTotal.Inc()
}
