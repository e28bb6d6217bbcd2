package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storageOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "operations_total",
		Help:      "Count of storage operations.",
	}, []string{"store", "backend", "operation", "status"})
	storageOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Duration of storage operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"store", "backend", "operation", "status"})
)

// Storage tracks operations of one store (registry, journal, audit) on one backend.
type Storage struct {
	store   string
	backend string
}

// NewStorage creates a Storage metrics collector.
func NewStorage(store, backend string) *Storage {
	if store == "" {
		store = "unknown"
	}
	if backend == "" {
		backend = "unknown"
	}
	return &Storage{store: store, backend: backend}
}

// Observe records duration and status of a storage operation.
func (m Storage) Observe(operation string, err error, started time.Time) {
	s := status(err)
	storageOperationsTotal.WithLabelValues(m.store, m.backend, operation, s).Inc()
	storageOperationDuration.WithLabelValues(m.store, m.backend, operation, s).Observe(time.Since(started).Seconds())
}
