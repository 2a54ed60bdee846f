package metrics

import (
	"context"
	"maps"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StateMetrics reports the size of the in-memory academic state. The
// collector goroutine only reads the counts last passed to Update, never the
// stores themselves.
type StateMetrics struct {
	records       metric.Int64ObservableGauge
	uptimeSeconds metric.Float64ObservableCounter
	startTime     time.Time
	counts        atomic.Pointer[map[string]int64]
}

func NewStateMetrics(meter metric.Meter) (*StateMetrics, error) {
	sm := &StateMetrics{
		startTime: time.Now(),
	}

	var err error

	sm.records, err = meter.Int64ObservableGauge(
		"siak.state.records",
		metric.WithDescription("Number of records held in memory"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	sm.uptimeSeconds, err = meter.Float64ObservableCounter(
		"service.uptime",
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(ctx context.Context, observer metric.Observer) error {
			for kind, n := range sm.Counts() {
				observer.ObserveInt64(sm.records, n, metric.WithAttributes(attribute.String("kind", kind)))
			}
			observer.ObserveFloat64(sm.uptimeSeconds, time.Since(sm.startTime).Seconds())
			return nil
		},
		sm.records,
		sm.uptimeSeconds,
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

// Update replaces the observed record counts, keyed by kind.
func (sm *StateMetrics) Update(counts map[string]int64) {
	if sm == nil {
		return
	}
	c := maps.Clone(counts)
	sm.counts.Store(&c)
}

// Counts returns the counts last passed to Update.
func (sm *StateMetrics) Counts() map[string]int64 {
	if sm == nil {
		return nil
	}
	if c := sm.counts.Load(); c != nil {
		return *c
	}
	return nil
}
