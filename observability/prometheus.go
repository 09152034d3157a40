package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports events as Prometheus metrics:
//   - pipeline_events_total{type, source}
//   - pipeline_event_duration_seconds{type} for events carrying a
//     time.Duration under the "duration" key
type PrometheusObserver struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusObserver creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer. Registering twice against the
// same registerer reuses the existing collectors.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pipeline",
		Name:      "events_total",
		Help:      "Total observability events emitted by pipelines",
	}, []string{"type", "source"})

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pipeline",
		Name:      "event_duration_seconds",
		Help:      "Durations reported by completion events",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"type"})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if durations, err = register(reg, durations); err != nil {
		return nil, err
	}

	return &PrometheusObserver{events: events, durations: durations}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("failed to register collector: %w", err)
	}
	return c, nil
}

// Events returns the event counter vector.
func (o *PrometheusObserver) Events() *prometheus.CounterVec {
	return o.events
}

// Durations returns the event duration histogram vector.
func (o *PrometheusObserver) Durations() *prometheus.HistogramVec {
	return o.durations
}

func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Source).Inc()

	if d, ok := event.Duration(); ok {
		o.durations.WithLabelValues(string(event.Type)).Observe(d.Seconds())
	}
}
