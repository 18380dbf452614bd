package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/kinetic/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records lifecycle activity as Prometheus metrics.
type Metrics struct {
	transitions   *prometheus.CounterVec
	dispatches    *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	active        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinetic_transitions_total",
				Help: "Total number of lifecycle transitions",
			},
			[]string{"coordinator", "from", "to"},
		),
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinetic_dispatch_total",
				Help: "Total number of animation dispatches",
			},
			[]string{"coordinator", "matched"},
		),
		cancellations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kinetic_cancellations_total",
				Help: "Total number of in-flight animations canceled by a newer trigger",
			},
			[]string{"coordinator"},
		),
		active: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kinetic_active_animations",
				Help: "Number of coordinators currently running an animation",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.dispatches, m.cancellations, m.active)
	}
	return m
}

// Collectors returns every collector, e.g. to register them later.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.transitions, m.dispatches, m.cancellations, m.active}
}

// Hooks returns the lifecycle hooks feeding the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(label(e.EventBase), e.From.String(), e.To.String()).Inc()
			if e.To == domain.StateRunning {
				m.active.Inc()
			}
			if e.From == domain.StateRunning {
				m.active.Dec()
			}
		},
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(label(e.EventBase), strconv.FormatBool(e.Matched)).Inc()
		},
		OnCancel: func(_ context.Context, e *domain.CancelEvent) {
			m.cancellations.WithLabelValues(label(e.EventBase)).Inc()
		},
	}
}

func label(e domain.EventBase) string {
	if e.Name != "" {
		return e.Name
	}
	return e.Coordinator
}
