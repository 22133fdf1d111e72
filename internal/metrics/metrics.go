// SPDX-License-Identifier: MPL-2.0

// Package metrics counts worker launch command construction with Prometheus.
//
// A Collector owns its registry so that several launchers (and tests) never
// collide on the default registerer. All methods are safe on a nil
// *Collector, which disables recording.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "pyleus_launch"

// Collector holds the launch counters.
type Collector struct {
	registry *prometheus.Registry

	commandsBuilt     *prometheus.CounterVec
	interpreters      *prometheus.CounterVec
	portableRejected  *prometheus.CounterVec
	overrideFailures  *prometheus.CounterVec
	compositionErrors prometheus.Counter
}

// NewCollector creates a Collector registered on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		commandsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_built_total",
				Help:      "Platform commands built, by launch family",
			},
			[]string{"family"},
		),
		interpreters: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interpreter_resolutions_total",
				Help:      "Interpreter resolutions, by chosen source",
			},
			[]string{"source"},
		),
		portableRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "portable_interpreter_rejected_total",
				Help:      "Portable interpreter candidates that fell back to the default, by reason",
			},
			[]string{"reason"},
		),
		overrideFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "command_override_failures_total",
				Help:      "Deferred command overrides the host refused, by component kind",
			},
			[]string{"kind"},
		),
		compositionErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "composition_errors_total",
				Help:      "Module invocations rejected at composition time",
			},
		),
	}

	c.registry.MustRegister(
		c.commandsBuilt,
		c.interpreters,
		c.portableRejected,
		c.overrideFailures,
		c.compositionErrors,
	)
	return c
}

// Registry exposes the underlying registry for scraping.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// CommandBuilt records one platform command for family.
func (c *Collector) CommandBuilt(family string) {
	if c == nil {
		return
	}
	c.commandsBuilt.WithLabelValues(family).Inc()
}

// InterpreterResolved records which interpreter source a launch used.
func (c *Collector) InterpreterResolved(source string) {
	if c == nil {
		return
	}
	c.interpreters.WithLabelValues(source).Inc()
}

// PortableRejected records why a portable interpreter candidate was ignored.
func (c *Collector) PortableRejected(reason string) {
	if c == nil {
		return
	}
	c.portableRejected.WithLabelValues(reason).Inc()
}

// OverrideFailed records a refused deferred command override.
func (c *Collector) OverrideFailed(kind string) {
	if c == nil {
		return
	}
	c.overrideFailures.WithLabelValues(kind).Inc()
}

// CompositionFailed records a rejected module invocation.
func (c *Collector) CompositionFailed() {
	if c == nil {
		return
	}
	c.compositionErrors.Inc()
}

// WriteText writes every gathered metric family in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	if c == nil {
		return nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Totals sums every counter family across its label values, keyed by the
// fully qualified metric name.
func (c *Collector) Totals() (map[string]float64, error) {
	if c == nil {
		return nil, nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	totals := make(map[string]float64, len(families))
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		totals[mf.GetName()] = counterSum(mf)
	}
	return totals, nil
}

func counterSum(mf *dto.MetricFamily) float64 {
	var sum float64
	for _, m := range mf.GetMetric() {
		sum += m.GetCounter().GetValue()
	}
	return sum
}
