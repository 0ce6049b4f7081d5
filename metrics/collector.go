// Package metrics counts executed pipeline stages by subscribing to shell
// events.
package metrics

import (
	"io"

	"github.com/brettbedarf/questsh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "questsh"

// Collector implements questsh.Subscriber and keeps Prometheus counters on a
// private registry.
type Collector struct {
	registry  *prometheus.Registry
	pipelines prometheus.Counter
	stages    *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

var _ questsh.Subscriber = (*Collector)(nil)

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pipelines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_total",
			Help:      "Number of pipelines that executed at least one stage.",
		}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_stages_total",
			Help:      "Executed pipeline stages by command and result.",
		}, []string{"command", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Failed pipeline stages by error kind.",
		}, []string{"kind"}),
	}
	c.registry.MustRegister(c.pipelines, c.stages, c.errors)
	return c
}

// Notify records one stage event.
func (c *Collector) Notify(ev questsh.Event) {
	if ev.Stage == 0 {
		c.pipelines.Inc()
	}
	result := "success"
	if !ev.Succeeded {
		result = "failure"
		c.errors.With(prometheus.Labels{"kind": string(ev.Kind)}).Inc()
	}
	c.stages.With(prometheus.Labels{"command": ev.Command, "result": result}).Inc()
}

// Registry exposes the collector's registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteText writes all counters in the Prometheus text exposition format.
func (c *Collector) WriteText(w io.Writer) error {
	mfs, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
