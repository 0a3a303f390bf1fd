// Package metrics provides the thin measurement layer used across the
// protocol client. Call sites record counters and gauges through package
// functions grouped by subsystem ("net", "auth", ...); the backing store is
// a process-local prometheus registry so an embedding application can expose
// everything through its own /metrics endpoint.
package metrics

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var _registry = newMetricRegistry()

// metricRegistry lazily creates prometheus collectors keyed by group and
// name. Dimension keys are fixed at first use per metric, matching the
// prometheus label model.
type metricRegistry struct {
	mu       sync.Mutex
	reg      *prometheus.Registry
	counters map[string]*prometheus.CounterVec
	gauges   map[string]*prometheus.GaugeVec
}

func newMetricRegistry() *metricRegistry {
	return &metricRegistry{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec),
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

// Registry returns the prometheus registry holding all client metrics.
// Embedding applications register it with their metrics HTTP handler.
func Registry() *prometheus.Registry {
	return _registry.reg
}

func metricKey(group, name string) string {
	return group + "_" + name
}

func dimKeys(dims Dimension) []string {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *metricRegistry) counter(group, name string, dims Dimension) prometheus.Counter {
	key := metricKey(group, name)

	r.mu.Lock()
	vec, ok := r.counters[key]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authlink",
			Subsystem: group,
			Name:      strings.ReplaceAll(name, ".", "_"),
		}, dimKeys(dims))
		r.reg.MustRegister(vec)
		r.counters[key] = vec
	}
	r.mu.Unlock()

	c, err := vec.GetMetricWith(prometheus.Labels(dims))
	if err != nil {
		// dimension keys drifted from first registration; drop the sample
		return nil
	}
	return c
}

func (r *metricRegistry) gauge(group, name string, dims Dimension) prometheus.Gauge {
	key := metricKey(group, name)

	r.mu.Lock()
	vec, ok := r.gauges[key]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "authlink",
			Subsystem: group,
			Name:      strings.ReplaceAll(name, ".", "_"),
		}, dimKeys(dims))
		r.reg.MustRegister(vec)
		r.gauges[key] = vec
	}
	r.mu.Unlock()

	g, err := vec.GetMetricWith(prometheus.Labels(dims))
	if err != nil {
		return nil
	}
	return g
}

// IncrCounterWithGroup increments a counter within a subsystem group.
func IncrCounterWithGroup(group, name string, v Value) {
	if c := _registry.counter(group, name, nil); c != nil {
		c.Add(float64(v))
	}
}

// IncrCounterWithDimGroup increments a counter with dimensions within a
// subsystem group. Dimension keys must stay stable for a given metric.
func IncrCounterWithDimGroup(group, name string, v Value, dims Dimension) {
	if c := _registry.counter(group, name, dims); c != nil {
		c.Add(float64(v))
	}
}

// UpdateGaugeWithGroup sets a gauge within a subsystem group.
func UpdateGaugeWithGroup(group, name string, v Value) {
	if g := _registry.gauge(group, name, nil); g != nil {
		g.Set(float64(v))
	}
}

// UpdateGaugeWithDimGroup sets a gauge with dimensions within a subsystem
// group.
func UpdateGaugeWithDimGroup(group, name string, v Value, dims Dimension) {
	if g := _registry.gauge(group, name, dims); g != nil {
		g.Set(float64(v))
	}
}
