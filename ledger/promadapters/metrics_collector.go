// Package promadapters implements the ledger MetricsCollector with the Prometheus client.
//
// Instruments are created on first use. The label names of an instrument are fixed by
// the first call that records it; later calls contribute values for exactly those names.
package promadapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// MetricsCollector implements ledger.ContextualMetricsCollector:
//   - RecordDuration -> HistogramVec, observed in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
type MetricsCollector struct {
	registerer prometheus.Registerer
	namespace  string
	buckets    []float64

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	labelNames map[string][]string
}

// Option configures a MetricsCollector.
type Option func(*MetricsCollector)

// WithNamespace prefixes every metric name with namespace and an underscore.
func WithNamespace(namespace string) Option {
	return func(m *MetricsCollector) {
		m.namespace = namespace
	}
}

// WithBuckets overrides the histogram buckets (seconds).
func WithBuckets(buckets []float64) Option {
	return func(m *MetricsCollector) {
		m.buckets = buckets
	}
}

// NewMetricsCollector creates a collector that registers its instruments with registerer.
func NewMetricsCollector(registerer prometheus.Registerer, options ...Option) *MetricsCollector {
	m := &MetricsCollector{
		registerer: registerer,
		buckets:    prometheus.DefBuckets,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		labelNames: make(map[string][]string),
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// RecordDuration observes duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	histogram := m.histogram(metric, labels)
	if histogram == nil {
		return
	}

	histogram.With(m.labelValues(metric, labels)).Observe(duration.Seconds())
}

// IncrementCounter adds one to the counter.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	counter := m.counter(metric, labels)
	if counter == nil {
		return
	}

	counter.With(m.labelValues(metric, labels)).Inc()
}

// RecordValue sets the gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	gauge := m.gauge(metric, labels)
	if gauge == nil {
		return
	}

	gauge.With(m.labelValues(metric, labels)).Set(value)
}

// RecordDurationContext implements ledger.ContextualMetricsCollector.
// Prometheus has no notion of context, so ctx is ignored.
func (m *MetricsCollector) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	m.RecordDuration(metric, duration, labels)
}

// IncrementCounterContext implements ledger.ContextualMetricsCollector.
func (m *MetricsCollector) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	m.IncrementCounter(metric, labels)
}

// RecordValueContext implements ledger.ContextualMetricsCollector.
func (m *MetricsCollector) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	m.RecordValue(metric, value, labels)
}

func (m *MetricsCollector) histogram(metric string, labels map[string]string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[metric]; ok {
		return h
	}

	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Duration of " + metric + ".",
		Buckets:   m.buckets,
	}, m.registerLabelNames(metric, labels))

	registered, ok := m.register(h).(*prometheus.HistogramVec)
	if !ok {
		return nil
	}

	m.histograms[metric] = registered

	return registered
}

func (m *MetricsCollector) counter(metric string, labels map[string]string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[metric]; ok {
		return c
	}

	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Count of " + metric + ".",
	}, m.registerLabelNames(metric, labels))

	registered, ok := m.register(c).(*prometheus.CounterVec)
	if !ok {
		return nil
	}

	m.counters[metric] = registered

	return registered
}

func (m *MetricsCollector) gauge(metric string, labels map[string]string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[metric]; ok {
		return g
	}

	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      metric,
		Help:      "Current value of " + metric + ".",
	}, m.registerLabelNames(metric, labels))

	registered, ok := m.register(g).(*prometheus.GaugeVec)
	if !ok {
		return nil
	}

	m.gauges[metric] = registered

	return registered
}

// register returns the collector that is actually registered under the name,
// or nil if registration failed for another reason (e.g. conflicting label names).
func (m *MetricsCollector) register(c prometheus.Collector) prometheus.Collector {
	err := m.registerer.Register(c)
	if err == nil {
		return c
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		return alreadyRegistered.ExistingCollector
	}

	return nil
}

// registerLabelNames must be called with mu held.
func (m *MetricsCollector) registerLabelNames(metric string, labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)
	m.labelNames[metric] = names

	return names
}

func (m *MetricsCollector) labelValues(metric string, labels map[string]string) prometheus.Labels {
	m.mu.Lock()
	names := m.labelNames[metric]
	m.mu.Unlock()

	values := make(prometheus.Labels, len(names))
	for _, name := range names {
		values[name] = labels[name]
	}

	return values
}

var _ ledger.ContextualMetricsCollector = (*MetricsCollector)(nil)
