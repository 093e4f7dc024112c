// Package prometheus provides a Prometheus-based stats collector.
//
// sieve runs as a batch job, so besides registering metrics for scraping the
// collector can dump its registry to a node_exporter textfile.
package prometheus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/sieve/internal/stats"
)

// ErrNotGatherer is returned by WriteTextfile when the registry cannot be
// gathered from.
var ErrNotGatherer = errors.New("prometheus: registry is not a gatherer")

// help describes the metrics sieve emits. Unknown names fall back to the name.
var help = map[string]string{
	stats.MetricGamesScanned:      "Games walked by the scanner.",
	stats.MetricMatches:           "Games in which a matching position was found.",
	stats.MetricPositionsChecked:  "Positions compared against the material criteria.",
	stats.MetricEvaluations:       "Positions evaluated by the engine.",
	stats.MetricEvalSeconds:       "Wall time of a single engine evaluation.",
	stats.MetricEngineCacheHits:   "Evaluations served from the engine cache.",
	stats.MetricEngineCacheMisses: "Evaluations that reached the engine.",
	stats.MetricEngineCacheSize:   "Entries held in the engine cache.",
	stats.MetricArchiveFetches:    "Requests made to the game archive.",
	stats.MetricGamesFetched:      "Games returned by the last archive fetch.",
}

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: helpFor(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: helpFor(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    helpFor(name),
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		})
	})
	histogram.Observe(value)
}

// WriteTextfile writes every metric in the registry to path in the text
// exposition format. The write is atomic.
func (c *Collector) WriteTextfile(path string) error {
	g, ok := c.registry.(prometheus.Gatherer)
	if !ok {
		return ErrNotGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func getOrCreate[T prometheus.Collector](c *Collector, m map[string]T, name string, create func() T) T {
	c.mu.RLock()
	metric, ok := m[name]
	c.mu.RUnlock()
	if ok {
		return metric
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if metric, ok = m[name]; ok {
		return metric
	}

	metric = create()
	if err := c.registry.Register(metric); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				metric = existing
			}
		}
		// Otherwise keep the unregistered metric so callers still work.
	}
	m[name] = metric
	return metric
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
