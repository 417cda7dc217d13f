// Package metrics collects Prometheus metrics for runs, nodes and the two
// cache tiers.
//
// The collector is constructed explicitly and registered on a caller-supplied
// registerer, never on package import, so tests can use isolated registries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arcfactory/arc/pkg/domain"
)

// Collector holds the engine and cache metrics.
type Collector struct {
	nodesCompleted prometheus.Counter
	nodesFailed    prometheus.Counter
	nodesSkipped   prometheus.Counter
	nodeRetries    prometheus.Counter
	nodeDuration   prometheus.Histogram

	runsByStatus *prometheus.CounterVec

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheEntries   *prometheus.GaugeVec
}

// NewCollector creates and registers the metric set. Pass nil to register on
// the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		nodesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arc_nodes_completed_total",
			Help: "Total number of task nodes completed successfully",
		}),
		nodesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arc_nodes_failed_total",
			Help: "Total number of task nodes that failed after all attempts",
		}),
		nodesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arc_nodes_skipped_total",
			Help: "Total number of task nodes skipped due to failed dependencies",
		}),
		nodeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arc_node_retries_total",
			Help: "Total number of retry attempts across all nodes",
		}),
		nodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arc_node_duration_seconds",
			Help:    "Wall time per node attempt in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		runsByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arc_runs_total",
			Help: "Total runs by terminal status",
		}, []string{"status"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arc_cache_hits_total",
			Help: "Cache hits per tier",
		}, []string{"tier"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arc_cache_misses_total",
			Help: "Cache misses per tier",
		}, []string{"tier"}),
		cacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arc_cache_evictions_total",
			Help: "Cache evictions per tier",
		}, []string{"tier"}),
		cacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "arc_cache_entries",
			Help: "Current entry count per tier",
		}, []string{"tier"}),
	}

	reg.MustRegister(
		c.nodesCompleted, c.nodesFailed, c.nodesSkipped, c.nodeRetries,
		c.nodeDuration, c.runsByStatus,
		c.cacheHits, c.cacheMisses, c.cacheEvictions, c.cacheEntries,
	)
	return c
}

// NodeCompleted records a successful node and its attempt duration.
func (c *Collector) NodeCompleted(seconds float64) {
	if c == nil {
		return
	}
	c.nodesCompleted.Inc()
	c.nodeDuration.Observe(seconds)
}

// NodeFailed records a terminal node failure.
func (c *Collector) NodeFailed() {
	if c == nil {
		return
	}
	c.nodesFailed.Inc()
}

// NodeSkipped records a dependency skip.
func (c *Collector) NodeSkipped() {
	if c == nil {
		return
	}
	c.nodesSkipped.Inc()
}

// NodeRetried records one retry attempt.
func (c *Collector) NodeRetried() {
	if c == nil {
		return
	}
	c.nodeRetries.Inc()
}

// RunFinished records a terminal run status.
func (c *Collector) RunFinished(status domain.RunStatus) {
	if c == nil {
		return
	}
	c.runsByStatus.WithLabelValues(string(status)).Inc()
}

// CacheHit records a hit on the given tier.
func (c *Collector) CacheHit(tier string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(tier).Inc()
}

// CacheMiss records a miss on the given tier.
func (c *Collector) CacheMiss(tier string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(tier).Inc()
}

// CacheEviction records an eviction on the given tier.
func (c *Collector) CacheEviction(tier string) {
	if c == nil {
		return
	}
	c.cacheEvictions.WithLabelValues(tier).Inc()
}

// CacheSize sets the current entry count gauge for the tier.
func (c *Collector) CacheSize(tier string, entries int) {
	if c == nil {
		return
	}
	c.cacheEntries.WithLabelValues(tier).Set(float64(entries))
}
