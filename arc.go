package arc

import (
	"context"
	"log/slog"
	"time"

	"github.com/arcfactory/arc/internal/cache"
	"github.com/arcfactory/arc/internal/engine"
	"github.com/arcfactory/arc/internal/graph"
	"github.com/arcfactory/arc/internal/logging"
	"github.com/arcfactory/arc/internal/metrics"
	"github.com/arcfactory/arc/internal/selector"
	"github.com/arcfactory/arc/pkg/domain"
)

// Version is the library version, overridable at build time with -ldflags.
var Version = "0.1.0"

// Orchestrator is the high-level entry point for the library. It wraps the
// graph registry, execution engine, budget selector and cache manager behind
// one API so consumers wire a single object.
type Orchestrator struct {
	registry *graph.Registry
	engine   *engine.Engine
	selector *selector.Selector
	caches   *cache.Manager

	logger     *slog.Logger
	metrics    *metrics.Collector
	engineOpts []engine.Option
}

// Option defines a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a structured logger shared by all components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics attaches a metrics collector shared by the engine and caches.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) { o.metrics = c }
}

// WithCaches injects a pre-built cache manager, bypassing the defaults.
func WithCaches(m *cache.Manager) Option {
	return func(o *Orchestrator) { o.caches = m }
}

// WithSelector injects a pre-built selector, e.g. one with custom budget
// thresholds.
func WithSelector(s *selector.Selector) Option {
	return func(o *Orchestrator) { o.selector = s }
}

// WithEngineDefaults sets the execution defaults applied to nodes that do not
// declare their own. Zero values keep the engine defaults.
func WithEngineDefaults(baseDelay, timeout time.Duration, maxRetries int) Option {
	return func(o *Orchestrator) {
		if baseDelay > 0 {
			o.engineOpts = append(o.engineOpts, engine.WithBaseDelay(baseDelay))
		}
		if timeout > 0 {
			o.engineOpts = append(o.engineOpts, engine.WithDefaultTimeout(timeout))
		}
		if maxRetries > 0 {
			o.engineOpts = append(o.engineOpts, engine.WithDefaultMaxRetries(maxRetries))
		}
	}
}

// New initializes an Orchestrator. Components not injected through options
// are built with their defaults.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: graph.NewRegistry(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.caches == nil {
		o.caches = cache.NewManager(
			cache.DefaultDataConfig(),
			cache.DefaultOutputConfig(),
			o.metrics,
			cache.WithManagerLogger(o.logger),
		)
	}
	if o.selector == nil {
		o.selector = selector.New(selector.WithLogger(o.logger))
	}

	engineOpts := append([]engine.Option{
		engine.WithLogger(o.logger),
		engine.WithMetrics(o.metrics),
	}, o.engineOpts...)
	o.engine = engine.New(o.registry, engineOpts...)

	return o
}

// Register adds task nodes to the graph. Duplicate IDs are rejected.
func (o *Orchestrator) Register(nodes ...*domain.TaskNode) error {
	return o.registry.AddAll(nodes...)
}

// Validate checks the registered graph for unknown dependencies and cycles
// without executing anything.
func (o *Orchestrator) Validate() graph.Report {
	return o.registry.Validate()
}

// Run executes the registered graph with the given initial data.
func (o *Orchestrator) Run(ctx context.Context, initialData map[string]any) (*domain.RunResult, error) {
	return o.engine.Run(ctx, initialData)
}

// LoadCatalog replaces the selector's candidate catalog.
func (o *Orchestrator) LoadCatalog(catalog []domain.CandidateTask) {
	o.selector.Load(catalog)
}

// LoadCatalogFile reads a YAML candidate catalog into the selector.
func (o *Orchestrator) LoadCatalogFile(path string) error {
	return o.selector.LoadFile(path)
}

// SelectForBudget returns the ranked affordable candidates of a lane.
func (o *Orchestrator) SelectForBudget(lane string, budget domain.BudgetState) []domain.CandidateTask {
	return o.selector.ForBudget(lane, budget)
}

// Selector exposes the underlying selector for filtered queries and stats.
func (o *Orchestrator) Selector() *selector.Selector {
	return o.selector
}

// Caches exposes the underlying cache manager and its two tiers.
func (o *Orchestrator) Caches() *cache.Manager {
	return o.caches
}

// StartPruner begins periodic TTL sweeps of both cache tiers. It is stopped
// by Close or by cancelling the given context.
func (o *Orchestrator) StartPruner(ctx context.Context, interval time.Duration) {
	o.caches.StartPruner(ctx, interval)
}

// Close tears the orchestrator down: the prune loop stops and any cache
// persistence backend is closed.
func (o *Orchestrator) Close() error {
	return o.caches.Close()
}
