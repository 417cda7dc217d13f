// Package engine runs a validated task graph in topological order with
// per-node timeouts, bounded retries and dependency-failure propagation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/arcfactory/arc/internal/graph"
	"github.com/arcfactory/arc/internal/logging"
	"github.com/arcfactory/arc/internal/metrics"
	"github.com/arcfactory/arc/pkg/domain"
)

const (
	// DefaultBaseDelay is the first backoff interval between failed
	// attempts; attempt n waits base * 2^(n-1).
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultMaxRetries is the total attempt count when a node does not
	// set its own.
	DefaultMaxRetries = 1
)

// Engine executes the nodes of a Registry strictly sequentially.
//
// Nodes run one at a time in topological order; retries sleep through their
// backoff instead of advancing to sibling nodes, which bounds concurrent
// pressure on external APIs at the cost of throughput. Multiple runs may
// execute concurrently, each with its own ExecutionContext.
type Engine struct {
	registry *graph.Registry

	baseDelay      time.Duration
	defaultTimeout time.Duration
	maxRetries     int

	logger    *slog.Logger
	metrics   *metrics.Collector
	sleep     func(time.Duration)
	runIDFunc func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithBaseDelay sets the initial retry backoff interval.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

// WithDefaultTimeout sets a per-attempt timeout applied to nodes that do not
// declare their own. Zero leaves attempts unbounded.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Engine) { e.defaultTimeout = d }
}

// WithDefaultMaxRetries sets the attempt count for nodes that do not declare
// their own.
func WithDefaultMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithRunIDFunc sets the run ID generator, letting callers supply their own
// identifiers (for correlation with an outer request, say). Defaults to
// run-<unix-nano>.
func WithRunIDFunc(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.runIDFunc = fn
		}
	}
}

// New creates an Engine over the given registry.
func New(registry *graph.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:   registry,
		baseDelay:  DefaultBaseDelay,
		maxRetries: DefaultMaxRetries,
		logger:     logging.NewNop(),
		sleep:      time.Sleep,
		runIDFunc: func() string {
			return "run-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the graph and returns the run result.
//
// An invalid graph is a configuration error: Run returns
// domain.ErrGraphInvalid before executing anything. A node's terminal
// failure never aborts the run; dependents are skipped and the result status
// reflects how much succeeded. Run only returns a non-nil error for
// configuration problems or parent context cancellation.
func (e *Engine) Run(ctx context.Context, initialData map[string]any) (*domain.RunResult, error) {
	order, err := e.registry.ExecutionOrder()
	if err != nil {
		return nil, err
	}

	runID := e.runIDFunc()
	ec := domain.NewExecutionContext(runID, initialData)
	log := e.logger.With("run_id", runID)
	log.Info("run started", "nodes", len(order))

	var failed, skipped []string

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run %s aborted: %w", runID, err)
		}

		node, _ := e.registry.Node(id)

		if missing := e.missingDependency(node, ec); missing != "" {
			skipped = append(skipped, id)
			ec.RecordError(id, fmt.Sprintf("skipped due to failed dependency %q", missing), domain.ErrorKindDependency)
			e.metrics.NodeSkipped()
			log.Warn("node skipped", "node", id, "dependency", missing)
			continue
		}

		if e.runNode(ctx, node, ec, log) {
			ec.MarkCompleted(id)
		} else {
			failed = append(failed, id)
		}
	}

	completed := make([]string, 0, len(ec.Completed))
	for _, id := range order {
		if ec.IsCompleted(id) {
			completed = append(completed, id)
		}
	}

	result := &domain.RunResult{
		RunID:      runID,
		Status:     runStatus(len(order), len(completed), len(failed), len(skipped)),
		StartedAt:  ec.StartedAt,
		FinishedAt: time.Now(),
		Completed:  completed,
		Failed:     failed,
		Skipped:    skipped,
		Errors:     ec.Errors,
		Data:       ec.Data,
	}

	e.metrics.RunFinished(result.Status)
	log.Info("run finished",
		"status", result.Status,
		"completed", len(completed),
		"failed", len(failed),
		"skipped", len(skipped),
		"duration", result.Duration(),
	)
	return result, nil
}

// missingDependency returns the first dependency of node that has not
// completed, or "" when all have.
func (e *Engine) missingDependency(node *domain.TaskNode, ec *domain.ExecutionContext) string {
	for _, dep := range node.DependsOn {
		if !ec.IsCompleted(dep) {
			return dep
		}
	}
	return ""
}

// runNode attempts one node up to its retry budget. Returns true on success.
func (e *Engine) runNode(ctx context.Context, node *domain.TaskNode, ec *domain.ExecutionContext, log *slog.Logger) bool {
	maxAttempts := node.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = e.maxRetries
	}

	var lastErr error
	var lastKind domain.ErrorKind

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			e.metrics.NodeRetried()
		}
		started := time.Now()
		err, timedOut := e.attempt(ctx, node, ec)
		if err == nil {
			e.metrics.NodeCompleted(time.Since(started).Seconds())
			log.Debug("node completed", "node", node.ID, "attempt", attempt, "duration", time.Since(started))
			return true
		}

		lastErr = err
		lastKind = domain.ErrorKindExecution
		if timedOut {
			lastKind = domain.ErrorKindTimeout
		}
		log.Warn("node attempt failed",
			"node", node.ID,
			"attempt", attempt,
			"of", maxAttempts,
			"error", err,
		)

		if attempt < maxAttempts {
			// Exponential backoff: base * 2^(attempt-1).
			e.sleep(e.baseDelay * (1 << (attempt - 1)))
		}
	}

	ec.RecordError(node.ID, lastErr.Error(), lastKind)
	e.metrics.NodeFailed()
	log.Error("node failed", "node", node.ID, "error", lastErr)
	return false
}

// attempt runs a single execution attempt, racing the body against the
// node's timeout when one is configured.
//
// Timeout cancellation is best-effort: the attempt's context is cancelled
// and the result abandoned, but an in-flight downstream call inside the body
// is not forcibly interrupted. An abandoned body must not assume it still
// owns the run; it may keep writing to the shared data map until it observes
// ctx.Done.
func (e *Engine) attempt(ctx context.Context, node *domain.TaskNode, ec *domain.ExecutionContext) (err error, timedOut bool) {
	timeout := node.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	if timeout <= 0 {
		return node.Execute(ctx, ec), false
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- node.Execute(attemptCtx, ec)
	}()

	select {
	case err := <-done:
		return err, false
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err(), false
		}
		return fmt.Errorf("node %q timed out after %s", node.ID, timeout), true
	}
}

// runStatus derives the terminal status from node counts.
func runStatus(total, completed, failed, skipped int) domain.RunStatus {
	switch {
	case failed == 0 && skipped == 0:
		return domain.StatusCompleted
	case completed == 0 && total > 0:
		return domain.StatusFailed
	default:
		return domain.StatusPartial
	}
}
