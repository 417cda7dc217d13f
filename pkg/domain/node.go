package domain

import (
	"context"
	"time"
)

// ExecuteFunc is the body of a task node. It receives the shared execution
// context of the run and returns an error to signal attempt failure.
//
// The body is opaque to the engine: data retrieval, model calls and
// persistence all happen behind this function. Bodies should observe
// ctx.Done() so per-node timeouts can interrupt them, but cancellation is
// best-effort (see Engine docs).
type ExecuteFunc func(ctx context.Context, ec *ExecutionContext) error

// TaskNode is a unit of work registered with the graph.
//
// Nodes are owned by the caller and must not be mutated after registration.
type TaskNode struct {
	// ID uniquely identifies the node within one graph.
	ID string

	// Name is a human-readable label used in logs and results.
	Name string

	// DependsOn lists the IDs of nodes that must complete before this one.
	DependsOn []string

	// Execute is the node body. Required.
	Execute ExecuteFunc

	// Timeout bounds a single attempt. Zero means no per-node timeout.
	Timeout time.Duration

	// MaxRetries is the total number of attempts (not re-attempts).
	// Zero means the engine default of 1.
	MaxRetries int
}
