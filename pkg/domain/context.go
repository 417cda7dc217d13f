package domain

import "time"

// ExecutionContext is the shared state of a single run.
//
// It is created by the engine at the start of a run and discarded when the
// run ends. The Data map is the only inter-node communication channel: nodes
// read the outputs of their dependencies and write their own under keys of
// their choosing. The baseline engine executes nodes strictly sequentially,
// so same-run access needs no locking; contexts are never shared across runs.
type ExecutionContext struct {
	// RunID identifies the run, e.g. "run-1724497200000000000".
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Data is the shared key/value store visible to all nodes of the run.
	Data map[string]any

	// Errors accumulates node-level failures and skips in occurrence order.
	Errors []NodeError

	// Completed is the set of node IDs that finished successfully.
	Completed map[string]struct{}
}

// NewExecutionContext creates a fresh context for one run, seeding Data with
// a copy of initial.
func NewExecutionContext(runID string, initial map[string]any) *ExecutionContext {
	data := make(map[string]any, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &ExecutionContext{
		RunID:     runID,
		StartedAt: time.Now(),
		Data:      data,
		Completed: make(map[string]struct{}),
	}
}

// IsCompleted reports whether the node with the given ID has completed.
func (ec *ExecutionContext) IsCompleted(nodeID string) bool {
	_, ok := ec.Completed[nodeID]
	return ok
}

// MarkCompleted records a successful node.
func (ec *ExecutionContext) MarkCompleted(nodeID string) {
	ec.Completed[nodeID] = struct{}{}
}

// RecordError appends a node-level error to the run log.
func (ec *ExecutionContext) RecordError(nodeID, message string, kind ErrorKind) {
	ec.Errors = append(ec.Errors, NodeError{
		NodeID:  nodeID,
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	})
}
