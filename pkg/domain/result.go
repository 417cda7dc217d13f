package domain

import "time"

// RunStatus summarizes how much of a run succeeded.
type RunStatus string

const (
	// StatusCompleted means every node completed.
	StatusCompleted RunStatus = "completed"
	// StatusFailed means zero nodes completed.
	StatusFailed RunStatus = "failed"
	// StatusPartial means some nodes completed and some failed or were
	// skipped. A partial run is not an error; the caller decides whether
	// it is worth surfacing.
	StatusPartial RunStatus = "partial"
)

// NodeError is one entry in the run error log.
type NodeError struct {
	NodeID  string    `json:"node_id"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
	At      time.Time `json:"at"`
}

// RunResult is the immutable outcome of one engine run.
type RunResult struct {
	RunID      string         `json:"run_id"`
	Status     RunStatus      `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Completed  []string       `json:"completed"`
	Failed     []string       `json:"failed"`
	Skipped    []string       `json:"skipped"`
	Errors     []NodeError    `json:"errors,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
