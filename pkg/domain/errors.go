package domain

import "errors"

// ErrGraphInvalid is returned when a run is attempted on a graph that fails
// validation. It is a configuration error, not a run failure.
var ErrGraphInvalid = errors.New("graph validation failed")

// ErrNodeNotFound is returned when a node ID is not registered.
var ErrNodeNotFound = errors.New("node not found")

// ErrDuplicateNode is returned when a node ID is registered twice.
var ErrDuplicateNode = errors.New("duplicate node id")

// ErrEntryNotFound is returned by persistent output stores when a key does
// not exist (or has expired).
var ErrEntryNotFound = errors.New("entry not found")

// ErrorKind classifies a node-level failure in the run error log.
type ErrorKind string

const (
	// ErrorKindExecution is a genuine body failure after all attempts.
	ErrorKindExecution ErrorKind = "execution"
	// ErrorKindTimeout is an attempt that exceeded the node timeout.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindDependency marks a node skipped because an upstream node
	// did not complete. Skips are never retried.
	ErrorKindDependency ErrorKind = "dependency"
)
