package dsl

import (
	"time"

	"github.com/arcfactory/arc/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a task node.
type NodeBuilder struct {
	node    domain.TaskNode
	builder *Builder
}

// Name sets a human-readable name for the task.
func (n *NodeBuilder) Name(name string) *NodeBuilder {
	n.node.Name = name
	return n
}

// After declares dependencies; the task runs only once they all complete.
func (n *NodeBuilder) After(ids ...string) *NodeBuilder {
	n.node.DependsOn = append(n.node.DependsOn, ids...)
	return n
}

// Timeout bounds each execution attempt.
func (n *NodeBuilder) Timeout(d time.Duration) *NodeBuilder {
	n.node.Timeout = d
	return n
}

// Retries sets the total attempt count for the task.
func (n *NodeBuilder) Retries(attempts int) *NodeBuilder {
	n.node.MaxRetries = attempts
	return n
}

// Do sets the task body.
func (n *NodeBuilder) Do(fn domain.ExecuteFunc) *NodeBuilder {
	n.node.Execute = fn
	return n
}

// Task creates or returns another node on the same builder, allowing
// chained declarations.
func (n *NodeBuilder) Task(id string) *NodeBuilder {
	return n.builder.Task(id)
}

// Build compiles the whole graph this node belongs to.
func (n *NodeBuilder) Build() ([]*domain.TaskNode, error) {
	return n.builder.Build()
}

// Node returns the underlying task node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Node() domain.TaskNode {
	return n.node
}
