package dsl

import (
	"fmt"

	"github.com/arcfactory/arc/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Task creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Task(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.TaskNode{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the graph into task nodes in declaration order. Every node
// must have an execute function.
func (b *Builder) Build() ([]*domain.TaskNode, error) {
	nodes := make([]*domain.TaskNode, 0, len(b.order))
	for _, id := range b.order {
		nb := b.nodes[id]
		if nb.node.Execute == nil {
			return nil, fmt.Errorf("task %q has no execute function", id)
		}
		node := nb.node
		nodes = append(nodes, &node)
	}
	return nodes, nil
}
