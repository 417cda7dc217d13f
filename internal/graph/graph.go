// Package graph builds and validates the task dependency DAG and produces
// the execution order the engine walks.
package graph

import (
	"fmt"
	"strings"

	"github.com/arcfactory/arc/pkg/domain"
)

// Registry holds registered task nodes in insertion order.
//
// Insertion order is the deterministic tie-break for the execution order:
// for a fixed registration sequence, ExecutionOrder always returns the same
// permutation.
type Registry struct {
	nodes map[string]*domain.TaskNode
	order []string
}

// NewRegistry creates an empty node registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*domain.TaskNode)}
}

// Add registers a node. The node must have an ID and an Execute body, and
// the ID must not already be registered.
func (r *Registry) Add(node *domain.TaskNode) error {
	if node == nil || node.ID == "" {
		return fmt.Errorf("node id is required")
	}
	if node.Execute == nil {
		return fmt.Errorf("node %q: execute body is required", node.ID)
	}
	if _, exists := r.nodes[node.ID]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateNode, node.ID)
	}
	r.nodes[node.ID] = node
	r.order = append(r.order, node.ID)
	return nil
}

// AddAll registers nodes in order, stopping at the first failure.
func (r *Registry) AddAll(nodes ...*domain.TaskNode) error {
	for _, n := range nodes {
		if err := r.Add(n); err != nil {
			return err
		}
	}
	return nil
}

// Node returns a registered node by ID.
func (r *Registry) Node(id string) (*domain.TaskNode, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int { return len(r.order) }

// IDs returns the node IDs in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Report is the outcome of Validate.
type Report struct {
	Valid  bool
	Errors []string
}

// Validate checks that every declared dependency is registered and that the
// graph is acyclic. All problems found are reported, not just the first.
func (r *Registry) Validate() Report {
	var errs []string

	for _, id := range r.order {
		for _, dep := range r.nodes[id].DependsOn {
			if _, ok := r.nodes[dep]; !ok {
				errs = append(errs, fmt.Sprintf("node %q depends on unknown node %q", id, dep))
			}
		}
	}

	if cycle := r.findCycle(); cycle != nil {
		errs = append(errs, fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	return Report{Valid: len(errs) == 0, Errors: errs}
}

// dfsFrame is one level of the explicit DFS stack. next is the index of the
// next dependency to descend into.
type dfsFrame struct {
	id   string
	next int
}

// ExecutionOrder returns a total order in which every dependency precedes
// its dependents. The graph must validate first.
//
// The order is a post-order DFS over nodes in registration order, so
// independent nodes keep their relative registration position. The DFS uses
// an explicit stack; order depth is bounded by node count, not by the native
// call stack.
func (r *Registry) ExecutionOrder() ([]string, error) {
	if rep := r.Validate(); !rep.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphInvalid, strings.Join(rep.Errors, "; "))
	}

	visited := make(map[string]bool, len(r.nodes))
	out := make([]string, 0, len(r.nodes))

	for _, root := range r.order {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack := []dfsFrame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := r.nodes[top.id].DependsOn

			descended := false
			for top.next < len(deps) {
				dep := deps[top.next]
				top.next++
				if !visited[dep] {
					visited[dep] = true
					stack = append(stack, dfsFrame{id: dep})
					descended = true
					break
				}
			}
			if descended {
				continue
			}

			// All dependencies emitted; emit the node itself.
			out = append(out, top.id)
			stack = stack[:len(stack)-1]
		}
	}
	return out, nil
}

// findCycle runs an iterative three-color DFS and returns one cycle as a
// witness path in dependency direction, or nil if the graph is acyclic.
// Unknown dependencies are ignored here; Validate reports them separately.
func (r *Registry) findCycle() []string {
	const (
		white = iota // unvisited
		gray         // on the current DFS stack
		black        // fully explored
	)

	color := make(map[string]int, len(r.nodes))

	for _, root := range r.order {
		if color[root] != white {
			continue
		}
		color[root] = gray
		stack := []dfsFrame{{id: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := r.nodes[top.id].DependsOn

			descended := false
			for top.next < len(deps) {
				dep := deps[top.next]
				top.next++
				if _, ok := r.nodes[dep]; !ok {
					continue
				}
				switch color[dep] {
				case white:
					color[dep] = gray
					stack = append(stack, dfsFrame{id: dep})
					descended = true
				case gray:
					// dep is still on the stack: close the loop from
					// its frame down to the current one.
					start := 0
					for i := range stack {
						if stack[i].id == dep {
							start = i
							break
						}
					}
					path := make([]string, 0, len(stack)-start+1)
					for _, f := range stack[start:] {
						path = append(path, f.id)
					}
					return append(path, dep)
				}
				if descended {
					break
				}
			}
			if descended {
				continue
			}

			color[top.id] = black
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}
