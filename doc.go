/*
Package arc is a task-orchestration core for multi-stage research pipelines.

It coordinates five cooperating pieces: a dependency-graph validator and
topological sorter, a sequential execution engine with timeouts and bounded
retries, a budget-aware task selector, a declarative output validator with a
single fix-retry round, and a dual-tier TTL cache.

# Concept

Work is declared as a graph of task nodes. The engine validates the graph,
orders it topologically and runs each node in turn; a node failure never
aborts the run, it marks the node failed and skips its dependents. Optional
work is declared separately as a catalog of candidates scored by value and
cost, and the selector picks the subset that still fits the remaining budget.
Task outputs from language models are checked against declarative schemas and
repaired once through a caller-supplied retry function.

# Usage

Build an Orchestrator, register nodes, and run:

	package main

	import (
		"context"
		"log"

		"github.com/arcfactory/arc"
		"github.com/arcfactory/arc/pkg/domain"
	)

	func main() {
		o := arc.New()
		defer o.Close()

		err := o.Register(
			&domain.TaskNode{
				ID: "fetch",
				Execute: func(ctx context.Context, ec *domain.ExecutionContext) error {
					ec.Data["filing"] = "10-K body"
					return nil
				},
			},
			&domain.TaskNode{
				ID:        "analyze",
				DependsOn: []string{"fetch"},
				Execute: func(ctx context.Context, ec *domain.ExecutionContext) error {
					ec.Data["thesis"] = "summary of " + ec.Data["filing"].(string)
					return nil
				},
			},
		)
		if err != nil {
			log.Fatal(err)
		}

		result, err := o.Run(context.Background(), nil)
		if err != nil {
			log.Fatal(err)
		}
		log.Println(result.Status, result.Data["thesis"])
	}

The schema validator lives in pkg/schema and is usable on its own; the
orchestrator, selector and caches are wired through this package.
*/
package arc
