// Package dsl offers a fluent builder for task graphs, as an alternative to
// declaring domain.TaskNode literals:
//
//	nodes, err := dsl.New().
//		Task("fetch").Do(fetchFiling).
//		Task("analyze").After("fetch").Timeout(2 * time.Minute).Do(analyze).
//		Task("report").After("analyze").Retries(2).Do(report).
//		Build()
//
// The resulting nodes feed arc.Orchestrator.Register unchanged.
package dsl
