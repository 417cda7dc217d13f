// Package domain defines the core data model of the orchestration engine:
// task nodes, run state, run results, catalog candidates and budget state.
//
// Types here carry no behavior beyond derived accessors; the algorithms that
// operate on them live in internal/graph, internal/engine, internal/selector
// and internal/cache.
package domain
