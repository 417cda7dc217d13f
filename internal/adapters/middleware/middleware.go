// Package middleware wraps a ports.OutputStore with cross-cutting behavior
// applied to persisted task outputs: encryption at rest and masking of
// sensitive fields.
package middleware

import "github.com/arcfactory/arc/pkg/ports"

// Middleware allows wrapping an OutputStore to add behavior.
type Middleware func(ports.OutputStore) ports.OutputStore

// Chain applies middlewares to a store, first in the list outermost.
func Chain(store ports.OutputStore, mws ...Middleware) ports.OutputStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
