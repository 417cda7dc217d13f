// Package ports declares the boundary interfaces the core consumes.
// Adapters (Redis persistence, future stores) implement them; the core never
// imports an adapter directly.
package ports
