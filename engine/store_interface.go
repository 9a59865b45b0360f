package engine

import "github.com/ashvale/driftsync/core"

// AnyStore provides type-erased operations for lifecycle management.
// It allows World to manage all stores uniformly for operations like
// entity destruction without knowing the concrete component type.
type AnyStore interface {
	Remove(e core.Entity)
	Has(e core.Entity) bool
	Count() int
	Clear()
}

// QueryableStore extends AnyStore with the operations the query builder
// needs to intersect component sets
type QueryableStore interface {
	AnyStore

	// All returns a copy of all entities that have this component type
	All() []core.Entity
}
