package engine

import (
	"sort"

	"github.com/ashvale/driftsync/core"
)

// QueryBuilder provides a fluent interface for querying entities based on
// component intersection. The query starts from the smallest participating
// store and filters through the rest, minimizing Has checks.
//
// Two consumption modes exist and the distinction matters:
//
//   - Execute returns a materialized snapshot slice. Use it from systems
//     that may destroy entities mid-iteration (expiry sweeps, despawns).
//   - Each iterates live without materializing the full result. Callers
//     must not destroy entities inside the callback; use Execute for that.
type QueryBuilder struct {
	world    *World
	stores   []QueryableStore
	executed bool
	results  []core.Entity
}

// Query creates a new QueryBuilder.
//
// Example:
//
//	entities := world.Query().
//	    With(world.Components.Transforms).
//	    With(world.Components.Replicas).
//	    Execute()
func (w *World) Query() *QueryBuilder {
	return &QueryBuilder{
		world:  w,
		stores: make([]QueryableStore, 0, 4),
	}
}

// With adds a component store to the query filter. The result contains only
// entities present in ALL specified stores.
//
// Panics if called after Execute().
func (qb *QueryBuilder) With(store QueryableStore) *QueryBuilder {
	if qb.executed {
		panic("query already executed - cannot modify after Execute()")
	}
	qb.stores = append(qb.stores, store)
	return qb
}

// Execute runs the query and returns a snapshot of all matching entities.
// The slice is detached from the stores: destroying entities while ranging
// over it is safe. Repeated calls return the cached result.
func (qb *QueryBuilder) Execute() []core.Entity {
	if qb.executed {
		return qb.results
	}
	qb.executed = true
	qb.results = qb.run()
	return qb.results
}

// Each invokes fn for every live entity matching the query. Entities
// destroyed by an earlier system this tick are skipped via the generation
// check rather than dereferenced. fn must not destroy entities; systems
// that need to destroy mid-iteration use Execute instead.
func (qb *QueryBuilder) Each(fn func(core.Entity)) {
	for _, e := range qb.run() {
		if qb.world.IsAlive(e) {
			fn(e)
		}
	}
}

func (qb *QueryBuilder) run() []core.Entity {
	if len(qb.stores) == 0 {
		return []core.Entity{}
	}

	if len(qb.stores) == 1 {
		return qb.stores[0].All()
	}

	// Smallest store first minimizes the number of Has() checks
	sort.Slice(qb.stores, func(i, j int) bool {
		return qb.stores[i].Count() < qb.stores[j].Count()
	})

	candidates := qb.stores[0].All()

	for i := 1; i < len(qb.stores); i++ {
		store := qb.stores[i]
		filtered := candidates[:0] // Reuse underlying array
		for _, e := range candidates {
			if store.Has(e) {
				filtered = append(filtered, e)
			}
		}
		candidates = filtered

		if len(candidates) == 0 {
			break
		}
	}

	return candidates
}
