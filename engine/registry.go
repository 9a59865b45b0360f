package engine

import "github.com/ashvale/driftsync/core"

// entityRegistry allocates and recycles entity handles. Indexes are reused
// through a free list; each reuse bumps the slot's generation so a handle
// from before the destroy compares unequal and reads as "not found".
type entityRegistry struct {
	generations []uint32
	alive       []bool
	free        []uint32
	liveCount   int
}

func (r *entityRegistry) create() core.Entity {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		r.alive[idx] = true
		r.liveCount++
		return core.Entity{Index: idx, Generation: r.generations[idx]}
	}

	idx := uint32(len(r.generations))
	r.generations = append(r.generations, 1)
	r.alive = append(r.alive, true)
	r.liveCount++
	return core.Entity{Index: idx, Generation: 1}
}

// destroy frees the slot and invalidates every outstanding handle to it.
// Returns false if the handle was already dead or stale.
func (r *entityRegistry) destroy(e core.Entity) bool {
	if !r.isAlive(e) {
		return false
	}
	r.alive[e.Index] = false
	r.generations[e.Index]++
	r.free = append(r.free, e.Index)
	r.liveCount--
	return true
}

func (r *entityRegistry) isAlive(e core.Entity) bool {
	if e.IsNil() || int(e.Index) >= len(r.generations) {
		return false
	}
	return r.alive[e.Index] && r.generations[e.Index] == e.Generation
}

func (r *entityRegistry) clear() {
	r.generations = r.generations[:0]
	r.alive = r.alive[:0]
	r.free = r.free[:0]
	r.liveCount = 0
}
