package engine

import (
	"sync"
	"time"

	"github.com/ashvale/driftsync/core"
)

// World contains all entities and their components using typed stores
type World struct {
	mu        sync.RWMutex
	registry  entityRegistry
	protected map[core.Entity]struct{}

	// Components holds the built-in typed stores, public for direct
	// system access
	Components ComponentStore

	// Resources holds singleton simulation resources (time, telemetry,
	// event queue)
	Resources *Resource

	// allStores tracks every registered store for uniform lifecycle ops
	allStores []AnyStore

	systems     []System
	updateMutex sync.Mutex
}

// NewWorld creates a new ECS world with the built-in component stores
// initialized
func NewWorld() *World {
	w := &World{
		Resources: NewResource(),
		protected: make(map[core.Entity]struct{}),
		systems:   make([]System, 0),
	}
	initComponentStores(w)
	return w
}

// RegisterStore creates and attaches a store for component type T.
// Collaborating packages (presentation, AI, quest content) use this to hang
// their own typed components off the world; the returned pointer is the
// only access path, so component identity is checked at compile time.
func RegisterStore[T any](w *World) *Store[T] {
	s := NewStore[T]()
	w.mu.Lock()
	w.allStores = append(w.allStores, s)
	w.mu.Unlock()
	return s
}

// CreateEntity allocates a new or recycled entity handle
func (w *World) CreateEntity() core.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.create()
}

// Protect marks an entity that DestroyEntity will refuse to destroy.
// Session-critical entities (the local avatar) use this so a buggy sweep
// cannot tear them down mid-session.
func (w *World) Protect(e core.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.registry.isAlive(e) {
		w.protected[e] = struct{}{}
	}
}

// Unprotect lifts the destroy guard
func (w *World) Unprotect(e core.Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.protected, e)
}

// DestroyEntity immediately frees the entity's components and bumps its
// generation so any handle still held elsewhere reads as "not found".
// Destroying a dead, stale or protected handle is a no-op.
func (w *World) DestroyEntity(e core.Entity) bool {
	w.mu.Lock()
	if _, guarded := w.protected[e]; guarded {
		w.mu.Unlock()
		return false
	}
	ok := w.registry.destroy(e)
	stores := w.allStores
	w.mu.Unlock()

	if !ok {
		return false
	}
	for _, s := range stores {
		s.Remove(e)
	}
	return true
}

// IsAlive reports whether the handle refers to a live entity under its
// original generation
func (w *World) IsAlive(e core.Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.isAlive(e)
}

// EntityCount returns the number of live entities
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.liveCount
}

// Clear removes all entities, components and systems-visible state.
// Useful for resetting between sessions and in tests.
func (w *World) Clear() {
	w.mu.Lock()
	w.registry.clear()
	clear(w.protected)
	stores := w.allStores
	w.mu.Unlock()

	for _, s := range stores {
		s.Clear()
	}
}

// AddSystem adds a system to the world and sorts by priority. Systems are
// added once at construction; the resulting order is fixed for the session
// and is itself part of the correctness contract.
func (w *World) AddSystem(system System) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.systems = append(w.systems, system)

	// Sort by priority (bubble sort, small N)
	for i := 0; i < len(w.systems)-1; i++ {
		for j := 0; j < len(w.systems)-i-1; j++ {
			if w.systems[j].Priority() > w.systems[j+1].Priority() {
				w.systems[j], w.systems[j+1] = w.systems[j+1], w.systems[j]
			}
		}
	}
}

// Systems returns a copy of all registered systems in execution order
func (w *World) Systems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]System, len(w.systems))
	copy(result, w.systems)
	return result
}

// Update advances the time resource and runs every system's Update strictly
// in priority order. Systems never run concurrently with each other; the
// tick loop is the sole writer of live transforms.
func (w *World) Update(dt time.Duration) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()

	w.Resources.Time.Advance(dt)

	for _, system := range w.Systems() {
		system.Update(dt)
	}
}

// Render walks systems in the same fixed order and invokes Render on those
// that implement Renderer
func (w *World) Render(surface Surface) {
	w.updateMutex.Lock()
	defer w.updateMutex.Unlock()

	for _, system := range w.Systems() {
		if r, ok := system.(Renderer); ok {
			r.Render(surface)
		}
	}
}
