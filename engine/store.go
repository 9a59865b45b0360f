package engine

import (
	"sync"

	"github.com/ashvale/driftsync/core"
)

// Store is a generic container for a specific component type T.
// Uses sparse set pattern: a map for lookup plus a dense entity slice for
// cache-friendly iteration. Guarded by RWMutex because staging stores are
// written from the network goroutine while the tick loop reads.
type Store[T any] struct {
	mu         sync.RWMutex
	components map[core.Entity]T
	entities   []core.Entity
}

// NewStore creates a new component store for type T
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[core.Entity]T),
		entities:   make([]core.Entity, 0, 64),
	}
}

// Set inserts or updates a component for an entity. Adding a component a
// second time overwrites: last write wins.
func (s *Store[T]) Set(e core.Entity, val T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// Get retrieves a component for an entity
func (s *Store[T]) Get(e core.Entity) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.components[e]
	return val, ok
}

// Remove deletes a component from an entity. Removing a component the
// entity does not have is a no-op.
func (s *Store[T]) Remove(e core.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.components[e]; exists {
		delete(s.components, e)
		for i, entity := range s.entities {
			if entity == e {
				s.entities[i] = s.entities[len(s.entities)-1]
				s.entities = s.entities[:len(s.entities)-1]
				break
			}
		}
	}
}

// Has checks if entity has this component
func (s *Store[T]) Has(e core.Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.components[e]
	return ok
}

// All returns a copy of all entities with this component type
func (s *Store[T]) All() []core.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]core.Entity, len(s.entities))
	copy(result, s.entities)
	return result
}

// Count returns the number of entities with this component
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Clear removes all components from this store
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components = make(map[core.Entity]T)
	s.entities = s.entities[:0]
}

// RemoveBatch deletes multiple entities in a single pass - O(n+m) vs O(n*m)
// for individual removes
func (s *Store[T]) RemoveBatch(entities []core.Entity) {
	if len(entities) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.components) == 0 {
		return
	}

	toRemove := make(map[core.Entity]struct{}, len(entities))
	for _, e := range entities {
		if _, exists := s.components[e]; exists {
			toRemove[e] = struct{}{}
			delete(s.components, e)
		}
	}

	if len(toRemove) == 0 {
		return
	}

	writeIdx := 0
	for _, e := range s.entities {
		if _, remove := toRemove[e]; !remove {
			s.entities[writeIdx] = e
			writeIdx++
		}
	}
	s.entities = s.entities[:writeIdx]
}
