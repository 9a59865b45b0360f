package engine

import "github.com/ashvale/driftsync/core"

// EntityBuilder provides a fluent, type-safe interface for constructing
// entities with components. The entity ID is reserved upfront; components
// are attached through With and the finished handle returned by Build.
//
//	avatar := With(
//	    With(world.NewEntity(), world.Components.Transforms, pose),
//	    world.Components.Authorities, auth,
//	).Build()
type EntityBuilder struct {
	world  *World
	entity core.Entity
	built  bool
}

// NewEntity creates a new EntityBuilder with a reserved entity handle
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{
		world:  w,
		entity: w.CreateEntity(),
	}
}

// With adds a component of type T to the entity being built. The store type
// must match the component type, so mismatches fail at compile time.
//
// Panics if called after Build().
func With[T any](eb *EntityBuilder, store *Store[T], component T) *EntityBuilder {
	if eb.built {
		panic("entity already built - cannot add components after Build()")
	}
	store.Set(eb.entity, component)
	return eb
}

// Build finalizes construction and returns the entity handle
func (eb *EntityBuilder) Build() core.Entity {
	eb.built = true
	return eb.entity
}
