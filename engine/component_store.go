package engine

import "github.com/ashvale/driftsync/component"

// ComponentStore provides typed store pointers for direct system access.
// Initialized once during World construction; pointers remain valid for
// the application lifetime, so systems cache them and skip any lookup on
// the hot path.
type ComponentStore struct {
	// Live pose, written only by the tick loop
	Transforms *Store[component.TransformComponent]
	Velocities *Store[component.VelocityComponent]

	// Ownership and trust metadata
	Authorities *Store[component.AuthorityComponent]

	// Staging data written by the network boundary
	InterpTargets *Store[component.InterpTargetComponent]
	Snapshots     *Store[component.SnapshotComponent]

	// Replication bookkeeping
	Replicas *Store[component.ReplicaComponent]
	Pools    *Store[component.PoolsComponent]

	// Local simulation
	Follows *Store[component.FollowComponent]
	Effects *Store[component.EffectComponent]
}

func initComponentStores(w *World) {
	c := &w.Components
	c.Transforms = RegisterStore[component.TransformComponent](w)
	c.Velocities = RegisterStore[component.VelocityComponent](w)
	c.Authorities = RegisterStore[component.AuthorityComponent](w)
	c.InterpTargets = RegisterStore[component.InterpTargetComponent](w)
	c.Snapshots = RegisterStore[component.SnapshotComponent](w)
	c.Replicas = RegisterStore[component.ReplicaComponent](w)
	c.Pools = RegisterStore[component.PoolsComponent](w)
	c.Follows = RegisterStore[component.FollowComponent](w)
	c.Effects = RegisterStore[component.EffectComponent](w)
}
