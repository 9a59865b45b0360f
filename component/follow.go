package component

import "github.com/ashvale/driftsync/core"

// FollowComponent marks an entity as tracked by the reconciliation engine:
// it simulates locally every tick (trailing its owner) and accepts periodic
// server corrections. The same component works for any predict-then-correct
// entity, not just companions.
type FollowComponent struct {
	Owner core.Entity

	// Distance is the trailing offset behind the owner's heading, in world
	// units. Zero means use the configured default.
	Distance float64
}
