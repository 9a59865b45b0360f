// Package netsync reconciles server-authoritative ground truth with the
// locally simulated world. Inbound network events only ever write staging
// components (interpolation targets, server snapshots); the tick loop is
// the sole writer of live transforms.
package netsync

// Pose is a position plus heading as reported by the server
type Pose struct {
	X, Y     float64
	Rotation float64
}

// Pools carries server-reported resource pool values
type Pools struct {
	Health    float64
	MaxHealth float64
	Energy    float64
	MaxEnergy float64
}

// SpawnEvent announces a server-owned entity entering the client's view
type SpawnEvent struct {
	NetID    uint64
	Kind     string
	Pose     Pose
	Pools    *Pools
	Behavior string
}

// UpdateEntry refreshes a replica. Nil fields mean "no change", never an
// implicit zero.
type UpdateEntry struct {
	NetID    uint64
	Pose     *Pose
	Pools    *Pools
	Behavior *string
}

// BulkUpdateEvent applies many updates in one batched pass to bound
// per-message overhead as replica counts grow
type BulkUpdateEvent struct {
	Entries []UpdateEntry
}

// RemoveEvent announces a server-owned entity leaving the client's view
type RemoveEvent struct {
	NetID  uint64
	Reason string
}

// SnapshotEvent carries an authoritative correction for a locally-simulated
// entity (follower prediction), keyed by the same network identity
type SnapshotEvent struct {
	NetID uint64
	X, Y  float64
}
