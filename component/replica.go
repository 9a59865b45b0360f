package component

// ReplicaComponent ties a local entity to its network identity
type ReplicaComponent struct {
	NetID uint64

	// Behavior is an opaque tag chosen by the server (patrol, aggressive,
	// vendor...). The sync layer stores it verbatim; AI systems interpret it.
	Behavior string
}

// PoolsComponent mirrors server-reported resource pools
type PoolsComponent struct {
	Health    float64
	MaxHealth float64
	Energy    float64
	MaxEnergy float64
}
