package component

import "time"

// InterpTargetComponent is staging data for server-owned replicas. Network
// delivery refreshes the target; the interpolation system advances the live
// transform toward it every tick so motion stays continuous between the
// server's lower-frequency updates.
type InterpTargetComponent struct {
	X, Y       float64
	Rotation   float64
	ReceivedAt time.Time
}

// SnapshotComponent is staging data for locally-simulated entities that the
// server periodically corrects. Consumed by reconciliation, discarded when
// older than the staleness window.
type SnapshotComponent struct {
	X, Y       float64
	ReceivedAt time.Time
}
