package parameter

import "time"

// Remote replica interpolation
const (
	// InterpRate is the exponential smoothing rate (1/s) used to advance a
	// replica's transform toward its staged interpolation target
	InterpRate = 12.0

	// InterpMaxStep caps the distance a replica may cover in a single tick,
	// in world units, so a late target refresh cannot produce a visible jump
	InterpMaxStep = 40.0

	// InterpArriveEpsilon is the distance below which the transform snaps
	// onto the target instead of chasing the remainder forever
	InterpArriveEpsilon = 0.5

	// InterpRotationRate is the smoothing rate for replica rotation
	InterpRotationRate = 10.0
)

// Reconciliation against server snapshots
const (
	// SnapshotStaleness is the maximum age of a server snapshot before it is
	// discarded rather than applied
	SnapshotStaleness = 600 * time.Millisecond

	// HardSnapDistance: a fresh snapshot farther than this from the runtime
	// position implies the server moved the entity through a mechanism the
	// local simulation does not model, so the position is replaced outright
	HardSnapDistance = 300.0

	// ConvergeRate is the exponential blend rate (1/s) toward a fresh
	// snapshot when the divergence is below HardSnapDistance
	ConvergeRate = 8.0

	// TeleportThreshold: an external system moving the tracked entity farther
	// than this in one tick re-seeds the runtime state from the transform
	TeleportThreshold = 1200.0
)

// Local follower fallback simulation
const (
	// FollowDistance is the default trailing offset behind the owner
	FollowDistance = 60.0

	// FollowBaseSpeed is the cruise speed in world units per second
	FollowBaseSpeed = 130.0

	// FollowCatchUpSpeed is the maximum speed while closing a large gap
	FollowCatchUpSpeed = 320.0

	// FollowCatchUpDistance is the gap at which catch-up is fully engaged
	FollowCatchUpDistance = 220.0

	// FollowCatchUpStartRatio and FollowCatchUpFullRatio bound the linear
	// blend from base speed to catch-up speed, as fractions of
	// FollowCatchUpDistance
	FollowCatchUpStartRatio = 0.35
	FollowCatchUpFullRatio  = 1.0

	// FollowSpeedSmoothing is the rate (1/s) at which the applied speed
	// chases the desired speed, so speed ramps instead of snapping
	FollowSpeedSmoothing = 6.0

	// FollowStopDistance is where the follower should come to rest
	FollowStopDistance = 8.0

	// FollowSlowdownDistance is where the applied step starts scaling down
	// to prevent oscillation around the stop point
	FollowSlowdownDistance = 40.0

	// FollowArriveEpsilon snaps the follower onto the target when within it
	FollowArriveEpsilon = 1.0

	// FollowTargetFilterMoving / Stationary are low-pass rates (1/s) applied
	// to the follow target itself before it is chased. A stationary owner
	// gets a stiffer filter since there is no upstream motion to track
	FollowTargetFilterMoving     = 10.0
	FollowTargetFilterStationary = 4.0

	// FollowLeadTime scales the owner's velocity into a lead offset ahead of
	// the raw follow point
	FollowLeadTime = 0.25

	// OwnerStationarySpeed is the owner speed below which it is treated as
	// standing still for filtering and rotation deadband purposes
	OwnerStationarySpeed = 5.0

	// RotationDeadband is the minimum per-tick displacement that may change
	// the follower's rendered rotation while the owner is stationary
	RotationDeadband = 0.75
)

// StaleLogInterval throttles unknown-id and stale-snapshot log lines
const StaleLogInterval = 5 * time.Second
