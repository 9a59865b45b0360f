package netsync

import (
	"sync/atomic"
	"time"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/event"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/status"
	"github.com/ashvale/driftsync/vmath"
)

// runtimeSimState is the per-entity scratch state of the reconciliation
// engine. It lives in a side table keyed by entity handle, outside the
// component model, so ECS components stay pure data.
type runtimeSimState struct {
	x, y     float64
	rotation float64

	currentSpeed float64

	// Low-pass filtered chase target; filtering the target itself absorbs
	// upstream jitter before the position ever reacts to it
	filteredTX, filteredTY float64

	// Where this system last wrote the transform, for teleport detection
	lastAppliedX, lastAppliedY float64

	seeded bool
}

// ReconcileSystem blends local predictive simulation with periodic
// authoritative snapshots for entities that must move every tick but are
// corrected by the server. The algorithm is entity-generic: anything
// carrying a FollowComponent is tracked, whether companion or player
// prediction.
//
// Per tracked entity, per tick:
//  1. fresh snapshot  -> hard snap beyond the snap threshold, otherwise
//     exponential convergence toward ground truth;
//  2. stale or absent -> pure local simulation: filtered follow target,
//     distance-ramped catch-up speed, slowdown near the stop distance;
//  3. rotation derives from actual displacement, never the target heading.
type ReconcileSystem struct {
	world *engine.World

	states map[core.Entity]*runtimeSimState
	seen   map[core.Entity]struct{}

	snapshotsApplied *atomic.Int64
	snapshotsStale   *atomic.Int64
	hardSnaps        *atomic.Int64
	teleports        *atomic.Int64
}

func NewReconcileSystem(world *engine.World) *ReconcileSystem {
	reg := world.Resources.Status
	return &ReconcileSystem{
		world:            world,
		states:           make(map[core.Entity]*runtimeSimState),
		seen:             make(map[core.Entity]struct{}),
		snapshotsApplied: reg.Ints.Get(status.MetricSnapshotsApplied),
		snapshotsStale:   reg.Ints.Get(status.MetricSnapshotsStale),
		hardSnaps:        reg.Ints.Get(status.MetricHardSnaps),
		teleports:        reg.Ints.Get(status.MetricTeleports),
	}
}

func (s *ReconcileSystem) Name() string { return "reconcile" }

func (s *ReconcileSystem) Priority() int { return parameter.PriorityReconcile }

func (s *ReconcileSystem) Update(dt time.Duration) {
	c := &s.world.Components
	now := s.world.Resources.Time.Now
	dts := dt.Seconds()
	if dts <= 0 {
		return
	}

	clear(s.seen)

	s.world.Query().
		With(c.Follows).
		With(c.Transforms).
		Each(func(e core.Entity) {
			s.seen[e] = struct{}{}
			s.step(e, now, dts)
		})

	// Discard scratch state for entities no longer tracked
	for e := range s.states {
		if _, ok := s.seen[e]; !ok {
			delete(s.states, e)
		}
	}
}

func (s *ReconcileSystem) step(e core.Entity, now time.Time, dts float64) {
	c := &s.world.Components

	tr, ok := c.Transforms.Get(e)
	if !ok {
		return
	}
	follow, ok := c.Follows.Get(e)
	if !ok {
		return
	}

	st := s.ensureState(e, tr)

	// Teleport detection: an external system moved the entity further than
	// the threshold since our last write, so pulling it back gradually
	// would look wrong. Re-seed from the authoritative transform instead.
	if vmath.Distance(tr.X, tr.Y, st.lastAppliedX, st.lastAppliedY) > parameter.TeleportThreshold {
		s.reseed(st, tr)
		s.teleports.Add(1)
		s.pushEvent(event.TypeTeleport, e)
	}

	prevX, prevY := st.x, st.y
	ownerStationary := true

	snap, hasSnap := c.Snapshots.Get(e)
	fresh := hasSnap && now.Sub(snap.ReceivedAt) <= parameter.SnapshotStaleness

	switch {
	case fresh:
		d := vmath.Distance(st.x, st.y, snap.X, snap.Y)
		if d > parameter.HardSnapDistance {
			// The server moved the entity through a mechanism the local
			// simulation doesn't model. Replace, don't blend.
			st.x, st.y = snap.X, snap.Y
			st.filteredTX, st.filteredTY = snap.X, snap.Y
			st.currentSpeed = 0
			s.hardSnaps.Add(1)
			s.pushEvent(event.TypeHardSnap, e)
		} else {
			f := vmath.SmoothFactor(parameter.ConvergeRate, dts)
			st.x += (snap.X - st.x) * f
			st.y += (snap.Y - st.y) * f
			s.snapshotsApplied.Add(1)
			s.pushEvent(event.TypeSnapshotApplied, e)
		}
		if auth, ok := c.Authorities.Get(e); ok {
			auth.ConfirmFromServer(now)
			c.Authorities.Set(e, auth)
		}

	default:
		if hasSnap {
			// Aged past the staleness window: discard rather than apply
			c.Snapshots.Remove(e)
			s.snapshotsStale.Add(1)
			s.pushEvent(event.TypeSnapshotStale, e)
		}
		ownerStationary = s.simulateLocal(e, st, follow, dts)
		if auth, ok := c.Authorities.Get(e); ok && !auth.Predicted {
			auth.MarkAsPredicted(now)
			c.Authorities.Set(e, auth)
		}
	}

	// Orientation from the actual per-tick displacement, never from the
	// target heading, so rendered rotation always matches observed motion.
	// The deadband keeps a resting follower from jittering its heading.
	dispX, dispY := st.x-prevX, st.y-prevY
	minDisp := 1e-3
	if ownerStationary {
		minDisp = parameter.RotationDeadband
	}
	if vmath.Magnitude(dispX, dispY) > minDisp {
		st.rotation = vmath.AngleOf(dispX, dispY)
	}

	tr.X, tr.Y, tr.Rotation = st.x, st.y, st.rotation
	c.Transforms.Set(e, tr)
	st.lastAppliedX, st.lastAppliedY = st.x, st.y
}

// simulateLocal advances the follower with no fresh server truth. Returns
// whether the owner was treated as stationary.
func (s *ReconcileSystem) simulateLocal(e core.Entity, st *runtimeSimState, follow component.FollowComponent, dts float64) bool {
	c := &s.world.Components

	ownerTr, ok := c.Transforms.Get(follow.Owner)
	if !ok {
		// Owner gone or pose missing: hold position this tick
		return true
	}

	var velX, velY float64
	if v, ok := c.Velocities.Get(follow.Owner); ok {
		velX, velY = v.VX, v.VY
	}
	ownerSpeed := vmath.Magnitude(velX, velY)
	moving := ownerSpeed > parameter.OwnerStationarySpeed

	dist := follow.Distance
	if dist <= 0 {
		dist = parameter.FollowDistance
	}

	// Desired point: behind the owner's heading, led by its velocity
	var hx, hy float64
	if moving {
		hx, hy = vmath.Normalize2D(velX, velY)
	} else {
		hx, hy = vmath.Heading(ownerTr.Rotation)
	}
	targetX := ownerTr.X - hx*dist + velX*parameter.FollowLeadTime
	targetY := ownerTr.Y - hy*dist + velY*parameter.FollowLeadTime

	// Low-pass filter the target itself before chasing it. A stationary
	// owner gets the softer rate since there is no real motion to track.
	filterRate := parameter.FollowTargetFilterStationary
	if moving {
		filterRate = parameter.FollowTargetFilterMoving
	}
	ff := vmath.SmoothFactor(filterRate, dts)
	st.filteredTX += (targetX - st.filteredTX) * ff
	st.filteredTY += (targetY - st.filteredTY) * ff

	gapX := st.filteredTX - st.x
	gapY := st.filteredTY - st.y
	distance := vmath.Magnitude(gapX, gapY)

	// Catch-up ramp: cruise below the start ratio, linear blend up to the
	// catch-up speed between start and full ratio of the configured
	// catch-up distance
	start := parameter.FollowCatchUpStartRatio * parameter.FollowCatchUpDistance
	full := parameter.FollowCatchUpFullRatio * parameter.FollowCatchUpDistance
	var desiredSpeed float64
	switch {
	case distance <= start:
		desiredSpeed = parameter.FollowBaseSpeed
	case distance >= full:
		desiredSpeed = parameter.FollowCatchUpSpeed
	default:
		t := (distance - start) / (full - start)
		desiredSpeed = vmath.Lerp(parameter.FollowBaseSpeed, parameter.FollowCatchUpSpeed, t)
	}

	// Speed itself is smoothed, never snapped tick-to-tick
	st.currentSpeed += (desiredSpeed - st.currentSpeed) * vmath.SmoothFactor(parameter.FollowSpeedSmoothing, dts)

	// The follower rests StopDistance away from the target; only the gap
	// beyond that is closed
	gap := distance - parameter.FollowStopDistance
	if gap <= parameter.FollowArriveEpsilon {
		return !moving
	}

	step := st.currentSpeed * dts

	// Slowdown factor near the stop distance prevents oscillation around
	// the resting point
	slowRange := parameter.FollowSlowdownDistance - parameter.FollowStopDistance
	if slowRange > 0 && gap < slowRange {
		step *= vmath.Clamp(gap/slowRange, 0, 1)
	}
	if step > gap {
		step = gap
	}

	nx, ny := vmath.Normalize2D(gapX, gapY)
	st.x += nx * step
	st.y += ny * step
	return !moving
}

func (s *ReconcileSystem) ensureState(e core.Entity, tr component.TransformComponent) *runtimeSimState {
	st, ok := s.states[e]
	if !ok {
		st = &runtimeSimState{}
		s.states[e] = st
	}
	if !st.seeded {
		s.reseed(st, tr)
	}
	return st
}

func (s *ReconcileSystem) reseed(st *runtimeSimState, tr component.TransformComponent) {
	st.x, st.y = tr.X, tr.Y
	st.rotation = tr.Rotation
	st.currentSpeed = 0
	st.filteredTX, st.filteredTY = tr.X, tr.Y
	st.lastAppliedX, st.lastAppliedY = tr.X, tr.Y
	st.seeded = true
}

func (s *ReconcileSystem) pushEvent(t event.Type, e core.Entity) {
	s.world.Resources.Events.Push(event.Event{
		Type:   t,
		Entity: e,
		Frame:  s.world.Resources.Time.FrameNumber,
	})
}
