package netsync

import (
	"math"
	"testing"
	"time"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/event"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/status"
	"github.com/ashvale/driftsync/vmath"
)

// followerFixture wires an owner and a tracked follower into a world running
// only the reconciliation system.
type followerFixture struct {
	w        *engine.World
	m        *ReplicaManager
	sys      *ReconcileSystem
	owner    core.Entity
	follower core.Entity
}

func newFollowerFixture(t *testing.T, ownerX, ownerY, followerX, followerY float64) *followerFixture {
	t.Helper()
	w, m := newTestManager(t)
	sys := NewReconcileSystem(w)
	w.AddSystem(sys)

	c := &w.Components
	owner := engine.With(
		w.NewEntity(), c.Transforms, component.TransformComponent{X: ownerX, Y: ownerY},
	).Build()

	follower := engine.With(
		engine.With(
			engine.With(
				w.NewEntity(), c.Transforms, component.TransformComponent{X: followerX, Y: followerY},
			), c.Follows, component.FollowComponent{Owner: owner},
		), c.Authorities, component.AuthorityComponent{
			OwnerID: core.ServerID, Level: component.ServerAuthoritative,
		},
	).Build()

	return &followerFixture{w: w, m: m, sys: sys, owner: owner, follower: follower}
}

func (f *followerFixture) transform(t *testing.T) component.TransformComponent {
	t.Helper()
	tr, ok := f.w.Components.Transforms.Get(f.follower)
	if !ok {
		t.Fatal("follower transform missing")
	}
	return tr
}

func hasEvent(events []event.Event, typ event.Type) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestHardSnapBeyondThreshold(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 0, 0)

	// A fresh snapshot farther than the hard-snap distance replaces the
	// position outright
	f.m.SetServerSnapshot(f.follower, 400, 0)
	f.w.Update(tickDt)

	tr := f.transform(t)
	if tr.X != 400 || tr.Y != 0 {
		t.Errorf("expected exact replacement at (400, 0), got (%v, %v)", tr.X, tr.Y)
	}
	if n := f.w.Resources.Status.Ints.Get(status.MetricHardSnaps).Load(); n != 1 {
		t.Errorf("expected 1 hard snap, got %d", n)
	}
	if !hasEvent(f.w.Resources.Events.Consume(), event.TypeHardSnap) {
		t.Error("hard snap event missing")
	}
}

func TestFreshSnapshotConverges(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 0, 0)
	f.m.SetServerSnapshot(f.follower, 100, 0)

	prevDist := 100.0
	for tick := 0; tick < 20; tick++ {
		f.w.Update(tickDt)
		tr := f.transform(t)

		if tr.X > 100+1e-9 {
			t.Fatalf("tick %d: overshot the snapshot, X=%v", tick, tr.X)
		}
		dist := vmath.Distance(tr.X, tr.Y, 100, 0)
		if dist >= prevDist {
			t.Fatalf("tick %d: convergence stalled, %v -> %v", tick, prevDist, dist)
		}
		prevDist = dist
	}

	auth, _ := f.w.Components.Authorities.Get(f.follower)
	if auth.Predicted {
		t.Error("fresh snapshot application must clear the prediction flag")
	}
	if n := f.w.Resources.Status.Ints.Get(status.MetricSnapshotsApplied).Load(); n == 0 {
		t.Error("snapshot applications should be counted")
	}
	if !hasEvent(f.w.Resources.Events.Consume(), event.TypeSnapshotApplied) {
		t.Error("snapshot applied event missing")
	}
	// Below the hard-snap distance, never a hard snap
	if n := f.w.Resources.Status.Ints.Get(status.MetricHardSnaps).Load(); n != 0 {
		t.Errorf("expected no hard snaps, got %d", n)
	}
}

func TestStaleSnapshotDiscarded(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 0, 0)

	// Stage a snapshot already past the staleness window
	f.w.Components.Snapshots.Set(f.follower, component.SnapshotComponent{
		X: 500, Y: 0,
		ReceivedAt: f.w.Resources.Time.Now.Add(-parameter.SnapshotStaleness - time.Second),
	})

	f.w.Update(tickDt)

	tr := f.transform(t)
	if tr.X > 1 {
		t.Errorf("stale snapshot must not be applied, X=%v", tr.X)
	}
	if f.w.Components.Snapshots.Has(f.follower) {
		t.Error("stale snapshot must be removed")
	}
	if n := f.w.Resources.Status.Ints.Get(status.MetricSnapshotsStale).Load(); n != 1 {
		t.Errorf("expected 1 stale snapshot, got %d", n)
	}
	if !hasEvent(f.w.Resources.Events.Consume(), event.TypeSnapshotStale) {
		t.Error("stale snapshot event missing")
	}

	auth, _ := f.w.Components.Authorities.Get(f.follower)
	if !auth.Predicted {
		t.Error("running on local simulation must mark the state predicted")
	}
}

func TestSnapshotAgesOutDuringRun(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 0, 0)
	f.m.SetServerSnapshot(f.follower, 50, 0)

	// Enough ticks to cross the staleness window
	ticks := int(parameter.SnapshotStaleness/tickDt) + 10
	for i := 0; i < ticks; i++ {
		f.w.Update(tickDt)
	}

	if f.w.Components.Snapshots.Has(f.follower) {
		t.Error("snapshot should have aged out and been removed")
	}
	if n := f.w.Resources.Status.Ints.Get(status.MetricSnapshotsStale).Load(); n != 1 {
		t.Errorf("expected exactly 1 stale discard, got %d", n)
	}
}

func TestCatchUpSpeedCapped(t *testing.T) {
	f := newFollowerFixture(t, 1000, 0, 0, 0)
	dts := tickDt.Seconds()
	maxStep := parameter.FollowCatchUpSpeed*dts + 1e-6

	prev := f.transform(t)
	peakStep := 0.0
	for tick := 0; tick < 1200; tick++ {
		f.w.Update(tickDt)
		tr := f.transform(t)
		step := vmath.Distance(tr.X, tr.Y, prev.X, prev.Y)
		if step > maxStep {
			t.Fatalf("tick %d: step %v exceeds catch-up cap %v", tick, step, maxStep)
		}
		if step > peakStep {
			peakStep = step
		}
		prev = tr
	}

	// Across a 940-unit gap the ramp must actually engage catch-up speed
	if peakStep <= parameter.FollowBaseSpeed*dts {
		t.Errorf("catch-up never engaged, peak step %v", peakStep)
	}

	// Owner faces +x, so the rest point is FollowDistance behind it
	tr := f.transform(t)
	restDist := vmath.Distance(tr.X, tr.Y, 1000-parameter.FollowDistance, 0)
	if restDist > parameter.FollowStopDistance+2 {
		t.Errorf("follower did not settle near the rest point, distance %v", restDist)
	}
}

func TestSlowdownApproachMonotone(t *testing.T) {
	f := newFollowerFixture(t, 1000, 0, 0, 0)
	targetX := 1000.0 - parameter.FollowDistance

	inSlowdown := false
	prevDist := math.Inf(1)
	for tick := 0; tick < 1500; tick++ {
		f.w.Update(tickDt)
		tr := f.transform(t)
		dist := vmath.Distance(tr.X, tr.Y, targetX, 0)

		if inSlowdown && dist > prevDist+1e-6 {
			t.Fatalf("tick %d: distance grew inside the slowdown zone, %v -> %v", tick, prevDist, dist)
		}
		if dist < parameter.FollowSlowdownDistance {
			inSlowdown = true
		}
		prevDist = dist
	}
	if !inSlowdown {
		t.Fatal("follower never entered the slowdown zone")
	}
}

func TestTeleportReseedsState(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, -60, 0)
	f.w.Update(tickDt)

	// An external mechanism moves the follower far beyond the threshold.
	// The system must adopt the new position instead of dragging it back.
	f.w.Components.Transforms.Set(f.follower, component.TransformComponent{X: 5000, Y: 5000})
	f.w.Update(tickDt)

	tr := f.transform(t)
	if vmath.Distance(tr.X, tr.Y, 5000, 5000) > parameter.FollowCatchUpSpeed*tickDt.Seconds()+1 {
		t.Errorf("teleport was not adopted, follower at (%v, %v)", tr.X, tr.Y)
	}
	if n := f.w.Resources.Status.Ints.Get(status.MetricTeleports).Load(); n != 1 {
		t.Errorf("expected 1 teleport, got %d", n)
	}
	if !hasEvent(f.w.Resources.Events.Consume(), event.TypeTeleport) {
		t.Error("teleport event missing")
	}
}

func TestOwnerMissingHoldsPosition(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 30, 40)
	f.w.DestroyEntity(f.owner)

	for i := 0; i < 10; i++ {
		f.w.Update(tickDt)
	}

	tr := f.transform(t)
	if tr.X != 30 || tr.Y != 40 {
		t.Errorf("follower must hold position without an owner pose, got (%v, %v)", tr.X, tr.Y)
	}
}

func TestRotationFollowsDisplacement(t *testing.T) {
	// Owner faces +y, so the rest point sits straight below it and the
	// follower's motion is pure +y. Rendered rotation must come from that
	// displacement.
	f := newFollowerFixture(t, 0, 500, 0, 0)
	f.w.Components.Transforms.Set(f.owner, component.TransformComponent{
		X: 0, Y: 500, Rotation: math.Pi / 2,
	})
	for i := 0; i < 120; i++ {
		f.w.Update(tickDt)
	}

	tr := f.transform(t)
	if math.Abs(vmath.WrapAngle(tr.Rotation-math.Pi/2)) > 0.1 {
		t.Errorf("rotation should track +y displacement (pi/2), got %v", tr.Rotation)
	}
}

func TestRotationDeadbandAtRest(t *testing.T) {
	// Start at the rest point of a stationary owner facing +x
	f := newFollowerFixture(t, 0, 0, -parameter.FollowDistance-parameter.FollowStopDistance, 0)
	f.w.Components.Transforms.Set(f.follower, component.TransformComponent{
		X: -parameter.FollowDistance - parameter.FollowStopDistance, Y: 0, Rotation: 1.0,
	})

	for i := 0; i < 60; i++ {
		f.w.Update(tickDt)
	}

	// Sub-deadband settling drift must not churn the heading
	tr := f.transform(t)
	if tr.Rotation != 1.0 {
		t.Errorf("resting follower must keep its heading, got %v", tr.Rotation)
	}
}

func TestFollowerTracksMovingOwner(t *testing.T) {
	f := newFollowerFixture(t, 500, 500, 100, 500)
	f.w.Components.Velocities.Set(f.owner, component.VelocityComponent{VX: 50, VY: 0})

	dts := tickDt.Seconds()
	maxStep := parameter.FollowCatchUpSpeed*dts + 1e-6

	// Velocity heading (+x) plus lead offset define the chase point
	targetX := 500.0 - parameter.FollowDistance + 50*parameter.FollowLeadTime
	prev := f.transform(t)
	for tick := 0; tick < 1500; tick++ {
		f.w.Update(tickDt)
		tr := f.transform(t)
		if step := vmath.Distance(tr.X, tr.Y, prev.X, prev.Y); step > maxStep {
			t.Fatalf("tick %d: step %v exceeds speed cap", tick, step)
		}
		prev = tr
	}

	tr := f.transform(t)
	if math.Abs(tr.Y-500) > 0.5 {
		t.Errorf("straight-line chase should stay on y=500, got %v", tr.Y)
	}
	dist := vmath.Distance(tr.X, tr.Y, targetX, 500)
	if dist > parameter.FollowStopDistance+2 {
		t.Errorf("follower should rest near the led target, distance %v", dist)
	}
	if math.Abs(vmath.WrapAngle(tr.Rotation)) > 0.05 {
		t.Errorf("rotation should face the +x chase direction, got %v", tr.Rotation)
	}
}

func TestScratchStatePruned(t *testing.T) {
	f := newFollowerFixture(t, 0, 0, 10, 0)
	f.w.Update(tickDt)
	if len(f.sys.states) != 1 {
		t.Fatalf("expected 1 tracked state, got %d", len(f.sys.states))
	}

	f.w.DestroyEntity(f.follower)
	f.w.Update(tickDt)
	if len(f.sys.states) != 0 {
		t.Errorf("state for destroyed entities must be pruned, got %d", len(f.sys.states))
	}
}
