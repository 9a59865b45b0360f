package netsync

import (
	"log"
	"sync"
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

// ReplicaManager owns the lifecycle of server-authoritative replicas:
// absent -> spawned -> updated* -> removed. It is the network boundary's
// only entry point into the world. All writes go to staging components
// (interpolation targets, snapshots); the live transform is advanced by
// the interpolation and reconciliation systems inside the tick.
type ReplicaManager struct {
	world *engine.World

	mu      sync.Mutex
	byNetID map[uint64]core.Entity

	// now is the staging timestamp source, replaceable in tests
	now func() time.Time

	// Cached metric pointers, resolved once
	replicaGauge *atomic.Int64
	unknownIDs   *atomic.Int64
	bulkEntries  *atomic.Int64

	lastDropLog time.Time
}

// NewReplicaManager creates a manager bound to a world
func NewReplicaManager(w *engine.World) *ReplicaManager {
	return &ReplicaManager{
		world:        w,
		byNetID:      make(map[uint64]core.Entity),
		now:          time.Now,
		replicaGauge: w.Resources.Status.Ints.Get(status.MetricReplicas),
		unknownIDs:   w.Resources.Status.Ints.Get(status.MetricUnknownIDs),
		bulkEntries:  w.Resources.Status.Ints.Get(status.MetricBulkEntries),
	}
}

// SetClock overrides the staging timestamp source. Tests drive virtual time
// through this together with the world's time resource.
func (m *ReplicaManager) SetClock(now func() time.Time) {
	m.now = now
}

// Lookup resolves a network id to its local entity handle
func (m *ReplicaManager) Lookup(netID uint64) (core.Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byNetID[netID]
	return e, ok
}

// ReplicaCount returns the number of live replicas
func (m *ReplicaManager) ReplicaCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byNetID)
}

// HandleSpawn creates a replica entity: transform at the given pose, an
// interpolation target staged at the same pose, and server authority.
// Re-spawning a live id is an idempotent update-in-place, not a duplicate
// create.
func (m *ReplicaManager) HandleSpawn(ev SpawnEvent) core.Entity {
	m.mu.Lock()
	if e, ok := m.byNetID[ev.NetID]; ok && m.world.IsAlive(e) {
		m.mu.Unlock()
		pose := ev.Pose
		behavior := ev.Behavior
		m.applyUpdate(UpdateEntry{
			NetID:    ev.NetID,
			Pose:     &pose,
			Pools:    ev.Pools,
			Behavior: &behavior,
		})
		return e
	}
	defer m.mu.Unlock()

	now := m.now()
	pose := m.sanitizePose(core.NilEntity, ev.Pose)

	c := &m.world.Components
	b := m.world.NewEntity()
	engine.With(b, c.Transforms, component.TransformComponent{
		X: pose.X, Y: pose.Y, Rotation: pose.Rotation,
	})
	engine.With(b, c.InterpTargets, component.InterpTargetComponent{
		X: pose.X, Y: pose.Y, Rotation: pose.Rotation, ReceivedAt: now,
	})
	engine.With(b, c.Authorities, component.AuthorityComponent{
		OwnerID:    core.ServerID,
		Level:      component.ServerAuthoritative,
		LastUpdate: now,
	})
	engine.With(b, c.Replicas, component.ReplicaComponent{
		NetID:    ev.NetID,
		Behavior: ev.Behavior,
	})
	if ev.Pools != nil {
		engine.With(b, c.Pools, component.PoolsComponent(*ev.Pools))
	}
	e := b.Build()

	m.byNetID[ev.NetID] = e
	m.replicaGauge.Store(int64(len(m.byNetID)))

	m.world.Resources.Events.Push(event.Event{
		Type:   event.TypeReplicaSpawned,
		Entity: e,
		Frame:  m.world.Resources.Time.FrameNumber,
	})
	return e
}

// HandleUpdate refreshes a replica's staged state. The live transform is
// never written here. Unknown ids are logged (throttled) and ignored.
func (m *ReplicaManager) HandleUpdate(e UpdateEntry) {
	if !m.applyUpdate(e) {
		m.dropUnknown(e.NetID, "update")
	}
}

// HandleBulkUpdate applies many updates in one pass. Per-entity semantics
// match HandleUpdate; unknown ids are counted but not individually logged.
func (m *ReplicaManager) HandleBulkUpdate(ev BulkUpdateEvent) {
	for _, e := range ev.Entries {
		if !m.applyUpdate(e) {
			m.unknownIDs.Add(1)
		}
	}
	m.bulkEntries.Add(int64(len(ev.Entries)))
}

// HandleRemove destroys the replica entity and its components immediately.
// Presentation may layer its own fade-out; this layer does not.
func (m *ReplicaManager) HandleRemove(ev RemoveEvent) {
	m.mu.Lock()
	e, ok := m.byNetID[ev.NetID]
	if ok {
		delete(m.byNetID, ev.NetID)
		m.replicaGauge.Store(int64(len(m.byNetID)))
	}
	m.mu.Unlock()

	if !ok {
		m.dropUnknown(ev.NetID, "remove")
		return
	}

	m.world.DestroyEntity(e)
	m.world.Resources.Events.Push(event.Event{
		Type:   event.TypeReplicaRemoved,
		Entity: e,
		Frame:  m.world.Resources.Time.FrameNumber,
	})
}

// HandleSnapshot stages an authoritative correction for a locally-simulated
// entity identified by network id
func (m *ReplicaManager) HandleSnapshot(ev SnapshotEvent) {
	e, ok := m.Lookup(ev.NetID)
	if !ok {
		m.dropUnknown(ev.NetID, "snapshot")
		return
	}
	m.SetServerSnapshot(e, ev.X, ev.Y)
}

// HandleMessage decodes and dispatches a framed wire message
func (m *ReplicaManager) HandleMessage(msg *Message) error {
	switch msg.Type {
	case MsgSpawn:
		ev, err := UnmarshalSpawn(msg.Payload)
		if err != nil {
			return err
		}
		m.HandleSpawn(ev)
	case MsgUpdate:
		ev, err := UnmarshalUpdate(msg.Payload)
		if err != nil {
			return err
		}
		m.HandleUpdate(ev)
	case MsgBulkUpdate:
		ev, err := UnmarshalBulkUpdate(msg.Payload)
		if err != nil {
			return err
		}
		m.HandleBulkUpdate(ev)
	case MsgRemove:
		ev, err := UnmarshalRemove(msg.Payload)
		if err != nil {
			return err
		}
		m.HandleRemove(ev)
	case MsgSnapshot:
		ev, err := UnmarshalSnapshot(msg.Payload)
		if err != nil {
			return err
		}
		m.HandleSnapshot(ev)
	}
	return nil
}

// SetInterpolationTarget stages a future pose for a replica. This is the
// only legal pose write path for the network boundary. Dead handles are
// ignored.
func (m *ReplicaManager) SetInterpolationTarget(e core.Entity, pose Pose) {
	if !m.world.IsAlive(e) {
		return
	}
	pose = m.sanitizePose(e, pose)
	m.world.Components.InterpTargets.Set(e, component.InterpTargetComponent{
		X: pose.X, Y: pose.Y, Rotation: pose.Rotation,
		ReceivedAt: m.now(),
	})
}

// SetServerSnapshot stages an authoritative position correction. Dead
// handles are ignored.
func (m *ReplicaManager) SetServerSnapshot(e core.Entity, x, y float64) {
	if !m.world.IsAlive(e) {
		return
	}
	p := m.sanitizePose(e, Pose{X: x, Y: y})
	m.world.Components.Snapshots.Set(e, component.SnapshotComponent{
		X: p.X, Y: p.Y, ReceivedAt: m.now(),
	})
}

func (m *ReplicaManager) applyUpdate(u UpdateEntry) bool {
	e, ok := m.Lookup(u.NetID)
	if !ok || !m.world.IsAlive(e) {
		return false
	}

	c := &m.world.Components
	if u.Pose != nil {
		m.SetInterpolationTarget(e, *u.Pose)
	}
	if u.Pools != nil {
		c.Pools.Set(e, component.PoolsComponent(*u.Pools))
	}
	if u.Behavior != nil {
		if rep, ok := c.Replicas.Get(e); ok {
			rep.Behavior = *u.Behavior
			c.Replicas.Set(e, rep)
		}
	}
	return true
}

// sanitizePose coerces non-finite incoming fields to the last known-good
// value so NaN/inf never propagates into a live transform
func (m *ReplicaManager) sanitizePose(e core.Entity, p Pose) Pose {
	if vmath.IsFinite(p.X) && vmath.IsFinite(p.Y) && vmath.IsFinite(p.Rotation) {
		return p
	}

	// Fall back to the staged target first, then the live transform
	var last Pose
	if t, ok := m.world.Components.InterpTargets.Get(e); ok {
		last = Pose{X: t.X, Y: t.Y, Rotation: t.Rotation}
	} else if t, ok := m.world.Components.Transforms.Get(e); ok {
		last = Pose{X: t.X, Y: t.Y, Rotation: t.Rotation}
	}

	if vmath.IsFinite(p.X) {
		last.X = p.X
	}
	if vmath.IsFinite(p.Y) {
		last.Y = p.Y
	}
	if vmath.IsFinite(p.Rotation) {
		last.Rotation = p.Rotation
	}
	return last
}

func (m *ReplicaManager) dropUnknown(netID uint64, op string) {
	m.unknownIDs.Add(1)

	m.mu.Lock()
	throttled := time.Since(m.lastDropLog) < parameter.StaleLogInterval
	if !throttled {
		m.lastDropLog = time.Now()
	}
	m.mu.Unlock()

	if !throttled {
		log.Printf("netsync: %s for unknown net id %d, ignored", op, netID)
	}
}
