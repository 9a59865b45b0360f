package main

import (
	"errors"
	"io"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/netsync"
)

const (
	followerNetID  = 1
	firstDroneID   = 100
	droneCount     = 6
	serverTickRate = 100 * time.Millisecond
	snapshotEvery  = 3 // server ticks between follower corrections
)

// fakeServer plays the authoritative side of the connection. It frames
// every message through the wire codec and feeds the bytes to the client
// reader over an in-process pipe, so the demo exercises the same path a
// real transport would.
type fakeServer struct {
	world   *engine.World
	manager *netsync.ReplicaManager
	avatar  core.Entity
	drop    float64

	r    *io.PipeReader
	w    *io.PipeWriter
	quit chan struct{}
	wg   sync.WaitGroup
	seq  uint32
}

func newFakeServer(world *engine.World, manager *netsync.ReplicaManager, avatar core.Entity, drop float64) *fakeServer {
	r, w := io.Pipe()
	return &fakeServer{
		world:   world,
		manager: manager,
		avatar:  avatar,
		drop:    drop,
		r:       r,
		w:       w,
		quit:    make(chan struct{}),
	}
}

func (s *fakeServer) start() {
	s.wg.Add(2)
	go s.serve()
	go s.receive()
}

func (s *fakeServer) stop() {
	close(s.quit)
	s.w.Close()
	s.r.Close()
	s.wg.Wait()
}

// receive is the client-side network boundary: it decodes frames and hands
// them to the replica manager, which only ever writes staging components.
func (s *fakeServer) receive() {
	defer s.wg.Done()
	for {
		msg, err := netsync.DecodeMessage(s.r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				log.Printf("receive: %v", err)
			}
			return
		}
		if err := s.manager.HandleMessage(msg); err != nil {
			log.Printf("receive: %v", err)
		}
	}
}

func (s *fakeServer) serve() {
	defer s.wg.Done()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(serverTickRate)
	defer ticker.Stop()

	// Wandering drones with simple orbital paths
	type drone struct {
		id     uint64
		cx, cy float64
		radius float64
		phase  float64
		speed  float64
	}
	drones := make([]drone, 0, droneCount)
	for i := 0; i < droneCount; i++ {
		d := drone{
			id:     uint64(firstDroneID + i),
			cx:     100 + rng.Float64()*500,
			cy:     60 + rng.Float64()*250,
			radius: 20 + rng.Float64()*60,
			phase:  rng.Float64() * 2 * math.Pi,
			speed:  0.4 + rng.Float64()*1.2,
		}
		drones = append(drones, d)
		if !s.send(netsync.MarshalSpawn(netsync.SpawnEvent{
			NetID:    d.id,
			Kind:     "drone",
			Pose:     netsync.Pose{X: d.cx + d.radius, Y: d.cy},
			Pools:    &netsync.Pools{Health: 100, MaxHealth: 100},
			Behavior: "patrol",
		})) {
			return
		}
	}

	tick := 0
	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
		}
		tick++

		if s.drop > 0 && rng.Float64() < s.drop {
			continue
		}

		// One bulk update refreshes every drone pose
		entries := make([]netsync.UpdateEntry, 0, len(drones))
		for i := range drones {
			d := &drones[i]
			d.phase += d.speed * serverTickRate.Seconds()
			pose := netsync.Pose{
				X:        d.cx + d.radius*math.Cos(d.phase),
				Y:        d.cy + d.radius*math.Sin(d.phase),
				Rotation: d.phase + math.Pi/2,
			}
			entries = append(entries, netsync.UpdateEntry{NetID: d.id, Pose: &pose})
		}
		if !s.send(netsync.MarshalBulkUpdate(netsync.BulkUpdateEvent{Entries: entries})) {
			return
		}

		// The server's view of the follower trails the avatar directly;
		// small noise stands in for simulation divergence
		if tick%snapshotEvery == 0 {
			if tr, ok := s.world.Components.Transforms.Get(s.avatar); ok {
				if !s.send(netsync.MarshalSnapshot(netsync.SnapshotEvent{
					NetID: followerNetID,
					X:     tr.X - 50 + rng.Float64()*6 - 3,
					Y:     tr.Y + rng.Float64()*6 - 3,
				})) {
					return
				}
			}
		}
	}
}

func (s *fakeServer) send(msg *netsync.Message) bool {
	s.seq++
	msg.Seq = s.seq
	if err := msg.Encode(s.w); err != nil {
		return false
	}
	return true
}
