// Command soak runs the simulation headless at a fixed tick rate under
// synthetic server traffic, and prints telemetry counters at the end.
// Useful for profiling the tick loop and for long-running stability checks.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/profile"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/netsync"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/system"
)

var (
	ticksFlag    = flag.Int("ticks", 36000, "number of simulation ticks to run")
	replicasFlag = flag.Int("replicas", 200, "number of server-owned replicas")
	profileFlag  = flag.String("profile", "", "enable profiling: cpu or mem")
	seedFlag     = flag.Int64("seed", 1, "rng seed for synthetic traffic")
)

func main() {
	flag.Parse()

	switch *profileFlag {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	rng := rand.New(rand.NewSource(*seedFlag))

	world := engine.NewWorld()
	manager := netsync.NewReplicaManager(world)

	// Staging timestamps must follow simulation time, not the wall clock,
	// or every snapshot would look stale at soak speed
	manager.SetClock(func() time.Time { return world.Resources.Time.Now })

	const clientID = core.ClientID("soak")
	world.AddSystem(system.NewMovementSystem(world, clientID))
	world.AddSystem(netsync.NewReconcileSystem(world))
	world.AddSystem(netsync.NewInterpolationSystem(world))
	world.AddSystem(system.NewExpirySystem(world))

	c := &world.Components
	avatar := engine.With(
		engine.With(
			engine.With(world.NewEntity(), c.Transforms, component.TransformComponent{X: 500, Y: 500}),
			c.Velocities, component.VelocityComponent{VX: 50},
		),
		c.Authorities, component.AuthorityComponent{OwnerID: clientID, Level: component.ClientPredictive},
	).Build()

	follower := manager.HandleSpawn(netsync.SpawnEvent{NetID: 1, Kind: "companion", Pose: netsync.Pose{X: 420, Y: 500}})
	c.InterpTargets.Remove(follower)
	c.Follows.Set(follower, component.FollowComponent{Owner: avatar})

	for i := 0; i < *replicasFlag; i++ {
		manager.HandleSpawn(netsync.SpawnEvent{
			NetID: uint64(100 + i),
			Kind:  "drone",
			Pose:  netsync.Pose{X: rng.Float64() * 2000, Y: rng.Float64() * 2000},
		})
	}

	start := time.Now()
	for tick := 0; tick < *ticksFlag; tick++ {
		// A burst of replica motion every few ticks, batched the way a
		// real server would send it
		if tick%6 == 0 {
			entries := make([]netsync.UpdateEntry, 0, *replicasFlag)
			for i := 0; i < *replicasFlag; i++ {
				pose := netsync.Pose{
					X:        rng.Float64() * 2000,
					Y:        rng.Float64() * 2000,
					Rotation: rng.Float64() * 2 * math.Pi,
				}
				entries = append(entries, netsync.UpdateEntry{NetID: uint64(100 + i), Pose: &pose})
			}
			manager.HandleBulkUpdate(netsync.BulkUpdateEvent{Entries: entries})
		}

		if tick%18 == 0 {
			if tr, ok := c.Transforms.Get(avatar); ok {
				manager.SetServerSnapshot(follower, tr.X-50, tr.Y)
			}
		}

		world.Update(parameter.TickInterval)
		world.Resources.Events.Consume()
	}
	elapsed := time.Since(start)

	fmt.Printf("%d ticks, %d entities, %.1f ticks/s\n",
		*ticksFlag, world.EntityCount(), float64(*ticksFlag)/elapsed.Seconds())
	world.Resources.Status.Ints.Range(func(key string, ptr *atomic.Int64) {
		fmt.Printf("  %-28s %d\n", key, ptr.Load())
	})
}
