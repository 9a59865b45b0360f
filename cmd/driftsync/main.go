// Command driftsync is an interactive terminal demonstration of the
// simulation core: a predictive avatar steered with hjkl/arrow keys, a
// reconciled follower trailing it, and a set of server-owned replicas fed
// by an embedded fake server over the framed wire codec.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ashvale/driftsync/audio"
	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/event"
	"github.com/ashvale/driftsync/netsync"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/system"
)

const localClient = core.ClientID("local-player")

var (
	soundFlag = flag.Bool("sound", false, "play audio cues on replica spawn/remove")
	dropFlag  = flag.Float64("drop", 0, "fraction of server update messages to drop (0..1)")
)

func main() {
	flag.Parse()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	// Ensure terminal is restored even if the tick loop panics
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()

	world := engine.NewWorld()
	manager := netsync.NewReplicaManager(world)

	world.AddSystem(system.NewMovementSystem(world, localClient))
	world.AddSystem(netsync.NewReconcileSystem(world))
	world.AddSystem(netsync.NewInterpolationSystem(world))
	world.AddSystem(system.NewExpirySystem(world))
	view := newViewSystem(world)
	world.AddSystem(view)

	avatar, follower := spawnLocalEntities(world, manager)
	world.Protect(avatar)
	view.avatar = avatar
	view.follower = follower

	var cues *audio.CueEngine
	if *soundFlag {
		cues = audio.NewCueEngine()
		if err := cues.Initialize(); err != nil {
			cues = nil
		} else {
			defer cues.Cleanup()
		}
	}

	server := newFakeServer(world, manager, avatar, *dropFlag)
	server.start()
	defer server.stop()

	keys := make(chan *tcell.EventKey, 16)
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case *tcell.EventKey:
				keys <- ev
			case *tcell.EventResize:
				screen.Sync()
			case nil:
				close(keys)
				return
			}
		}
	}()

	surface := &tcellSurface{screen: screen}
	ticker := time.NewTicker(parameter.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-keys:
			if !ok {
				return
			}
			if quit := handleKey(ev, world, avatar, cues); quit {
				return
			}
		case <-ticker.C:
			world.Update(parameter.TickInterval)
			drainEvents(world, cues)

			screen.Clear()
			world.Render(surface)
			screen.Show()
		}
	}
}

func spawnLocalEntities(world *engine.World, manager *netsync.ReplicaManager) (avatar, follower core.Entity) {
	c := &world.Components
	now := time.Now()

	avatar = engine.With(
		engine.With(
			engine.With(world.NewEntity(), c.Transforms, component.TransformComponent{X: 120, Y: 80}),
			c.Velocities, component.VelocityComponent{},
		),
		c.Authorities, component.AuthorityComponent{
			OwnerID:    localClient,
			Level:      component.ClientPredictive,
			LastUpdate: now,
		},
	).Build()

	// The follower is locally simulated every tick but corrected by the
	// fake server's periodic snapshots, routed through its net id.
	follower = manager.HandleSpawn(netsync.SpawnEvent{
		NetID: followerNetID,
		Kind:  "companion",
		Pose:  netsync.Pose{X: 60, Y: 80},
	})
	c.InterpTargets.Remove(follower)
	c.Follows.Set(follower, component.FollowComponent{Owner: avatar})

	return avatar, follower
}

func handleKey(ev *tcell.EventKey, world *engine.World, avatar core.Entity, cues *audio.CueEngine) bool {
	const speed = 90.0
	c := &world.Components

	vel, _ := c.Velocities.Get(avatar)
	switch {
	case ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
		return true
	case ev.Key() == tcell.KeyLeft || (ev.Key() == tcell.KeyRune && ev.Rune() == 'h'):
		vel.VX, vel.VY = -speed, 0
	case ev.Key() == tcell.KeyRight || (ev.Key() == tcell.KeyRune && ev.Rune() == 'l'):
		vel.VX, vel.VY = speed, 0
	case ev.Key() == tcell.KeyUp || (ev.Key() == tcell.KeyRune && ev.Rune() == 'k'):
		vel.VX, vel.VY = 0, -speed
	case ev.Key() == tcell.KeyDown || (ev.Key() == tcell.KeyRune && ev.Rune() == 'j'):
		vel.VX, vel.VY = 0, speed
	case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
		vel.VX, vel.VY = 0, 0
	case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
		if cues != nil {
			cues.SetMuted(true)
		}
	}
	c.Velocities.Set(avatar, vel)
	return false
}

func drainEvents(world *engine.World, cues *audio.CueEngine) {
	for _, ev := range world.Resources.Events.Consume() {
		if cues == nil {
			continue
		}
		switch ev.Type {
		case event.TypeReplicaSpawned:
			cues.Play(audio.CueSpawn)
		case event.TypeReplicaRemoved:
			cues.Play(audio.CueRemove)
		case event.TypeHardSnap:
			cues.Play(audio.CueHardSnap)
		}
	}
}
