// Package system holds the gameplay-side systems that run alongside the
// sync layer in the fixed tick order.
package system

import (
	"time"

	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/parameter"
)

// MovementSystem integrates velocity into the live transform for entities
// the local client is allowed to control. Server-authoritative entities are
// skipped entirely: their pose moves only through the sync layer.
type MovementSystem struct {
	world    *engine.World
	clientID core.ClientID
}

func NewMovementSystem(world *engine.World, clientID core.ClientID) *MovementSystem {
	return &MovementSystem{world: world, clientID: clientID}
}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Priority() int { return parameter.PriorityMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	c := &s.world.Components
	dts := dt.Seconds()

	s.world.Query().
		With(c.Transforms).
		With(c.Velocities).
		Each(func(e core.Entity) {
			auth, ok := c.Authorities.Get(e)
			if !ok || !auth.CanBeControlledBy(s.clientID) {
				return
			}
			vel, ok := c.Velocities.Get(e)
			if !ok {
				return
			}
			tr, ok := c.Transforms.Get(e)
			if !ok {
				return
			}

			tr.X += vel.VX * dts
			tr.Y += vel.VY * dts
			c.Transforms.Set(e, tr)
		})
}
