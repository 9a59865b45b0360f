package system

import (
	"time"

	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/parameter"
)

// ExpirySystem sweeps transient effect entities whose lifetime has lapsed.
// It destroys entities mid-iteration, so it consumes the materialized
// query snapshot, never the live view.
type ExpirySystem struct {
	world *engine.World
}

func NewExpirySystem(world *engine.World) *ExpirySystem {
	return &ExpirySystem{world: world}
}

func (s *ExpirySystem) Name() string { return "expiry" }

func (s *ExpirySystem) Priority() int { return parameter.PriorityExpirySweep }

func (s *ExpirySystem) Update(dt time.Duration) {
	c := &s.world.Components
	now := s.world.Resources.Time.Now

	for _, e := range s.world.Query().With(c.Effects).Execute() {
		eff, ok := c.Effects.Get(e)
		if !ok {
			continue
		}
		if now.After(eff.ExpiresAt) {
			s.world.DestroyEntity(e)
		}
	}
}
