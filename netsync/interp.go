package netsync

import (
	"time"

	"github.com/ashvale/driftsync/component"
	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/vmath"
)

// InterpolationSystem advances the live transform of server-owned replicas
// toward their staged interpolation target every tick. The smoothing is
// exponential and frame-rate independent, so replica motion stays
// continuous between the server's lower-frequency updates instead of
// snapping on arrival.
type InterpolationSystem struct {
	world *engine.World
}

func NewInterpolationSystem(world *engine.World) *InterpolationSystem {
	return &InterpolationSystem{world: world}
}

func (s *InterpolationSystem) Name() string { return "interpolation" }

func (s *InterpolationSystem) Priority() int { return parameter.PriorityInterpolation }

func (s *InterpolationSystem) Update(dt time.Duration) {
	c := &s.world.Components
	dts := dt.Seconds()
	factor := vmath.SmoothFactor(parameter.InterpRate, dts)
	rotFactor := vmath.SmoothFactor(parameter.InterpRotationRate, dts)

	s.world.Query().
		With(c.Transforms).
		With(c.InterpTargets).
		Each(func(e core.Entity) {
			tr, ok := c.Transforms.Get(e)
			if !ok {
				return
			}
			target, ok := c.InterpTargets.Get(e)
			if !ok {
				return
			}

			// Local-authority entities keep their own motion even if a
			// stray target was staged
			if auth, ok := c.Authorities.Get(e); ok && auth.Level != component.ServerAuthoritative {
				return
			}

			dx := target.X - tr.X
			dy := target.Y - tr.Y
			dist := vmath.Magnitude(dx, dy)

			if dist <= parameter.InterpArriveEpsilon {
				tr.X = target.X
				tr.Y = target.Y
			} else {
				stepX := dx * factor
				stepY := dy * factor
				stepX, stepY = vmath.ClampMagnitude(stepX, stepY, parameter.InterpMaxStep)
				tr.X += stepX
				tr.Y += stepY
			}

			delta := vmath.WrapAngle(target.Rotation - tr.Rotation)
			tr.Rotation = vmath.WrapAngle(tr.Rotation + delta*rotFactor)

			c.Transforms.Set(e, tr)
		})
}
