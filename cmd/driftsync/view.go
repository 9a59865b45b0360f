package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/ashvale/driftsync/core"
	"github.com/ashvale/driftsync/engine"
	"github.com/ashvale/driftsync/parameter"
	"github.com/ashvale/driftsync/status"
)

// cellScale maps world units to terminal cells. Terminal cells are roughly
// twice as tall as wide, hence the asymmetry.
const (
	cellScaleX = 4.0
	cellScaleY = 8.0
)

// tcellSurface adapts a tcell screen to the engine's Surface contract
type tcellSurface struct {
	screen tcell.Screen
}

func (s *tcellSurface) Size() (int, int) {
	return s.screen.Size()
}

func (s *tcellSurface) SetCell(x, y int, r rune) {
	s.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
}

func (s *tcellSurface) Text(x, y int, str string) {
	for _, r := range str {
		s.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x += runewidth.RuneWidth(r)
	}
}

// viewSystem draws the simulation state. It runs last in the tick order and
// only reads component data.
type viewSystem struct {
	world    *engine.World
	avatar   core.Entity
	follower core.Entity
}

func newViewSystem(world *engine.World) *viewSystem {
	return &viewSystem{world: world}
}

func (v *viewSystem) Name() string { return "view" }

func (v *viewSystem) Priority() int { return parameter.PriorityPresentation }

func (v *viewSystem) Update(dt time.Duration) {}

func (v *viewSystem) Render(surface engine.Surface) {
	c := &v.world.Components
	w, h := surface.Size()

	draw := func(e core.Entity, glyph rune) {
		tr, ok := c.Transforms.Get(e)
		if !ok {
			return
		}
		x := int(tr.X / cellScaleX)
		y := int(tr.Y / cellScaleY)
		if x >= 0 && x < w && y >= 0 && y < h-1 {
			surface.SetCell(x, y, glyph)
		}
	}

	v.world.Query().With(c.Replicas).With(c.Transforms).Each(func(e core.Entity) {
		switch e {
		case v.follower:
			// Drawn separately below
		default:
			draw(e, 'o')
		}
	})
	draw(v.follower, '&')
	draw(v.avatar, '@')

	reg := v.world.Resources.Status
	hud := fmt.Sprintf(
		"replicas:%d snaps:%d hard:%d stale:%d | hjkl move, space stop, q quit",
		reg.Ints.Get(status.MetricReplicas).Load(),
		reg.Ints.Get(status.MetricSnapshotsApplied).Load(),
		reg.Ints.Get(status.MetricHardSnaps).Load(),
		reg.Ints.Get(status.MetricSnapshotsStale).Load(),
	)
	if runewidth.StringWidth(hud) > w {
		hud = runewidth.Truncate(hud, w, "…")
	}
	surface.Text(0, h-1, hud)
}
