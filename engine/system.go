package engine

import "time"

// System is a unit of simulation logic invoked once per tick.
// Priority defines the canonical tick order: lower values run first, and
// the order never changes mid-session.
type System interface {
	Name() string
	Priority() int
	Update(dt time.Duration)
}

// Renderer is implemented by systems that draw to the presentation surface.
// World.Render walks systems in the same fixed order as Update.
type Renderer interface {
	Render(surface Surface)
}

// Surface is the minimal drawing contract handed to render-capable systems.
// The terminal client backs it with a tcell screen; tests back it with an
// in-memory grid.
type Surface interface {
	Size() (w, h int)
	SetCell(x, y int, r rune)
	Text(x, y int, s string)
}
