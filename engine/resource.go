package engine

import (
	"time"

	"github.com/ashvale/driftsync/event"
	"github.com/ashvale/driftsync/status"
)

// Resource holds singleton simulation resources, initialized during World
// creation and accessed by systems via World.Resources
type Resource struct {
	Time   *TimeResource
	Status *status.Registry
	Events *event.Queue
}

// NewResource creates the resource set with all fields initialized
func NewResource() *Resource {
	return &Resource{
		Time:   &TimeResource{Now: time.Now()},
		Status: status.NewRegistry(),
		Events: event.NewQueue(),
	}
}

// TimeResource wraps time data for systems. Advanced by World.Update at the
// start of every tick, before any system runs.
type TimeResource struct {
	// Now is the simulation clock at the start of the current tick.
	// Systems use this, not time.Now(), so tests can drive virtual time.
	Now time.Time

	// DeltaTime is the duration since the last update
	DeltaTime time.Duration

	// FrameNumber is the current tick count
	FrameNumber int64
}

// Advance moves the simulation clock forward one tick
func (tr *TimeResource) Advance(dt time.Duration) {
	tr.Now = tr.Now.Add(dt)
	tr.DeltaTime = dt
	tr.FrameNumber++
}
