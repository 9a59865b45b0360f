package parameter

import "time"

// Simulation loop
const (
	// TickRate is the fixed update frequency of the local simulation
	TickRate = 60

	// TickInterval is the nominal duration of one simulation tick
	TickInterval = time.Second / TickRate
)

// Event queue
const (
	// EventQueueSize must be a power of two for mask-based indexing
	EventQueueSize  = 1024
	EventBufferMask = EventQueueSize - 1
)
