package parameter

// System priorities define the canonical tick order. Lower runs first.
// The order is a correctness contract: staged sync data must be consumed
// after local intent has moved predictive entities and before anything
// renders the results.
const (
	PriorityInput         = 10
	PriorityMovement      = 20
	PriorityReconcile     = 30
	PriorityInterpolation = 40
	PriorityExpirySweep   = 50
	PriorityPresentation  = 90
)
