package component

// TransformComponent is the live pose of an entity in world units.
// The tick loop is the sole writer; network delivery never touches it
// directly, only the staging components.
type TransformComponent struct {
	X, Y     float64
	Rotation float64 // radians
}

// VelocityComponent is the current velocity in world units per second
type VelocityComponent struct {
	VX, VY float64
}
