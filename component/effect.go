package component

import "time"

// EffectComponent marks a transient local entity (hit flash, despawn puff)
// that is destroyed once it expires. Effect entities are ClientLocal and
// never synchronize.
type EffectComponent struct {
	ExpiresAt time.Time
}
