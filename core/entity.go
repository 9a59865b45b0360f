package core

// Entity is an opaque handle to a simulation object. The index half is
// recycled after destruction; the generation half is bumped on every reuse,
// so a handle held across a destroy compares unequal to the reborn slot and
// is detectably stale instead of silently aliasing a different object.
type Entity struct {
	Index      uint32
	Generation uint32
}

// NilEntity is the zero handle. It is never alive.
var NilEntity = Entity{}

// IsNil reports whether the handle is the zero value
func (e Entity) IsNil() bool {
	return e == NilEntity
}

// ClientID identifies a participant (this client, a peer, or the server)
// for authority ownership checks
type ClientID string

// ServerID is the well-known owner of all server-authoritative entities
const ServerID ClientID = "server"
