package component

import (
	"time"

	"github.com/ashvale/driftsync/core"
)

// AuthorityLevel classifies who may legally write an entity's pose
type AuthorityLevel uint8

const (
	// ServerAuthoritative entities are never moved by local game logic
	// except through the sync layer
	ServerAuthoritative AuthorityLevel = iota

	// ClientPredictive entities may be moved locally but are expected to
	// reconcile against server state
	ClientPredictive

	// ClientLocal entities (UI markers, transient effects) never synchronize
	ClientLocal
)

func (l AuthorityLevel) String() string {
	switch l {
	case ServerAuthoritative:
		return "server"
	case ClientPredictive:
		return "predictive"
	case ClientLocal:
		return "local"
	}
	return "unknown"
}

// AuthorityComponent holds per-entity ownership and trust metadata
type AuthorityComponent struct {
	OwnerID    core.ClientID
	Level      AuthorityLevel
	LastUpdate time.Time
	Predicted  bool
}

// CanBeControlledBy reports whether the given client may mutate this
// entity's pose through ordinary game logic. Server-owned entities always
// answer false; they move only through the sync layer.
func (a *AuthorityComponent) CanBeControlledBy(id core.ClientID) bool {
	if a.Level == ServerAuthoritative {
		return false
	}
	return a.OwnerID == id
}

// NeedsSynchronization reports whether the entity participates in network
// state exchange at all
func (a *AuthorityComponent) NeedsSynchronization() bool {
	return a.Level != ClientLocal
}

// MarkAsPredicted flags the local state as a guess awaiting confirmation
func (a *AuthorityComponent) MarkAsPredicted(now time.Time) {
	a.Predicted = true
	a.LastUpdate = now
}

// ConfirmFromServer clears the prediction flag after authoritative state
// has been applied
func (a *AuthorityComponent) ConfirmFromServer(now time.Time) {
	a.Predicted = false
	a.LastUpdate = now
}
