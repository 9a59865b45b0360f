// Package event carries simulation notifications from the sync layer to
// loosely coupled consumers (presentation, audio cues, telemetry views).
package event

import "github.com/ashvale/driftsync/core"

// Type identifies the kind of simulation event
type Type uint8

const (
	TypeNone Type = iota

	// TypeReplicaSpawned fires when the sync layer creates a replica entity
	TypeReplicaSpawned

	// TypeReplicaRemoved fires when a replica is destroyed by a remove event
	TypeReplicaRemoved

	// TypeSnapshotApplied fires when a fresh server snapshot was blended
	// into a tracked entity
	TypeSnapshotApplied

	// TypeSnapshotStale fires when a snapshot aged past the staleness
	// window and was discarded
	TypeSnapshotStale

	// TypeHardSnap fires when a snapshot divergence exceeded the snap
	// threshold and the position was replaced outright
	TypeHardSnap

	// TypeTeleport fires when an external move exceeded the teleport
	// threshold and runtime state was re-seeded
	TypeTeleport
)

// Event is a fixed-size record pushed by systems and the sync layer.
// Payloads are deliberately flat so the queue never allocates per event.
type Event struct {
	Type   Type
	Entity core.Entity
	Frame  int64
}
