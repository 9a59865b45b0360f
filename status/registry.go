// Package status is a lightweight telemetry facade. Systems cache metric
// pointers during init; hot loops write directly to atomics.
package status

import "sync/atomic"

// Registry is the central metrics facade
type Registry struct {
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// Well-known metric keys written by the sync layer
const (
	MetricReplicas         = "sync.replicas"
	MetricSnapshotsApplied = "sync.snapshots_applied"
	MetricSnapshotsStale   = "sync.snapshots_stale"
	MetricHardSnaps        = "sync.hard_snaps"
	MetricTeleports        = "sync.teleports"
	MetricUnknownIDs       = "sync.unknown_ids"
	MetricBulkEntries      = "sync.bulk_entries"
)

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count()
}
