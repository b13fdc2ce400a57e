package domain

import "time"

// SyncState is a node of the sync state machine.
type SyncState string

// Sync states. A cycle moves idle -> polling|syncing -> succeeded|failed.
const (
	SyncIdle      SyncState = "idle"
	SyncPolling   SyncState = "polling"
	SyncSyncing   SyncState = "syncing"
	SyncSucceeded SyncState = "succeeded"
	SyncFailed    SyncState = "failed"
)

// CycleKind distinguishes the fetch-only poll from the full sync.
type CycleKind string

// Cycle kinds.
const (
	CyclePoll CycleKind = "poll"
	CycleSync CycleKind = "sync"
)

// SyncStatus is the transient, process-wide sync status. It is never persisted.
type SyncStatus struct {
	State     SyncState `json:"state"`
	Cycle     CycleKind `json:"cycle,omitempty"`
	At        time.Time `json:"at,omitzero"`
	Reason    string    `json:"reason,omitempty"`
	Fetched   int       `json:"fetched"`
	Conflicts int       `json:"conflicts"`
	Pushed    int       `json:"pushed"`
}

// InFlight reports whether a cycle is running.
func (s SyncStatus) InFlight() bool {
	return s.State == SyncPolling || s.State == SyncSyncing
}

// Started returns the in-flight status for a cycle of the given kind.
func Started(kind CycleKind) SyncStatus {
	state := SyncPolling
	if kind == CycleSync {
		state = SyncSyncing
	}

	return SyncStatus{State: state, Cycle: kind}
}

// Succeeded returns a terminal success status stamped at.
func (s SyncStatus) Succeeded(at time.Time) SyncStatus {
	s.State = SyncSucceeded
	s.At = at
	s.Reason = ""

	return s
}

// Failed returns a terminal failure status with reason.
func (s SyncStatus) Failed(at time.Time, reason string) SyncStatus {
	s.State = SyncFailed
	s.At = at
	s.Reason = reason

	return s
}
