// Package uninstall implements the uninstall coordinator: the plan builder,
// the plan/phase/step state machine, the offer-processing loop that drives
// it forward, the recorder that persists progress, and the restart gate.
//
// Grounded on determined-ai/determined's master/internal/resourcemanagers
// package (task_list.go, restore.go, scheduler.go) for the shape of a
// small, synchronously-driven scheduling core sitting on top of a
// persistent store, and on the original com.mesosphere.sdk.scheduler.plan
// / com.mesosphere.sdk.scheduler.uninstall Java packages (see
// _examples/original_source) for the domain semantics.
package uninstall

import "strings"

// ReservationID is an opaque identifier tagged onto every reserved resource.
type ReservationID string

// TombstonePrefix marks a reservation as already released. No legitimate
// reservation ID may begin with this prefix.
const TombstonePrefix = "uninstalled_"

// IsTombstoned reports whether id has already been marked as released.
func (id ReservationID) IsTombstoned() bool {
	return strings.HasPrefix(string(id), TombstonePrefix)
}

// Tombstone returns id rewritten with the tombstone prefix. Calling it on an
// already-tombstoned ID is a no-op (idempotent, matching the cleaner's
// no-op-on-tombstoned-IDs guarantee).
func (id ReservationID) Tombstone() ReservationID {
	if id.IsTombstoned() {
		return id
	}
	return ReservationID(TombstonePrefix + string(id))
}

// ResourceKind mirrors offerproto.ResourceKind for the persisted view of a
// task's resources; kept distinct so the persisted data model doesn't leak
// wire-protocol details.
type ResourceKind int

// Resource kinds a task record may own.
const (
	ResourceScalar ResourceKind = iota
	ResourceRange
	ResourceVolume
)

// Resource is one reservation belonging to a task, as recorded durably.
type Resource struct {
	ReservationID ReservationID
	Kind          ResourceKind
	Role          string
	Principal     string
}

// Released reports whether this resource's reservation has been tombstoned.
func (r Resource) Released() bool {
	return r.ReservationID.IsTombstoned()
}

// TaskStatusValue is the last known terminal/non-terminal status of a task,
// as persisted by the scheduler loop's status callback.
type TaskStatusValue int

// Recognized persisted task statuses.
const (
	TaskStatusUnknown TaskStatusValue = iota
	TaskStatusRunning
	TaskStatusFinished
	TaskStatusFailed
	TaskStatusError
	TaskStatusKilled
	TaskStatusLost
)

// TaskRecord is the persisted bookkeeping the coordinator reads at plan-build
// time and mutates (via the recorder) as reservations are released.
type TaskRecord struct {
	Name              string
	TaskID            string
	Resources         []Resource
	PermanentlyFailed bool
	LastStatus        TaskStatusValue
}

// errorTerminalStatuses is the set of statuses that, combined with
// PermanentlyFailed, exclude a task's exclusive resources from the release
// phase (spec §3: "permanently-failed-in-error").
var errorTerminalStatuses = map[TaskStatusValue]bool{
	TaskStatusError:  true,
	TaskStatusFailed: true,
}

// PermanentlyFailedInError reports whether this task is permanently failed
// AND its last status is one of the error-terminal statuses. Such a task
// still contributes its name to the kill phase but none of its resources to
// the release phase, because the master will never re-offer them.
//
// Note the deliberate asymmetry preserved from the original system: a task
// with LastStatus == TaskStatusError but PermanentlyFailed == false still
// keeps its resources in the release phase. See DESIGN.md for the Open
// Question this resolves.
func (t TaskRecord) PermanentlyFailedInError() bool {
	return t.PermanentlyFailed && errorTerminalStatuses[t.LastStatus]
}

// OwnsUnreleasedResource reports whether t still owns at least one resource
// whose reservation has not been tombstoned.
func (t TaskRecord) OwnsUnreleasedResource() bool {
	for _, r := range t.Resources {
		if !r.Released() {
			return true
		}
	}
	return false
}
