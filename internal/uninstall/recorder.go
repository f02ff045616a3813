package uninstall

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mesosphere/uninstall-scheduler/internal/offerproto"
	"github.com/mesosphere/uninstall-scheduler/internal/store"
)

// Recorder implements component F: the observer of accepted operations. It
// is not a wrapper around the driver; the scheduler loop calls Record with
// every operation batch the driver accepted. It holds the live, in-memory
// task set the plan was built from, since it is the only component that
// mutates resources after plan-build time.
type Recorder struct {
	backing     store.Store
	namespace   string
	plan        *Plan
	tasksByName map[string]*TaskRecord
}

// NewRecorder builds a recorder over the task set a plan was built from. The
// recorder keeps pointers into tasks rather than a copy, so tombstoning a
// resource also rewrites the caller's slice in place; tombstoning is the
// only mutation the data model allows after plan construction.
func NewRecorder(backing store.Store, namespace string, plan *Plan, tasks []TaskRecord) *Recorder {
	byName := make(map[string]*TaskRecord, len(tasks))
	for i := range tasks {
		byName[tasks[i].Name] = &tasks[i]
	}
	return &Recorder{backing: backing, namespace: namespace, plan: plan, tasksByName: byName}
}

// Record processes one accepted operation batch: for every reservation it
// touches, it tombstones the owning task's resource durably and marks the
// matching release step COMPLETE. It returns an aggregated error (via
// go-multierror) so one bad reservation doesn't hide another's failure, but
// every reservation is still processed best-effort.
func (r *Recorder) Record(ops []offerproto.Operation) error {
	var agg error

	seen := make(map[string]struct{})
	for _, op := range ops {
		resID := op.Resource.ReservationID
		if resID == "" {
			continue
		}
		if _, ok := seen[resID]; ok {
			continue
		}
		seen[resID] = struct{}{}
		agg = appendError(agg, r.recordReservation(ReservationID(resID)))
	}
	return agg
}

func (r *Recorder) recordReservation(id ReservationID) error {
	if id.IsTombstoned() {
		return nil
	}

	var owner *TaskRecord
	for _, t := range r.tasksByName {
		for i, res := range t.Resources {
			if res.ReservationID != id {
				continue
			}
			owner = t
			t.Resources[i].ReservationID = id.Tombstone()
		}
	}

	var recordErr error
	if owner == nil {
		log.WithField("reservationId", id).Error("recorder: no owning task found for released reservation")
		recordErr = errors.Wrapf(ErrInvariantViolation, "no task owns reservation %q", id)
	} else if err := SaveTaskResources(r.backing, r.namespace, owner.Name, owner.Resources); err != nil {
		recordErr = errors.Wrapf(ErrStorageUnavailable, "persist tombstone for %q: %v", id, err)
	}

	// The step completes regardless of whether we could identify or persist
	// the owner: the master's acceptance of the operation is ground truth
	// (spec §7, InvariantViolation is an observability signal, not a
	// blocker).
	if step := r.plan.StepByAssetID(KindRelease, string(id)); step != nil {
		step.Complete()
	}

	return recordErr
}
