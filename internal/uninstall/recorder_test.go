package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesosphere/uninstall-scheduler/internal/offerproto"
	"github.com/mesosphere/uninstall-scheduler/internal/store"
)

func newTestRecorder(t *testing.T, namespace string, tasks []TaskRecord, plan *Plan) (*Recorder, store.Store) {
	t.Helper()
	backing := store.NewMemory()
	for _, task := range tasks {
		seedTask(t, backing, namespace, task)
	}
	return NewRecorder(backing, namespace, plan, tasks), backing
}

func TestRecorder_RecordTombstonesAndCompletesStep(t *testing.T) {
	const namespace = "svc"
	tasks := []TaskRecord{{Name: "a", Resources: []Resource{{ReservationID: "r1"}}}}
	plan := &Plan{Phases: []*Phase{{Name: "release", Parallel: true, Steps: []*Step{
		{Name: "release-r1", Kind: KindRelease, AssetID: "r1", Status: StatusPrepared},
	}}}}
	recorder, backing := newTestRecorder(t, namespace, tasks, plan)

	err := recorder.Record([]offerproto.Operation{{
		Type:     offerproto.OpUnreserve,
		Resource: offerproto.Resource{ReservationID: "r1"},
	}})
	require.NoError(t, err)

	assert.Equal(t, StatusComplete, plan.Steps()[0].Status)
	assert.True(t, tasks[0].Resources[0].Released(), "recorder tombstones the caller's task slice in place")

	reloaded, err := LoadTasks(backing, namespace)
	require.NoError(t, err)
	require.Len(t, reloaded, 1)
	assert.True(t, reloaded[0].Resources[0].Released(), "tombstone must be durably persisted")
}

func TestRecorder_RecordDedupesWithinOneBatch(t *testing.T) {
	const namespace = "svc"
	tasks := []TaskRecord{{Name: "a", Resources: []Resource{{ReservationID: "r1"}}}}
	plan := &Plan{Phases: []*Phase{{Name: "release", Parallel: true, Steps: []*Step{
		{Name: "release-r1", Kind: KindRelease, AssetID: "r1", Status: StatusPrepared},
	}}}}
	recorder, _ := newTestRecorder(t, namespace, tasks, plan)

	// A volume's DESTROY and UNRESERVE both name the same reservation; it
	// must be recorded once, not twice.
	err := recorder.Record([]offerproto.Operation{
		{Type: offerproto.OpDestroy, Resource: offerproto.Resource{ReservationID: "r1"}},
		{Type: offerproto.OpUnreserve, Resource: offerproto.Resource{ReservationID: "r1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, plan.Steps()[0].Status)
}

func TestRecorder_AlreadyTombstonedReservationIsIgnored(t *testing.T) {
	const namespace = "svc"
	tasks := []TaskRecord{{Name: "a", Resources: []Resource{{ReservationID: ReservationID("r1").Tombstone()}}}}
	plan := &Plan{}
	recorder, _ := newTestRecorder(t, namespace, tasks, plan)

	err := recorder.Record([]offerproto.Operation{{
		Resource: offerproto.Resource{ReservationID: string(ReservationID("r1").Tombstone())},
	}})
	assert.NoError(t, err)
}

// TestRecorder_NoOwningTaskStillCompletesStep pins the InvariantViolation
// case of spec §7 and §9: the master's acceptance is ground truth, so the
// step completes even when no task in memory owns the reservation.
func TestRecorder_NoOwningTaskStillCompletesStep(t *testing.T) {
	const namespace = "svc"
	plan := &Plan{Phases: []*Phase{{Name: "release", Parallel: true, Steps: []*Step{
		{Name: "release-r1", Kind: KindRelease, AssetID: "r1", Status: StatusPrepared},
	}}}}
	recorder, _ := newTestRecorder(t, namespace, nil, plan)

	err := recorder.Record([]offerproto.Operation{{
		Resource: offerproto.Resource{ReservationID: "r1"},
	}})
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, StatusComplete, plan.Steps()[0].Status)
}

func TestRecorder_EmptyReservationIDSkipped(t *testing.T) {
	const namespace = "svc"
	recorder, _ := newTestRecorder(t, namespace, nil, &Plan{})
	err := recorder.Record([]offerproto.Operation{{Resource: offerproto.Resource{}}})
	assert.NoError(t, err)
}
