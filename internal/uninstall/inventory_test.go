package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeInventory_SimpleTask(t *testing.T) {
	tasks := []TaskRecord{
		{
			Name: "a",
			Resources: []Resource{
				{ReservationID: "r1", Kind: ResourceRange},
				{ReservationID: "r2", Kind: ResourceVolume},
				{ReservationID: "r3", Kind: ResourceScalar},
			},
		},
	}

	inv := ComputeInventory(tasks)
	assert.Equal(t, []string{"a"}, inv.KillTargets)
	assert.Equal(t, []ReservationID{"r1", "r2", "r3"}, inv.ReleaseTargets)
}

func TestComputeInventory_SharedVolumeCoalesces(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: "r1"}, {ReservationID: "r2"}, {ReservationID: "r3"}}},
		{Name: "b", Resources: []Resource{{ReservationID: "r2"}, {ReservationID: "r4"}}},
	}

	inv := ComputeInventory(tasks)
	assert.Equal(t, []string{"a", "b"}, inv.KillTargets)
	assert.Equal(t, []ReservationID{"r1", "r2", "r3", "r4"}, inv.ReleaseTargets)
}

func TestComputeInventory_PermanentlyFailedInErrorExcludesExclusiveResource(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: "r1"}, {ReservationID: "r2"}, {ReservationID: "r3"}}},
		{
			Name:              "b",
			PermanentlyFailed: true,
			LastStatus:        TaskStatusError,
			Resources:         []Resource{{ReservationID: "r2"}, {ReservationID: "r4"}},
		},
	}

	inv := ComputeInventory(tasks)
	// Both tasks still get killed (b contributes its name despite contributing
	// none of its resources), but r4 (b's exclusive resource) is omitted while
	// r2 (shared with a) is kept.
	assert.Equal(t, []string{"a", "b"}, inv.KillTargets)
	assert.Equal(t, []ReservationID{"r1", "r2", "r3"}, inv.ReleaseTargets)
}

// TestComputeInventory_ErrorWithoutPermanentlyFailedKeepsResources pins down
// the asymmetry spec §9 flags explicitly rather than "fixes": a task with
// lastStatus == ERROR but permanentlyFailed == false keeps its resources in
// the release phase.
func TestComputeInventory_ErrorWithoutPermanentlyFailedKeepsResources(t *testing.T) {
	tasks := []TaskRecord{
		{
			Name:              "a",
			PermanentlyFailed: false,
			LastStatus:        TaskStatusError,
			Resources:         []Resource{{ReservationID: "r1"}},
		},
	}

	inv := ComputeInventory(tasks)
	assert.Equal(t, []string{"a"}, inv.KillTargets)
	assert.Equal(t, []ReservationID{"r1"}, inv.ReleaseTargets)
}

func TestComputeInventory_TombstonedResourcesExcluded(t *testing.T) {
	tasks := []TaskRecord{
		{
			Name: "a",
			Resources: []Resource{
				{ReservationID: ReservationID("r1").Tombstone()},
				{ReservationID: "r2"},
				{ReservationID: "r3"},
			},
		},
	}

	inv := ComputeInventory(tasks)
	assert.Equal(t, []string{"a"}, inv.KillTargets) // still owns r2, r3
	assert.Equal(t, []ReservationID{"r2", "r3"}, inv.ReleaseTargets)
}

func TestComputeInventory_AllTombstonedNoFrameworkWork(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: ReservationID("r1").Tombstone()}}},
	}

	inv := ComputeInventory(tasks)
	assert.Empty(t, inv.KillTargets)
	assert.Empty(t, inv.ReleaseTargets)
}
