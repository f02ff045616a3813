package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesosphere/uninstall-scheduler/internal/secrets"
	"github.com/mesosphere/uninstall-scheduler/internal/servicespec"
)

func allStatuses(plan *Plan) []Status {
	var out []Status
	for _, s := range plan.Steps() {
		out = append(out, s.Status)
	}
	return out
}

func pending(n int) []Status {
	out := make([]Status, n)
	for i := range out {
		out[i] = StatusPending
	}
	return out
}

// TestBuildPlan_S1 is scenario S1: task A with 3 resources, framework ID
// present. Plan = 1 kill + 3 releases + 1 deregister, all PENDING.
func TestBuildPlan_S1(t *testing.T) {
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

	plan := BuildPlan(tasks, true, servicespec.ServiceSpec{}, nil)
	require.Len(t, plan.Steps(), 5)
	assert.Equal(t, pending(5), allStatuses(plan))
	assert.Equal(t, KindKill, plan.Steps()[0].Kind)
	assert.Equal(t, KindDeregister, plan.Steps()[4].Kind)
}

// TestBuildPlan_S2 is scenario S2: task A (r1,r2,r3) and task B (r2,r4); r2
// coalesces to one release step. Plan = 2 kills + 4 releases + deregister.
func TestBuildPlan_S2(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: "r1"}, {ReservationID: "r2"}, {ReservationID: "r3"}}},
		{Name: "b", Resources: []Resource{{ReservationID: "r2"}, {ReservationID: "r4"}}},
	}

	plan := BuildPlan(tasks, true, servicespec.ServiceSpec{}, nil)
	require.Len(t, plan.Steps(), 7)
	assert.Equal(t, pending(7), allStatuses(plan))
}

// TestBuildPlan_S3 is scenario S3: task B permanently failed in error, its
// exclusive resource r4 omitted, shared r2 kept. Plan = 2 kills + 3
// releases + deregister.
func TestBuildPlan_S3(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: "r1"}, {ReservationID: "r2"}, {ReservationID: "r3"}}},
		{
			Name: "b", PermanentlyFailed: true, LastStatus: TaskStatusError,
			Resources: []Resource{{ReservationID: "r2"}, {ReservationID: "r4"}},
		},
	}

	plan := BuildPlan(tasks, true, servicespec.ServiceSpec{}, nil)
	require.Len(t, plan.Steps(), 6)
	assert.Equal(t, pending(6), allStatuses(plan))
}

// TestBuildPlan_S4 is scenario S4: empty store, no framework ID. The plan
// is a trivial already-complete placeholder with no children.
func TestBuildPlan_S4(t *testing.T) {
	plan := BuildPlan(nil, false, servicespec.ServiceSpec{}, nil)
	assert.Empty(t, plan.Steps())
	assert.True(t, plan.IsComplete())
}

// TestBuildPlan_S5 is scenario S5: transport encryption declared and a
// secrets client present adds a TLS step between release and deregister.
func TestBuildPlan_S5(t *testing.T) {
	tasks := []TaskRecord{
		{Name: "a", Resources: []Resource{{ReservationID: "r1"}, {ReservationID: "r2"}, {ReservationID: "r3"}}},
	}
	spec := servicespec.ServiceSpec{
		Name: "my-service",
		Pods: []servicespec.PodSpec{{
			Tasks: []servicespec.TaskSpec{{
				Name:                "a",
				TransportEncryption: []servicespec.TransportEncryptionSpec{{Name: "server-cert"}},
			}},
		}},
	}

	plan := BuildPlan(tasks, true, spec, secrets.NewMemory(nil))
	require.Len(t, plan.Steps(), 6)
	assert.Equal(t, KindTLS, plan.Steps()[4].Kind)
	assert.Equal(t, "my-service", plan.Steps()[4].AssetID)
	assert.Equal(t, KindDeregister, plan.Steps()[5].Kind)
}

// TestBuildPlan_TLSOmittedWithoutSecretsClient checks the gate in §4.B
// phase 3: transport encryption alone isn't enough without a secrets client.
func TestBuildPlan_TLSOmittedWithoutSecretsClient(t *testing.T) {
	spec := servicespec.ServiceSpec{
		Pods: []servicespec.PodSpec{{
			Tasks: []servicespec.TaskSpec{{
				TransportEncryption: []servicespec.TransportEncryptionSpec{{Name: "server-cert"}},
			}},
		}},
	}

	plan := BuildPlan(nil, true, spec, nil)
	for _, s := range plan.Steps() {
		assert.NotEqual(t, KindTLS, s.Kind)
	}
}

// TestBuildPlan_S6 is the crash-restart half of S6: rebuilding after r1 was
// tombstoned only produces release steps for r2 and r3.
func TestBuildPlan_S6(t *testing.T) {
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

	plan := BuildPlan(tasks, true, servicespec.ServiceSpec{}, nil)
	var releaseAssetIDs []string
	for _, s := range plan.Steps() {
		if s.Kind == KindRelease {
			releaseAssetIDs = append(releaseAssetIDs, s.AssetID)
		}
	}
	assert.Equal(t, []string{"r2", "r3"}, releaseAssetIDs)
}
