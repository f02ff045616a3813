package uninstall

import (
	"github.com/mesosphere/uninstall-scheduler/internal/secrets"
	"github.com/mesosphere/uninstall-scheduler/internal/servicespec"
)

// deregisterAssetID is the assetId §3 reserves for the terminal deregister
// step — it names no real-world object beyond the act itself.
const deregisterAssetID = "deregister"

// BuildPlan implements component B (spec §4.B). It reads the persisted task
// set exactly once, computes the resource inventory (component A), and lays
// out the kill, release, TLS-cleanup, and deregister phases in strict order.
//
// hasFrameworkID reflects whether a framework ID is currently persisted; the
// trivial-already-complete special case only applies when there is no work
// in any phase AND no framework ID. This agrees with the restart gate
// (component H) except for a permanently-failed-in-error task whose
// resources are all tombstoned: the gate skips registration for it, while
// the plan still carries its kill step and the deregister step.
func BuildPlan(
	tasks []TaskRecord,
	hasFrameworkID bool,
	spec servicespec.ServiceSpec,
	secretsClient secrets.Client,
) *Plan {
	inv := ComputeInventory(tasks)

	if len(inv.KillTargets) == 0 && len(inv.ReleaseTargets) == 0 && !hasFrameworkID {
		return &Plan{}
	}

	killSteps := make([]*Step, 0, len(inv.KillTargets))
	for _, name := range inv.KillTargets {
		killSteps = append(killSteps, &Step{Name: "kill-" + name, Kind: KindKill, AssetID: name, Status: StatusPending})
	}

	releaseSteps := make([]*Step, 0, len(inv.ReleaseTargets))
	for _, id := range inv.ReleaseTargets {
		releaseSteps = append(releaseSteps, &Step{
			Name: "release-" + string(id), Kind: KindRelease, AssetID: string(id), Status: StatusPending,
		})
	}

	phases := []*Phase{
		{Name: "kill", Steps: killSteps, Parallel: false},
		{Name: "release", Steps: releaseSteps, Parallel: true},
	}

	if spec.HasTransportEncryption() && secretsClient != nil {
		phases = append(phases, &Phase{
			Name: "tls-cleanup",
			Steps: []*Step{
				{Name: "tls-cleanup", Kind: KindTLS, AssetID: spec.Name, Status: StatusPending},
			},
			Parallel: false,
		})
	}

	phases = append(phases, &Phase{
		Name: "deregister",
		Steps: []*Step{
			{Name: "deregister", Kind: KindDeregister, AssetID: deregisterAssetID, Status: StatusPending},
		},
		Parallel: false,
	})

	return &Plan{Phases: phases}
}
