package uninstall

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
)

// Inventory is the output of the resource-inventory pass over the persisted
// task set: which tasks need killing, and which distinct reservations need
// releasing.
type Inventory struct {
	KillTargets    []string
	ReleaseTargets []ReservationID
}

// ComputeInventory implements component A (spec §4.A). Kill targets are
// every task that still owns an unreleased resource, or that is permanently
// failed in error (it contributes its name but none of its resources).
// Release targets are the distinct, non-tombstoned reservation IDs owned by
// every task that is not permanently failed in error; duplicates across
// tasks (a shared volume, say) coalesce to one target (I5).
//
// Both sets are built as emirpasic/gods treesets (the same ordered-container
// choice determined-ai/determined's resourcemanagers.taskList makes for its
// own dedup-and-order problem) rather than a map-plus-sort, so dedup and
// deterministic ordering fall out of the same structure.
func ComputeInventory(tasks []TaskRecord) Inventory {
	kill := treeset.NewWith(utils.StringComparator)
	release := treeset.NewWith(utils.StringComparator)

	for _, t := range tasks {
		failedInError := t.PermanentlyFailedInError()
		if t.OwnsUnreleasedResource() || failedInError {
			kill.Add(t.Name)
		}
		if failedInError {
			continue
		}
		for _, r := range t.Resources {
			if !r.Released() {
				release.Add(string(r.ReservationID))
			}
		}
	}

	return Inventory{
		KillTargets:    toStrings(kill),
		ReleaseTargets: toReservationIDs(release),
	}
}

func toStrings(set *treeset.Set) []string {
	values := set.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.(string)
	}
	return out
}

func toReservationIDs(set *treeset.Set) []ReservationID {
	values := set.Values()
	out := make([]ReservationID, len(values))
	for i, v := range values {
		out[i] = ReservationID(v.(string))
	}
	return out
}
