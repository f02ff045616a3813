package uninstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_StartIsIdempotent(t *testing.T) {
	s := &Step{Status: StatusPending}
	s.Start()
	assert.Equal(t, StatusPrepared, s.Status)
	s.Start()
	assert.Equal(t, StatusPrepared, s.Status)
}

func TestStep_CompleteIsMonotonic(t *testing.T) {
	s := &Step{Status: StatusComplete}
	s.Fail()
	assert.Equal(t, StatusComplete, s.Status, "COMPLETE must never leave once entered")
	s.Start()
	assert.Equal(t, StatusComplete, s.Status)
}

func TestStep_CompleteFromPendingDirectly(t *testing.T) {
	s := &Step{Status: StatusPending}
	s.Complete()
	assert.Equal(t, StatusComplete, s.Status)
}

func TestStep_FailThenEligibleAgain(t *testing.T) {
	s := &Step{Status: StatusPrepared}
	s.Fail()
	assert.Equal(t, StatusError, s.Status)
	assert.True(t, s.Eligible())
	s.Start()
	assert.Equal(t, StatusPrepared, s.Status)
}

func TestPhase_StrictOrderOnlyHeadIsCandidate(t *testing.T) {
	a := &Step{Name: "a", Status: StatusPending}
	b := &Step{Name: "b", Status: StatusPending}
	phase := &Phase{Steps: []*Step{a, b}, Parallel: false}

	assert.Equal(t, []*Step{a}, phase.candidates())

	a.Start()
	a.Submit()
	assert.Nil(t, phase.candidates(), "head is STARTING, not eligible, and blocks the rest of a strict phase")

	a.Complete()
	assert.Equal(t, []*Step{b}, phase.candidates())
}

func TestPhase_ParallelAllEligibleStepsAreCandidates(t *testing.T) {
	a := &Step{Name: "a", Status: StatusPending}
	b := &Step{Name: "b", Status: StatusPrepared}
	c := &Step{Name: "c", Status: StatusComplete}
	phase := &Phase{Steps: []*Step{a, b, c}, Parallel: true}

	assert.ElementsMatch(t, []*Step{a, b}, phase.candidates())
}

func TestPlan_PhaseGate(t *testing.T) {
	kill := &Step{Name: "kill", Status: StatusPending}
	release := &Step{Name: "release", Status: StatusPending}
	plan := &Plan{Phases: []*Phase{
		{Steps: []*Step{kill}, Parallel: false},
		{Steps: []*Step{release}, Parallel: true},
	}}

	assert.Equal(t, []*Step{kill}, plan.Candidates(), "release phase is gated until kill phase completes")

	kill.Complete()
	assert.Equal(t, []*Step{release}, plan.Candidates())
}
