package uninstall

// PlanManager is the single plan manager/coordinator of component D. There
// is exactly one per scheduler process; no multi-plan arbitration is needed
// (spec §4.D).
type PlanManager struct {
	plan *Plan
}

// NewPlanManager wraps a freshly built plan.
func NewPlanManager(plan *Plan) *PlanManager {
	return &PlanManager{plan: plan}
}

// Plan returns the underlying plan, e.g. for the operator HTTP surface.
func (m *PlanManager) Plan() *Plan {
	return m.plan
}

// Candidates returns the eligible steps from the active phase.
func (m *PlanManager) Candidates() []*Step {
	return m.plan.Candidates()
}

// PlanStatus derives the plan's overall status the same way a phase derives
// its own from its steps: COMPLETE iff every phase is COMPLETE, else the
// most in-progress phase status.
func (m *PlanManager) PlanStatus() Status {
	phases := m.plan.Phases
	if len(phases) == 0 {
		return StatusComplete
	}
	most := phases[0].Status()
	for _, ph := range phases[1:] {
		s := ph.Status()
		if s == StatusComplete {
			continue
		}
		if most == StatusComplete || progressRank(s) > progressRank(most) {
			most = s
		}
	}
	return most
}

// IsComplete reports whether the whole plan is done.
func (m *PlanManager) IsComplete() bool {
	return m.plan.IsComplete()
}
