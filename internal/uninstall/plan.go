package uninstall

// Phase is an ordered group of steps that, as a whole, gates the next phase
// (spec §4.C's phase-gate rule). Parallel phases (release, tls) surface every
// eligible non-complete step as a candidate at once; strict phases (kill,
// deregister) surface only the first non-complete step, in Steps order, so
// that within-phase order is respected the way §4.C requires.
type Phase struct {
	Name     string
	Steps    []*Step
	Parallel bool
}

// Complete reports whether every step in the phase is COMPLETE.
func (p *Phase) Complete() bool {
	for _, s := range p.Steps {
		if s.Status != StatusComplete {
			return false
		}
	}
	return true
}

// candidates returns this phase's currently eligible steps, honoring the
// strict/parallel ordering rule. It does not consider the phase gate itself
// (§4.C) — that is enforced by the caller, Plan.Candidates.
func (p *Phase) candidates() []*Step {
	if p.Parallel {
		var out []*Step
		for _, s := range p.Steps {
			if s.Eligible() {
				out = append(out, s)
			}
		}
		return out
	}
	for _, s := range p.Steps {
		if s.Status == StatusComplete {
			continue
		}
		if s.Eligible() {
			return []*Step{s}
		}
		// Head of a strict phase is in flight (STARTING/WAITING); nothing in
		// this phase is a candidate this tick.
		return nil
	}
	return nil
}

// progressRank orders statuses from least to most progress for the purpose
// of deriving a phase's overall status (spec §3: "the most in-progress child
// status, with ties broken toward less progress"). ERROR is ranked just
// above PENDING: it represents an attempt that failed and will retry, so it
// is "less progress" than WAITING/PREPARED/STARTING but more than having
// never been touched. This ordering is an Open Question resolution recorded
// in DESIGN.md — the prose doesn't pin down where ERROR sits relative to the
// other non-terminal statuses.
func progressRank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusError:
		return 1
	case StatusWaiting:
		return 2
	case StatusPrepared:
		return 3
	case StatusStarting:
		return 4
	case StatusComplete:
		return 5
	default:
		return 0
	}
}

// Status derives the phase's overall status from its children.
func (p *Phase) Status() Status {
	if len(p.Steps) == 0 {
		return StatusComplete
	}
	most := p.Steps[0]
	for _, s := range p.Steps[1:] {
		if s.Status == StatusComplete {
			continue
		}
		if most.Status == StatusComplete || progressRank(s.Status) > progressRank(most.Status) {
			most = s
		}
	}
	return most.Status
}

// Plan is the ordered list of phases built once per scheduler process.
type Plan struct {
	Phases []*Phase
}

// Steps flattens every step across every phase, in plan order, for
// reporting (the operator HTTP surface) and for the literal test scenarios
// which assert on a flat list of statuses.
func (p *Plan) Steps() []*Step {
	var out []*Step
	for _, ph := range p.Phases {
		out = append(out, ph.Steps...)
	}
	return out
}

// IsComplete reports whether every phase (and so every step) is COMPLETE.
func (p *Plan) IsComplete() bool {
	for _, ph := range p.Phases {
		if !ph.Complete() {
			return false
		}
	}
	return true
}

// activePhase returns the earliest phase that is not yet COMPLETE, or nil if
// the whole plan is done.
func (p *Plan) activePhase() *Phase {
	for _, ph := range p.Phases {
		if !ph.Complete() {
			return ph
		}
	}
	return nil
}

// Candidates returns the union of eligible steps from the active phase
// (spec §4.D). The phase gate falls out directly from only ever looking at
// the earliest non-complete phase: later phases never contribute candidates
// until every earlier one is COMPLETE.
func (p *Plan) Candidates() []*Step {
	ph := p.activePhase()
	if ph == nil {
		return nil
	}
	return ph.candidates()
}

// StepByAssetID finds the first step of the given kind whose AssetID matches
// assetID, across every phase and whatever its status. Used by the recorder
// to map a released reservation back to its release step.
func (p *Plan) StepByAssetID(kind Kind, assetID string) *Step {
	for _, ph := range p.Phases {
		for _, s := range ph.Steps {
			if s.Kind == kind && s.AssetID == assetID {
				return s
			}
		}
	}
	return nil
}
