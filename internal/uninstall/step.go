package uninstall

// Status is a step's position in its lifecycle.
type Status int

// Recognized step statuses (spec §3/§4.C).
const (
	StatusPending Status = iota
	StatusPrepared
	StatusStarting
	StatusComplete
	StatusError
	StatusWaiting
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusPrepared:
		return "PREPARED"
	case StatusStarting:
		return "STARTING"
	case StatusComplete:
		return "COMPLETE"
	case StatusError:
		return "ERROR"
	case StatusWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}

// Kind tags what kind of real-world action a step represents. Steps are a
// tagged-variant data type (spec §9, "plan as data, not code") rather than an
// interface with per-kind implementations; the kind-specific action lives in
// Scheduler, which switches on Kind.
type Kind int

// Step kinds.
const (
	KindKill Kind = iota
	KindRelease
	KindTLS
	KindDeregister
)

func (k Kind) String() string {
	switch k {
	case KindKill:
		return "kill"
	case KindRelease:
		return "release"
	case KindTLS:
		return "tls"
	case KindDeregister:
		return "deregister"
	default:
		return "unknown"
	}
}

// Step is one node of the plan. AssetID names the real-world object the step
// acts on: a task name for kill steps, a reservation ID for release steps,
// the service namespace for the TLS step, or deregisterAssetID ("deregister")
// for the deregister step.
type Step struct {
	Name    string
	Kind    Kind
	AssetID string
	Status  Status
}

// Eligible reports whether the step is a candidate for work: only PENDING,
// PREPARED, and ERROR steps are (spec §4.C; ERROR's "retryable, returns to
// PENDING next tick" is realized here by treating ERROR as eligible rather
// than introducing a separate reset pass — the next call to Start() is the
// "next tick").
func (s *Step) Eligible() bool {
	switch s.Status {
	case StatusPending, StatusPrepared, StatusError:
		return true
	default:
		return false
	}
}

// Start is the idempotent PENDING/ERROR --start()--> PREPARED transition.
// Calling it on a step that has already progressed past PREPARED, or that is
// already COMPLETE, is a no-op.
func (s *Step) Start() {
	switch s.Status {
	case StatusPending, StatusError:
		s.Status = StatusPrepared
	}
}

// Submit is the PREPARED --submit(op)--> STARTING transition: an operation
// has been handed to the driver for this step's asset but not yet confirmed.
func (s *Step) Submit() {
	if s.Status == StatusPrepared {
		s.Status = StatusStarting
	}
}

// Complete is monotonic (I4): once COMPLETE, further calls are no-ops, and it
// may be called from any non-complete status. The recorder relies on this to
// mark a release step COMPLETE even when it was never explicitly started —
// the cleaner does not match offers to steps (§4.E), so a step can go
// straight from PENDING to COMPLETE within one offer cycle.
func (s *Step) Complete() {
	s.Status = StatusComplete
}

// Fail is the any --fail()--> ERROR transition.
func (s *Step) Fail() {
	if s.Status != StatusComplete {
		s.Status = StatusError
	}
}

// Wait marks a step as blocked on something other than the phase gate (e.g.
// an in-flight driver call this tick should not re-issue). Not exercised by
// any of the literal scenarios but kept for API completeness per §3's status
// enum.
func (s *Step) Wait() {
	if s.Status != StatusComplete {
		s.Status = StatusWaiting
	}
}
