// Package offerproto holds the wire-adjacent value types exchanged with the
// master over the offer protocol. These are plain Go structs, not generated
// protobuf bindings: the real wire format is owned by the driver, which is
// external to this coordinator (see the Driver interface below).
package offerproto

// ResourceKind identifies the shape of a Mesos-style resource.
type ResourceKind int

// Resource kinds recognized by the cleaner and recorder.
const (
	ResourceScalar ResourceKind = iota
	ResourceRange
	ResourceVolume
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceScalar:
		return "scalar"
	case ResourceRange:
		return "range"
	case ResourceVolume:
		return "volume"
	default:
		return "unknown"
	}
}

// Resource is a single reserved resource as it appears on an Offer.
type Resource struct {
	Name          string
	Kind          ResourceKind
	ReservationID string
	Role          string
	Principal     string
}

// Offer is one offer cycle's worth of resources on a single agent.
type Offer struct {
	ID        string
	AgentID   string
	Hostname  string
	Resources []Resource
}

// OperationType is the kind of change requested against a reservation.
type OperationType int

// Operation kinds the cleaner may emit.
const (
	OpUnreserve OperationType = iota
	OpDestroy
)

func (t OperationType) String() string {
	switch t {
	case OpUnreserve:
		return "UNRESERVE"
	case OpDestroy:
		return "DESTROY"
	default:
		return "UNKNOWN"
	}
}

// Operation is a single accept-call operation targeting one resource.
type Operation struct {
	Type     OperationType
	Resource Resource
}

// Filters accompanies accept/decline calls; the only field this coordinator
// cares about is the refusal window used when declining offers it has no use
// for (spec's "long decline window").
type Filters struct {
	RefuseSeconds float64
}

// TaskState is the terminal/non-terminal lifecycle state reported for a task.
type TaskState int

// Recognized task states. Values beyond these are treated as non-terminal.
const (
	TaskStaging TaskState = iota
	TaskStarting
	TaskRunning
	TaskFinished
	TaskFailed
	TaskKilled
	TaskLost
	TaskError
)

// IsTerminal reports whether a task in this state will not transition further.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskFinished, TaskFailed, TaskKilled, TaskLost, TaskError:
		return true
	default:
		return false
	}
}

func (s TaskState) String() string {
	switch s {
	case TaskStaging:
		return "TASK_STAGING"
	case TaskStarting:
		return "TASK_STARTING"
	case TaskRunning:
		return "TASK_RUNNING"
	case TaskFinished:
		return "TASK_FINISHED"
	case TaskFailed:
		return "TASK_FAILED"
	case TaskKilled:
		return "TASK_KILLED"
	case TaskLost:
		return "TASK_LOST"
	case TaskError:
		return "TASK_ERROR"
	default:
		return "TASK_UNKNOWN"
	}
}

// TaskStatus is a status update delivered by the driver for a single task.
type TaskStatus struct {
	TaskID  string
	State   TaskState
	Message string
}

// Driver is the offer-protocol driver this coordinator consumes. Its
// implementation (the connection to the real master) is out of scope for
// this package; production wiring supplies a concrete Driver from the
// surrounding scheduler framework.
type Driver interface {
	Accept(offerIDs []string, ops []Operation, filters Filters) error
	Decline(offerID string, filters Filters) error
	Kill(taskID string) error
	Reconcile(tasks []TaskStatus) error
	Deregister() error
}

// LongDecline is the "long" refusal window from spec §6: chosen so the
// master will not re-offer the same resources for a period large compared to
// the uninstall's expected duration.
const LongDecline = 2 * 60 * 60 // seconds
