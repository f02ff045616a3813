package uninstall

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Sentinel error kinds (spec §7). None of these are fatal to the process —
// each is handled locally by the component that encounters it and reported
// to the caller, which logs and continues to the next offer cycle.
var (
	// ErrStorageUnavailable means the persistent store failed; the current
	// callback fails and the driver will redeliver the offer or status later.
	ErrStorageUnavailable = errors.New("uninstall: persistent store unavailable")

	// ErrMasterRejected means an accept/kill call was rejected by the master;
	// the affected step stays PREPARED and the next offer cycle retries.
	ErrMasterRejected = errors.New("uninstall: master rejected request")

	// ErrSecretsUnavailable means the secrets client failed; the TLS-cleanup
	// step stays PENDING and is retried on the next tick.
	ErrSecretsUnavailable = errors.New("uninstall: secrets client unavailable")

	// ErrInvariantViolation is raised when an expected invariant doesn't
	// hold (e.g. the recorder can't find the task that owns a released
	// reservation). It is logged at error level but never blocks progress:
	// the master's view is ground truth, and the affected step still
	// completes.
	ErrInvariantViolation = errors.New("uninstall: invariant violation")
)

// appendError accumulates err onto agg using go-multierror, so a single
// offer cycle can report every step's fault without one error hiding
// another (spec §7's aggregation requirement).
func appendError(agg error, err error) error {
	if err == nil {
		return agg
	}
	return multierror.Append(agg, err)
}
