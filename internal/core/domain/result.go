package domain

import "errors"

// Outcome discriminates the result of a public engine operation.
type Outcome string

const (
	// OutcomeSuccess means the operation completed and any persisted state
	// was fully committed.
	OutcomeSuccess Outcome = "success"
	// OutcomeConflict means resolution found irreconcilable duplicate
	// dependency requests.
	OutcomeConflict Outcome = "conflict"
	// OutcomeIntegrityDrift means on-disk state disagrees with the lock
	// document.
	OutcomeIntegrityDrift Outcome = "integrity-drift"
	// OutcomeCommandFailure means a migration or verification command failed
	// and the transaction rolled back.
	OutcomeCommandFailure Outcome = "command-failure"
	// OutcomeAborted means the operation stopped before or instead of
	// committing, for any other reason.
	OutcomeAborted Outcome = "aborted"
)

// Result is the discriminated result every public operation returns. It is
// never a bare boolean: callers branch on Outcome and read the payload that
// applies.
type Result struct {
	Outcome Outcome

	// Err carries the originating failure for non-success outcomes.
	Err error

	// Resolved holds the resolution for resolve and upgrade operations.
	Resolved *Resolution

	// Integrity holds the per-dependency reports for status operations.
	Integrity []IntegrityReport

	// Applied lists the change IDs whose migration and verification both
	// completed during an upgrade, in application order.
	Applied []string
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Success builds a success result.
func Success() Result {
	return Result{Outcome: OutcomeSuccess}
}

// Failure builds a result whose outcome is classified from err.
func Failure(err error) Result {
	return Result{Outcome: ClassifyError(err), Err: err}
}

// ClassifyError maps an engine error to its result outcome.
func ClassifyError(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrConflict):
		return OutcomeConflict
	case errors.Is(err, ErrIntegrityDrift):
		return OutcomeIntegrityDrift
	case errors.Is(err, ErrCommandFailed):
		return OutcomeCommandFailure
	default:
		return OutcomeAborted
	}
}
