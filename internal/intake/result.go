// Package intake implements the replay submission pipeline: validation,
// storage-key derivation, duplicate detection, and persistence.
package intake

// Outcome is the terminal state of one submission.
type Outcome string

const (
	// OutcomeStored means the replay was persisted at a new storage key.
	OutcomeStored Outcome = "stored"
	// OutcomeDuplicate means an object already existed at the derived key.
	OutcomeDuplicate Outcome = "duplicate_skipped"
	// OutcomeRejected means validation failed; nothing was written.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means a transient storage or I/O error occurred.
	OutcomeFailed Outcome = "failed"
)

// Reason codes attached to rejected and failed results. These are the only
// error details ever shown to users.
const (
	ReasonEmpty        = "empty"
	ReasonTooLarge     = "too_large"
	ReasonBadExtension = "bad_extension"
	ReasonBadHeader    = "bad_header"
	ReasonReadError    = "read_error"
	ReasonStorageError = "storage_error"
)

// Result is the outcome of one pipeline run, consumed once by the notifier.
type Result struct {
	Outcome Outcome
	Reason  string
	Key     string
}

// Stored reports whether the submission produced a new object.
func (r Result) Stored() bool {
	return r.Outcome == OutcomeStored
}

func rejected(reason string) Result {
	return Result{Outcome: OutcomeRejected, Reason: reason}
}

func failed(reason string) Result {
	return Result{Outcome: OutcomeFailed, Reason: reason}
}
