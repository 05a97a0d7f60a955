package models

import "time"

// TransferOutcome is the terminal status of one transfer attempt.
type TransferOutcome string

const (
	TransferSuccess TransferOutcome = "SUCCESS"
	TransferFailed  TransferOutcome = "FAILED"
)

// FailureReason narrows why a transfer attempt failed.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureCopyRequest       FailureReason = "COPY_REQUEST"
	FailureCopyTimeout       FailureReason = "COPY_TIMEOUT"
	FailureIntegrityMismatch FailureReason = "INTEGRITY_MISMATCH"
)

// TransferResult reports the resolution of one transfer attempt.
type TransferResult struct {
	Outcome      TransferOutcome
	Reason       FailureReason
	SourcePath   string
	DestPath     string
	Size         int64
	DeleteFailed bool   // copy succeeded but the configured source delete did not
	Detail       string // human-readable annotation (delete failure, sizes on mismatch)
	Err          error
}

// Succeeded reports whether the copy (and verification) completed. A failed
// source delete does not demote a success; duplicate data is preferred over
// data loss.
func (r TransferResult) Succeeded() bool {
	return r.Outcome == TransferSuccess
}

// LedgerRecord is one durable row of the processed-file ledger.
type LedgerRecord struct {
	Identity      string
	SourcePath    string
	DestPath      string
	Size          int64
	Outcome       TransferOutcome
	Detail        string
	TransferredAt time.Time
}
