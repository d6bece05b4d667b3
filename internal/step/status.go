// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package step

// Status is the state of a Step within a single run.
type Status string

const (
	// NotRun is the status of every freshly loaded step.
	NotRun Status = "not-run"
	// Pending marks a step that has no ledger record and will be applied.
	Pending Status = "pending"
	// Ok marks a step that was applied during this run.
	Ok Status = "ok"
	// Skipped marks a step whose ledger record matches the local definition.
	Skipped Status = "skipped"
	// Error marks a step that is inconsistent with the ledger.
	Error Status = "error"
	// Rollback marks a step that was successfully compensated.
	Rollback Status = "rollback"
	// RollbackError marks a step whose compensation failed.
	RollbackError Status = "rollback-error"
)

// String returns the status as it appears in reports.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case NotRun, Pending, Ok, Skipped, Error, Rollback, RollbackError:
		return true
	}
	return false
}

// Compensable reports whether a step in this status can be compensated.
func (s Status) Compensable() bool {
	return s == Ok || s == Pending
}
