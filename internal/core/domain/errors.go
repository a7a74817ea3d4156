package domain

import "errors"

// Domain errors represent pipeline-level failures.
// Per-pair geometry failures are recovered locally and counted in the run
// summary; these sentinels mark the conditions that abort a load or a
// snapshot-pair run.
var (
	// ErrDuplicateIdentifier indicates two records in one snapshot share
	// an identifier. The source data is ambiguous and the load cannot
	// proceed.
	ErrDuplicateIdentifier = errors.New("duplicate identifier in snapshot")

	// ErrGeometryRepairFailed indicates a geometry could not be made
	// valid even by the buffering fallback.
	ErrGeometryRepairFailed = errors.New("geometry repair failed")

	// ErrSnapshotMissing indicates a snapshot's polygon layer could not
	// be found. Only the pairs involving that snapshot are affected.
	ErrSnapshotMissing = errors.New("snapshot missing")

	// ErrInvalidInput indicates malformed configuration or input.
	ErrInvalidInput = errors.New("invalid input")
)
