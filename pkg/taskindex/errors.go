package taskindex

import "errors"

// Sentinel errors returned by index operations.
//
// Callers should use [errors.Is] to check error types:
//
//	if errors.Is(err, taskindex.ErrTaskNotFound) {
//	    // task raced with a rescan; retry or skip
//	}
var (
	// ErrTaskNotFound indicates the requested task id is not in the index.
	//
	// Returned by [Index.Get], [Index.Update] and [Index.Remove]. This is
	// routine during rescans (a file edit can remove a task between a
	// lookup and the operation acting on it).
	//
	// Recovery: tolerate or retry after the next scan.
	ErrTaskNotFound = errors.New("taskindex: task not found")

	// ErrConsistency indicates a secondary index disagrees with the
	// primary store: a bucket references a missing task, or a task is
	// absent from a bucket it belongs to. The wrapped message names the
	// specific index and the offending id or key.
	//
	// This is a defect in index maintenance. Never recover silently;
	// surface it.
	ErrConsistency = errors.New("taskindex: consistency violation")

	// ErrSnapshotDecode indicates a snapshot blob is malformed, truncated,
	// corrupt, or written by an incompatible codec version. The index is
	// left untouched when this is returned.
	//
	// Recovery: discard the snapshot and rebuild from a full vault scan.
	ErrSnapshotDecode = errors.New("taskindex: snapshot decode")
)
