// Package taskindex provides an in-memory, multi-index store of markdown
// task records.
//
// taskindex is derived state, not a database: the markdown files are the
// source of truth, and the index is rebuilt from them whenever it is
// missing or stale. It keeps a primary id lookup, secondary indices by
// file, status, project, due date and priority, a bounded LRU front
// cache, and a version counter that increases on every mutation.
//
// # Basic Usage
//
//	idx, err := taskindex.New(taskindex.Options{})
//	if err != nil {
//	    // invalid options
//	}
//
//	// Write
//	_ = idx.Insert(rec)
//	_ = idx.UpdateFileTasks("notes/today.md", recs)
//
//	// Read
//	rec, err := idx.Get("7d9f1c3a")
//	open := idx.Query(taskindex.NewQuery().
//	    WithStatus(taskindex.StatusTodo).
//	    WithProject("work"))
//
//	// Persist across restarts
//	blob, _ := idx.Serialize()
//	_ = idx.Deserialize(blob)
//
// # Concurrency
//
// All methods are safe for concurrent use. One lock guards every
// structure, so each operation observes and leaves a fully consistent
// index; there is no per-index locking to get out of sync.
//
// # Error Handling
//
// Errors fall into two categories:
//
// Rebuild errors ([ErrSnapshotDecode]): discard the snapshot and rebuild
// the index by rescanning the vault.
//
// Caller errors ([ErrTaskNotFound], [ErrConsistency]): the first is
// routine and safe to tolerate; the second indicates an index bug and
// should be reported, not repaired.
package taskindex
