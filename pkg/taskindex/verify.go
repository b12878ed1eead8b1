package taskindex

import (
	"fmt"

	"github.com/google/btree"
)

// Verify audits the cross-structure invariants of the index and returns
// the first violation found as an [ErrConsistency], or nil when the index
// is coherent.
//
// Two directions are checked: every id in every secondary bucket must
// resolve to a primary record whose field matches the bucket key (no
// dangling or misplaced entries), and every primary record must appear in
// each bucket its fields select (no missing entries). A violation means
// a code bug, typically an upsert that skipped the remove-old-values
// step; callers should fail loudly, not repair.
func (idx *Index) Verify() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := idx.verifyBucketsLocked(); err != nil {
		return err
	}

	return idx.verifyRecordsLocked()
}

// verifyBucketsLocked walks every secondary entry and checks it against
// the primary mapping.
func (idx *Index) verifyBucketsLocked() error {
	for path, set := range idx.files {
		for id := range set {
			rec, ok := idx.tasks[id]
			if !ok {
				return fmt.Errorf("%w: file index %q references unknown task %s", ErrConsistency, path, id)
			}

			if rec.File != path {
				return fmt.Errorf("%w: file index %q holds task %s recorded in %q", ErrConsistency, path, id, rec.File)
			}
		}
	}

	for status, set := range idx.statuses {
		for id := range set {
			rec, ok := idx.tasks[id]
			if !ok {
				return fmt.Errorf("%w: status index %q references unknown task %s", ErrConsistency, status, id)
			}

			if rec.Status != status {
				return fmt.Errorf("%w: status index %q holds task %s with status %q", ErrConsistency, status, id, rec.Status)
			}
		}
	}

	for project, set := range idx.projects {
		for id := range set {
			rec, ok := idx.tasks[id]
			if !ok {
				return fmt.Errorf("%w: project index %q references unknown task %s", ErrConsistency, project, id)
			}

			if rec.Project != project {
				return fmt.Errorf("%w: project index %q holds task %s with project %q", ErrConsistency, project, id, rec.Project)
			}
		}
	}

	for priority, set := range idx.priorities {
		for id := range set {
			rec, ok := idx.tasks[id]
			if !ok {
				return fmt.Errorf("%w: priority index %q references unknown task %s", ErrConsistency, priority, id)
			}

			if rec.Priority != priority {
				return fmt.Errorf("%w: priority index %q holds task %s with priority %q", ErrConsistency, priority, id, rec.Priority)
			}
		}
	}

	var violation error

	idx.due.Ascend(func(item btree.Item) bool {
		bucket := item.(*dueBucket)

		for id := range bucket.ids {
			rec, ok := idx.tasks[id]
			if !ok {
				violation = fmt.Errorf("%w: due index %s references unknown task %s", ErrConsistency, bucket.date, id)

				return false
			}

			if rec.Due != bucket.date {
				violation = fmt.Errorf("%w: due index %s holds task %s due %s", ErrConsistency, bucket.date, id, rec.Due)

				return false
			}
		}

		return true
	})

	return violation
}

// verifyRecordsLocked walks the primary mapping and checks membership in
// every bucket each record's fields select.
func (idx *Index) verifyRecordsLocked() error {
	for id, rec := range idx.tasks {
		if !contains(idx.files, rec.File, id) {
			return fmt.Errorf("%w: task %s missing from file index %q", ErrConsistency, id, rec.File)
		}

		if !contains(idx.statuses, rec.Status, id) {
			return fmt.Errorf("%w: task %s missing from status index %q", ErrConsistency, id, rec.Status)
		}

		if rec.Project != "" && !contains(idx.projects, rec.Project, id) {
			return fmt.Errorf("%w: task %s missing from project index %q", ErrConsistency, id, rec.Project)
		}

		if rec.Priority != PriorityNone && !contains(idx.priorities, rec.Priority, id) {
			return fmt.Errorf("%w: task %s missing from priority index %q", ErrConsistency, id, rec.Priority)
		}

		if !rec.Due.IsZero() {
			item := idx.due.Get(&dueBucket{date: rec.Due})
			if item == nil {
				return fmt.Errorf("%w: task %s missing from due index %s", ErrConsistency, id, rec.Due)
			}

			if _, ok := item.(*dueBucket).ids[id]; !ok {
				return fmt.Errorf("%w: task %s missing from due index %s", ErrConsistency, id, rec.Due)
			}
		}
	}

	return nil
}

func contains[K comparable](buckets map[K]idSet, key K, id string) bool {
	set, ok := buckets[key]
	if !ok {
		return false
	}

	_, ok = set[id]

	return ok
}
