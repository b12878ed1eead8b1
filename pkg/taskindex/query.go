package taskindex

import (
	"slices"

	"github.com/google/btree"
)

// Query is an immutable, value-chained filter over the index. The zero
// value matches every record; each With* call returns a narrowed copy.
//
//	q := taskindex.NewQuery().
//		WithStatus(taskindex.StatusTodo).
//		WithProject("work").
//		WithTags("urgent")
//	recs := idx.Query(q)
type Query struct {
	status   *Status
	project  *string
	priority *Priority
	hasDue   *bool
	tags     []string
}

// NewQuery returns a filter matching every record.
func NewQuery() Query {
	return Query{}
}

// WithStatus narrows the query to records with the given status.
func (q Query) WithStatus(s Status) Query {
	q.status = &s

	return q
}

// WithProject narrows the query to records in the given project.
func (q Query) WithProject(name string) Query {
	q.project = &name

	return q
}

// WithPriority narrows the query to records with the given priority.
func (q Query) WithPriority(p Priority) Query {
	q.priority = &p

	return q
}

// WithDueDate narrows the query to records that have a due date (true)
// or have none (false).
func (q Query) WithDueDate(has bool) Query {
	q.hasDue = &has

	return q
}

// WithTags narrows the query to records carrying every given tag.
func (q Query) WithTags(tags ...string) Query {
	q.tags = append(slices.Clone(q.tags), tags...)

	return q
}

// matches reports whether rec satisfies every constraint of q. Candidate
// records are always re-checked against the full predicate, so the
// candidate-set shortcut below can never widen results.
func (q Query) matches(rec *Record) bool {
	if q.status != nil && rec.Status != *q.status {
		return false
	}

	if q.project != nil && rec.Project != *q.project {
		return false
	}

	if q.priority != nil && rec.Priority != *q.priority {
		return false
	}

	if q.hasDue != nil && !rec.Due.IsZero() != *q.hasDue {
		return false
	}

	for _, tag := range q.tags {
		if !slices.Contains(rec.Tags, tag) {
			return false
		}
	}

	return true
}

// Query returns copies of every record matching q, ordered by id.
//
// The most selective indexed constraint seeds the candidate set, probed
// in a fixed order: status, then project, then priority. A query
// constraining none of the three scans the primary mapping.
func (idx *Index) Query(q Query) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var candidates []string

	switch {
	case q.status != nil:
		candidates = bucketIDs(idx.statuses[*q.status])
	case q.project != nil:
		candidates = bucketIDs(idx.projects[*q.project])
	case q.priority != nil:
		candidates = bucketIDs(idx.priorities[*q.priority])
	default:
		candidates = make([]string, 0, len(idx.tasks))
		for id := range idx.tasks {
			candidates = append(candidates, id)
		}

		slices.Sort(candidates)
	}

	out := make([]Record, 0, len(candidates))

	for _, id := range candidates {
		rec, ok := idx.tasks[id]
		if !ok {
			continue
		}

		if q.matches(rec) {
			out = append(out, rec.Clone())
		}
	}

	return out
}

// TasksByFile returns copies of every record indexed under path, ordered
// by id. Unknown paths yield an empty slice.
func (idx *Index) TasksByFile(path string) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.collectLocked(bucketIDs(idx.files[path]))
}

// FilePaths returns every path with at least one indexed record, sorted.
func (idx *Index) FilePaths() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, 0, len(idx.files))
	for path := range idx.files {
		out = append(out, path)
	}

	slices.Sort(out)

	return out
}

// TasksByStatus returns copies of every record with the given status,
// ordered by id.
func (idx *Index) TasksByStatus(s Status) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.collectLocked(bucketIDs(idx.statuses[s]))
}

// TasksByProject returns copies of every record in the given project,
// ordered by id.
func (idx *Index) TasksByProject(name string) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.collectLocked(bucketIDs(idx.projects[name]))
}

// TasksByPriority returns copies of every record with the given priority,
// ordered by id.
func (idx *Index) TasksByPriority(p Priority) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.collectLocked(bucketIDs(idx.priorities[p]))
}

// TasksByDue returns copies of every record due on the given day, ordered
// by id.
func (idx *Index) TasksByDue(d Date) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	item := idx.due.Get(&dueBucket{date: d})
	if item == nil {
		return []Record{}
	}

	return idx.collectLocked(bucketIDs(item.(*dueBucket).ids))
}

// DueBetween returns copies of every record due within [from, to], both
// ends inclusive, ordered by due date ascending and by id within a day.
func (idx *Index) DueBetween(from, to Date) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Record

	idx.due.AscendGreaterOrEqual(&dueBucket{date: from}, func(item btree.Item) bool {
		bucket := item.(*dueBucket)
		if bucket.date.After(to) {
			return false
		}

		out = append(out, idx.collectLocked(bucketIDs(bucket.ids))...)

		return true
	})

	return out
}

// DueToday returns copies of every record due on the current day.
func (idx *Index) DueToday() []Record {
	return idx.TasksByDue(DateOf(idx.clock.Now()))
}

// Overdue returns copies of every open record whose due date is strictly
// before the current day, ordered by due date ascending. Completed tasks
// are never overdue.
func (idx *Index) Overdue() []Record {
	today := DateOf(idx.clock.Now())

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Record

	idx.due.AscendLessThan(&dueBucket{date: today}, func(item btree.Item) bool {
		for _, rec := range idx.collectLocked(bucketIDs(item.(*dueBucket).ids)) {
			if rec.Status == StatusTodo {
				out = append(out, rec)
			}
		}

		return true
	})

	return out
}

// SortedByDue returns copies of every record that has a due date, ordered
// by due date ascending or descending. Records without a due date are
// excluded rather than sorted to an arbitrary end.
func (idx *Index) SortedByDue(ascending bool) []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Record

	visit := func(item btree.Item) bool {
		out = append(out, idx.collectLocked(bucketIDs(item.(*dueBucket).ids))...)

		return true
	}

	if ascending {
		idx.due.Ascend(visit)
	} else {
		idx.due.Descend(visit)
	}

	return out
}

// SortedByPriority returns copies of every record with an explicit
// priority, high before medium before low, ordered by id within a band.
// Records without a priority are excluded.
func (idx *Index) SortedByPriority() []Record {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []Record

	for _, p := range PriorityOrder {
		out = append(out, idx.collectLocked(bucketIDs(idx.priorities[p]))...)
	}

	return out
}

// collectLocked resolves ids against the primary mapping and returns
// copies. Callers hold at least the shared lock and pass ids already
// sorted.
func (idx *Index) collectLocked(ids []string) []Record {
	out := make([]Record, 0, len(ids))

	for _, id := range ids {
		if rec, ok := idx.tasks[id]; ok {
			out = append(out, rec.Clone())
		}
	}

	return out
}

// bucketIDs returns the ids of a bucket as a sorted slice. The copy also
// lets callers mutate the bucket while iterating the result.
func bucketIDs(set idSet) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
