package taskindex_test

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/notevault/task-index/pkg/taskindex"
)

// newTestIndex returns an empty index with default options.
func newTestIndex(t *testing.T) *taskindex.Index {
	t.Helper()

	idx, err := taskindex.New(taskindex.Options{})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	return idx
}

// newTestIndexAt returns an empty index whose clock is frozen at now, for
// today/overdue queries.
func newTestIndexAt(t *testing.T, now time.Time) *taskindex.Index {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(now)

	idx, err := taskindex.New(taskindex.Options{Clock: mock})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	return idx
}

// newTask returns a minimal open task. Tests adjust fields directly.
func newTask(id string) taskindex.Record {
	return taskindex.Record{
		ID:     id,
		File:   "notes/inbox.md",
		Line:   1,
		Status: taskindex.StatusTodo,
		Text:   "write the weekly report",
	}
}

func mustInsert(t *testing.T, idx *taskindex.Index, recs ...taskindex.Record) {
	t.Helper()

	for _, rec := range recs {
		if err := idx.Insert(rec); err != nil {
			t.Fatalf("insert %s: %v", rec.ID, err)
		}
	}
}

func date(year, month, day int) taskindex.Date {
	return taskindex.NewDate(year, time.Month(month), day)
}

// ids projects records down to their ids, keeping order.
func ids(recs []taskindex.Record) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ID)
	}

	return out
}
