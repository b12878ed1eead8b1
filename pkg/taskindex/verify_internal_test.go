package taskindex

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// The violations below are manufactured by reaching into the private
// structures. No public operation can produce them; that is the point of
// the audit.

func consistentIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := New(Options{})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	err = idx.Insert(Record{
		ID:       "task-001",
		File:     "notes/inbox.md",
		Line:     3,
		Status:   StatusTodo,
		Text:     "water the plants",
		Project:  "home",
		Due:      NewDate(2025, time.August, 25),
		Priority: PriorityMedium,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	return idx
}

func Test_Verify_Returns_Nil_When_Index_Consistent(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)

	if err := idx.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func Test_Verify_Returns_Nil_When_Index_Empty(t *testing.T) {
	t.Parallel()

	idx, err := New(Options{})
	if err != nil {
		t.Fatalf("new index: %v", err)
	}

	if err := idx.Verify(); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func Test_Verify_Reports_Violation_When_Bucket_References_Unknown_ID(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)
	idx.files["notes/inbox.md"]["ghost"] = struct{}{}

	err := idx.Verify()
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}

	if !strings.Contains(err.Error(), "file index") || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("violation does not name index and id: %v", err)
	}
}

func Test_Verify_Reports_Violation_When_Record_Missing_From_Bucket(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)
	delete(idx.statuses[StatusTodo], "task-001")
	delete(idx.statuses, StatusTodo)

	err := idx.Verify()
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}

	if !strings.Contains(err.Error(), "status index") || !strings.Contains(err.Error(), "task-001") {
		t.Fatalf("violation does not name index and id: %v", err)
	}
}

func Test_Verify_Reports_Violation_When_Bucket_Key_Disagrees_With_Record(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)

	// Move the bucket entry without touching the record.
	delete(idx.projects, "home")
	idx.projects["work"] = idSet{"task-001": {}}

	err := idx.Verify()
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}

	if !strings.Contains(err.Error(), "project index") {
		t.Fatalf("violation does not name the project index: %v", err)
	}
}

func Test_Verify_Reports_Violation_When_Due_Bucket_Holds_Stale_Date(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)

	// Change the record's due date behind the bucket's back.
	idx.tasks["task-001"].Due = NewDate(2025, time.September, 1)

	err := idx.Verify()
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}

	if !strings.Contains(err.Error(), "due index") {
		t.Fatalf("violation does not name the due index: %v", err)
	}
}

func Test_Verify_Reports_Violation_When_Priority_Bucket_Dangles(t *testing.T) {
	t.Parallel()

	idx := consistentIndex(t)

	if err := idx.Remove("task-001"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	idx.priorities[PriorityMedium] = idSet{"task-001": {}}

	err := idx.Verify()
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("err = %v, want ErrConsistency", err)
	}

	if !strings.Contains(err.Error(), "priority index") {
		t.Fatalf("violation does not name the priority index: %v", err)
	}
}
