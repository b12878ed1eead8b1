package taskindex_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/notevault/task-index/pkg/taskindex"
)

func Test_Query_Filters_By_Status_When_Only_Status_Set(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	open := newTask("task-001")
	done := newTask("task-002")
	done.Status = taskindex.StatusDone

	mustInsert(t, idx, open, done)

	got := idx.Query(taskindex.NewQuery().WithStatus(taskindex.StatusTodo))

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_Query_Applies_All_Filters_When_Compound(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	match := newTask("task-001")
	match.Project = "work"
	match.Priority = taskindex.PriorityHigh
	match.Due = date(2025, 8, 25)
	match.Tags = []string{"urgent", "q3"}

	wrongProject := newTask("task-002")
	wrongProject.Project = "home"
	wrongProject.Priority = taskindex.PriorityHigh

	wrongStatus := newTask("task-003")
	wrongStatus.Status = taskindex.StatusDone
	wrongStatus.Project = "work"
	wrongStatus.Priority = taskindex.PriorityHigh

	noTags := newTask("task-004")
	noTags.Project = "work"
	noTags.Priority = taskindex.PriorityHigh
	noTags.Due = date(2025, 8, 26)

	mustInsert(t, idx, match, wrongProject, wrongStatus, noTags)

	q := taskindex.NewQuery().
		WithStatus(taskindex.StatusTodo).
		WithProject("work").
		WithPriority(taskindex.PriorityHigh).
		WithDueDate(true).
		WithTags("urgent")

	got := idx.Query(q)

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_Query_Scans_Primary_When_No_Indexed_Filter(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	tagged := newTask("task-001")
	tagged.Tags = []string{"urgent"}

	plain := newTask("task-002")

	withDue := newTask("task-003")
	withDue.Due = date(2025, 8, 25)
	withDue.Tags = []string{"urgent"}

	mustInsert(t, idx, tagged, plain, withDue)

	got := idx.Query(taskindex.NewQuery().WithTags("urgent").WithDueDate(false))

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_Query_Requires_Every_Tag_When_Multiple_Given(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	both := newTask("task-001")
	both.Tags = []string{"urgent", "q3"}

	one := newTask("task-002")
	one.Tags = []string{"urgent"}

	mustInsert(t, idx, both, one)

	got := idx.Query(taskindex.NewQuery().WithTags("urgent", "q3"))

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_Query_Returns_Empty_When_Nothing_Matches(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	mustInsert(t, idx, newTask("task-001"))

	got := idx.Query(taskindex.NewQuery().WithProject("ghost"))
	if len(got) != 0 {
		t.Fatalf("result = %v, want empty", ids(got))
	}
}

func Test_TasksByDue_Returns_Records_When_Date_Matches(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	a := newTask("task-001")
	a.Due = date(2025, 8, 25)

	b := newTask("task-002")
	b.Due = date(2025, 8, 26)

	mustInsert(t, idx, a, b)

	got := idx.TasksByDue(date(2025, 8, 25))

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	if got := idx.TasksByDue(date(2024, 1, 1)); len(got) != 0 {
		t.Fatalf("result = %v, want empty for unknown date", ids(got))
	}
}

func Test_DueBetween_Includes_Both_Bounds_When_Range_Given(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	early := newTask("task-001")
	early.Due = date(2025, 8, 24)

	from := newTask("task-002")
	from.Due = date(2025, 8, 25)

	to := newTask("task-003")
	to.Due = date(2025, 8, 26)

	late := newTask("task-004")
	late.Due = date(2025, 8, 27)

	mustInsert(t, idx, early, from, to, late)

	got := idx.DueBetween(date(2025, 8, 25), date(2025, 8, 26))

	if diff := cmp.Diff([]string{"task-002", "task-003"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_DueToday_Returns_Records_When_Clock_Matches(t *testing.T) {
	t.Parallel()

	idx := newTestIndexAt(t, time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC))

	today := newTask("task-001")
	today.Due = date(2025, 1, 8)

	tomorrow := newTask("task-002")
	tomorrow.Due = date(2025, 1, 9)

	mustInsert(t, idx, today, tomorrow)

	got := idx.DueToday()

	if diff := cmp.Diff([]string{"task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_Overdue_Excludes_Done_And_Today_When_Clock_Fixed(t *testing.T) {
	t.Parallel()

	idx := newTestIndexAt(t, time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC))

	past := newTask("task-001")
	past.Due = date(2025, 1, 5)

	pastDone := newTask("task-002")
	pastDone.Due = date(2025, 1, 5)
	pastDone.Status = taskindex.StatusDone

	dueToday := newTask("task-003")
	dueToday.Due = date(2025, 1, 8)

	future := newTask("task-004")
	future.Due = date(2025, 1, 10)

	older := newTask("task-005")
	older.Due = date(2024, 12, 31)

	mustInsert(t, idx, past, pastDone, dueToday, future, older)

	got := idx.Overdue()

	// Oldest due date first; completed tasks and today's are not overdue.
	if diff := cmp.Diff([]string{"task-005", "task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_SortedByDue_Orders_By_Date_When_Both_Directions(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	a := newTask("task-001")
	a.Due = date(2025, 8, 25)

	b := newTask("task-002")
	b.Due = date(2025, 8, 20)

	c := newTask("task-003")
	c.Due = date(2025, 8, 22)

	noDue := newTask("task-004")

	mustInsert(t, idx, a, b, c, noDue)

	asc := idx.SortedByDue(true)
	if diff := cmp.Diff([]string{"task-002", "task-003", "task-001"}, ids(asc)); diff != "" {
		t.Fatalf("ascending mismatch (-want +got):\n%s", diff)
	}

	desc := idx.SortedByDue(false)
	if diff := cmp.Diff([]string{"task-001", "task-003", "task-002"}, ids(desc)); diff != "" {
		t.Fatalf("descending mismatch (-want +got):\n%s", diff)
	}
}

func Test_SortedByPriority_Orders_High_Medium_Low_When_Mixed(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	low := newTask("task-001")
	low.Priority = taskindex.PriorityLow

	high := newTask("task-002")
	high.Priority = taskindex.PriorityHigh

	medium := newTask("task-003")
	medium.Priority = taskindex.PriorityMedium

	none := newTask("task-004")

	mustInsert(t, idx, low, high, medium, none)

	got := idx.SortedByPriority()

	if diff := cmp.Diff([]string{"task-002", "task-003", "task-001"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func Test_TasksByFile_Returns_Records_Sorted_By_ID_When_Many(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	c := newTask("task-003")
	a := newTask("task-001")
	b := newTask("task-002")

	mustInsert(t, idx, c, a, b)

	got := idx.TasksByFile("notes/inbox.md")

	if diff := cmp.Diff([]string{"task-001", "task-002", "task-003"}, ids(got)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}
