package taskindex_test

import (
	"testing"
	"time"

	"github.com/notevault/task-index/pkg/taskindex"
)

func Test_ParseDate_Returns_Date_When_ISO_Format(t *testing.T) {
	t.Parallel()

	got, err := taskindex.ParseDate("2025-08-25")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got != taskindex.NewDate(2025, time.August, 25) {
		t.Fatalf("date = %v, want 2025-08-25", got)
	}
}

func Test_ParseDate_Returns_Error_When_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "next week", "2025/08/25", "25-08-2025"} {
		if _, err := taskindex.ParseDate(raw); err == nil {
			t.Fatalf("parse %q: expected error", raw)
		}
	}
}

func Test_Date_Orders_Chronologically_When_Compared(t *testing.T) {
	t.Parallel()

	a := taskindex.NewDate(2025, time.August, 25)
	b := taskindex.NewDate(2025, time.September, 1)

	if !a.Before(b) || b.Before(a) {
		t.Fatal("Before is not chronological")
	}

	if !b.After(a) || a.After(b) {
		t.Fatal("After is not chronological")
	}

	if a.Before(a) || a.After(a) {
		t.Fatal("a date compares against itself")
	}
}

func Test_Date_AddDays_Normalizes_When_Crossing_Month(t *testing.T) {
	t.Parallel()

	got := taskindex.NewDate(2025, time.August, 30).AddDays(3)
	if got != taskindex.NewDate(2025, time.September, 2) {
		t.Fatalf("date = %v, want 2025-09-02", got)
	}

	got = taskindex.NewDate(2025, time.January, 1).AddDays(-1)
	if got != taskindex.NewDate(2024, time.December, 31) {
		t.Fatalf("date = %v, want 2024-12-31", got)
	}
}

func Test_DateOf_Truncates_Time_When_Converted(t *testing.T) {
	t.Parallel()

	got := taskindex.DateOf(time.Date(2025, 8, 25, 23, 59, 59, 0, time.UTC))
	if got != taskindex.NewDate(2025, time.August, 25) {
		t.Fatalf("date = %v, want 2025-08-25", got)
	}
}

func Test_ParseStatus_Round_Trips_When_Known(t *testing.T) {
	t.Parallel()

	for _, s := range []taskindex.Status{taskindex.StatusTodo, taskindex.StatusDone} {
		got, err := taskindex.ParseStatus(s.String())
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}

		if got != s {
			t.Fatalf("status = %v, want %v", got, s)
		}
	}

	if _, err := taskindex.ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func Test_ParsePriority_Round_Trips_When_Known(t *testing.T) {
	t.Parallel()

	for _, p := range []taskindex.Priority{
		taskindex.PriorityHigh,
		taskindex.PriorityMedium,
		taskindex.PriorityLow,
	} {
		got, err := taskindex.ParsePriority(p.String())
		if err != nil {
			t.Fatalf("parse %q: %v", p, err)
		}

		if got != p {
			t.Fatalf("priority = %v, want %v", got, p)
		}
	}

	if _, err := taskindex.ParsePriority("critical"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}
