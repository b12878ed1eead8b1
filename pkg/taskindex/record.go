package taskindex

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Status is the completion state of a task.
type Status uint8

// Task completion states.
const (
	StatusTodo Status = iota
	StatusDone
)

// String returns the lowercase wire name of the status.
func (s Status) String() string {
	if s == StatusDone {
		return "done"
	}

	return "todo"
}

// ParseStatus parses a lowercase status name.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "todo":
		return StatusTodo, nil
	case "done":
		return StatusDone, nil
	default:
		return StatusTodo, fmt.Errorf("parse status: unknown status %q", s)
	}
}

// Priority is the optional task priority. The zero value means unset.
type Priority uint8

// Task priorities. PriorityNone is the unset zero value.
const (
	PriorityNone Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// PriorityOrder is the fixed display order: High before Medium before Low.
// Priority has no ordered index; this constant order is the contract.
//
//nolint:gochecknoglobals // package-level constant
var PriorityOrder = [...]Priority{PriorityHigh, PriorityMedium, PriorityLow}

// String returns the lowercase wire name of the priority, or "" when unset.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return ""
	}
}

// ParsePriority parses a lowercase priority name.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityNone, fmt.Errorf("parse priority: unknown priority %q", s)
	}
}

// Date is a calendar day with no time-of-day and no timezone. The zero
// value means "no date". Date is comparable and safe as a map or btree
// key, unlike time.Time whose equality drags in wall/monotonic clocks
// and locations.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()

	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses an ISO "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date: %w", err)
	}

	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}

	if d.Month != other.Month {
		return d.Month < other.Month
	}

	return d.Day < other.Day
}

// After reports whether d is a later calendar day than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

// String formats the date as ISO "2006-01-02".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Record is one occurrence of a task line in a note file.
//
// ID is opaque and unique; it must stay stable across edits to the same
// logical task (assigned once upstream, see the taskline package). File is
// the vault-relative path of the originating note and Line its position at
// the last sync. Project, Due and Priority are optional: the empty string,
// the zero Date and PriorityNone mean unset. Props carries raw inline
// key/values the parser extracted beyond the typed fields.
type Record struct {
	ID        string
	File      string
	Line      int
	Status    Status
	Text      string
	Project   string
	Due       Date
	Priority  Priority
	Tags      []string
	Created   time.Time
	Updated   time.Time
	Completed time.Time
	Props     map[string]string
}

// Clone returns a deep copy. Tags and Props never alias the receiver's,
// so the index can hand out clones without leaking internal state.
func (r Record) Clone() Record {
	out := r
	out.Tags = slices.Clone(r.Tags)
	out.Props = maps.Clone(r.Props)

	return out
}
