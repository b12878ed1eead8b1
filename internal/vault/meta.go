package vault

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/notevault/task-index/internal/frontmatter"
	"github.com/notevault/task-index/pkg/taskindex"
)

// taskKeyPrefix marks front matter keys that carry per-task metadata, one
// object per task id: `task.<id>`.
const taskKeyPrefix = "task."

// TaskMeta holds the per-task metadata a note's front matter can carry.
// Timestamps are RFC3339; zero values mean the field was absent or
// unreadable.
type TaskMeta struct {
	Created   time.Time
	Updated   time.Time
	Completed time.Time
	Project   string
	Due       taskindex.Date
	Priority  taskindex.Priority
	Tags      []string
}

// taskMetaFromBlock collects `task.<id>` metadata objects from a note's
// front matter. Malformed field values are dropped rather than failing the
// scan.
func taskMetaFromBlock(block frontmatter.Block) map[string]TaskMeta {
	var metas map[string]TaskMeta

	for key, value := range block {
		id, ok := strings.CutPrefix(key, taskKeyPrefix)
		if !ok || id == "" || value.Kind != frontmatter.ValueObject {
			continue
		}

		if metas == nil {
			metas = make(map[string]TaskMeta)
		}

		metas[id] = parseTaskMeta(value.Object)
	}

	return metas
}

func parseTaskMeta(obj map[string]frontmatter.Scalar) TaskMeta {
	var meta TaskMeta

	if s, ok := scalarText(obj, "created"); ok {
		meta.Created = parseMetaTime(s)
	}

	if s, ok := scalarText(obj, "updated"); ok {
		meta.Updated = parseMetaTime(s)
	}

	if s, ok := scalarText(obj, "completed"); ok {
		meta.Completed = parseMetaTime(s)
	}

	if s, ok := scalarText(obj, "project"); ok {
		meta.Project = s
	}

	if s, ok := scalarText(obj, "due"); ok {
		meta.Due = parseMetaDue(s)
	}

	if s, ok := scalarText(obj, "priority"); ok {
		meta.Priority = parseMetaPriority(s)
	}

	if s, ok := scalarText(obj, "tags"); ok {
		meta.Tags = splitTags(s)
	}

	return meta
}

// scalarText reads a scalar field as text. Integer scalars are accepted so
// that unquoted values like `priority: 2` still resolve.
func scalarText(obj map[string]frontmatter.Scalar, key string) (string, bool) {
	s, ok := obj[key]
	if !ok {
		return "", false
	}

	switch s.Kind {
	case frontmatter.ScalarString:
		return s.String, true
	case frontmatter.ScalarInt:
		return strconv.FormatInt(s.Int, 10), true
	default:
		return "", false
	}
}

func parseMetaTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return t.UTC()
}

// parseMetaDue accepts a full RFC3339 timestamp or a bare 2006-01-02 date.
func parseMetaDue(raw string) taskindex.Date {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return taskindex.DateOf(t.UTC())
	}

	if d, err := taskindex.ParseDate(raw); err == nil {
		return d
	}

	return taskindex.Date{}
}

func parseMetaPriority(raw string) taskindex.Priority {
	switch strings.ToLower(raw) {
	case "high", "!p1", "p1", "1":
		return taskindex.PriorityHigh
	case "medium", "!p2", "!p3", "p2", "p3", "2", "3":
		return taskindex.PriorityMedium
	case "low", "!p4", "!p5", "p4", "p5", "4", "5":
		return taskindex.PriorityLow
	default:
		return taskindex.PriorityNone
	}
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")

	tags := make([]string, 0, len(parts))

	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return nil
	}

	return tags
}

// applyMeta fills record fields the task line left unset (the line wins on
// conflict) and stamps the bookkeeping times. Completed is only meaningful
// on done tasks.
func applyMeta(rec *taskindex.Record, meta TaskMeta, now time.Time) {
	if rec.Project == "" {
		rec.Project = meta.Project
	}

	if rec.Due.IsZero() {
		rec.Due = meta.Due
	}

	if rec.Priority == taskindex.PriorityNone {
		rec.Priority = meta.Priority
	}

	if len(rec.Tags) == 0 && len(meta.Tags) > 0 {
		rec.Tags = slices.Clone(meta.Tags)
	}

	rec.Created = meta.Created
	if rec.Created.IsZero() {
		rec.Created = now
	}

	rec.Updated = meta.Updated
	if rec.Updated.IsZero() {
		rec.Updated = now
	}

	if rec.Status == taskindex.StatusDone {
		rec.Completed = meta.Completed
		if rec.Completed.IsZero() {
			rec.Completed = now
		}
	} else {
		rec.Completed = time.Time{}
	}
}
