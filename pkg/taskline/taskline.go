package taskline

import (
	"regexp"
	"strings"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/notevault/task-index/pkg/taskindex"
)

//nolint:gochecknoglobals
var (
	// taskPattern matches checkbox tasks with optional indent and an
	// optional trailing id comment.
	taskPattern = regexp.MustCompile(`^(\s*)- \[([ xX])\]\s+(.+?)(?:\s*<!-- tid:\s*([a-f0-9-]+)\s*-->)?$`)

	// tidPattern finds an existing id comment anywhere in a line.
	tidPattern = regexp.MustCompile(`<!-- tid:\s*([a-zA-Z0-9-]+)\s*-->`)

	duePattern    = regexp.MustCompile(`@due\(([^)]+)\)`)
	dueAltPattern = regexp.MustCompile(`@due(?::|\s+)\s*([^\s)]+)`)

	priorityPattern = regexp.MustCompile(`!(?:p([1-5])|high|medium|low)`)

	tagPattern = regexp.MustCompile(`#([A-Za-z0-9][A-Za-z0-9/_-]*)`)

	projectPattern    = regexp.MustCompile(`@project\(([^)]+)\)`)
	projectAltPattern = regexp.MustCompile(`@project(?::|\s+)\s*([^\s)]+)`)
)

// Task is one parsed checkbox line. Props holds the extracted inline
// properties under the keys "due", "priority", "tags" and "project"; due
// and priority values are already normalized.
type Task struct {
	Text   string
	Status taskindex.Status
	Line   int
	Indent int
	ID     string
	Props  map[string]string
	Raw    string
}

// Parser extracts tasks from markdown. The clock anchors relative due
// tokens like "tomorrow".
type Parser struct {
	clock clock.Clock
}

// NewParser returns a parser. A nil clock means the wall clock.
func NewParser(clk clock.Clock) *Parser {
	if clk == nil {
		clk = clock.New()
	}

	return &Parser{clock: clk}
}

// ParseLine parses one line as a checkbox task. ok is false for lines
// that are not tasks.
func (p *Parser) ParseLine(line string, lineNo int) (Task, bool) {
	m := taskPattern.FindStringSubmatch(line)
	if m == nil {
		return Task{}, false
	}

	task := Task{
		Text:   m[3],
		Line:   lineNo,
		Indent: indentWidth(m[1]),
		ID:     m[4],
		Raw:    line,
	}

	if strings.EqualFold(m[2], "x") {
		task.Status = taskindex.StatusDone
	}

	p.extractProps(&task)

	return task, true
}

// ExtractAll parses every task line in a document, in order. Line
// numbers are 1-based.
func (p *Parser) ExtractAll(content string) []Task {
	var tasks []Task

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if task, ok := p.ParseLine(line, i+1); ok {
			tasks = append(tasks, task)
		}
	}

	return tasks
}

func (p *Parser) extractProps(task *Task) {
	if m := duePattern.FindStringSubmatch(task.Text); m != nil {
		setProp(task, "due", p.normalizeDate(m[1]))
	} else if m := dueAltPattern.FindStringSubmatch(task.Text); m != nil {
		setProp(task, "due", p.normalizeDate(m[1]))
	}

	if m := priorityPattern.FindString(task.Text); m != "" {
		setProp(task, "priority", normalizePriority(m))
	}

	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(task.Text, -1) {
		tags = append(tags, m[1])
	}

	if len(tags) > 0 {
		setProp(task, "tags", strings.Join(tags, ","))
	}

	// A #project/<name> tag marks the project; an explicit @project
	// below still wins. The tag stays in the tag list either way.
	for _, tag := range tags {
		if !strings.HasPrefix(strings.ToLower(tag), "project/") {
			continue
		}

		if _, name, _ := strings.Cut(tag, "/"); strings.TrimSpace(name) != "" {
			setProp(task, "project", strings.TrimSpace(name))
		}

		break
	}

	if m := projectPattern.FindStringSubmatch(task.Text); m != nil {
		setProp(task, "project", m[1])
	} else if m := projectAltPattern.FindStringSubmatch(task.Text); m != nil {
		setProp(task, "project", m[1])
	}
}

// normalizeDate returns the ISO form of raw when it is an ISO date or a
// recognized relative token, and raw unchanged otherwise. Unresolvable
// values stay visible in Props instead of being dropped.
func (p *Parser) normalizeDate(raw string) string {
	if _, err := taskindex.ParseDate(raw); err == nil {
		return raw
	}

	today := taskindex.DateOf(p.clock.Now())

	switch token := strings.ToLower(raw); token {
	case "today":
		return today.String()
	case "tomorrow":
		return today.AddDays(1).String()
	case "yesterday":
		return today.AddDays(-1).String()
	default:
		if weekday, ok := weekdays[token]; ok {
			return nextWeekday(today, weekday).String()
		}
	}

	return raw
}

//nolint:gochecknoglobals
var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
	"sun":       time.Sunday,
}

// nextWeekday resolves a bare weekday name to the next such day, always
// in the future. "today" covers the same-day case.
func nextWeekday(today taskindex.Date, target time.Weekday) taskindex.Date {
	current := time.Date(today.Year, today.Month, today.Day, 0, 0, 0, 0, time.UTC).Weekday()

	days := (int(target) - int(current) + 7) % 7
	if days == 0 {
		days = 7
	}

	return today.AddDays(days)
}

// normalizePriority folds the five marker levels into three bands.
func normalizePriority(marker string) string {
	switch strings.ToLower(marker) {
	case "!p1", "!high":
		return "high"
	case "!p2", "!p3", "!medium":
		return "medium"
	case "!p4", "!p5", "!low":
		return "low"
	default:
		return "medium"
	}
}

func setProp(task *Task, key, value string) {
	if task.Props == nil {
		task.Props = make(map[string]string)
	}

	task.Props[key] = value
}

func indentWidth(indent string) int {
	width := 0

	for _, r := range indent {
		if r == '\t' {
			width += 4
		} else {
			width++
		}
	}

	return width
}

// BuildRecord assembles an index record from a parsed task. Only lines
// carrying an id comment can be indexed; ok is false otherwise. The
// scanner fills in timestamps from front matter afterwards.
func BuildRecord(task Task, file string) (taskindex.Record, bool) {
	if task.ID == "" {
		return taskindex.Record{}, false
	}

	rec := taskindex.Record{
		ID:     task.ID,
		File:   file,
		Line:   task.Line,
		Status: task.Status,
		Text:   task.Text,
		Props:  task.Props,
	}

	if due, err := taskindex.ParseDate(task.Props["due"]); err == nil {
		rec.Due = due
	}

	if priority, err := taskindex.ParsePriority(task.Props["priority"]); err == nil {
		rec.Priority = priority
	}

	if tags := task.Props["tags"]; tags != "" {
		rec.Tags = strings.Split(tags, ",")
	}

	rec.Project = task.Props["project"]

	return rec, true
}
