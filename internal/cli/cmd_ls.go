package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/pkg/taskindex"
)

const defaultLimit = 100

var (
	errLimitNegative  = errors.New("--limit must be non-negative")
	errOffsetNegative = errors.New("--offset must be non-negative")
	errFileExclusive  = errors.New("--file cannot be combined with other filters")
)

func lsCmd(sess *session) *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	status := flags.String("status", "", "filter by status (todo|done)")
	project := flags.String("project", "", "filter by project")
	priority := flags.String("priority", "", "filter by priority (high|medium|low)")
	tags := flags.StringArray("tag", nil, "require a tag (repeatable)")
	hasDue := flags.Bool("has-due", false, "tasks with a due date (--has-due=false for without)")
	file := flags.String("file", "", "tasks from one note (vault-relative path)")
	limit := flags.Int("limit", defaultLimit, "max tasks to show")
	offset := flags.Int("offset", 0, "skip first N tasks")

	return &Command{
		Flags: flags,
		Usage: "ls [flags]",
		Short: "List tasks matching filters",
		Long: "List tasks sorted by id. Filters combine with AND; a bare ls lists\n" +
			"every task.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if *limit < 0 {
				return errLimitNegative
			}

			if *offset < 0 {
				return errOffsetNegative
			}

			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			var recs []taskindex.Record

			if flags.Changed("file") {
				if flags.Changed("status") || flags.Changed("project") || flags.Changed("priority") ||
					flags.Changed("tag") || flags.Changed("has-due") {
					return errFileExclusive
				}

				recs = sess.idx.TasksByFile(*file)
			} else {
				query := taskindex.NewQuery()

				if flags.Changed("status") {
					parsed, parseErr := taskindex.ParseStatus(*status)
					if parseErr != nil {
						return parseErr
					}

					query = query.WithStatus(parsed)
				}

				if flags.Changed("project") {
					query = query.WithProject(*project)
				}

				if flags.Changed("priority") {
					parsed, parseErr := taskindex.ParsePriority(*priority)
					if parseErr != nil {
						return parseErr
					}

					query = query.WithPriority(parsed)
				}

				if len(*tags) > 0 {
					query = query.WithTags(*tags...)
				}

				if flags.Changed("has-due") {
					query = query.WithDueDate(*hasDue)
				}

				recs = sess.idx.Query(query)
			}

			for _, rec := range page(recs, *offset, *limit) {
				o.Println(formatTaskLine(rec))
			}

			return nil
		},
	}
}

// page applies offset then limit to an already-sorted result set.
func page(recs []taskindex.Record, offset, limit int) []taskindex.Record {
	if offset >= len(recs) {
		return nil
	}

	recs = recs[offset:]

	if limit < len(recs) {
		recs = recs[:limit]
	}

	return recs
}

// formatTaskLine renders one task as a single list row: id, status, the
// raw line text, then the indexed fields the text alone may not carry
// (front matter can supply project, due and priority).
func formatTaskLine(rec taskindex.Record) string {
	var builder strings.Builder

	builder.WriteString(rec.ID)
	builder.WriteString(" [")
	builder.WriteString(rec.Status.String())
	builder.WriteString("] ")
	builder.WriteString(rec.Text)

	if rec.Project != "" {
		builder.WriteString("  @")
		builder.WriteString(rec.Project)
	}

	if !rec.Due.IsZero() {
		builder.WriteString("  due:")
		builder.WriteString(rec.Due.String())
	}

	if rec.Priority != taskindex.PriorityNone {
		builder.WriteString("  !")
		builder.WriteString(rec.Priority.String())
	}

	builder.WriteString("  (")
	builder.WriteString(rec.File)
	builder.WriteString(":")
	builder.WriteString(strconv.Itoa(rec.Line))
	builder.WriteString(")")

	return builder.String()
}
