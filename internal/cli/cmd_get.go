package cli

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/pkg/taskindex"
)

var errIDRequired = errors.New("task id required")

func getCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("get", flag.ContinueOnError),
		Usage: "get <id>",
		Short: "Show one task in full",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errIDRequired
			}

			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			rec, err := sess.idx.Get(args[0])
			if err != nil {
				return err
			}

			printRecord(o, rec)

			return nil
		},
	}
}

// printRecord renders every set field of one task, one per line.
func printRecord(o *IO, rec taskindex.Record) {
	o.Printf("%-10s %s\n", "id:", rec.ID)
	o.Printf("%-10s %s\n", "status:", rec.Status.String())
	o.Printf("%-10s %s\n", "text:", rec.Text)
	o.Printf("%-10s %s:%d\n", "file:", rec.File, rec.Line)

	if rec.Project != "" {
		o.Printf("%-10s %s\n", "project:", rec.Project)
	}

	if !rec.Due.IsZero() {
		o.Printf("%-10s %s\n", "due:", rec.Due.String())
	}

	if rec.Priority != taskindex.PriorityNone {
		o.Printf("%-10s %s\n", "priority:", rec.Priority.String())
	}

	if len(rec.Tags) > 0 {
		o.Printf("%-10s %s\n", "tags:", strings.Join(rec.Tags, ", "))
	}

	if !rec.Created.IsZero() {
		o.Printf("%-10s %s\n", "created:", rec.Created.UTC().Format(time.RFC3339))
	}

	if !rec.Updated.IsZero() {
		o.Printf("%-10s %s\n", "updated:", rec.Updated.UTC().Format(time.RFC3339))
	}

	if !rec.Completed.IsZero() {
		o.Printf("%-10s %s\n", "completed:", rec.Completed.UTC().Format(time.RFC3339))
	}

	if len(rec.Props) > 0 {
		keys := make([]string, 0, len(rec.Props))
		for k := range rec.Props {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+rec.Props[k])
		}

		o.Printf("%-10s %s\n", "props:", strings.Join(pairs, " "))
	}
}
