package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func overdueCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("overdue", flag.ContinueOnError),
		Usage: "overdue",
		Short: "List open tasks past their due date",
		Long: "List open tasks whose due date is before today, oldest first.\n" +
			"Completed tasks never show up here.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			for _, rec := range sess.idx.Overdue() {
				o.Println(formatTaskLine(rec))
			}

			return nil
		},
	}
}
