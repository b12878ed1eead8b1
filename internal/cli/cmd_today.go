package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func todayCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("today", flag.ContinueOnError),
		Usage: "today",
		Short: "List tasks due today",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			for _, rec := range sess.idx.DueToday() {
				o.Println(formatTaskLine(rec))
			}

			return nil
		},
	}
}
