package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func verifyCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("verify", flag.ContinueOnError),
		Usage: "verify",
		Short: "Audit index consistency",
		Long: "Check that every index bucket entry resolves to a record and every\n" +
			"record is reachable from its buckets. Any violation exits non-zero.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			err = sess.idx.Verify()
			if err != nil {
				return err
			}

			o.Printf("ok: %d tasks verified\n", sess.idx.Size())

			return nil
		},
	}
}
