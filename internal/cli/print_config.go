package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/internal/vault"
)

func printConfigCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Display the effective configuration and which files it was loaded from.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			formatted, err := vault.FormatConfig(sess.cfg)
			if err != nil {
				return err
			}

			o.Println(formatted)

			// Print sources
			o.Println("")
			o.Println("# Sources:")

			if sess.sources.Global != "" {
				o.Println("#   global:", sess.sources.Global)
			}

			if sess.sources.Project != "" {
				o.Println("#   project:", sess.sources.Project)
			}

			if sess.sources.Global == "" && sess.sources.Project == "" {
				o.Println("#   (using defaults only)")
			}

			return nil
		},
	}
}
