package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/internal/vault"
)

func assignIDsCmd(sess *session) *Command {
	flags := flag.NewFlagSet("assign-ids", flag.ContinueOnError)
	dryRun := flags.Bool("dry-run", false, "count missing ids without rewriting files")

	return &Command{
		Flags: flags,
		Usage: "assign-ids [flags]",
		Short: "Append ids to task lines that lack them",
		Long: "Walk every note and append a generated tid comment to task lines\n" +
			"without one. Files are rewritten atomically; only tagged lines are\n" +
			"picked up by scan.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			report, err := sess.scanner.AssignIDs(vault.AssignOptions{DryRun: *dryRun})
			if err != nil {
				return fmt.Errorf("assign ids: %w", err)
			}

			printAssignReport(o, report, *dryRun)

			return nil
		},
	}
}

func printAssignReport(o *IO, report vault.AssignReport, dryRun bool) {
	if dryRun {
		o.Printf("would assign %d ids across %d files\n", report.IDsAssigned, report.FilesChanged)

		return
	}

	o.Printf("assigned %d ids across %d files\n", report.IDsAssigned, report.FilesChanged)
}
