package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/internal/vault"
)

func scanCmd(sess *session) *Command {
	flags := flag.NewFlagSet("scan", flag.ContinueOnError)
	assignIDs := flags.Bool("assign-ids", false, "append ids to untagged task lines first")
	dryRun := flags.Bool("dry-run", false, "report without writing files or the snapshot")

	return &Command{
		Flags: flags,
		Usage: "scan [flags]",
		Short: "Scan the vault and refresh the snapshot",
		Long: "Parse every note in the vault, rebuild the index from scratch and\n" +
			"write a fresh snapshot. Task lines without a tid comment are counted\n" +
			"but not indexed; scan warns about them.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			if *assignIDs {
				report, err := sess.scanner.AssignIDs(vault.AssignOptions{DryRun: *dryRun})
				if err != nil {
					return fmt.Errorf("assign ids: %w", err)
				}

				printAssignReport(o, report, *dryRun)
			}

			report, err := sess.scanner.Scan(ctx, sess.idx)
			if err != nil {
				return fmt.Errorf("scan vault: %w", err)
			}

			if !*dryRun {
				err = sess.host.Checkpoint()
				if err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
			}

			o.Printf("scanned %d files: %d with tasks, %d tasks indexed\n",
				report.FilesScanned, report.FilesWithTasks, report.TasksIndexed)

			if report.SkippedNoID > 0 {
				o.Warn(
					fmt.Sprintf("%d task lines have no id and were not indexed", report.SkippedNoID),
					"run 'tix assign-ids' to tag them")
			}

			return nil
		},
	}
}
