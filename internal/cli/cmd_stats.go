package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

const percent = 100

func statsCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("stats", flag.ContinueOnError),
		Usage: "stats",
		Short: "Show index and cache statistics",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			printStats(o, sess)

			return nil
		},
	}
}

func printStats(o *IO, sess *session) {
	stats := sess.idx.Stats()
	cache := sess.idx.CacheStats()

	o.Printf("tasks:     %d (%d todo, %d done)\n", stats.Total, stats.Open, stats.Done)
	o.Printf("files:     %d\n", stats.FilesWithTasks)
	o.Printf("projects:  %d\n", stats.Projects)
	o.Printf("due dates: %d\n", stats.TasksWithDueDates)
	o.Printf("version:   %d\n", sess.idx.Version())
	o.Printf("cache:     %d/%d entries, %d hits, %d misses (%.0f%% hit rate)\n",
		cache.Size, cache.Capacity, cache.Hits, cache.Misses, cache.HitRate*percent)
}
