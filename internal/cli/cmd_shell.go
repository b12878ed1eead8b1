package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/notevault/task-index/pkg/taskindex"
)

func shellCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Explore the index interactively",
		Long: "Open a prompt over the loaded index. Commands: get, ls, today,\n" +
			"overdue, stats, verify, help, exit. While the shell is open the\n" +
			"snapshot is checkpointed on the configured interval.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			err := sess.prime(ctx)
			if err != nil {
				return err
			}

			err = sess.host.Open(ctx)
			if err != nil {
				return err
			}

			runErr := runShell(o, sess)

			closeErr := sess.host.Close()
			if runErr != nil {
				return runErr
			}

			return closeErr
		},
	}
}

// runShell owns the liner loop: prompt, history, completion. Command
// dispatch lives in runShellLine so it stays testable without a terminal.
func runShell(o *IO, sess *session) error {
	rl := liner.NewLiner()
	defer rl.Close()

	rl.SetCtrlCAborts(true)
	rl.SetCompleter(completeShellLine)

	if f, err := os.Open(shellHistoryFile()); err == nil {
		_, _ = rl.ReadHistory(f)
		_ = f.Close()
	}

	o.Printf("%d tasks loaded. Type 'help' for commands.\n", sess.idx.Size())

	for {
		input, err := rl.Prompt("tix> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				break
			}

			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		rl.AppendHistory(input)

		if runShellLine(o, sess, input) {
			break
		}
	}

	saveShellHistory(rl)

	return nil
}

// runShellLine executes one shell input line. Returns true when the shell
// should exit. Errors are printed inline; an interactive session never
// dies on a bad command.
func runShellLine(o *IO, sess *session, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "q":
		return true

	case "help", "?":
		printShellHelp(o)

	case "get":
		if len(args) == 0 {
			o.Println("usage: get <id>")

			break
		}

		rec, err := sess.idx.Get(args[0])
		if err != nil {
			o.Println("error:", err)

			break
		}

		printRecord(o, rec)

	case "ls":
		recs := sess.idx.Query(taskindex.NewQuery())
		if len(args) > 0 {
			recs = sess.idx.TasksByProject(args[0])
		}

		for _, rec := range recs {
			o.Println(formatTaskLine(rec))
		}

	case "today":
		for _, rec := range sess.idx.DueToday() {
			o.Println(formatTaskLine(rec))
		}

	case "overdue":
		for _, rec := range sess.idx.Overdue() {
			o.Println(formatTaskLine(rec))
		}

	case "stats":
		printStats(o, sess)

	case "verify":
		err := sess.idx.Verify()
		if err != nil {
			o.Println("error:", err)

			break
		}

		o.Printf("ok: %d tasks verified\n", sess.idx.Size())

	default:
		o.Println("unknown command:", fields[0], "(type 'help')")
	}

	return false
}

func printShellHelp(o *IO) {
	o.Println("commands:")
	o.Println("  get <id>       show one task in full")
	o.Println("  ls [project]   list tasks, optionally for one project")
	o.Println("  today          tasks due today")
	o.Println("  overdue        open tasks past their due date")
	o.Println("  stats          index and cache statistics")
	o.Println("  verify         audit index consistency")
	o.Println("  exit           leave the shell")
}

func completeShellLine(line string) []string {
	commands := []string{
		"get", "ls", "today", "overdue",
		"stats", "verify",
		"help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".tix_history")
}

func saveShellHistory(rl *liner.State) {
	if path := shellHistoryFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			_, _ = rl.WriteHistory(f)
			_ = f.Close()
		}
	}
}
