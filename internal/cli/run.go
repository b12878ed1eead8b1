// Package cli hosts the tix command line: global flag handling, config
// resolution and one Command per user-facing operation, all sharing a
// session wired to the task index and its vault collaborators.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/notevault/task-index/internal/vault"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
//
// stdin is accepted for interface stability but no command reads it; the
// shell command talks to the terminal directly.
func Run(ctx context.Context, _ io.Reader, out io.Writer, errOut io.Writer, args []string, env []string) int {
	// Commands capture the session now; init fills it once the config
	// is resolved. Only metadata is touched before then.
	sess := &session{}

	commands := []*Command{
		scanCmd(sess),
		assignIDsCmd(sess),
		lsCmd(sess),
		todayCmd(sess),
		overdueCmd(sess),
		getCmd(sess),
		statsCmd(sess),
		verifyCmd(sess),
		shellCmd(sess),
		printConfigCmd(sess),
	}

	if len(args) < minArgs {
		printUsage(out, commands)

		return 0
	}

	// Parse global flags
	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out, commands)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(out, commands)

		return 0
	}

	// Resolve the command before touching the config so an unknown
	// command is reported as such even in a directory with a broken
	// config file.
	cmd := findCommand(commands, name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, commands)

		return 1
	}

	// Default workDir to current directory
	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	// Load and validate config
	cliOverrides := vault.Config{VaultDir: flags.vaultDir}

	cfg, sources, err := vault.LoadConfig(workDir, flags.configPath, cliOverrides, flags.hasVaultDirOverride, env)
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut, commands)

		return 1
	}

	err = sess.init(cfg, sources, workDir, newLogger(errOut, flags.verbose))
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	o := NewIO(out, errOut)

	code := cmd.Run(ctx, o, flags.remaining[1:])
	if code != 0 {
		return code
	}

	// Finish handles warnings and exit code
	return o.Finish()
}

type globalFlags struct {
	workDir             string
	configPath          string
	vaultDir            string
	hasVaultDirOverride bool
	verbose             bool
	remaining           []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --vault-dir flag
	if arg == "--vault-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.vaultDir = args[idx+1]
		flags.hasVaultDirOverride = true

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--vault-dir="); ok {
		flags.vaultDir = after
		flags.hasVaultDirOverride = true

		return consumedOne, nil
	}

	// -v/--verbose flag
	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func findCommand(commands []*Command, name string) *Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// newLogger builds a console logger writing to w. Scanner and host logs go
// to stderr so stdout stays parseable; --verbose lowers the level from
// warnings to everything.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, commands []*Command) {
	fprintln(w, `tix - task index over a markdown vault

Usage: tix [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --vault-dir <dir>  Vault root (overrides config)
  -v, --verbose          Log scan activity to stderr

Commands:`)

	for _, cmd := range commands {
		fprintln(w, cmd.HelpLine())
	}
}
