package cli

import "errors"

// Global flag parse errors. Command-specific errors live next to their
// command.
var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)
