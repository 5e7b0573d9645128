// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"aptodo/internal/config"
	"aptodo/internal/session"
)

// Faucet mints test coins.
type Faucet interface {
	Fund(ctx context.Context, address string, amount uint64) ([]string, error)
}

// Backend bundles what ledger-facing commands talk to.
type Backend struct {
	Session *session.Session
	Faucet  Faucet
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the ledger.
	// Commands like help, version, connect, disconnect return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// b is nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int
}
