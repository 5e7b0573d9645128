package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
)

func init() {
	Register(&DisconnectCmd{})
}

// DisconnectCmd implements the disconnect command.
type DisconnectCmd struct{}

func (c *DisconnectCmd) Name() string       { return "disconnect" }
func (c *DisconnectCmd) Aliases() []string  { return []string{"logout"} }
func (c *DisconnectCmd) Synopsis() string   { return "Remove the stored wallet" }
func (c *DisconnectCmd) Usage() string      { return "aptodo disconnect [common flags]" }
func (c *DisconnectCmd) NeedsBackend() bool { return false }

func (c *DisconnectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DisconnectCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	// Check if wallet.json exists
	if !cfg.HasWallet() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not connected")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveWallet(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove wallet: %v\n", err)
		return exitcode.WalletError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
