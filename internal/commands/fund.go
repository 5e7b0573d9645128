package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
)

// DefaultFundAmount is one APT in octas.
const DefaultFundAmount = 100_000_000

func init() {
	Register(&FundCmd{})
}

// FundCmd implements the fund command.
type FundCmd struct {
	amount uint64
}

func (c *FundCmd) Name() string       { return "fund" }
func (c *FundCmd) Aliases() []string  { return nil }
func (c *FundCmd) Synopsis() string   { return "Request test coins from the faucet" }
func (c *FundCmd) Usage() string      { return "aptodo fund [--amount <octas>]" }
func (c *FundCmd) NeedsBackend() bool { return true }

func (c *FundCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Uint64Var(&c.amount, "amount", DefaultFundAmount, "")
}

func (c *FundCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	if c.amount == 0 {
		fmt.Fprintln(errOut, "error: amount must be positive")
		return exitcode.UserError
	}
	if b.Faucet == nil {
		fmt.Fprintln(errOut, "error: no faucet configured")
		return exitcode.UserError
	}

	if code := connectSession(ctx, b, errOut); code != exitcode.Success {
		return code
	}
	account := b.Session.Snapshot().Account

	hashes, err := b.Faucet.Fund(ctx, account, c.amount)
	if err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		for _, h := range hashes {
			fmt.Fprintln(out, h)
		}
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
