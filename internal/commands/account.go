package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
)

func init() {
	Register(&AccountCmd{})
}

// AccountCmd implements the account command.
type AccountCmd struct{}

func (c *AccountCmd) Name() string       { return "account" }
func (c *AccountCmd) Aliases() []string  { return []string{"whoami"} }
func (c *AccountCmd) Synopsis() string   { return "Print the account and list status" }
func (c *AccountCmd) Usage() string      { return "aptodo account [common flags]" }
func (c *AccountCmd) NeedsBackend() bool { return true }

func (c *AccountCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AccountCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	if code := connectSession(ctx, b, errOut); code != exitcode.Success {
		return code
	}
	snap := b.Session.Snapshot()

	fmt.Fprintf(out, "address: %s\n", snap.Account)
	fmt.Fprintf(out, "module:  %s::todolist\n", cfg.Settings.ModuleAddress)
	if snap.List == nil {
		fmt.Fprintln(out, "list:    none")
	} else {
		open := 0
		for _, t := range snap.List.Tasks {
			if !t.Completed {
				open++
			}
		}
		fmt.Fprintf(out, "list:    %d tasks, %d open\n", len(snap.List.Tasks), open)
	}
	if u := strings.TrimRight(cfg.Settings.ExplorerURL, "/"); u != "" {
		fmt.Fprintf(out, "explorer: %s/account/%s\n", u, snap.Account)
	}
	return exitcode.Success
}
