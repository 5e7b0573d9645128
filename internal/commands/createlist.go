package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
	"aptodo/internal/session"
)

func init() {
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return []string{"init"} }
func (c *CreateListCmd) Synopsis() string   { return "Create the todo list" }
func (c *CreateListCmd) Usage() string      { return "aptodo createlist [common flags]" }
func (c *CreateListCmd) NeedsBackend() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if code := connectSession(ctx, b, errOut); code != exitcode.Success {
		return code
	}

	// Check if the list already exists
	if b.Session.Snapshot().HasList() {
		fmt.Fprintln(errOut, "error: todo list already exists")
		return exitcode.UserError
	}

	if err := b.Session.Dispatch(ctx, session.CreateList{}); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
