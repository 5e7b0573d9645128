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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "aptodo done [common flags] <task-id>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	snap, code := requireList(ctx, b, errOut)
	if code != exitcode.Success {
		return code
	}

	task, ok := findTask(snap, id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitcode.UserError
	}

	// Completion is one-way; a completed task needs no transaction.
	if !task.Completed {
		if err := b.Session.Dispatch(ctx, session.CompleteTask{TaskID: id, Checked: true}); err != nil {
			return report(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
