package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"aptodo/internal/config"
	"aptodo/internal/exitcode"
	"aptodo/internal/session"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Add a task" }
func (c *AddCmd) Usage() string      { return "aptodo add [common flags] <content...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	// Join args to form the content
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		fmt.Fprintln(errOut, "error: content required")
		return exitcode.UserError
	}

	if _, code := requireList(ctx, b, errOut); code != exitcode.Success {
		return code
	}

	if err := b.Session.Dispatch(ctx, session.AddTask{Content: content}); err != nil {
		return report(errOut, err)
	}

	if !cfg.Quiet {
		tasks := b.Session.Snapshot().List.Tasks
		if n := len(tasks); n > 0 {
			fmt.Fprintf(out, "ok %s\n", tasks[n-1].TaskID)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
