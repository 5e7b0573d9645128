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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "aptodo help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, b *Backend, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  aptodo                                          List tasks
  aptodo list [common flags] [--format text|json|yaml]
  aptodo createlist [common flags]
  aptodo add [common flags] <content...>
  aptodo done [common flags] <task-id>
  aptodo ui [common flags]
  aptodo connect [common flags] [--new | --mnemonic-file <file> | --private-key-file <file>] [--index <n>]
  aptodo disconnect [common flags]
  aptodo account [common flags]
  aptodo fund [common flags] [--amount <octas>]
  aptodo help
  aptodo version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Settings are read from config.toml in the config directory and from
APTODO_NODE_URL, APTODO_FAUCET_URL, APTODO_MODULE_ADDRESS, APTODO_API_KEY
and APTODO_ADD_STRATEGY.
`
