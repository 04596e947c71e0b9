package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "todo help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  todo                 same as todo list")
	DefaultRegistry.WriteUsage(out)
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  SUPABASE_URL, SUPABASE_ANON_KEY   Backend URL and public key
  TODO_EMAIL, TODO_PASSWORD         Account used by login, signup and task commands
  TODO_REQUEST_TIMEOUT              Per-request timeout (e.g. 10s)
  DATABASE_URL                      Postgres connection used by setup --apply
  LOG_LEVEL, LOG_ENCODING           debug|info|warn|error, console|json
`
