package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the terminal UI.
type UICmd struct{}

func (c *UICmd) Name() string       { return "ui" }
func (c *UICmd) Aliases() []string  { return nil }
func (c *UICmd) Synopsis() string   { return "Start the terminal UI" }
func (c *UICmd) Usage() string      { return "todo ui" }
func (c *UICmd) NeedsBackend() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	// The UI starts on the login screen and signs in itself.
	err := tui.Run(ctx, tui.Options{
		Auth:   deps.Gateway,
		Tasks:  deps.Tasks,
		Logger: deps.Logger,
		Out:    out,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
