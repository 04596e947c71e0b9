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
	Register(&CheckCmd{})
}

// CheckCmd probes the tasks table.
type CheckCmd struct{}

func (c *CheckCmd) Name() string       { return "check" }
func (c *CheckCmd) Aliases() []string  { return nil }
func (c *CheckCmd) Synopsis() string   { return "Check that the backend and the tasks table are reachable" }
func (c *CheckCmd) Usage() string      { return "todo check" }
func (c *CheckCmd) NeedsBackend() bool { return true }
func (c *CheckCmd) UsesSession() bool  { return true }

func (c *CheckCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CheckCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	if err := deps.Tasks.CheckConnectivity(ctx, deps.Session); err != nil {
		return ReportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
