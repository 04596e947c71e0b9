package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "todo add <title...>" }
func (c *AddCmd) NeedsBackend() bool { return true }
func (c *AddCmd) UsesSession() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	// Join args to form title; the repository rejects blank titles before
	// any network call.
	title := strings.Join(args, " ")

	task, err := deps.Tasks.Add(ctx, deps.Session, title)
	if err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		if task.ID > 0 {
			output.FormatTask(out, task)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
