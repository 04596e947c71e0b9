package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/schema"
)

func init() {
	Register(&SetupCmd{})
}

// SetupCmd prints or applies the SQL that creates the tasks table.
type SetupCmd struct {
	policy string
	apply  bool
}

func (c *SetupCmd) Name() string       { return "setup" }
func (c *SetupCmd) Aliases() []string  { return nil }
func (c *SetupCmd) Synopsis() string   { return "Print or apply the tasks table SQL" }
func (c *SetupCmd) Usage() string      { return "todo setup [--policy permissive|owner] [--apply]" }
func (c *SetupCmd) NeedsBackend() bool { return false }

func (c *SetupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.policy, "policy", schema.PolicyPermissive, "")
	fs.BoolVar(&c.apply, "apply", false, "")
}

func (c *SetupCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	sql, err := schema.Script(c.policy)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !c.apply {
		fmt.Fprint(out, sql)
		return exitcode.Success
	}

	if err := schema.Apply(ctx, cfg.DatabaseURL, sql, deps.logger()); err != nil {
		if errors.Is(err, schema.ErrNoDatabaseURL) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
