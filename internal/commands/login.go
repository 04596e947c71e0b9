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
	Register(&LoginCmd{})
	Register(&SignUpCmd{})
}

// credentialFlags resolves the account email and password. The email
// flag wins over TODO_EMAIL; the password only comes from TODO_PASSWORD
// so it never appears in the process list.
type credentialFlags struct {
	email string
}

func (f *credentialFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.email, "email", "", "")
}

func (f *credentialFlags) resolve(cfg *config.Config, errOut io.Writer) (email, password string, ok bool) {
	email = f.email
	if email == "" {
		email = cfg.Email
	}
	if strings.TrimSpace(email) == "" {
		fmt.Fprintln(errOut, "error: email required (use --email or set TODO_EMAIL)")
		return "", "", false
	}
	if cfg.Password == "" {
		fmt.Fprintln(errOut, "error: password required (set TODO_PASSWORD)")
		return "", "", false
	}
	return email, cfg.Password, true
}

// LoginCmd implements the login command.
type LoginCmd struct {
	creds credentialFlags
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Sign in and show the session" }
func (c *LoginCmd) Usage() string      { return "todo login [--email <email>]" }
func (c *LoginCmd) NeedsBackend() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.creds.register(fs)
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	email, password, ok := c.creds.resolve(cfg, errOut)
	if !ok {
		return exitcode.UserError
	}

	// Nothing is persisted; the session lives for this process only.
	sess, err := deps.Gateway.SignIn(ctx, email, password)
	if err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		output.FormatSession(out, sess)
	}
	return exitcode.Success
}

// SignUpCmd implements the signup command.
type SignUpCmd struct {
	creds credentialFlags
}

func (c *SignUpCmd) Name() string       { return "signup" }
func (c *SignUpCmd) Aliases() []string  { return []string{"register"} }
func (c *SignUpCmd) Synopsis() string   { return "Create an account" }
func (c *SignUpCmd) Usage() string      { return "todo signup [--email <email>]" }
func (c *SignUpCmd) NeedsBackend() bool { return true }

func (c *SignUpCmd) RegisterFlags(fs *flag.FlagSet) {
	c.creds.register(fs)
}

func (c *SignUpCmd) Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int {
	email, password, ok := c.creds.resolve(cfg, errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := deps.Gateway.SignUp(ctx, email, password); err != nil {
		return ReportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "account created for %s (run: todo login)\n", email)
	}
	return exitcode.Success
}
