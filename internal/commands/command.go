// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/tasks"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the backend.
	// Commands like help, version and setup return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, backend settings).
	// deps carries the logger for every command; its backend fields are
	// nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, deps *Deps, args []string, out, errOut io.Writer) int
}

// SessionCommand is implemented by commands that act on tasks. The
// dispatcher signs in with the configured account before running them.
type SessionCommand interface {
	Command
	UsesSession() bool
}

// Deps carries what a command needs. Session is nil when no account is
// configured; calls then run as the anonymous role.
type Deps struct {
	Backend service.Backend
	Gateway *session.Gateway
	Tasks   *tasks.Repository
	Session *service.Session
	Logger  *zap.Logger
}

// NewDeps wires the gateway and repository over backend.
func NewDeps(backend service.Backend, log *zap.Logger) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	return &Deps{
		Backend: backend,
		Gateway: session.NewGateway(backend, log),
		Tasks:   tasks.NewRepository(backend, log),
		Logger:  log,
	}
}

// logger returns the command logger, or a no-op logger when deps is nil.
func (d *Deps) logger() *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
