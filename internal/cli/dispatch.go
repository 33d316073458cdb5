// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"vtask/internal/commands"
	"vtask/internal/config"
	"vtask/internal/docstore"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

// ServiceFactory creates a Service from config. The returned close func
// releases the backend and may be nil.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, func() error, error)

// ConfigLoader builds the config for a config directory.
type ConfigLoader func(dir string) (*config.Config, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry   *commands.Registry
	factory    ServiceFactory
	loadConfig ConfigLoader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		factory:    factory,
		loadConfig: config.New,
	}
}

// SetConfigLoader replaces config.New (for testing).
func (d *Dispatcher) SetConfigLoader(fn ConfigLoader) {
	d.loadConfig = fn
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		args = []string{"list"}
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := commands.NewFlagSet(cmd)

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	positionalArgs, err := commands.ParseFlags(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	cfg, err := d.loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	var svc service.Service
	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no task backend available")
			return exitcode.BackendError
		}
		var closeFn func() error
		svc, closeFn, err = d.factory(ctx, cfg)
		if err != nil {
			if errors.Is(err, docstore.ErrUnauthorized) || errors.Is(err, config.ErrNotConfigured) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: backend error: %s\n", err)
			return exitcode.BackendError
		}
		if closeFn != nil {
			defer closeFn()
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}
