package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

func init() {
	Register(&CreateListCmd{})
	Register(&RenameListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct {
	use bool
}

// SetUse sets the use flag (for testing).
func (c *CreateListCmd) SetUse(use bool) {
	c.use = use
}

func (c *CreateListCmd) Name() string       { return "createlist" }
func (c *CreateListCmd) Aliases() []string  { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string   { return "Create a new list" }
func (c *CreateListCmd) Usage() string      { return "vtask createlist [--use] <list-name>" }
func (c *CreateListCmd) NeedsService() bool { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.use, "use", false, "")
}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name, ok := listNameArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	if code, ok := checkNameFree(ctx, svc, name, errOut); !ok {
		return code
	}

	id, err := svc.CreateTaskList(ctx, name)
	if err != nil {
		return reportError(errOut, err)
	}
	if c.use {
		if err := svc.SelectTaskList(ctx, id); err != nil {
			return reportError(errOut, err)
		}
	}
	return printOK(cfg.Quiet, out)
}

// RenameListCmd implements the renamelist command.
type RenameListCmd struct {
	to string
}

// SetTo sets the new name (for testing).
func (c *RenameListCmd) SetTo(name string) {
	c.to = name
}

func (c *RenameListCmd) Name() string       { return "renamelist" }
func (c *RenameListCmd) Aliases() []string  { return nil }
func (c *RenameListCmd) Synopsis() string   { return "Rename a list" }
func (c *RenameListCmd) Usage() string      { return "vtask renamelist --to <new-name> <list-name>" }
func (c *RenameListCmd) NeedsService() bool { return true }

func (c *RenameListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.to, "to", "", "")
}

func (c *RenameListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name, ok := listNameArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	to := strings.TrimSpace(c.to)
	if to == "" {
		fmt.Fprintln(errOut, "error: new list name required (--to)")
		return exitcode.UserError
	}

	list, err := resolveNamedList(ctx, svc, name)
	if err != nil {
		return reportError(errOut, err)
	}
	if !strings.EqualFold(list.Name, to) {
		if code, ok := checkNameFree(ctx, svc, to, errOut); !ok {
			return code
		}
	}
	if err := svc.RenameTaskList(ctx, list.ID, to); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}

// listNameArg joins args into a list name.
func listNameArg(args []string, errOut io.Writer) (string, bool) {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return "", false
	}
	return name, true
}

// checkNameFree fails when a list already answers to name.
func checkNameFree(ctx context.Context, svc service.Service, name string, errOut io.Writer) (int, bool) {
	_, err := svc.ResolveList(ctx, name)
	switch {
	case err == nil, errors.Is(err, service.ErrAmbiguous):
		fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
		return exitcode.UserError, false
	case errors.Is(err, service.ErrNotFound):
		return exitcode.Success, true
	default:
		return reportError(errOut, err), false
	}
}
