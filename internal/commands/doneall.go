package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"vtask/internal/config"
	"vtask/internal/service"
)

func init() {
	Register(&DoneAllCmd{})
	Register(&UndoneAllCmd{})
}

// DoneAllCmd implements the doneall command.
type DoneAllCmd struct{}

func (c *DoneAllCmd) Name() string       { return "doneall" }
func (c *DoneAllCmd) Aliases() []string  { return nil }
func (c *DoneAllCmd) Synopsis() string   { return "Mark every task in a list completed" }
func (c *DoneAllCmd) Usage() string      { return "vtask doneall [list-name]" }
func (c *DoneAllCmd) NeedsService() bool { return true }

func (c *DoneAllCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneAllCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggleAll(ctx, cfg, svc, args, true, out, errOut)
}

// UndoneAllCmd implements the undoneall command.
type UndoneAllCmd struct{}

func (c *UndoneAllCmd) Name() string       { return "undoneall" }
func (c *UndoneAllCmd) Aliases() []string  { return nil }
func (c *UndoneAllCmd) Synopsis() string   { return "Mark every task in a list not completed" }
func (c *UndoneAllCmd) Usage() string      { return "vtask undoneall [list-name]" }
func (c *UndoneAllCmd) NeedsService() bool { return true }

func (c *UndoneAllCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoneAllCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggleAll(ctx, cfg, svc, args, false, out, errOut)
}

func runToggleAll(ctx context.Context, cfg *config.Config, svc service.Service, args []string, completed bool, out, errOut io.Writer) int {
	list, err := resolveListOrCurrent(ctx, svc, strings.Join(args, " "))
	if err != nil {
		return reportError(errOut, err)
	}
	if err := svc.ToggleAllTasks(ctx, list.ID, completed); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
