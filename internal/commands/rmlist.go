package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

func init() {
	Register(&RmListCmd{})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string       { return "rmlist" }
func (c *RmListCmd) Aliases() []string  { return []string{"deletelist"} }
func (c *RmListCmd) Synopsis() string   { return "Delete a list and its tasks" }
func (c *RmListCmd) Usage() string      { return "vtask rmlist [--force] <list-name>" }
func (c *RmListCmd) NeedsService() bool { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name, ok := listNameArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	list, err := resolveNamedList(ctx, svc, name)
	if err != nil {
		return reportError(errOut, err)
	}

	// Lists with open tasks need --force.
	if !c.force {
		tasks, err := svc.LoadTasks(ctx, list.ID)
		if err != nil {
			return reportError(errOut, err)
		}
		for _, t := range tasks {
			if !t.Completed {
				fmt.Fprintln(errOut, "error: list not empty (use --force)")
				return exitcode.UserError
			}
		}
	}

	if err := svc.DeleteTaskList(ctx, list.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
