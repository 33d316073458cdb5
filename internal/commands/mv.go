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
	Register(&MvCmd{})
}

// MvCmd implements the mv command: the first task takes the position of
// the second within their sibling group.
type MvCmd struct {
	listName string
}

func (c *MvCmd) Name() string       { return "mv" }
func (c *MvCmd) Aliases() []string  { return []string{"move"} }
func (c *MvCmd) Synopsis() string   { return "Move a task to another task's position" }
func (c *MvCmd) Usage() string      { return "vtask mv [--list <list-name>] <ref> <target-ref>" }
func (c *MvCmd) NeedsService() bool { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(refs) != 2 {
		fmt.Fprintln(errOut, "error: mv needs a task and a target")
		return exitcode.UserError
	}
	tasks, err := resolveTasks(ctx, svc, c.listName, refs)
	if err != nil {
		return reportError(errOut, err)
	}
	dragged, target := tasks[0], tasks[1]
	if dragged.ID == target.ID {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no change")
		}
		return exitcode.Success
	}
	if err := svc.ReorderTasks(ctx, dragged.ID, target.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
