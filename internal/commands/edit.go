package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	listName string
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"rename"} }
func (c *EditCmd) Synopsis() string   { return "Change a task's text" }
func (c *EditCmd) Usage() string      { return "vtask edit [--list <list-name>] <ref> <text...>" }
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return reportError(errOut, err)
	}
	text := strings.TrimSpace(strings.Join(args[n:], " "))
	if text == "" {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	task, err := resolveTask(ctx, svc, c.listName, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	if task.Text == text {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no change")
		}
		return exitcode.Success
	}
	if err := svc.UpdateTask(ctx, task.ID, service.TaskPatch{Text: &text}); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
