package commands

import (
	"context"
	"flag"
	"io"

	"vtask/internal/config"
	"vtask/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *DoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"check"} }
func (c *DoneCmd) Synopsis() string   { return "Mark tasks completed" }
func (c *DoneCmd) Usage() string      { return "vtask done [--list <list-name>] <ref>..." }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, c.listName, args, true, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct {
	listName string
}

// SetListName sets the list name (for testing).
func (c *UndoneCmd) SetListName(name string) {
	c.listName = name
}

func (c *UndoneCmd) Name() string       { return "undone" }
func (c *UndoneCmd) Aliases() []string  { return []string{"uncheck"} }
func (c *UndoneCmd) Synopsis() string   { return "Mark tasks not completed" }
func (c *UndoneCmd) Usage() string      { return "vtask undone [--list <list-name>] <ref>..." }
func (c *UndoneCmd) NeedsService() bool { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, cfg, svc, c.listName, args, false, out, errOut)
}

// runToggle is the shared implementation for done and undone. Toggling a
// top-level task carries its subtasks along.
func runToggle(ctx context.Context, cfg *config.Config, svc service.Service, listName string, args []string, completed bool, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return reportError(errOut, err)
	}
	tasks, err := resolveTasks(ctx, svc, listName, refs)
	if err != nil {
		return reportError(errOut, err)
	}
	for _, task := range tasks {
		if err := svc.ToggleTask(ctx, task.ID, completed); err != nil {
			return reportError(errOut, err)
		}
	}
	return printOK(cfg.Quiet, out)
}
