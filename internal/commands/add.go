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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
	parent   string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetParent sets the parent task ref (for testing).
func (c *AddCmd) SetParent(ref string) {
	c.parent = ref
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "vtask add [--list <list-name>] [--parent <ref>] <text...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.parent, "parent", "", "")
	fs.StringVar(&c.parent, "p", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}
	return addTask(ctx, cfg, svc, c.listName, c.parent, text, out, errOut)
}

// addTask is the shared implementation for add and dictate. A parent ref
// places the new task in the parent's list.
func addTask(ctx context.Context, cfg *config.Config, svc service.Service, listName, parentRef, text string, out, errOut io.Writer) int {
	var listID, parentID string
	if parentRef != "" {
		ref, _, err := ParseTaskRef(strings.Fields(parentRef))
		if err != nil {
			return reportError(errOut, err)
		}
		parent, err := resolveTask(ctx, svc, listName, ref)
		if err != nil {
			return reportError(errOut, err)
		}
		listID, parentID = parent.TaskListID, parent.ID
	} else {
		list, err := resolveListOrCurrent(ctx, svc, listName)
		if err != nil {
			return reportError(errOut, err)
		}
		listID = list.ID
	}

	if _, err := svc.CreateTask(ctx, listID, text, parentID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
