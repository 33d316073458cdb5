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
	Register(&IndentCmd{})
	Register(&OutdentCmd{})
}

// IndentCmd implements the indent command. The task nests under the
// top-level task above it, or under --under.
type IndentCmd struct {
	listName string
	under    string
}

// SetUnder sets the parent task ref (for testing).
func (c *IndentCmd) SetUnder(ref string) {
	c.under = ref
}

func (c *IndentCmd) Name() string       { return "indent" }
func (c *IndentCmd) Aliases() []string  { return []string{"nest"} }
func (c *IndentCmd) Synopsis() string   { return "Make a task a subtask" }
func (c *IndentCmd) Usage() string      { return "vtask indent [--list <list-name>] [--under <ref>] <ref>" }
func (c *IndentCmd) NeedsService() bool { return true }

func (c *IndentCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.under, "under", "", "")
	fs.StringVar(&c.under, "u", "", "")
}

func (c *IndentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code, ok := singleTask(ctx, svc, c.listName, args, errOut)
	if !ok {
		return code
	}

	var parentID string
	if c.under != "" {
		ref, _, err := ParseTaskRef(strings.Fields(c.under))
		if err != nil {
			return reportError(errOut, err)
		}
		parent, err := resolveTask(ctx, svc, c.listName, ref)
		if err != nil {
			return reportError(errOut, err)
		}
		if parent.ID == task.ParentTaskID {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no change")
			}
			return exitcode.Success
		}
		parentID = parent.ID
	}

	if err := svc.MakeSubtask(ctx, task.ID, parentID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}

// OutdentCmd implements the outdent command.
type OutdentCmd struct {
	listName string
}

func (c *OutdentCmd) Name() string       { return "outdent" }
func (c *OutdentCmd) Aliases() []string  { return []string{"unnest"} }
func (c *OutdentCmd) Synopsis() string   { return "Return a subtask to the top level" }
func (c *OutdentCmd) Usage() string      { return "vtask outdent [--list <list-name>] <ref>" }
func (c *OutdentCmd) NeedsService() bool { return true }

func (c *OutdentCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *OutdentCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code, ok := singleTask(ctx, svc, c.listName, args, errOut)
	if !ok {
		return code
	}
	if !task.IsSubtask() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no change")
		}
		return exitcode.Success
	}
	if err := svc.UnindentSubtask(ctx, task.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}

// singleTask resolves args holding exactly one ref. On failure the error
// has been reported and the exit code is returned with ok false.
func singleTask(ctx context.Context, svc service.Service, listName string, args []string, errOut io.Writer) (task service.Task, code int, ok bool) {
	ref, n, err := ParseTaskRef(args)
	if err != nil {
		return task, reportError(errOut, err), false
	}
	if n < len(args) {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[n])
		return task, exitcode.UserError, false
	}
	task, err = resolveTask(ctx, svc, listName, ref)
	if err != nil {
		return task, reportError(errOut, err), false
	}
	return task, exitcode.Success, true
}
