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
	"vtask/internal/output"
	"vtask/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `vtask` (no args) and `vtask list <list-name>`.
type ListCmd struct {
	all      bool
	hideDone bool
}

// SetAll sets the all flag (for testing).
func (c *ListCmd) SetAll(all bool) {
	c.all = all
}

// SetHideDone sets the hide-done flag (for testing).
func (c *ListCmd) SetHideDone(hide bool) {
	c.hideDone = hide
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "vtask list [--all] [--hide-done] [list-name]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.all, "all", false, "")
	fs.BoolVar(&c.all, "a", false, "")
	fs.BoolVar(&c.hideDone, "hide-done", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.all {
		if len(args) > 0 {
			fmt.Fprintln(errOut, "error: --all takes no list name")
			return exitcode.UserError
		}
		return c.listAll(ctx, cfg, svc, out, errOut)
	}
	return c.listOne(ctx, cfg, svc, strings.Join(args, " "), out, errOut)
}

// listMarks returns the current and default list ids.
func listMarks(ctx context.Context, svc service.Service) (current, def string, err error) {
	settings, err := svc.LoadSettings(ctx)
	if err != nil {
		return "", "", err
	}
	cur, err := svc.CurrentTaskList(ctx)
	if err != nil && !errors.Is(err, service.ErrNoTaskLists) {
		return "", "", err
	}
	return cur.ID, settings.DefaultTaskListID, nil
}

// listOne lists the named list, or the current one.
func (c *ListCmd) listOne(ctx context.Context, cfg *config.Config, svc service.Service, name string, out, errOut io.Writer) int {
	list, err := resolveListOrCurrent(ctx, svc, name)
	if errors.Is(err, service.ErrNoTaskLists) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no task lists (run: vtask createlist <list-name>)")
		}
		return exitcode.Success
	}
	if err != nil {
		return reportError(errOut, err)
	}

	current, def, err := listMarks(ctx, svc)
	if err != nil {
		return reportError(errOut, err)
	}
	tasks, err := displayTasks(ctx, svc, list.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	output.FormatListHeader(out, list.Name, list.ID == current, list.ID == def)
	for i, task := range tasks {
		if c.hidden(task) {
			continue
		}
		output.FormatTask(out, i+1, task)
	}
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	if !cfg.Quiet {
		output.FormatSummary(out, tasks)
	}
	return exitcode.Success
}

// listAll lists every list, each task prefixed by its list letter.
func (c *ListCmd) listAll(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	lists, err := svc.LoadTaskLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no task lists (run: vtask createlist <list-name>)")
		}
		return exitcode.Success
	}
	current, def, err := listMarks(ctx, svc)
	if err != nil {
		return reportError(errOut, err)
	}

	for i, list := range lists {
		tasks, err := displayTasks(ctx, svc, list.ID)
		if err != nil {
			// Partial failure: what was printed stays, then the error.
			fmt.Fprintf(errOut, "error: failed to fetch list: %s\n", list.Name)
			return reportError(errOut, err)
		}
		output.FormatListHeader(out, list.Name, list.ID == current, list.ID == def)
		letter := listLetter(i)
		for j, task := range tasks {
			if c.hidden(task) {
				continue
			}
			output.FormatTaskWithLetter(out, letter, j+1, task)
		}
	}
	return exitcode.Success
}

// hidden reports whether a task is filtered out. Numbering still counts
// hidden tasks so refs stay valid.
func (c *ListCmd) hidden(task service.Task) bool {
	return c.hideDone && task.Completed
}
