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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	listName string
	force    bool
	confirm  func(prompt string) bool
}

// SetListName sets the list name (for testing).
func (c *RmCmd) SetListName(name string) {
	c.listName = name
}

// SetForce sets the force flag (for testing).
func (c *RmCmd) SetForce(force bool) {
	c.force = force
}

// SetConfirm installs the prompt asked before deleting a task that has
// subtasks. Without one, such deletions need --force.
func (c *RmCmd) SetConfirm(fn func(prompt string) bool) {
	c.confirm = fn
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete tasks" }
func (c *RmCmd) Usage() string      { return "vtask rm [--list <list-name>] [--force] <ref>..." }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	refs, err := ParseTaskRefs(args)
	if err != nil {
		return reportError(errOut, err)
	}
	tasks, err := resolveTasks(ctx, svc, c.listName, refs)
	if err != nil {
		return reportError(errOut, err)
	}

	deleting := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		deleting[task.ID] = true
	}

	for _, task := range tasks {
		// Deleting the parent removes its subtasks.
		if task.IsSubtask() && deleting[task.ParentTaskID] {
			continue
		}
		n, err := countSubtasks(ctx, svc, task)
		if err != nil {
			return reportError(errOut, err)
		}
		if n > 0 && !c.force {
			prompt := fmt.Sprintf("%q has %d subtask(s). Delete them too?", task.Text, n)
			if c.confirm == nil || !c.confirm(prompt) {
				fmt.Fprintf(errOut, "error: task has %d subtask(s) (use --force)\n", n)
				return exitcode.UserError
			}
		}
		if err := svc.DeleteTask(ctx, task.ID); err != nil {
			return reportError(errOut, err)
		}
	}
	return printOK(cfg.Quiet, out)
}

func countSubtasks(ctx context.Context, svc service.Service, task service.Task) (int, error) {
	if task.IsSubtask() {
		return 0, nil
	}
	tasks, err := svc.LoadTasks(ctx, task.TaskListID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		if t.ParentTaskID == task.ID {
			n++
		}
	}
	return n, nil
}
