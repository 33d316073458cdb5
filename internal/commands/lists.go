package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/output"
	"vtask/internal/service"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string       { return "lists" }
func (c *ListsCmd) Aliases() []string  { return nil }
func (c *ListsCmd) Synopsis() string   { return "List all task lists" }
func (c *ListsCmd) Usage() string      { return "vtask lists [common flags]" }
func (c *ListsCmd) NeedsService() bool { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists, err := svc.LoadTaskLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if len(lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no task lists")
		}
		return exitcode.Success
	}
	current, def, err := listMarks(ctx, svc)
	if err != nil {
		return reportError(errOut, err)
	}
	for i, list := range lists {
		output.FormatListName(out, listLetter(i), list, list.ID == current, list.ID == def)
	}
	return exitcode.Success
}
