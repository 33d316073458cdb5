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
	Register(&UseCmd{})
	Register(&DefaultCmd{})
}

// UseCmd implements the use command, which selects the current list.
type UseCmd struct{}

func (c *UseCmd) Name() string       { return "use" }
func (c *UseCmd) Aliases() []string  { return []string{"switch"} }
func (c *UseCmd) Synopsis() string   { return "Select the current list" }
func (c *UseCmd) Usage() string      { return "vtask use <list-name|letter>" }
func (c *UseCmd) NeedsService() bool { return true }

func (c *UseCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UseCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name, ok := listNameArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}
	list, err := resolveNamedList(ctx, svc, name)
	if err != nil {
		return reportError(errOut, err)
	}
	if err := svc.SelectTaskList(ctx, list.ID); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}

// DefaultCmd implements the default command, which shows or sets the list
// selected when no current list is recorded.
type DefaultCmd struct {
	clear bool
}

// SetClear sets the clear flag (for testing).
func (c *DefaultCmd) SetClear(on bool) {
	c.clear = on
}

func (c *DefaultCmd) Name() string       { return "default" }
func (c *DefaultCmd) Aliases() []string  { return nil }
func (c *DefaultCmd) Synopsis() string   { return "Show or set the default list" }
func (c *DefaultCmd) Usage() string      { return "vtask default [--clear] [list-name]" }
func (c *DefaultCmd) NeedsService() bool { return true }

func (c *DefaultCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.clear, "clear", false, "")
}

func (c *DefaultCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))

	switch {
	case c.clear && name != "":
		fmt.Fprintln(errOut, "error: cannot use both --clear and a list name")
		return exitcode.UserError
	case c.clear:
		return c.save(ctx, cfg, svc, "", out, errOut)
	case name != "":
		list, err := resolveNamedList(ctx, svc, name)
		if err != nil {
			return reportError(errOut, err)
		}
		return c.save(ctx, cfg, svc, list.ID, out, errOut)
	}

	settings, err := svc.LoadSettings(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if settings.DefaultTaskListID == "" {
		fmt.Fprintln(out, "no default list")
		return exitcode.Success
	}
	lists, err := svc.LoadTaskLists(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	for _, list := range lists {
		if list.ID == settings.DefaultTaskListID {
			fmt.Fprintln(out, list.Name)
			return exitcode.Success
		}
	}
	fmt.Fprintln(out, "no default list")
	return exitcode.Success
}

func (c *DefaultCmd) save(ctx context.Context, cfg *config.Config, svc service.Service, listID string, out, errOut io.Writer) int {
	settings, err := svc.LoadSettings(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	settings.DefaultTaskListID = listID
	if err := svc.SaveSettings(ctx, settings); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
