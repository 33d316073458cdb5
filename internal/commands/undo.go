package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

func init() {
	Register(&UndoCmd{})
}

// UndoCmd implements the undo command. The undo log lives in the task
// store, so undo reaches back over the commands of one process, such as
// a shell session.
type UndoCmd struct{}

func (c *UndoCmd) Name() string       { return "undo" }
func (c *UndoCmd) Aliases() []string  { return nil }
func (c *UndoCmd) Synopsis() string   { return "Undo the most recent change" }
func (c *UndoCmd) Usage() string      { return "vtask undo" }
func (c *UndoCmd) NeedsService() bool { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	kind, err := svc.Undo(ctx)
	if errors.Is(err, service.ErrNothingToUndo) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "nothing to undo")
		}
		return exitcode.Success
	}
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "undid %s\n", kind)
	}
	return exitcode.Success
}
