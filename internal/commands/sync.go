package commands

import (
	"context"
	"flag"
	"io"

	"vtask/internal/config"
	"vtask/internal/service"
)

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct{}

func (c *SyncCmd) Name() string       { return "sync" }
func (c *SyncCmd) Aliases() []string  { return []string{"refresh"} }
func (c *SyncCmd) Synopsis() string   { return "Refresh the local cache from the remote store" }
func (c *SyncCmd) Usage() string      { return "vtask sync [common flags]" }
func (c *SyncCmd) NeedsService() bool { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.SyncAll(ctx); err != nil {
		return reportError(errOut, err)
	}
	return printOK(cfg.Quiet, out)
}
