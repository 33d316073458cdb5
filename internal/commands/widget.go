package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"vtask/internal/bridge"
	"vtask/internal/cache"
	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/logging"
	"vtask/internal/service"
)

func init() {
	Register(&WidgetCmd{})
}

// cacheHolder is implemented by services that expose the cache they write.
type cacheHolder interface {
	Cache() cache.Store
}

// WidgetCmd implements the widget command: one native bridge pass, or
// a pass every bridge.interval with --watch.
type WidgetCmd struct {
	watch bool
}

// SetWatch sets the watch flag (for testing).
func (c *WidgetCmd) SetWatch(watch bool) {
	c.watch = watch
}

func (c *WidgetCmd) Name() string       { return "widget" }
func (c *WidgetCmd) Aliases() []string  { return nil }
func (c *WidgetCmd) Synopsis() string   { return "Sync the current list with the home-screen widget" }
func (c *WidgetCmd) Usage() string      { return "vtask widget [--watch]" }
func (c *WidgetCmd) NeedsService() bool { return true }

func (c *WidgetCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.watch, "watch", false, "")
	fs.BoolVar(&c.watch, "w", false, "")
}

func (c *WidgetCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	holder, ok := svc.(cacheHolder)
	if !ok {
		fmt.Fprintln(errOut, "error: widget sync needs the local task cache")
		return exitcode.UserError
	}

	// The bridge pushes what the cache holds: select and load the current
	// list so both are cached.
	list, err := svc.CurrentTaskList(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if err := svc.SelectTaskList(ctx, list.ID); err != nil {
		return reportError(errOut, err)
	}
	if _, err := svc.LoadTasks(ctx, list.ID); err != nil {
		return reportError(errOut, err)
	}

	prefs := cache.NewFileStore(cfg.Fs, cfg.BridgeDir)
	b := bridge.New(svc, holder.Cache(), prefs, logging.New(errOut, cfg.Debug))

	if c.watch {
		err := b.Run(ctx, cfg.BridgeInterval)
		if errors.Is(err, context.Canceled) {
			return exitcode.Success
		}
		return reportError(errOut, err)
	}

	res, err := b.Sync(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok (%s)\n", res)
	}
	return exitcode.Success
}
