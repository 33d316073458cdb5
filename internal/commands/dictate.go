package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
	"vtask/internal/transcript"
)

func init() {
	Register(&DictateCmd{})
}

// DictateCmd implements the dictate command. It records one utterance from
// a speech engine event stream and adds it as a task.
type DictateCmd struct {
	listName string
	parent   string
	events   string

	// In is the event stream used when no --events file is given.
	// Defaults to os.Stdin.
	In io.Reader
}

func (c *DictateCmd) Name() string      { return "dictate" }
func (c *DictateCmd) Aliases() []string { return []string{"voice"} }
func (c *DictateCmd) Synopsis() string  { return "Create a task from speech" }
func (c *DictateCmd) Usage() string {
	return "vtask dictate [--list <list-name>] [--parent <ref>] [--events <file>]"
}
func (c *DictateCmd) NeedsService() bool { return true }

func (c *DictateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.parent, "parent", "", "")
	fs.StringVar(&c.parent, "p", "", "")
	fs.StringVar(&c.events, "events", "", "")
}

func (c *DictateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	in := c.In
	if in == nil {
		in = os.Stdin
	}
	if c.events != "" {
		f, err := cfg.Fs.Open(c.events)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to open events file: %v\n", err)
			return exitcode.UserError
		}
		defer f.Close()
		in = f
	}

	opts := []transcript.Option{transcript.WithTimeout(cfg.VoiceTimeout)}
	if !cfg.Quiet {
		opts = append(opts, transcript.WithPreview(func(text string) {
			fmt.Fprintf(errOut, "hearing: %s\n", text)
		}))
	}
	rec := transcript.NewRecorder(transcript.NewStreamEngine(in), opts...)

	text, err := rec.Record(ctx)
	var engineErr *transcript.EngineError
	switch {
	case errors.As(err, &engineErr) && text != "":
		// Keep what was heard before the engine failed.
		fmt.Fprintf(errOut, "warning: %v\n", err)
	case err != nil:
		return reportError(errOut, err)
	}
	if text == "" {
		fmt.Fprintln(errOut, "error: no speech recognized")
		return exitcode.UserError
	}
	return addTask(ctx, cfg, svc, c.listName, c.parent, text, out, errOut)
}
