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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	// Registry lists the commands to describe. Defaults to DefaultRegistry.
	Registry *Registry
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "vtask help [command]" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	if len(args) > 0 {
		cmd, ok := reg.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %-58s %s\n", "vtask", "List tasks of the current list")
	for _, cmd := range reg.All() {
		fmt.Fprintf(out, "  %-58s %s\n", cmd.Usage(), cmd.Synopsis())
	}
	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpFooter = `
Task refs:
  3       task 3 of the current list
  b3      task 3 of list b (letters follow 'vtask lists')

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
