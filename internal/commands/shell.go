package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"vtask/internal/config"
	"vtask/internal/exitcode"
	"vtask/internal/service"
)

func init() {
	Register(&ShellCmd{})
}

// confirmer is implemented by commands that can ask before acting.
type confirmer interface {
	SetConfirm(fn func(prompt string) bool)
}

// ShellCmd implements the shell command. Every line runs one command
// against the same service, so the current list, the cache and the undo
// log carry over between lines.
type ShellCmd struct {
	// In is read for commands and confirmations. Defaults to os.Stdin.
	In io.Reader

	// Registry resolves command names. Defaults to DefaultRegistry.
	Registry *Registry
}

func (c *ShellCmd) Name() string       { return "shell" }
func (c *ShellCmd) Aliases() []string  { return []string{"repl"} }
func (c *ShellCmd) Synopsis() string   { return "Run commands interactively" }
func (c *ShellCmd) Usage() string      { return "vtask shell [common flags]" }
func (c *ShellCmd) NeedsService() bool { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	reg := c.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	scanner := bufio.NewScanner(in)
	confirm := func(prompt string) bool {
		fmt.Fprintf(errOut, "%s [y/N] ", prompt)
		if !scanner.Scan() {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "y" || answer == "yes"
	}

	for {
		if !cfg.Quiet {
			fmt.Fprint(errOut, "vtask> ")
		}
		if !scanner.Scan() {
			break
		}
		fields, err := splitLine(scanner.Text())
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "exit" || fields[0] == "quit" {
			return exitcode.Success
		}

		c.runLine(ctx, reg, cfg, svc, fields, confirm, out, errOut)
		if ctx.Err() != nil {
			fmt.Fprintln(errOut, "error: interrupted")
			return exitcode.Cancelled
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: failed to read input: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func (c *ShellCmd) runLine(ctx context.Context, reg *Registry, cfg *config.Config, svc service.Service, fields []string, confirm func(string) bool, out, errOut io.Writer) int {
	cmd, ok := reg.Find(fields[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", fields[0])
		return exitcode.UserError
	}
	if _, nested := cmd.(*ShellCmd); nested {
		fmt.Fprintln(errOut, "error: already in a shell")
		return exitcode.UserError
	}

	fs := NewFlagSet(cmd)
	lineCfg := *cfg
	fs.BoolVar(&lineCfg.Quiet, "quiet", cfg.Quiet, "")
	cmd.RegisterFlags(fs)
	args, err := ParseFlags(fs, fields[1:])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// The shell owns stdin; dictation must read its events from a file.
	if d, ok := cmd.(*DictateCmd); ok && d.events == "" && d.In == nil {
		fmt.Fprintln(errOut, "error: dictate in the shell needs --events <file>")
		return exitcode.UserError
	}

	if cf, ok := cmd.(confirmer); ok {
		cf.SetConfirm(confirm)
		defer cf.SetConfirm(nil)
	}

	var cmdSvc service.Service
	if cmd.NeedsService() {
		cmdSvc = svc
	}
	return cmd.Run(ctx, &lineCfg, cmdSvc, args, out, errOut)
}

// splitLine splits a shell line on whitespace. Single or double quotes
// group words.
func splitLine(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	var quote rune
	inField := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inField = true
		case r == ' ' || r == '\t':
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
