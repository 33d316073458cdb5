package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// NewFlagSet returns a flag set for cmd that reports errors instead of
// printing them.
func NewFlagSet(cmd Command) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	return fs
}

// ParseFlags parses args into fs and returns the positional args. Errors
// are worded for an "error: ..." line.
func ParseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		errStr := err.Error()

		switch {
		case errors.Is(err, flag.ErrHelp):
			return nil, fmt.Errorf("unknown flag: -h")
		case strings.HasPrefix(errStr, "flag needs an argument:"):
			name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
			return nil, fmt.Errorf("flag needs an argument: %s", name)
		case strings.HasPrefix(errStr, "flag provided but not defined:"):
			name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag provided but not defined:"))
			return nil, fmt.Errorf("unknown flag: %s", name)
		}
		return nil, err
	}

	// A positional arg starting with - should have been parsed as a flag.
	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") && positional[0] != "-" {
		return nil, fmt.Errorf("unknown flag: %s", positional[0])
	}
	return positional, nil
}
