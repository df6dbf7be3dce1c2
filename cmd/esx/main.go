// esx inspects, dumps, and rebuilds plugin files.
//
// Usage:
//
//	esx [--verbose] [--max-size BYTES] <command> [flags] [args]
//
// Commands:
//
//	info FILE...          summary, digest, and resolve statistics per file
//	groups FILE           the group tree with resolved labels
//	records FILE          every record, optionally filtered by signature
//	dump FILE OUT         write a YAML or CBOR dump (format from OUT's extension)
//	restore DUMP OUT      rebuild a plugin file from a dump
//	roundtrip FILE...     check that decoding and re-encoding preserves each file
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/meigma/esx"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// errUsage is returned after usage text has been printed.
var errUsage = errors.New("usage")

type config struct {
	verbose bool
	maxSize uint64
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
}

// pluginOptions returns the load options shared by every command.
func (c *config) pluginOptions() []esx.Option {
	return []esx.Option{
		esx.WithLogger(c.logger),
		esx.WithMaxFileSize(c.maxSize),
	}
}

type command struct {
	name    string
	usage   string
	minArgs int
	maxArgs int // -1 for no limit
	flags   func(fs *pflag.FlagSet)
	run     func(cfg *config, args []string) error
}

func commands() []*command {
	return []*command{
		infoCommand(),
		groupsCommand(),
		recordsCommand(),
		dumpCommand(),
		restoreCommand(),
		roundtripCommand(),
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg := &config{stdout: stdout, stderr: stderr}

	flagSet := pflag.NewFlagSet("esx", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug output to stderr")
	flagSet.Uint64Var(&cfg.maxSize, "max-size", esx.DefaultMaxFileSize, "largest plugin file accepted, in bytes (0 disables the limit)")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	cfg.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return errUsage
	}

	for _, cmd := range commands() {
		if cmd.name == rest[0] {
			return cmd.exec(cfg, rest[1:])
		}
	}
	fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
	printUsage(stderr, flagSet)
	return errUsage
}

func (c *command) exec(cfg *config, args []string) error {
	flagSet := pflag.NewFlagSet("esx "+c.name, pflag.ContinueOnError)
	flagSet.SetOutput(cfg.stderr)
	if c.flags != nil {
		c.flags(flagSet)
	}
	flagSet.Usage = func() {
		fmt.Fprintf(cfg.stderr, "Usage: esx %s %s\n", c.name, c.usage)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	positional := flagSet.Args()
	if len(positional) < c.minArgs || (c.maxArgs >= 0 && len(positional) > c.maxArgs) {
		flagSet.Usage()
		return errUsage
	}
	return c.run(cfg, positional)
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: esx [flags] <command> [args]\n\nCommands:\n")
	for _, cmd := range commands() {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.usage)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	flagSet.PrintDefaults()
}
