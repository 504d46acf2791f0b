package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/expidus/lunar-remote/backend"
	"github.com/expidus/lunar-remote/config"
	"github.com/expidus/lunar-remote/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [flags] <command> [args...]\n\nCommands:\n", config.AppName)
	for _, name := range commandNames() {
		cmd := commands[name]
		fmt.Fprintf(w, "  %-16s %-36s %s\n", name, cmd.args, cmd.help)
	}
	fmt.Fprintf(w, "\nFlags:\n%s", fs.FlagUsages())
}

// run returns the exit status: 0 on success, 1 on error, 2 on usage error.
func run(args []string, stdout, stderr io.Writer) int {
	fs := config.Flags()
	standalone := fs.Bool("standalone", true, "bulk-rename: run the dialog without a main window")
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.New(fs)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", config.AppName, err)
		return 2
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetPackageLevels(cfg.LogLevels)

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr, fs)
		return 2
	}
	cmd, err := lookup(rest[0], rest[1:])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", config.AppName, err)
		return 2
	}

	// Global context for the entire command, cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := backend.New(ctx, cfg.Bus)
	if err != nil {
		return exitStatus(err, stderr)
	}
	defer b.Close()

	e := &env{cfg: cfg, backend: b, standalone: *standalone, out: stdout}
	return exitStatus(cmd.run(ctx, e, rest[1:]), stderr)
}

func exitStatus(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var uErr *usageError
	if errors.As(err, &uErr) {
		fmt.Fprintf(stderr, "%s: %v\n", config.AppName, err)
		return 2
	}
	logger.Error("[%s] %v", config.AppName, err)
	return 1
}
