package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cubahno/oascombine/internal/logging"
	"github.com/cubahno/oascombine/pkg/config"
	"github.com/cubahno/oascombine/pkg/watch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// run watches until ctx is done and returns the process exit code.
func run(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("oas-watch", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: oas-watch [options]\n\n")
		fmt.Fprintf(fs.Output(), "Watches the OpenAPI fragments and combines them again after every change.\n")
		fmt.Fprintf(fs.Output(), "Press Ctrl+C to stop.\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}

	dir := fs.String("dir", ".", "Project directory all configured paths are relative to.")
	configFile := fs.String("config", "", "Config file path. Defaults to "+config.ConfigFileName+" in -dir.")
	verbose := fs.Bool("v", false, "Verbose logging.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logging.Setup(*verbose)

	baseDir, err := filepath.Abs(*dir)
	if err != nil {
		slog.Error("Invalid directory", "dir", *dir, "error", err)
		return 1
	}

	cfg := config.MustConfigFile(baseDir, *configFile)
	command, err := mergeCommand(cfg.Watch.Command, *configFile, *verbose)
	if err != nil {
		slog.Error("Invalid config path", "path", *configFile, "error", err)
		return 1
	}

	watcher, err := watch.New(cfg, watch.NewCommandRunner(cfg.BaseDir, command))
	if err != nil {
		slog.Error("Failed to start watcher", "error", err)
		return 1
	}

	slog.Info("Watcher active, press Ctrl+C to stop",
		"dir", cfg.Paths.Fragments,
		"suffix", cfg.Watch.Suffix,
		"command", command)

	if err := watcher.Run(ctx); err != nil {
		slog.Error("Watcher failed", "error", err)
		return 1
	}
	return 0
}

// mergeCommand returns the child command line with our -config and -v
// appended, so the child merges the same layout we watch.
// The child runs in the project directory, so the config path is made
// absolute against our working directory first.
func mergeCommand(command []string, configFile string, verbose bool) ([]string, error) {
	res := append([]string(nil), command...)
	if configFile != "" {
		abs, err := filepath.Abs(configFile)
		if err != nil {
			return nil, err
		}
		res = append(res, "-config", abs)
	}
	if verbose {
		res = append(res, "-v")
	}
	return res, nil
}
