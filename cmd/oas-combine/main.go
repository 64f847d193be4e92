package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cubahno/oascombine/internal/logging"
	"github.com/cubahno/oascombine/pkg/config"
	"github.com/cubahno/oascombine/pkg/merge"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run combines the documents and returns the process exit code.
func run(args []string) int {
	fs := flag.NewFlagSet("oas-combine", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: oas-combine [options]\n\n")
		fmt.Fprintf(fs.Output(), "Combines the OpenAPI base document and its fragments into one document.\n\n")
		fmt.Fprintf(fs.Output(), "Options:\n")
		fs.PrintDefaults()
	}

	dir := fs.String("dir", ".", "Project directory all configured paths are relative to.")
	configFile := fs.String("config", "", "Config file path. Defaults to "+config.ConfigFileName+" in -dir.")
	lint := fs.Bool("lint", false, "Report duplicate object keys in the inputs.")
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
	combiner := merge.NewCombiner(cfg.Paths, merge.WithLint(*lint))

	if _, err := combiner.Combine(context.Background()); err != nil {
		slog.Error("Failed to combine OpenAPI documents", "error", err)
		return 1
	}
	return 0
}
