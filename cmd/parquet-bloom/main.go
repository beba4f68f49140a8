package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
)

const defaultFilename = "events_with_bloom.parquet"

func main() {
	if err := run(context.Background(), os.Stdout, os.Getenv, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run executes the main logic of the program.
func run(ctx context.Context, stdout io.Writer, getenv func(string) string, args []string) error {
	// Create structured logger using JSON format
	logger := slog.New(slog.NewJSONHandler(stdout, nil))

	// Load env config
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if len(args) == 0 {
		usage(stdout)
		return fmt.Errorf("no command given")
	}

	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "generate":
		return runGenerate(ctx, stdout, logger, cmdArgs)
	case "generate-both":
		return runGenerateBoth(ctx, stdout, logger, cmdArgs)
	case "verify":
		return runVerify(ctx, stdout, logger, cmdArgs)
	case "inspect":
		return runInspect(ctx, stdout, cmdArgs)
	case "stats":
		return runStats(ctx, stdout, cmdArgs)
	case "publish":
		return runPublish(ctx, stdout, logger, cfg, cmdArgs)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `parquet-bloom creates and verifies parquet files with bloom filters.

Usage:
  parquet-bloom generate      [-filename FILE] [-rows N] [-seed N] [-fpp P] [-no-bloom]
  parquet-bloom generate-both [-prefix NAME] [-rows N] [-seed N]
  parquet-bloom verify        [-filename FILE]
  parquet-bloom inspect       [-filename FILE]
  parquet-bloom stats         [-filename FILE]
  parquet-bloom publish       [-bucket NAME] [-queue-url URL] FILE...
  parquet-bloom help`)
}
