package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/stats"
)

func runStats(ctx context.Context, stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stdout)
	filename := fs.String("filename", defaultFilename, "input filename to summarize")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := stats.Open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := stats.Summarize(ctx, db, *filename)
	if err != nil {
		return fmt.Errorf("summarizing %s: %w", *filename, err)
	}

	fmt.Fprintf(stdout, "File: %s\n", summary.Path)
	fmt.Fprintf(stdout, "Rows: %d\n", summary.Rows)
	fmt.Fprintf(stdout, "Distinct IDs: %d\n", summary.DistinctIDs)
	for _, ec := range summary.Events {
		fmt.Fprintf(stdout, "  %-10s %d\n", ec.Event, ec.Count)
	}
	return nil
}
