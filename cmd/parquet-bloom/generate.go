package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/generator"
	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/models"
	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/writer"
)

func runGenerate(ctx context.Context, stdout io.Writer, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stdout)
	filename := fs.String("filename", defaultFilename, "output filename")
	rows := fs.Int("rows", generator.DefaultRows, "number of rows to generate")
	seed := fs.Int64("seed", generator.DefaultSeed, "seed for reproducible data generation")
	fpp := fs.Float64("fpp", writer.DefaultFPP, "bloom filter false positive probability")
	noBloom := fs.Bool("no-bloom", false, "disable bloom filters")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, err := generator.Generate(generator.Config{Rows: *rows, Seed: *seed})
	if err != nil {
		return fmt.Errorf("generating events: %w", err)
	}
	generator.Sort(events)

	bloomColumns := models.FilterColumns{}
	if !*noBloom {
		bloomColumns = models.DefaultFilterColumns()
	}

	if err := writer.Write(events, writer.Config{
		Path:         *filename,
		BloomColumns: bloomColumns,
		BloomFPP:     *fpp,
		SortRows:     true,
	}); err != nil {
		return fmt.Errorf("writing %s: %w", *filename, err)
	}

	logger.InfoContext(ctx, "Created parquet file",
		slog.String("filename", *filename),
		slog.Int("rows", len(events)),
		slog.Any("bloom_columns", bloomColumns.Names()),
	)
	return nil
}

func runGenerateBoth(ctx context.Context, stdout io.Writer, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("generate-both", flag.ContinueOnError)
	fs.SetOutput(stdout)
	prefix := fs.String("prefix", "events", "base filename prefix")
	rows := fs.Int("rows", generator.DefaultRows, "number of rows to generate")
	seed := fs.Int64("seed", generator.DefaultSeed, "seed for reproducible data generation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// One dataset, two files, so the pair can be compared fairly.
	events, err := generator.Generate(generator.Config{Rows: *rows, Seed: *seed})
	if err != nil {
		return fmt.Errorf("generating events: %w", err)
	}
	generator.Sort(events)

	bloomFile := fmt.Sprintf("%s_bloom.parquet", *prefix)
	noBloomFile := fmt.Sprintf("%s_no_bloom.parquet", *prefix)

	if err := writer.Write(events, writer.Config{
		Path:         bloomFile,
		BloomColumns: models.DefaultFilterColumns(),
		SortRows:     true,
	}); err != nil {
		return fmt.Errorf("writing %s: %w", bloomFile, err)
	}

	if err := writer.Write(events, writer.Config{
		Path:     noBloomFile,
		SortRows: true,
	}); err != nil {
		return fmt.Errorf("writing %s: %w", noBloomFile, err)
	}

	logger.InfoContext(ctx, "Created parquet file pair",
		slog.String("with_bloom", bloomFile),
		slog.String("without_bloom", noBloomFile),
		slog.Int("rows", len(events)),
	)
	return nil
}
