// Package writer serializes event batches to parquet files with optional
// per-column bloom filters.
package writer

import (
	"fmt"
	"math"
	"os"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/models"
	"github.com/parquet-go/parquet-go"
)

// DefaultFPP is the target false positive probability for bloom filters
// when the configuration does not set one.
const DefaultFPP = 0.01

// Config controls how a batch is written.
type Config struct {
	// Path is the output filename.
	Path string

	// BloomColumns is the validated set of columns that get a bloom
	// filter. An empty set disables bloom filters entirely.
	BloomColumns models.FilterColumns

	// BloomFPP is the target false positive probability for the filters.
	// Zero means DefaultFPP.
	BloomFPP float64

	// SortRows declares the row ordering in the file metadata. The rows
	// themselves must already be sorted (see generator.Sort).
	SortRows bool
}

// Write serializes events to cfg.Path. The file is written to a temporary
// sibling first and renamed into place on success, so a failed write never
// leaves a file behind that claims to be complete.
func Write(events []models.Event, cfg Config) error {
	if cfg.Path == "" {
		return fmt.Errorf("output path is required")
	}
	fpp := cfg.BloomFPP
	if fpp == 0 {
		fpp = DefaultFPP
	}
	if fpp <= 0 || fpp >= 1 {
		return fmt.Errorf("bloom filter fpp must be in (0, 1), got %g", fpp)
	}

	opts := []parquet.WriterOption{
		parquet.Compression(&parquet.Zstd),
		parquet.DataPageStatistics(true),
	}

	if !cfg.BloomColumns.Empty() {
		bits := bitsPerValue(fpp)
		filters := make([]parquet.BloomFilterColumn, 0, len(cfg.BloomColumns.Names()))
		for _, name := range cfg.BloomColumns.Names() {
			filters = append(filters, parquet.SplitBlockFilter(bits, name))
		}
		opts = append(opts, parquet.BloomFilters(filters...))
	}

	if cfg.SortRows {
		opts = append(opts, parquet.SortingWriterConfig(
			parquet.SortingColumns(
				parquet.Ascending(models.ColumnTeamID),
				parquet.Ascending(models.ColumnEvent),
				parquet.Ascending(models.ColumnTimestamp),
				parquet.Ascending(models.ColumnDistinctID),
			),
		))
	}

	tmp := cfg.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	w := parquet.NewGenericWriter[models.Event](f, opts...)
	if _, err := w.Write(events); err != nil {
		w.Close()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("finalizing parquet file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing output file: %w", err)
	}

	if err := os.Rename(tmp, cfg.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}

// bitsPerValue converts a target false positive probability into the
// bits-per-value parameter of a split block bloom filter, using the
// classic sizing formula m/n = -ln(p) / ln(2)^2.
func bitsPerValue(fpp float64) uint {
	bits := math.Ceil(-math.Log(fpp) / (math.Ln2 * math.Ln2))
	if bits < 2 {
		bits = 2
	}
	if bits > 24 {
		bits = 24
	}
	return uint(bits)
}
