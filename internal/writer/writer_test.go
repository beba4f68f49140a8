package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/generator"
	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/models"
)

func generateEvents(t *testing.T, rows int) []models.Event {
	t.Helper()
	events, err := generator.Generate(generator.Config{
		Rows: rows,
		Seed: 42,
		Now:  time.UnixMilli(1756640000000),
	})
	if err != nil {
		t.Fatalf("generating events: %v", err)
	}
	generator.Sort(events)
	return events
}

func TestWriteRoundTrip(t *testing.T) {
	events := generateEvents(t, 250)
	path := filepath.Join(t.TempDir(), "events.parquet")

	err := Write(events, Config{
		Path:         path,
		BloomColumns: models.DefaultFilterColumns(),
		SortRows:     true,
	})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind")
	}

	got, err := parquet.ReadFile[models.Event](path)
	if err != nil {
		t.Fatalf("reading file back: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("expected %d rows, got %d", len(events), len(got))
	}

	// Order preserving, value preserving round-trip. Timestamps are
	// compared at the declared millisecond precision.
	for i := range events {
		if got[i].TeamID != events[i].TeamID {
			t.Errorf("row %d: team_id %d != %d", i, got[i].TeamID, events[i].TeamID)
		}
		if got[i].Timestamp.UnixMilli() != events[i].Timestamp.UnixMilli() {
			t.Errorf("row %d: timestamp %v != %v", i, got[i].Timestamp, events[i].Timestamp)
		}
		if got[i].Event != events[i].Event {
			t.Errorf("row %d: event %q != %q", i, got[i].Event, events[i].Event)
		}
		if got[i].DistinctID != events[i].DistinctID {
			t.Errorf("row %d: distinct_id %q != %q", i, got[i].DistinctID, events[i].DistinctID)
		}
		if got[i].Properties != events[i].Properties {
			t.Errorf("row %d: properties %q != %q", i, got[i].Properties, events[i].Properties)
		}
	}
}

func TestWriteEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	err := Write(nil, Config{Path: path, BloomColumns: models.DefaultFilterColumns()})
	if err != nil {
		t.Fatalf("Write failed for empty batch: %v", err)
	}

	got, err := parquet.ReadFile[models.Event](path)
	if err != nil {
		t.Fatalf("reading file back: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 rows, got %d", len(got))
	}
}

func TestWriteBloomFilterPlacement(t *testing.T) {
	events := generateEvents(t, 100)
	path := filepath.Join(t.TempDir(), "events.parquet")

	if err := Write(events, Config{Path: path, BloomColumns: models.DefaultFilterColumns()}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	pf := openParquet(t, path)
	hasFilter := columnHasBloomFilter(t, pf)

	if !hasFilter[models.ColumnDistinctID] {
		t.Error("distinct_id column chunk has no bloom filter")
	}
	for _, name := range []string{models.ColumnTeamID, models.ColumnTimestamp, models.ColumnEvent, models.ColumnProperties} {
		if hasFilter[name] {
			t.Errorf("column %s unexpectedly has a bloom filter", name)
		}
	}
}

func TestWriteBloomFilterDisabled(t *testing.T) {
	events := generateEvents(t, 100)
	path := filepath.Join(t.TempDir(), "events.parquet")

	if err := Write(events, Config{Path: path}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	pf := openParquet(t, path)
	for name, has := range columnHasBloomFilter(t, pf) {
		if has {
			t.Errorf("column %s has a bloom filter in a no-bloom file", name)
		}
	}
}

func TestWriteInvalidConfig(t *testing.T) {
	events := generateEvents(t, 1)
	dir := t.TempDir()

	if err := Write(events, Config{}); err == nil {
		t.Error("expected error for empty path")
	}
	if err := Write(events, Config{Path: filepath.Join(dir, "x.parquet"), BloomFPP: 1.5}); err == nil {
		t.Error("expected error for fpp >= 1")
	}
	if err := Write(events, Config{Path: filepath.Join(dir, "y.parquet"), BloomFPP: -0.1}); err == nil {
		t.Error("expected error for negative fpp")
	}
}

func TestWriteUnwritablePathLeavesNothing(t *testing.T) {
	events := generateEvents(t, 1)
	path := filepath.Join(t.TempDir(), "missing", "sub", "events.parquet")

	if err := Write(events, Config{Path: path}); err == nil {
		t.Fatal("expected error for unwritable path")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should not exist after failed write")
	}
}

func TestBitsPerValue(t *testing.T) {
	tests := []struct {
		fpp  float64
		want uint
	}{
		{0.01, 10},
		{0.1, 5},
		{0.9, 2},   // clamped to minimum
		{1e-9, 24}, // clamped to maximum
	}
	for _, tt := range tests {
		if got := bitsPerValue(tt.fpp); got != tt.want {
			t.Errorf("bitsPerValue(%g) = %d, want %d", tt.fpp, got, tt.want)
		}
	}
}

func openParquet(t *testing.T, path string) *parquet.File {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	fi, err := f.Stat()
	if err != nil {
		t.Fatalf("stating file: %v", err)
	}
	pf, err := parquet.OpenFile(f, fi.Size())
	if err != nil {
		t.Fatalf("opening parquet file: %v", err)
	}
	return pf
}

func columnHasBloomFilter(t *testing.T, pf *parquet.File) map[string]bool {
	t.Helper()
	result := make(map[string]bool)
	columns := pf.Schema().Columns()
	for _, rg := range pf.RowGroups() {
		chunks := rg.ColumnChunks()
		for i, path := range columns {
			name := path[len(path)-1]
			if chunks[i].BloomFilter() != nil {
				result[name] = true
			} else if _, ok := result[name]; !ok {
				result[name] = false
			}
		}
	}
	return result
}
