// Package verifier reopens written parquet files and checks that their
// bloom filters hold every value that was written.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/jsmithdenverdev/parquet-bloom-writer/internal/models"
)

const missingSampleLimit = 5

// Report is the result of verifying one file.
type Report struct {
	Path           string
	Rows           int64
	RowGroups      int
	CrossCheckRows int64
	Columns        []ColumnReport
}

// ColumnReport is the verification result for one filter-enabled column.
type ColumnReport struct {
	Name string

	// FilterFound is false when no row group carries bloom filter
	// metadata for the column.
	FilterFound         bool
	RowGroupsWithFilter int

	// ValuesChecked is the number of written values probed against the
	// filter; ValuesMissing counts probes that came back "definitely
	// absent", which must never happen for a correctly built filter.
	ValuesChecked  int
	ValuesMissing  int
	MissingSamples []string

	// ControlValue was generated after the file was written and probed as
	// a sanity check that the filter is not trivially "always true".
	// ControlPositive records the (acceptable, bounded-rate) false
	// positive case.
	ControlValue    string
	ControlPositive bool
}

// Ok reports whether the column passed: filter metadata was found and no
// written value tested negative.
func (c ColumnReport) Ok() bool {
	return c.FilterFound && c.ValuesMissing == 0
}

// Ok reports whether the whole file passed verification.
func (r *Report) Ok() bool {
	if r.CrossCheckRows != r.Rows {
		return false
	}
	for _, c := range r.Columns {
		if !c.Ok() {
			return false
		}
	}
	return true
}

// Verify reopens the file at path read-only, reads every row back, and
// probes the bloom filter of each expected column with every value written
// to it. Columns with no discoverable filter metadata are reported, not
// treated as a read error; a written value probing negative is a hard
// correctness violation surfaced through the report.
func Verify(ctx context.Context, path string, expected models.FilterColumns) (*Report, error) {
	f, size, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := parquet.OpenFile(f, size)
	if err != nil {
		return nil, fmt.Errorf("opening parquet file: %w", err)
	}

	events, err := readAll(ctx, pf)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Path:      path,
		Rows:      int64(len(events)),
		RowGroups: len(pf.RowGroups()),
	}

	for _, name := range expected.Names() {
		col, err := verifyColumn(pf, name, events)
		if err != nil {
			return nil, err
		}
		report.Columns = append(report.Columns, col)
	}

	crossRows, err := crossCheckRows(path)
	if err != nil {
		return nil, fmt.Errorf("independent reader cross-check: %w", err)
	}
	report.CrossCheckRows = crossRows

	return report, nil
}

func openFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening file: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stating file: %w", err)
	}
	return f, fi.Size(), nil
}

// readAll reads every row back into memory. Default row counts are small;
// this utility is not meant for files that do not fit.
func readAll(ctx context.Context, pf *parquet.File) ([]models.Event, error) {
	r := parquet.NewGenericReader[models.Event](pf)
	defer r.Close()

	events := make([]models.Event, 0, pf.NumRows())
	buf := make([]models.Event, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(buf)
		events = append(events, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
	}
	return events, nil
}

func verifyColumn(pf *parquet.File, name string, events []models.Event) (ColumnReport, error) {
	col := ColumnReport{Name: name}

	idx, ok := leafIndex(pf.Schema(), name)
	if !ok {
		return col, fmt.Errorf("column %q not present in file schema", name)
	}

	var filters []parquet.BloomFilter
	for _, rg := range pf.RowGroups() {
		if bf := rg.ColumnChunks()[idx].BloomFilter(); bf != nil {
			filters = append(filters, bf)
		}
	}
	col.RowGroupsWithFilter = len(filters)
	col.FilterFound = len(filters) > 0
	if !col.FilterFound {
		return col, nil
	}

	for _, e := range events {
		present, err := checkFilters(filters, columnValue(e, name))
		if err != nil {
			return col, fmt.Errorf("probing %s filter: %w", name, err)
		}
		col.ValuesChecked++
		if !present {
			col.ValuesMissing++
			if len(col.MissingSamples) < missingSampleLimit {
				col.MissingSamples = append(col.MissingSamples, columnValue(e, name).String())
			}
		}
	}

	control := controlValue(name)
	col.ControlValue = control.String()
	positive, err := checkFilters(filters, control)
	if err != nil {
		return col, fmt.Errorf("probing %s filter with control value: %w", name, err)
	}
	col.ControlPositive = positive

	return col, nil
}

// checkFilters probes the per-row-group filters; a value counts as present
// when any row group may contain it.
func checkFilters(filters []parquet.BloomFilter, v parquet.Value) (bool, error) {
	for _, bf := range filters {
		ok, err := bf.Check(v)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// leafIndex resolves a column name to its leaf position, which is also the
// index into each row group's column chunks.
func leafIndex(schema *parquet.Schema, name string) (int, bool) {
	for i, path := range schema.Columns() {
		if len(path) > 0 && path[len(path)-1] == name {
			return i, true
		}
	}
	return 0, false
}

// columnValue returns the physical value written to the named column for
// this event, in the representation filter probes expect.
func columnValue(e models.Event, name string) parquet.Value {
	switch name {
	case models.ColumnTeamID:
		return parquet.ValueOf(e.TeamID)
	case models.ColumnTimestamp:
		return parquet.ValueOf(e.Timestamp.UnixMilli())
	case models.ColumnEvent:
		return parquet.ValueOf(e.Event)
	case models.ColumnDistinctID:
		return parquet.ValueOf(e.DistinctID)
	default:
		return parquet.ValueOf(e.Properties)
	}
}

// controlValue returns a value for the named column that was, with
// overwhelming probability, never written.
func controlValue(name string) parquet.Value {
	switch name {
	case models.ColumnTeamID:
		return parquet.ValueOf(int64(math.MinInt64))
	case models.ColumnTimestamp:
		return parquet.ValueOf(time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	default:
		// A UUID generated after the file was written collides with a
		// written value with negligible probability.
		return parquet.ValueOf(uuid.New().String())
	}
}

// crossCheckRows re-reads the row count through a second, independent
// parquet implementation.
func crossCheckRows(path string) (int64, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return 0, fmt.Errorf("creating reader: %w", err)
	}
	defer pr.ReadStop()

	return pr.GetNumRows(), nil
}
