package verifier

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// FileInfo summarizes the metadata of a parquet file, including where each
// column's bloom filter lives.
type FileInfo struct {
	Path      string
	Version   int32
	NumRows   int64
	RowGroups []RowGroupInfo
}

// RowGroupInfo summarizes one row group.
type RowGroupInfo struct {
	Rows    int64
	Columns []ColumnInfo
}

// ColumnInfo summarizes one column chunk.
type ColumnInfo struct {
	Name             string
	Codec            string
	NumValues        int64
	CompressedSize   int64
	UncompressedSize int64

	// HasBloomFilter reports whether the chunk metadata records a bloom
	// filter location.
	HasBloomFilter bool
	BloomOffset    int64
	BloomLength    int32
}

// Inspect opens the file at path and reports its footer metadata.
func Inspect(path string) (*FileInfo, error) {
	f, size, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pf, err := parquet.OpenFile(f, size)
	if err != nil {
		return nil, fmt.Errorf("opening parquet file: %w", err)
	}

	meta := pf.Metadata()
	info := &FileInfo{
		Path:    path,
		Version: meta.Version,
		NumRows: meta.NumRows,
	}

	for _, rg := range meta.RowGroups {
		rgInfo := RowGroupInfo{Rows: rg.NumRows}
		for _, col := range rg.Columns {
			md := col.MetaData
			rgInfo.Columns = append(rgInfo.Columns, ColumnInfo{
				Name:             strings.Join(md.PathInSchema, "."),
				Codec:            md.Codec.String(),
				NumValues:        md.NumValues,
				CompressedSize:   md.TotalCompressedSize,
				UncompressedSize: md.TotalUncompressedSize,
				HasBloomFilter:   md.BloomFilterOffset > 0,
				BloomOffset:      md.BloomFilterOffset,
				BloomLength:      md.BloomFilterLength,
			})
		}
		info.RowGroups = append(info.RowGroups, rgInfo)
	}

	return info, nil
}
