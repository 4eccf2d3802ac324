// Package loader reads datasets from a blobstore.
//
// The format is chosen by file extension:
//
//	.parquet       rows with a "vector" list column
//	.arrow, .ipc   Arrow IPC file; a fixed-size-list "vector" column gives
//	               Dense rows, plain numeric columns give a Frame
//	.csv           numeric rows, with an optional header line
//	.txt           one string object per line
//
// Any of them may carry a .zst or .lz4 suffix.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/hupe1980/knngraph/blobstore"
	"github.com/hupe1980/knngraph/codec"
	"github.com/hupe1980/knngraph/dataset"
	"github.com/parquet-go/parquet-go"
)

// VectorColumn is the column holding sample vectors in Parquet and Arrow
// inputs.
const VectorColumn = "vector"

// ErrUnknownFormat is returned for names without a supported extension.
var ErrUnknownFormat = errors.New("loader: unknown dataset format")

// Format identifies a dataset encoding.
type Format string

// Supported formats.
const (
	FormatParquet Format = "parquet"
	FormatArrow   Format = "arrow"
	FormatCSV     Format = "csv"
	FormatText    Format = "txt"
)

// Detect returns the format and compression of name.
func Detect(name string) (Format, codec.Compression, error) {
	base, c := codec.SplitExt(name)
	switch strings.ToLower(path.Ext(base)) {
	case ".parquet":
		return FormatParquet, c, nil
	case ".arrow", ".ipc", ".feather":
		return FormatArrow, c, nil
	case ".csv":
		return FormatCSV, c, nil
	case ".txt":
		return FormatText, c, nil
	default:
		return "", c, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Load reads the named dataset from store.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (dataset.Input, error) {
	format, c, err := Detect(name)
	if err != nil {
		return nil, err
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	var (
		ra   io.ReaderAt
		size int64
	)
	if c == codec.CompressionNone {
		ra, size = blobstore.NewReaderAt(ctx, blob), blob.Size()
	} else {
		data, err := decompress(blobstore.NewReader(ctx, blob), c)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", name, err)
		}
		ra, size = bytes.NewReader(data), int64(len(data))
	}

	in, err := decode(format, ra, size)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", name, err)
	}
	return in, nil
}

func decompress(r io.Reader, c codec.Compression) ([]byte, error) {
	zr, err := codec.NewReader(r, c)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func decode(format Format, ra io.ReaderAt, size int64) (dataset.Input, error) {
	switch format {
	case FormatParquet:
		return ReadParquet(ra, size)
	case FormatArrow:
		return ReadArrow(io.NewSectionReader(ra, 0, size))
	case FormatCSV:
		return ReadCSV(io.NewSectionReader(ra, 0, size))
	default:
		return ReadText(io.NewSectionReader(ra, 0, size))
	}
}

type vectorRow struct {
	Vector []float32 `parquet:"vector"`
}

// ReadParquet reads the vector column of a Parquet file.
func ReadParquet(r io.ReaderAt, size int64) (dataset.Input, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, err
	}
	if !hasField(pf.Schema(), VectorColumn) {
		return nil, dataset.NewFormatError(fmt.Sprintf("column %q not found", VectorColumn), nil)
	}

	pr := parquet.NewGenericReader[vectorRow](pf)
	defer pr.Close()

	rows := make([]vectorRow, pr.NumRows())
	n, err := pr.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = rows[i].Vector
	}
	return dataset.FromRows(vectors)
}

func hasField(s *parquet.Schema, name string) bool {
	for _, f := range s.Fields() {
		if f.Name() == name {
			return true
		}
	}
	return false
}

// ReadArrow reads every record batch of an Arrow IPC file.
func ReadArrow(r *io.SectionReader) (dataset.Input, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	vectors := len(fr.Schema().FieldIndices(VectorColumn)) > 0
	var (
		dense dataset.Dense
		frame dataset.Frame
	)
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, err
		}
		if rec.NumRows() == 0 {
			continue
		}
		if vectors {
			d, err := dataset.FromArrowVectors(rec, VectorColumn)
			if err != nil {
				return nil, err
			}
			dense.Rows = append(dense.Rows, d.Rows...)
			continue
		}
		f, err := dataset.FromArrow(rec)
		if err != nil {
			return nil, err
		}
		if frame.Names == nil {
			frame = f
			continue
		}
		for c := range frame.Columns {
			frame.Columns[c] = append(frame.Columns[c], f.Columns[c]...)
		}
	}

	if vectors {
		return dataset.FromRows(dense.Rows)
	}
	if frame.Names == nil {
		return nil, dataset.NewFormatError("empty input", nil)
	}
	return frame, nil
}

// ReadCSV reads numeric rows. A first line that does not parse as numbers
// is treated as a header.
func ReadCSV(r io.Reader) (dataset.Input, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	var rows [][]float32
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, dataset.NewFormatError("csv", err)
		}

		row := make([]float32, len(rec))
		var perr error
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				perr = fmt.Errorf("line %d, field %d: %w", line, j+1, err)
				break
			}
			row[j] = float32(v)
		}
		if perr != nil {
			if line == 1 {
				continue
			}
			return nil, dataset.NewFormatError("csv", perr)
		}
		rows = append(rows, row)
	}
	return dataset.FromRows(rows)
}

// ReadText reads one string object per non-empty line.
func ReadText(r io.Reader) (dataset.Input, error) {
	var out dataset.Strings
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, dataset.NewFormatError("empty input", nil)
	}
	return out, nil
}
