package codec

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is a stream compression algorithm.
type Compression uint8

const (
	// CompressionNone writes the stream as-is.
	CompressionNone Compression = iota
	// CompressionZSTD uses zstd frames (better ratio).
	CompressionZSTD
	// CompressionLZ4 uses lz4 frames (faster).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Ext returns the file extension of the compression, including the dot.
func (c Compression) Ext() string {
	switch c {
	case CompressionZSTD:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// SplitExt detects a compression suffix on name and returns the name
// without it.
func SplitExt(name string) (string, Compression) {
	switch strings.ToLower(path.Ext(name)) {
	case ".zst", ".zstd":
		return strings.TrimSuffix(name, path.Ext(name)), CompressionZSTD
	case ".lz4":
		return strings.TrimSuffix(name, path.Ext(name)), CompressionLZ4
	default:
		return name, CompressionNone
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w with the compression. Closing the returned writer
// flushes the compressed stream but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}
}

// NewReader wraps r with the decompression.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}
}
