package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/hupe1980/knngraph/blobstore"
	"github.com/hupe1980/knngraph/codec"
	"github.com/hupe1980/knngraph/graph"
)

// ErrUnknownOutputFormat is returned for output names without a
// .parquet, .json or .mtx extension.
var ErrUnknownOutputFormat = errors.New("unknown output format")

type encodeFunc func(w io.Writer, g *graph.CSR) error

func encoderFor(name string, c codec.Codec) (encodeFunc, codec.Compression, error) {
	base, comp := codec.SplitExt(name)
	switch strings.ToLower(path.Ext(base)) {
	case ".parquet":
		return func(w io.Writer, g *graph.CSR) error { return g.WriteParquet(w) }, comp, nil
	case ".json":
		return func(w io.Writer, g *graph.CSR) error { return g.WriteJSON(w, c) }, comp, nil
	case ".mtx":
		return func(w io.Writer, g *graph.CSR) error { return g.WriteMatrixMarket(w) }, comp, nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownOutputFormat, name)
	}
}

// writeGraph encodes g by the extension of name. A failed write removes
// the partial blob.
func writeGraph(ctx context.Context, store blobstore.BlobStore, name string, g *graph.CSR, c codec.Codec) (err error) {
	encode, comp, err := encoderFor(name, c)
	if err != nil {
		return err
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = store.Delete(ctx, name)
		}
	}()

	zw, err := codec.NewWriter(w, comp)
	if err != nil {
		return err
	}
	if err := encode(zw, g); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
