package graph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/knngraph/codec"
	"github.com/parquet-go/parquet-go"
)

// Parquet key-value metadata holding the graph shape.
const (
	metaRows = "knngraph.rows"
	metaCols = "knngraph.cols"
)

// Edge is one graph entry in Parquet form.
type Edge struct {
	Row      uint32  `parquet:"row"`
	Col      uint32  `parquet:"col"`
	Distance float32 `parquet:"distance"`
}

// document is the JSON form of a graph.
type document struct {
	Shape   [2]int    `json:"shape"`
	Indptr  []int     `json:"indptr"`
	Indices []uint32  `json:"indices"`
	Data    []float32 `json:"data"`
}

// WriteParquet writes every stored entry as an Edge row, zstd compressed.
// The shape is kept in the file's key-value metadata.
func (g *CSR) WriteParquet(w io.Writer) error {
	pw := parquet.NewGenericWriter[Edge](w,
		parquet.Compression(&parquet.Zstd),
		parquet.KeyValueMetadata(metaRows, strconv.Itoa(g.Rows)),
		parquet.KeyValueMetadata(metaCols, strconv.Itoa(g.Cols)),
	)

	edges := make([]Edge, 0, g.NNZ())
	for i := 0; i < g.Rows; i++ {
		cols, vals := g.Row(i)
		for j, c := range cols {
			edges = append(edges, Edge{Row: uint32(i), Col: c, Distance: vals[j]})
		}
	}

	if _, err := pw.Write(edges); err != nil {
		_ = pw.Close()
		return err
	}
	return pw.Close()
}

// ReadParquet reads a graph written by WriteParquet. Rows must be
// contiguous and in order, which WriteParquet guarantees.
func ReadParquet(r io.ReaderAt, size int64) (*CSR, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, err
	}

	rows, err := lookupInt(pf, metaRows)
	if err != nil {
		return nil, err
	}
	cols, err := lookupInt(pf, metaCols)
	if err != nil {
		return nil, err
	}

	pr := parquet.NewGenericReader[Edge](pf)
	defer pr.Close()

	edges := make([]Edge, pr.NumRows())
	n, err := pr.Read(edges)
	if err != nil && err != io.EOF {
		return nil, err
	}
	edges = edges[:n]

	g := &CSR{
		Rows:    rows,
		Cols:    cols,
		Indptr:  make([]int, rows+1),
		Indices: make([]uint32, len(edges)),
		Data:    make([]float32, len(edges)),
	}
	for i, e := range edges {
		if int(e.Row) >= rows || int(e.Col) >= cols {
			return nil, fmt.Errorf("%w: edge (%d,%d) outside %dx%d", ErrShape, e.Row, e.Col, rows, cols)
		}
		if i > 0 && e.Row < edges[i-1].Row {
			return nil, fmt.Errorf("%w: rows out of order at edge %d", ErrShape, i)
		}
		g.Indptr[e.Row+1]++
		g.Indices[i] = e.Col
		g.Data[i] = e.Distance
	}
	for i := 0; i < rows; i++ {
		g.Indptr[i+1] += g.Indptr[i]
	}
	return g, nil
}

func lookupInt(pf *parquet.File, key string) (int, error) {
	v, ok := pf.Lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w: missing %s metadata", ErrShape, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrShape, key, err)
	}
	return n, nil
}

// WriteJSON encodes the graph as {"shape","indptr","indices","data"}.
// A nil codec uses codec.Default.
func (g *CSR) WriteJSON(w io.Writer, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	b, err := c.Marshal(document{
		Shape:   [2]int{g.Rows, g.Cols},
		Indptr:  g.Indptr,
		Indices: g.Indices,
		Data:    g.Data,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadJSON decodes a graph written by WriteJSON.
func ReadJSON(data []byte, c codec.Codec) (*CSR, error) {
	if c == nil {
		c = codec.Default
	}
	var doc document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Indptr) != doc.Shape[0]+1 || len(doc.Indices) != len(doc.Data) {
		return nil, fmt.Errorf("%w: inconsistent document", ErrShape)
	}
	return &CSR{
		Rows:    doc.Shape[0],
		Cols:    doc.Shape[1],
		Indptr:  doc.Indptr,
		Indices: doc.Indices,
		Data:    doc.Data,
	}, nil
}

// WriteMatrixMarket writes the graph in MatrixMarket coordinate format
// with 1-based indices. Every stored entry is written.
func (g *CSR) WriteMatrixMarket(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "%%MatrixMarket matrix coordinate real general")
	fmt.Fprintf(bw, "%d %d %d\n", g.Rows, g.Cols, g.NNZ())

	for i := 0; i < g.Rows; i++ {
		cols, vals := g.Row(i)
		for j, c := range cols {
			fmt.Fprintf(bw, "%d %d %s\n", i+1, c+1, strconv.FormatFloat(float64(vals[j]), 'g', -1, 32))
		}
	}
	return bw.Flush()
}
