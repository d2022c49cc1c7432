package dataset

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"gorgonia.org/tensor"
)

// Array is a sequence of fixed-shape float32 rows. Rows returned by Row
// are views and must not be modified.
type Array interface {
	Shape() []int
	RowLen() int
	Rows() int
	Row(i int) []float32
}

// MemArray is a growable in-memory Array.
type MemArray struct {
	shape  []int
	rowLen int
	data   []float32
}

func NewMemArray(rowShape ...int) *MemArray {
	return &MemArray{shape: slices.Clone(rowShape), rowLen: shapeLen(rowShape)}
}

func (a *MemArray) Shape() []int { return a.shape }
func (a *MemArray) RowLen() int  { return a.rowLen }
func (a *MemArray) Rows() int    { return len(a.data) / a.rowLen }

func (a *MemArray) Row(i int) []float32 {
	return a.data[i*a.rowLen : (i+1)*a.rowLen]
}

// Append copies row onto the end of the array.
func (a *MemArray) Append(row []float32) error {
	if len(row) != a.rowLen {
		return fmt.Errorf("row has %d values, array rows have %d", len(row), a.rowLen)
	}
	a.data = append(a.data, row...)
	return nil
}

// Data is the row-major backing slice.
func (a *MemArray) Data() []float32 { return a.data }

func (a *MemArray) Tensor() (*tensor.Dense, error) {
	return denseOf(a.Rows(), a.shape, a.data)
}

var errEmptyTensor = errors.New("cannot build a tensor with no rows")

// denseOf wraps row-major data as a (rows, shape...) tensor without copying.
func denseOf(rows int, shape []int, data []float32) (*tensor.Dense, error) {
	if rows == 0 {
		return nil, errEmptyTensor
	}
	full := append([]int{rows}, shape...)
	return tensor.New(tensor.WithShape(full...), tensor.WithBacking(data)), nil
}

// ConcatArray presents several arrays with the same row shape as one,
// without copying them.
type ConcatArray struct {
	shape  []int
	rowLen int
	parts  []Array
	ends   []int // ends[i] is the row after the last row of parts[i]
}

func Concatenate(parts ...Array) (*ConcatArray, error) {
	if len(parts) == 0 {
		return nil, errors.New("nothing to concatenate")
	}
	c := &ConcatArray{shape: parts[0].Shape(), rowLen: parts[0].RowLen()}
	total := 0
	for i, p := range parts {
		if !slices.Equal(p.Shape(), c.shape) {
			return nil, consistencyErrorf("", "part %d has row shape %v, want %v", i, p.Shape(), c.shape)
		}
		total += p.Rows()
		c.parts = append(c.parts, p)
		c.ends = append(c.ends, total)
	}
	return c, nil
}

func (c *ConcatArray) Shape() []int { return c.shape }
func (c *ConcatArray) RowLen() int  { return c.rowLen }

func (c *ConcatArray) Rows() int {
	return c.ends[len(c.ends)-1]
}

func (c *ConcatArray) Row(i int) []float32 {
	j := sort.SearchInts(c.ends, i+1)
	start := c.ends[j] - c.parts[j].Rows()
	return c.parts[j].Row(i - start)
}
