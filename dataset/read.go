package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"unsafe"

	"github.com/rs/zerolog/log"
	"gorgonia.org/tensor"
)

var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// MappedArray is a read-only Array backed by a memory-mapped file. Writing
// to a row faults.
type MappedArray struct {
	path   string
	shape  []int
	rowLen int
	rows   int
	mem    []byte
	data   []float32
}

// OpenArray maps a flat little-endian float32 file whose rows have the
// given shape. The row count is inferred from the file size.
func OpenArray(path string, rowShape ...int) (*MappedArray, error) {
	if !hostLittleEndian {
		return nil, errors.New("mapped arrays need a little-endian host")
	}
	rowLen := shapeLen(rowShape)
	if rowLen <= 0 {
		return nil, fmt.Errorf("bad row shape %v", rowShape)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	rowBytes := int64(rowLen) * 4
	if size%rowBytes != 0 {
		return nil, consistencyErrorf("", "%s: %d bytes is not a whole number of %d-byte rows", path, size, rowBytes)
	}
	mem, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	a := &MappedArray{
		path:   path,
		shape:  slices.Clone(rowShape),
		rowLen: rowLen,
		rows:   int(size / rowBytes),
		mem:    mem,
	}
	if len(mem) > 0 {
		a.data = unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(mem))), len(mem)/4)
	}
	return a, nil
}

func (a *MappedArray) Path() string    { return a.path }
func (a *MappedArray) Shape() []int    { return a.shape }
func (a *MappedArray) RowLen() int     { return a.rowLen }
func (a *MappedArray) Rows() int       { return a.rows }
func (a *MappedArray) Data() []float32 { return a.data }

func (a *MappedArray) Row(i int) []float32 {
	return a.data[i*a.rowLen : (i+1)*a.rowLen]
}

func (a *MappedArray) Tensor() (*tensor.Dense, error) {
	return denseOf(a.rows, a.shape, a.data)
}

func (a *MappedArray) Close() error {
	mem := a.mem
	a.mem, a.data, a.rows = nil, nil, 0
	return unmapFile(mem)
}

// LoadDataset maps the four files of the dataset in dir. All four must be
// present and agree on their row count. A manifest, when present, must
// agree with the files too.
func LoadDataset(dir string, schema Schema) (*Group, error) {
	for _, k := range Kinds {
		if _, err := os.Stat(k.Path(dir)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, consistencyErrorf(dir, "missing %s", k.FileName())
			}
			return nil, err
		}
	}
	g := &Group{}
	for _, k := range Kinds {
		a, err := OpenArray(k.Path(dir), schema[k]...)
		if err != nil {
			g.Close()
			var ce *ConsistencyError
			if errors.As(err, &ce) {
				ce.Dir = dir
			}
			return nil, err
		}
		g.arrays[k] = a
		g.closers = append(g.closers, a)
	}
	rows, err := g.Rows()
	if err != nil {
		g.Close()
		return nil, &ConsistencyError{Dir: dir, Msg: err.(*ConsistencyError).Msg}
	}

	m, err := ReadManifest(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("dir", dir).Msg("no-manifest")
	case err != nil:
		g.Close()
		return nil, err
	default:
		if err := m.check(dir, rows, schema); err != nil {
			g.Close()
			return nil, err
		}
	}
	log.Debug().Str("dir", dir).Int("rows", rows).Msg("loaded-dataset")
	return g, nil
}
