package dataset

import (
	"errors"
	"io"
	"slices"

	"github.com/samber/lo"
	"gorgonia.org/tensor"
)

// Group is the four co-indexed arrays of one dataset.
type Group struct {
	arrays  [NumKinds]Array
	closers []io.Closer
}

// NewGroup returns a group of empty in-memory arrays shaped by schema,
// ready to be appended to.
func NewGroup(schema Schema) *Group {
	g := &Group{}
	for _, k := range Kinds {
		g.arrays[k] = NewMemArray(schema[k]...)
	}
	return g
}

// GroupOf assembles a group from existing arrays, in Kind order.
func GroupOf(main, score, trick, moon Array) *Group {
	return &Group{arrays: [NumKinds]Array{main, score, trick, moon}}
}

func (g *Group) Array(k Kind) Array { return g.arrays[k] }

// Mem returns the in-memory array for k, or nil if the group was loaded
// from disk.
func (g *Group) Mem(k Kind) *MemArray {
	m, _ := g.arrays[k].(*MemArray)
	return m
}

// Schema reports the row shape of each array.
func (g *Group) Schema() Schema {
	var s Schema
	for _, k := range Kinds {
		s[k] = slices.Clone(g.arrays[k].Shape())
	}
	return s
}

// Rows returns the common row count, or a ConsistencyError if the arrays
// disagree.
func (g *Group) Rows() (int, error) {
	n := g.arrays[Main].Rows()
	for _, k := range Kinds[1:] {
		if r := g.arrays[k].Rows(); r != n {
			return 0, consistencyErrorf("", "%s has %d rows, %s has %d", Main, n, k, r)
		}
	}
	return n, nil
}

// Tensors views each array as a (rows, shape...) tensor keyed by kind name.
// Views of mapped arrays are read-only.
func (g *Group) Tensors() (map[string]*tensor.Dense, error) {
	if _, err := g.Rows(); err != nil {
		return nil, err
	}
	out := make(map[string]*tensor.Dense, NumKinds)
	for _, k := range Kinds {
		d, err := tensorOf(g.arrays[k])
		if err != nil {
			return nil, err
		}
		out[k.String()] = d
	}
	return out, nil
}

func tensorOf(a Array) (*tensor.Dense, error) {
	switch a := a.(type) {
	case *MemArray:
		return a.Tensor()
	case *MappedArray:
		return a.Tensor()
	}
	// Not contiguous: copy the rows out.
	m := NewMemArray(a.Shape()...)
	m.data = make([]float32, 0, a.Rows()*a.RowLen())
	for i := range a.Rows() {
		m.data = append(m.data, a.Row(i)...)
	}
	return m.Tensor()
}

// Close releases any mapped files backing the group. Arrays and tensors
// obtained from it must not be used afterwards.
func (g *Group) Close() error {
	var errs []error
	for _, c := range g.closers {
		errs = append(errs, c.Close())
	}
	g.closers = nil
	return errors.Join(errs...)
}

// Concat joins groups row-wise, kind by kind, without copying. The sources
// must stay open while the result is in use.
func Concat(groups ...*Group) (*Group, error) {
	if len(groups) == 0 {
		return nil, errors.New("no groups to concatenate")
	}
	for _, g := range groups {
		if _, err := g.Rows(); err != nil {
			return nil, err
		}
	}
	out := &Group{}
	for _, k := range Kinds {
		parts := lo.Map(groups, func(g *Group, _ int) Array { return g.arrays[k] })
		c, err := Concatenate(parts...)
		if err != nil {
			return nil, err
		}
		out.arrays[k] = c
	}
	return out, nil
}
