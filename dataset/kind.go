// Package dataset stores groups of four co-indexed float32 arrays (main
// features, score labels, win-trick labels, moon labels) as flat headerless
// files, and reads them back as memory-mapped arrays.
//
// Row i of every file in a dataset directory describes the same sample.
// The four arrays are therefore always permuted, written, loaded and
// concatenated together, never one at a time.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/heartsnn/trickdata/features"
)

// Kind identifies one of the four arrays of a dataset.
type Kind int

const (
	Main Kind = iota
	Score
	Trick
	Moon

	NumKinds = 4
)

var Kinds = [NumKinds]Kind{Main, Score, Trick, Moon}

var kindNames = [NumKinds]string{"main", "score", "trick", "moon"}

func (k Kind) String() string {
	if k < 0 || k >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// FileName is the conventional file name for the kind inside a dataset
// directory.
func (k Kind) FileName() string {
	return k.String() + "_data.np.mmap"
}

// Path returns the kind's file inside dir.
func (k Kind) Path(dir string) string {
	return filepath.Join(dir, k.FileName())
}

// Schema is the row shape of each kind. It is not stored in the data files;
// producer and consumer must agree on it.
type Schema [NumKinds][]int

func SchemaFor(l features.Layout) Schema {
	return Schema{
		Main:  {l.MainLen()},
		Score: {l.ScoresLen()},
		Trick: {l.WinTrickLen()},
		Moon:  {l.MoonLen()},
	}
}

func DefaultSchema() Schema {
	return SchemaFor(features.DefaultLayout())
}

// RowLen is the number of float32 values in one row of kind k.
func (s Schema) RowLen(k Kind) int {
	return shapeLen(s[k])
}

func shapeLen(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// ErrConsistency matches every *ConsistencyError with errors.Is.
var ErrConsistency = errors.New("dataset consistency error")

// ConsistencyError reports arrays or files of one dataset that disagree:
// different row counts, a missing file, a truncated row or a bad checksum.
type ConsistencyError struct {
	Dir string
	Msg string
}

func (e *ConsistencyError) Error() string {
	if e.Dir == "" {
		return "dataset: " + e.Msg
	}
	return "dataset " + e.Dir + ": " + e.Msg
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }

func consistencyErrorf(dir, format string, args ...any) error {
	return &ConsistencyError{Dir: dir, Msg: fmt.Sprintf(format, args...)}
}
