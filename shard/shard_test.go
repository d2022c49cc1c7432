package shard

import (
	"testing"

	"github.com/matryer/is"
)

func TestParseName(t *testing.T) {
	is := is.New(t)
	hash, play, ok := ParseName("data/3fa9c07-17")
	is.True(ok)
	is.Equal(hash, "3fa9c07")
	is.Equal(play, 17)

	hash, play, ok = ParseName("/tmp/ab12-03.gz")
	is.True(ok)
	is.Equal(hash, "ab12")
	is.Equal(play, 3)

	_, _, ok = ParseName("notes.txt")
	is.True(!ok)
	_, _, ok = ParseName("ABC-01")
	is.True(!ok)
}

func TestOf(t *testing.T) {
	is := is.New(t)
	for _, h := range []string{"a0", "11", "ff7", "5"} {
		is.Equal(Of(h), Training)
	}
	for _, h := range []string{"a8", "19", "0f", "c"} {
		is.Equal(Of(h), Validation)
	}
	is.Equal(Training.String(), "training")
	is.Equal(Validation.String(), "validation")
}

func TestPartitionKeepsGroupsTogether(t *testing.T) {
	is := is.New(t)
	paths := []string{"d/12a3-01", "d/12a3-02", "d/77fe-01", "d/12a3-47", "d/77fe-02"}
	train, valid := Partition(paths)
	is.Equal(train, []string{"d/12a3-01", "d/12a3-02", "d/12a3-47"})
	is.Equal(valid, []string{"d/77fe-01", "d/77fe-02"})
}

func TestForPathIsStable(t *testing.T) {
	is := is.New(t)
	for _, p := range []string{"x.txt", "07", "run/output"} {
		is.Equal(ForPath(p), ForPath("elsewhere/"+p))
	}
}
