package dataset

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/heartsnn/trickdata/features"
)

type WriteOptions struct {
	// Seed makes the shuffle reproducible. Empty means a fresh random
	// permutation on every write.
	Seed string
	// Limit caps the number of rows written. Zero writes them all.
	Limit int
	// Layout and Sources are recorded in the manifest.
	Layout  *features.Layout
	Sources []string
}

// Permutation returns a random ordering of [0, n). A non-empty seed always
// yields the same ordering for the same n.
func Permutation(n int, seed string) []int {
	if seed == "" {
		return frand.Perm(n)
	}
	key := sha256.Sum256([]byte(seed))
	return frand.NewCustom(key[:], 1024, 12).Perm(n)
}

// WriteGroup shuffles the rows of g with one permutation shared by all four
// arrays and writes them to dir as flat little-endian float32 files. The
// group is checked before anything is written. Files are written under
// temporary names and only renamed into place once all four succeed.
func WriteGroup(dir string, g *Group, opts WriteOptions) (*Manifest, error) {
	rows, err := g.Rows()
	if err != nil {
		return nil, &ConsistencyError{Dir: dir, Msg: err.(*ConsistencyError).Msg}
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("negative row limit %d", opts.Limit)
	}
	perm := Permutation(rows, opts.Seed)
	if opts.Limit > 0 && opts.Limit < len(perm) {
		perm = perm[:opts.Limit]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	m := &Manifest{
		Rows:    len(perm),
		Seed:    opts.Seed,
		Sources: opts.Sources,
		Layout:  opts.Layout,
	}
	var temps []string
	cleanup := func() {
		for _, t := range temps {
			os.Remove(t)
		}
	}
	for _, k := range Kinds {
		tmp, fe, err := writeArray(dir, k, g.Array(k), perm)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("writing %s: %w", k.Path(dir), err)
		}
		temps = append(temps, tmp)
		m.Files = append(m.Files, fe)
	}
	// From here until the new manifest lands the directory holds no
	// manifest, so a half-replaced dataset never passes for a whole one.
	if err := os.Remove(filepath.Join(dir, ManifestName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		cleanup()
		return nil, err
	}
	for i, k := range Kinds {
		if err := os.Rename(temps[i], k.Path(dir)); err != nil {
			cleanup()
			// Drop the kinds already replaced: LoadDataset then reports
			// missing files instead of mixing old and new rows.
			for _, done := range Kinds[:i] {
				os.Remove(done.Path(dir))
			}
			return nil, fmt.Errorf("publishing %s: %w", k.Path(dir), err)
		}
	}
	if err := writeManifest(dir, m); err != nil {
		return nil, err
	}
	log.Info().Str("dir", dir).Int("rows", m.Rows).Int("available", rows).Msg("wrote-dataset")
	return m, nil
}

// writeArray writes the rows of a in perm order to a temporary file in dir.
func writeArray(dir string, k Kind, a Array, perm []int) (string, FileEntry, error) {
	f, err := os.CreateTemp(dir, "."+k.FileName()+".*.tmp")
	if err != nil {
		return "", FileEntry{}, err
	}
	fail := func(err error) (string, FileEntry, error) {
		f.Close()
		os.Remove(f.Name())
		return "", FileEntry{}, err
	}

	w := bufio.NewWriterSize(f, 1<<20)
	h := xxhash.New()
	buf := make([]byte, a.RowLen()*4)
	var n int64
	for _, i := range perm {
		for j, v := range a.Row(i) {
			binary.LittleEndian.PutUint32(buf[4*j:], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return fail(err)
		}
		h.Write(buf)
		n += int64(len(buf))
	}
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Sync(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", FileEntry{}, err
	}
	log.Debug().Str("kind", k.String()).Int64("bytes", n).Msg("wrote-array")
	return f.Name(), FileEntry{
		Kind:     k.String(),
		Name:     k.FileName(),
		Shape:    slices.Clone(a.Shape()),
		Bytes:    n,
		XXHash64: hexSum(h.Sum64()),
	}, nil
}
