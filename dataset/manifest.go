package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash"
	"gopkg.in/yaml.v3"

	"github.com/heartsnn/trickdata/features"
)

const ManifestName = "manifest.yaml"

// Manifest records what a dataset directory holds. The data files stay
// headerless; the manifest is for humans and for Verify.
type Manifest struct {
	Rows    int              `yaml:"rows"`
	Seed    string           `yaml:"seed,omitempty"`
	Sources []string         `yaml:"sources,omitempty"`
	Layout  *features.Layout `yaml:"layout,omitempty"`
	Files   []FileEntry      `yaml:"files"`
}

type FileEntry struct {
	Kind     string `yaml:"kind"`
	Name     string `yaml:"name"`
	Shape    []int  `yaml:"shape,flow"`
	Bytes    int64  `yaml:"bytes"`
	XXHash64 string `yaml:"xxhash64"`
}

func (m *Manifest) File(k Kind) (FileEntry, bool) {
	for _, f := range m.Files {
		if f.Kind == k.String() {
			return f, true
		}
	}
	return FileEntry{}, false
}

// ReadManifest loads dir's manifest. A missing manifest gives an error
// matching fs.ErrNotExist.
func ReadManifest(dir string) (*Manifest, error) {
	bts, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}
	m := &Manifest{}
	if err := yaml.Unmarshal(bts, m); err != nil {
		return nil, fmt.Errorf("parsing manifest in %s: %w", dir, err)
	}
	return m, nil
}

func writeManifest(dir string, m *Manifest) error {
	bts, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+ManifestName+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.Write(bts); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), filepath.Join(dir, ManifestName))
}

// check compares the manifest with loaded arrays.
func (m *Manifest) check(dir string, rows int, schema Schema) error {
	if m.Rows != rows {
		return consistencyErrorf(dir, "manifest says %d rows, files hold %d", m.Rows, rows)
	}
	for _, k := range Kinds {
		fe, ok := m.File(k)
		if !ok {
			return consistencyErrorf(dir, "manifest has no entry for %s", k)
		}
		if !slices.Equal(fe.Shape, schema[k]) {
			return consistencyErrorf(dir, "manifest shape %v for %s, expected %v", fe.Shape, k, schema[k])
		}
	}
	return nil
}

// Verify re-reads every data file in dir and checks it against the
// manifest: presence, size and xxhash64. Shapes come from the manifest.
func Verify(dir string) (*Manifest, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}
	for _, k := range Kinds {
		fe, ok := m.File(k)
		if !ok {
			return m, consistencyErrorf(dir, "manifest has no entry for %s", k)
		}
		want := int64(m.Rows) * int64(shapeLen(fe.Shape)) * 4
		if fe.Bytes != want {
			return m, consistencyErrorf(dir, "manifest lists %d bytes for %s, rows and shape give %d", fe.Bytes, k, want)
		}
		size, sum, err := hashFile(filepath.Join(dir, fe.Name))
		switch {
		case errors.Is(err, os.ErrNotExist):
			return m, consistencyErrorf(dir, "missing %s", fe.Name)
		case err != nil:
			return m, err
		case size != want:
			return m, consistencyErrorf(dir, "%s has %d bytes, want %d", fe.Name, size, want)
		case sum != fe.XXHash64:
			return m, consistencyErrorf(dir, "%s checksum %s, manifest has %s", fe.Name, sum, fe.XXHash64)
		}
	}
	return m, nil
}

func hashFile(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()
	h := xxhash.New()
	n, err := io.Copy(h, bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return 0, "", err
	}
	return n, hexSum(h.Sum64()), nil
}

func hexSum(s uint64) string {
	return fmt.Sprintf("%016x", s)
}
