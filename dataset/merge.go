package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Merge loads the datasets in dirs, concatenates them and writes the
// result, reshuffled, to out. Every input is checked before out is touched.
func Merge(dirs []string, out string, schema Schema, opts WriteOptions) (*Manifest, error) {
	if len(dirs) == 0 {
		return nil, errors.New("no datasets to merge")
	}
	groups := make([]*Group, 0, len(dirs))
	defer func() {
		for _, g := range groups {
			g.Close()
		}
	}()
	for _, d := range dirs {
		g, err := LoadDataset(d, schema)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	merged, err := Concat(groups...)
	if err != nil {
		return nil, err
	}
	if opts.Sources == nil {
		opts.Sources = dirs
	}
	log.Info().Strs("inputs", dirs).Str("out", out).Msg("merging")
	return WriteGroup(out, merged, opts)
}

// MergedName names the output of merging the datasets matched by pattern:
// every wildcard becomes an x and ".m" is appended, so "2?" gives "2x.m".
func MergedName(pattern string) string {
	r := strings.NewReplacer("?", "x", "*", "x")
	return r.Replace(pattern) + ".m"
}

// Glob returns the dataset directories matching pattern, sorted. Plain
// files matching the pattern are skipped.
func Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			dirs = append(dirs, m)
		}
	}
	slices.Sort(dirs)
	return dirs, nil
}
