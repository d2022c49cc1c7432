// Package shard routes solver output files to the training or validation
// set. All files of one solver group go to the same set, so that no deal
// contributes samples to both.
package shard

import (
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
)

type Purpose int

const (
	Training Purpose = iota
	Validation
)

func (p Purpose) String() string {
	if p == Training {
		return "training"
	}
	return "validation"
}

// Solver output files are named <grouphash>-<play>, optionally gzipped.
var nameRe = regexp.MustCompile(`^([0-9a-f]+)-(\d{2})`)

// ParseName splits a solver output file name into its group hash and play
// number.
func ParseName(path string) (hash string, play int, ok bool) {
	m := nameRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", 0, false
	}
	play, _ = strconv.Atoi(m[2])
	return m[1], play, true
}

// Of assigns a group hash to a set: a last hex digit of 0-7 means
// training, 8-f validation.
func Of(hash string) Purpose {
	if hash == "" {
		return Validation
	}
	switch d := hash[len(hash)-1]; {
	case d >= '0' && d <= '7':
		return Training
	default:
		return Validation
	}
}

// ForPath routes a file by its group hash. Names without one are routed
// by a hash of the base name, which keeps the choice stable across runs.
func ForPath(path string) Purpose {
	if hash, _, ok := ParseName(path); ok {
		return Of(hash)
	}
	log.Debug().Str("path", path).Msg("no-group-hash")
	if xxhash.Sum64String(filepath.Base(path))%16 < 8 {
		return Training
	}
	return Validation
}

// Partition splits paths into the two sets, keeping their order.
func Partition(paths []string) (training, validation []string) {
	for _, p := range paths {
		if ForPath(p) == Training {
			training = append(training, p)
		} else {
			validation = append(validation, p)
		}
	}
	return training, validation
}
