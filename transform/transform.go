// Package transform turns whole solver output files into dataset
// directories, several files at a time.
package transform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/heartsnn/trickdata/accumulator"
	"github.com/heartsnn/trickdata/dataset"
	"github.com/heartsnn/trickdata/features"
	"github.com/heartsnn/trickdata/shard"
)

// OutputDir is where the dataset for the solver output at path goes.
func OutputDir(path string) string {
	return path + ".d"
}

type Result struct {
	Input   string
	Output  string
	Purpose shard.Purpose
	Rows    int
	Err     error
}

// File encodes every record of the solver output at path and writes the
// shuffled dataset next to it. Nothing is written if any record fails.
func File(ctx context.Context, path string, enc *features.Encoder, opts dataset.WriteOptions) Result {
	logger := zerolog.Ctx(ctx).With().Str("input", path).Logger()
	res := Result{Input: path, Output: OutputDir(path), Purpose: shard.ForPath(path)}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	start := time.Now()
	g, err := accumulator.AccumulateFile(path, enc)
	if err != nil {
		res.Err = err
		return res
	}
	opts.Sources = []string{path}
	m, err := dataset.WriteGroup(res.Output, g, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Rows = m.Rows
	logger.Info().Str("output", res.Output).Int("rows", m.Rows).Stringer("shard", res.Purpose).
		Dur("elapsed", time.Since(start)).Msg("transformed")
	return res
}

// All transforms paths with at most workers files in flight. A bad file
// does not stop the others; every failure is joined into the returned
// error and also recorded in its Result. Cancelling ctx stops files not
// yet started.
func All(ctx context.Context, paths []string, workers int, enc *features.Encoder, opts dataset.WriteOptions) ([]Result, error) {
	if workers < 1 {
		return nil, fmt.Errorf("need at least one worker, got %d", workers)
	}
	logger := zerolog.Ctx(ctx)
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			results[i] = File(ctx, p, enc, opts)
			if err := results[i].Err; err != nil {
				logger.Error().Err(err).Str("input", p).Msg("transform-failed")
			}
			return nil
		})
	}
	g.Wait()

	var errs []error
	rows := 0
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
		rows += r.Rows
	}
	logger.Info().Int("files", len(paths)).Int("failed", len(errs)).Int("rows", rows).Msg("transform-done")
	return results, errors.Join(errs...)
}
