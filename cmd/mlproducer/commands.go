package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/heartsnn/trickdata/config"
	"github.com/heartsnn/trickdata/dataset"
	"github.com/heartsnn/trickdata/features"
	"github.com/heartsnn/trickdata/shard"
	"github.com/heartsnn/trickdata/stats"
	"github.com/heartsnn/trickdata/transform"
)

// expandInputs resolves globs into solver output files. Dataset
// directories and their manifests never count as inputs.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil {
			return nil, err
		}
		if matches == nil {
			return nil, fmt.Errorf("no files match %q", a)
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if fi.IsDir() || strings.HasSuffix(m, ".d") || strings.HasSuffix(m, ".m") {
				continue
			}
			paths = append(paths, m)
		}
	}
	return paths, nil
}

func runTransform(ctx context.Context, cfg *config.Config, args []string) error {
	paths, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("transform: no input files")
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	enc, err := features.NewEncoder(layout)
	if err != nil {
		return err
	}
	opts, err := cfg.WriteOptions()
	if err != nil {
		return err
	}
	workers := cfg.GetInt(config.ConfigWorkers)
	zerolog.Ctx(ctx).Info().Int("files", len(paths)).Int("workers", workers).Msg("transforming")
	_, err = transform.All(ctx, paths, workers, enc, opts)
	return err
}

func runMerge(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("merge: no datasets given")
	}
	var dirs []string
	for _, a := range args {
		ds, err := dataset.Glob(a)
		if err != nil {
			return err
		}
		dirs = append(dirs, ds...)
	}

	switch set := cfg.GetString(config.ConfigShard); set {
	case "":
	case shard.Training.String(), shard.Validation.String():
		training, validation := shard.Partition(dirs)
		if set == shard.Training.String() {
			dirs = training
		} else {
			dirs = validation
		}
	default:
		return fmt.Errorf("merge: unknown shard %q", set)
	}
	if len(dirs) == 0 {
		return errors.New("merge: no dataset directories matched")
	}

	out := cfg.GetString(config.ConfigOutput)
	if out == "" {
		if len(args) != 1 {
			return errors.New("merge: --output is required with more than one pattern")
		}
		out = dataset.MergedName(args[0])
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	opts, err := cfg.WriteOptions()
	if err != nil {
		return err
	}
	m, err := dataset.Merge(dirs, out, dataset.SchemaFor(layout), opts)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("out", out).Int("inputs", len(dirs)).Int("rows", m.Rows).Msg("merged")
	return nil
}

func runDescribe(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return errors.New("describe: give exactly one dataset directory")
	}
	layout, err := cfg.Layout()
	if err != nil {
		return err
	}
	g, err := dataset.LoadDataset(args[0], dataset.SchemaFor(layout))
	if err != nil {
		return err
	}
	defer g.Close()

	w := os.Stdout
	rows, err := g.Rows()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d rows\n", args[0], rows)
	if rows == 0 {
		return nil
	}
	tensors, err := g.Tensors()
	if err != nil {
		return err
	}
	for _, k := range dataset.Kinds {
		whole := stats.Whole(g.Array(k))
		fmt.Fprintf(w, "%-6s shape %v mean=%.4f stdev=%.4f min=%.4f max=%.4f\n",
			k, tensors[k.String()].Shape(), whole.Mean(), whole.Stdev(), whole.Min(), whole.Max())
	}

	scores := g.Array(dataset.Score)
	var values []float64
	if col := cfg.GetInt(config.ConfigColumn); col >= 0 {
		if col >= scores.RowLen() {
			return fmt.Errorf("describe: column %d out of range", col)
		}
		values = stats.Column(scores, col, nil)
	} else {
		values = legalScores(g, layout)
	}
	for i := range values {
		values[i] *= float64(layout.ScoreScale)
	}

	fmt.Fprintln(w, "expected score of legal plays:")
	if err := stats.Summarize(values, 95).Fprint(w); err != nil {
		return err
	}
	return stats.Histogram(w, values, cfg.GetInt(config.ConfigHistogramBins), 60)
}

// legalScores collects the score label of every legal play of every row.
func legalScores(g *dataset.Group, l features.Layout) []float64 {
	feats, scores := g.Array(dataset.Main), g.Array(dataset.Score)
	off := l.LegalOffset()
	var out []float64
	for i := range feats.Rows() {
		legal := feats.Row(i)[off : off+l.CardsInDeck]
		row := scores.Row(i)
		for c, v := range legal {
			if v == 1 {
				out = append(out, float64(row[c]))
			}
		}
	}
	return out
}

func runVerify(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("verify: no datasets given")
	}
	logger := zerolog.Ctx(ctx)
	var errs []error
	for _, a := range args {
		dirs, err := dataset.Glob(a)
		if err != nil {
			return err
		}
		for _, d := range dirs {
			m, err := dataset.Verify(d)
			if err != nil {
				logger.Error().Err(err).Str("dir", d).Msg("verify-failed")
				errs = append(errs, err)
				continue
			}
			logger.Info().Str("dir", d).Int("rows", m.Rows).Msg("verified")
		}
	}
	return errors.Join(errs...)
}
