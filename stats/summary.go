package stats

import (
	"fmt"
	"io"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/stat"
)

// RowSource is anything holding fixed-length float32 rows, such as a
// dataset array.
type RowSource interface {
	Rows() int
	Row(i int) []float32
}

// Column gathers column col of every row for which keep returns true. A
// nil keep takes every row.
func Column(src RowSource, col int, keep func(row []float32) bool) []float64 {
	var out []float64
	for i := range src.Rows() {
		row := src.Row(i)
		if keep == nil || keep(row) {
			out = append(out, float64(row[col]))
		}
	}
	return out
}

// Whole returns every value of every row.
func Whole(src RowSource) *Statistic {
	s := &Statistic{}
	for i := range src.Rows() {
		s.PushAll(src.Row(i))
	}
	return s
}

var QuantileLevels = []float64{0.01, 0.25, 0.5, 0.75, 0.99}

type Summary struct {
	Count     int
	Mean      float64
	Stdev     float64
	Min, Max  float64
	CILow     float64
	CIHigh    float64
	CILevel   float64
	Quantiles []float64 // at QuantileLevels
}

// Summarize describes values with a confidence interval at level percent.
func Summarize(values []float64, level float64) Summary {
	s := &Statistic{}
	for _, v := range values {
		s.Push(v)
	}
	sum := Summary{
		Count:   s.Count(),
		Mean:    s.Mean(),
		Stdev:   s.Stdev(),
		Min:     s.Min(),
		Max:     s.Max(),
		CILevel: level,
	}
	sum.CILow, sum.CIHigh = s.ConfidenceInterval(level)
	if len(values) == 0 {
		return sum
	}
	sorted := slices.Sorted(slices.Values(values))
	for _, p := range QuantileLevels {
		sum.Quantiles = append(sum.Quantiles, stat.Quantile(p, stat.Empirical, sorted, nil))
	}
	return sum
}

func (s Summary) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "n=%d mean=%.4f stdev=%.4f min=%.4f max=%.4f %.0f%% CI [%.4f, %.4f]\n",
		s.Count, s.Mean, s.Stdev, s.Min, s.Max, s.CILevel, s.CILow, s.CIHigh)
	if err != nil || len(s.Quantiles) == 0 {
		return err
	}
	for i, q := range s.Quantiles {
		if _, err := fmt.Fprintf(w, "  p%02.0f=%.4f", QuantileLevels[i]*100, q); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}

// Histogram prints a text histogram of values with the given number of
// bins, scaled to width characters.
func Histogram(w io.Writer, values []float64, bins, width int) error {
	if len(values) == 0 {
		_, err := fmt.Fprintln(w, "(no values)")
		return err
	}
	h := histogram.Hist(bins, values)
	return histogram.Fprint(w, h, histogram.Linear(width))
}
