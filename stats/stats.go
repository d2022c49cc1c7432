// Package stats summarises columns of a dataset: running moments,
// confidence intervals, quantiles and histograms.
package stats

import (
	"math"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic accumulates the mean and variance of a stream of values in one
// pass, along with its extremes.
type Statistic struct {
	n        int
	min, max float64

	// Welford's algorithm
	mean float64
	m2   float64
}

func (s *Statistic) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.min, s.max = val, val
		s.mean = val
		s.m2 = 0
		return
	}
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
}

// PushAll pushes every value of a float32 row.
func (s *Statistic) PushAll(vals []float32) {
	for _, v := range vals {
		s.Push(float64(v))
	}
}

func (s *Statistic) Mean() float64 {
	if s.n > 0 {
		return s.mean
	}
	return 0.0
}

func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) Min() float64 { return s.min }
func (s *Statistic) Max() float64 { return s.max }

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

// ConfidenceInterval returns the interval around the mean for a confidence
// level given in percent, e.g. 95.
func (s *Statistic) ConfidenceInterval(level float64) (lo, hi float64) {
	half := ZVal(level) * s.StandardError()
	return s.Mean() - half, s.Mean() + half
}

func (s *Statistic) Count() int {
	return s.n
}
