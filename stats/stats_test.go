package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		scores []int
		mean   float64
		stdev  float64
		min    float64
		max    float64
	}
	cases := []tc{
		{[]int{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638, 10, 23},
		{[]int{14, 35, 71, 124, 10, 24, 55, 33, 87, 19}, 47.2, 36.937785531891, 10, 124},
		{[]int{1}, 1, 0, 1, 1},
		{[]int{}, 0, 0, 0, 0},
		{[]int{1, 1}, 1, 0, 1, 1},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, score := range c.scores {
			s.Push(float64(score))
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
		is.Equal(s.Min(), c.min)
		is.Equal(s.Max(), c.max)
		is.Equal(s.Count(), len(c.scores))
	}
}

func TestZVal(t *testing.T) {
	is := is.New(t)
	is.True(FuzzyEqual(ZVal(95), 1.959963984540054))
	is.True(FuzzyEqual(ZVal(0), 0))
}

func TestConfidenceInterval(t *testing.T) {
	is := is.New(t)
	s := &Statistic{}
	s.PushAll([]float32{10, 12, 23, 23, 16, 23, 21, 16})
	lo, hi := s.ConfidenceInterval(95)
	is.True(FuzzyEqual((lo+hi)/2, 18))
	is.True(FuzzyEqual(hi-18, ZVal(95)*5.2372293656638/2.8284271247461903))
}

type rows [][]float32

func (r rows) Rows() int            { return len(r) }
func (r rows) Row(i int) []float32 { return r[i] }

func TestColumnAndSummary(t *testing.T) {
	is := is.New(t)
	src := rows{{1, 0.5}, {0, 0.25}, {1, -0.75}, {1, 0}}
	legal := func(row []float32) bool { return row[0] == 1 }
	col := Column(src, 1, legal)
	is.Equal(col, []float64{0.5, -0.75, 0})
	is.Equal(len(Column(src, 0, nil)), 4)

	sum := Summarize(col, 95)
	is.Equal(sum.Count, 3)
	is.True(FuzzyEqual(sum.Mean, -0.25/3))
	is.Equal(sum.Min, -0.75)
	is.Equal(sum.Max, 0.5)
	is.Equal(len(sum.Quantiles), len(QuantileLevels))
	is.Equal(sum.Quantiles[2], 0.0)

	var buf bytes.Buffer
	is.NoErr(sum.Fprint(&buf))
	is.True(strings.HasPrefix(buf.String(), "n=3 "))

	whole := Whole(src)
	is.Equal(whole.Count(), 8)
}

func TestHistogram(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	is.NoErr(Histogram(&buf, []float64{0, 0.1, 0.1, 0.5, 0.9, 1}, 4, 20))
	is.True(buf.Len() > 0)

	buf.Reset()
	is.NoErr(Histogram(&buf, nil, 4, 20))
	is.Equal(buf.String(), "(no values)\n")
}
