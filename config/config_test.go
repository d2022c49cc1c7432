package config

import (
	"testing"

	"github.com/matryer/is"

	"github.com/heartsnn/trickdata/features"
)

func TestParseCount(t *testing.T) {
	is := is.New(t)
	cases := map[string]int{"": 0, "0": 0, "17": 17, "64K": 65536, "2M": 2 << 20}
	for in, want := range cases {
		got, err := ParseCount(in)
		is.NoErr(err)
		is.Equal(got, want)
	}
	for _, bad := range []string{"k", "64k", "1.5M", "-3", "12 K"} {
		_, err := ParseCount(bad)
		is.True(err != nil)
	}
}

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"transform", "a", "b"}))
	is.Equal(c.Args(), []string{"transform", "a", "b"})
	is.Equal(c.GetBool(ConfigDebug), false)

	l, err := c.Layout()
	is.NoErr(err)
	is.Equal(l, features.DefaultLayout())

	opts, err := c.WriteOptions()
	is.NoErr(err)
	is.Equal(opts.Limit, 0)
	is.Equal(opts.Seed, "")
}

func TestFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("DECK_LIM", "4K")
	t.Setenv("DECK_SEED", "from-env")
	c := &Config{}
	is.NoErr(c.Load([]string{"--seed", "cafe", "--score-scale", "13", "-o", "out.m", "merge", "2?"}))
	is.Equal(c.Args(), []string{"merge", "2?"})
	is.Equal(c.GetString(ConfigOutput), "out.m")

	opts, err := c.WriteOptions()
	is.NoErr(err)
	is.Equal(opts.Limit, 4096)
	is.Equal(opts.Seed, "cafe")
	is.Equal(opts.Layout.ScoreScale, float32(13))
}

func TestBadLayout(t *testing.T) {
	is := is.New(t)
	c := &Config{}
	is.NoErr(c.Load([]string{"--leading-take-trick", "2"}))
	_, err := c.Layout()
	is.True(err != nil)
	_, err = c.WriteOptions()
	is.True(err != nil)
}
