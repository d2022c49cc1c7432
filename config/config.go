package config

import (
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/heartsnn/trickdata/dataset"
	"github.com/heartsnn/trickdata/features"
)

const (
	ConfigDebug            = "debug"
	ConfigWorkers          = "workers"
	ConfigSeed             = "seed"
	ConfigLimit            = "limit"
	ConfigOutput           = "output"
	ConfigPointScale       = "point-scale"
	ConfigScoreScale       = "score-scale"
	ConfigLeadingTakeTrick = "leading-take-trick"
	ConfigHistogramBins    = "histogram-bins"
	ConfigColumn           = "column"
	ConfigShard            = "shard"
)

// Config is read from flags, then DECK_ environment variables, then
// defaults.
type Config struct {
	*viper.Viper
	args []string
}

func (c *Config) Load(args []string) error {
	fs := pflag.NewFlagSet("mlproducer", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigWorkers, runtime.NumCPU(), "files transformed in parallel")
	fs.String(ConfigSeed, "", "seed for the row shuffle; empty for a fresh shuffle each run")
	fs.String(ConfigLimit, "", "write at most this many rows; accepts a K or M suffix")
	fs.StringP(ConfigOutput, "o", "", "output dataset directory for merge")
	fs.Float32(ConfigPointScale, features.DefaultPointScale, "divisor for per-player point totals")
	fs.Float32(ConfigScoreScale, features.DefaultScoreScale, "divisor for expected scores")
	fs.Float32(ConfigLeadingTakeTrick, features.DefaultLeadingTakeTrick, "can-take-trick value when leading")
	fs.Int(ConfigHistogramBins, 20, "histogram bins for describe")
	fs.Int(ConfigColumn, -1, "column of the score labels to describe; -1 for legal plays of every card")
	fs.String(ConfigShard, "", "merge only inputs routed to this set: training or validation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix("DECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(ConfigLimit, "DECK_LIMIT", "DECK_LIM"); err != nil {
		return err
	}
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	c.Viper = v
	c.args = fs.Args()
	return nil
}

// Args are the positional arguments left after flags.
func (c *Config) Args() []string { return c.args }

// Layout builds the encoder layout from the scale settings.
func (c *Config) Layout() (features.Layout, error) {
	l := features.DefaultLayout()
	l.PointScale = float32(c.GetFloat64(ConfigPointScale))
	l.ScoreScale = float32(c.GetFloat64(ConfigScoreScale))
	l.LeadingTakeTrick = float32(c.GetFloat64(ConfigLeadingTakeTrick))
	return l, l.Validate()
}

// WriteOptions builds the dataset write options.
func (c *Config) WriteOptions() (dataset.WriteOptions, error) {
	limit, err := ParseCount(c.GetString(ConfigLimit))
	if err != nil {
		return dataset.WriteOptions{}, err
	}
	l, err := c.Layout()
	if err != nil {
		return dataset.WriteOptions{}, err
	}
	return dataset.WriteOptions{
		Seed:   c.GetString(ConfigSeed),
		Limit:  limit,
		Layout: &l,
	}, nil
}

var countRe = regexp.MustCompile(`^(\d+)([KM]?)$`)

// ParseCount reads a row count with an optional K (x1024) or M (x1024*1024)
// suffix. The empty string means no limit and gives 0.
func ParseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	m := countRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("count must be an integer with optional K or M suffix, got %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, err
	}
	switch m[2] {
	case "K":
		n *= 1 << 10
	case "M":
		n *= 1 << 20
	}
	return n, nil
}
