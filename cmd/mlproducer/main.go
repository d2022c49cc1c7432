package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/heartsnn/trickdata/config"
)

const usage = `usage: mlproducer [flags] <command> [args]

commands:
  transform <solver output files or globs>   encode each file into <file>.d
  merge <dataset globs or dirs>              concatenate and reshuffle datasets
  describe <dataset dir>                     summarise a dataset
  verify <dataset dirs>                      check files against their manifests
`

type command func(ctx context.Context, cfg *config.Config, args []string) error

var commands = map[string]command{
	"transform": runTransform,
	"merge":     runMerge,
	"describe":  runDescribe,
	"verify":    runVerify,
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(os.Stderr).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Interface("config", cfg.AllSettings()).Msg("loaded-config")

	args := cfg.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	run, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", args[0], usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	if err := run(ctx, cfg, args[1:]); err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("failed")
		stop()
		os.Exit(1)
	}
}
