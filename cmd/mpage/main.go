package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/TimelordUK/mpage/internal/commands"
	"github.com/TimelordUK/mpage/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

// rootFlags are the logging and config flags read before any command runs.
func rootFlags(flags *commands.Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (trace, debug, info, warn, error, disabled)",
			Sources:     cli.EnvVars("MPAGE_LOG_LEVEL"),
			Value:       "warn",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file; an empty path turns logging off",
			Sources:     cli.EnvVars("MPAGE_LOG_FILE"),
			Value:       logutils.DefaultFile(),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config file (TOML, or YAML by extension)",
			Sources:     cli.EnvVars("MPAGE_CONFIG"),
			Destination: &flags.ConfigPath,
		},
	}
}

func main() {
	var (
		logCloser func()
		logger    = zerolog.Nop()
		flags     = &commands.Flags{}
	)

	pagerCmd := commands.NewPagerCmd(flags, &logger)

	app := &cli.Command{
		Name:      "mpage",
		Usage:     "page through files, pipes and command output",
		UsageText: "mpage [options] [file ...]",
		ArgsUsage: "[file ...]",
		Version:   build(),
		Flags:     rootFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			l, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logger = l
			logCloser = closer
			logger.Debug().Str("version", build()).Msg("starting")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: pagerCmd.Run,
	}
	app.Flags = append(app.Flags, pagerCmd.Flags()...)

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mpage: %v\n", err)
		os.Exit(1)
	}
}
