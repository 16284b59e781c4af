package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/TimelordUK/mpage/internal/pager"
	"github.com/TimelordUK/mpage/internal/source"
	"github.com/TimelordUK/mpage/internal/term"
	"github.com/TimelordUK/mpage/internal/ui"
)

type PagerCmd struct {
	flags *Flags
	log   *zerolog.Logger
}

// NewPagerCmd creates the root paging command. log is filled in by the
// root command's Before hook.
func NewPagerCmd(flags *Flags, log *zerolog.Logger) *PagerCmd {
	return &PagerCmd{flags: flags, log: log}
}

// Flags returns the paging flags for registration on the root command
func (cmd *PagerCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "lines",
			Aliases:     []string{"y"},
			Usage:       "initial screen height before the terminal reports its size",
			Destination: &cmd.flags.Lines,
		},
		&cli.IntFlag{
			Name:        "columns",
			Usage:       "initial screen width before the terminal reports its size",
			Destination: &cmd.flags.Columns,
		},
		&cli.StringFlag{
			Name:        "command",
			Aliases:     []string{"C"},
			Usage:       "page the output of a shell command before any files",
			Destination: &cmd.flags.Command,
		},
		&cli.IntFlag{
			Name:        "tabs",
			Aliases:     []string{"x"},
			Usage:       "tab stop interval (1-32)",
			Destination: &cmd.flags.Tabs,
		},
		&cli.BoolFlag{
			Name:        "ignore-case",
			Aliases:     []string{"i"},
			Usage:       "case-insensitive searches",
			Destination: &cmd.flags.IgnoreCase,
		},
		&cli.BoolFlag{
			Name:        "squeeze",
			Aliases:     []string{"s"},
			Usage:       "collapse runs of blank lines",
			Destination: &cmd.flags.Squeeze,
		},
		&cli.BoolFlag{
			Name:        "no-clear",
			Aliases:     []string{"X"},
			Usage:       "leave the last page on the terminal when quitting",
			Destination: &cmd.flags.NoClear,
		},
		&cli.StringFlag{
			Name:        "prompt",
			Usage:       "prompt style (short, medium, long)",
			Destination: &cmd.flags.Prompt,
		},
		&cli.StringFlag{
			Name:        "screen",
			Usage:       "terminal backend (tea, tcell)",
			Sources:     cli.EnvVars("MPAGE_SCREEN"),
			Destination: &cmd.flags.Screen,
		},
		&cli.BoolFlag{
			Name:        "syntax",
			Usage:       "syntax highlight files with a known language",
			Destination: &cmd.flags.Syntax,
		},
		&cli.BoolFlag{
			Name:        "markdown",
			Usage:       "render file arguments as markdown",
			Destination: &cmd.flags.Markdown,
		},
		&cli.BoolFlag{
			Name:        "print-config",
			Usage:       "print the effective configuration and exit",
			Destination: &cmd.flags.PrintConfig,
		},
		&cli.BoolFlag{
			Name:        "write-config",
			Usage:       "save the effective configuration to the config file and exit",
			Destination: &cmd.flags.WriteConfig,
		},
	}
}

// Run pages the files named on the command line.
func (cmd *PagerCmd) Run(ctx context.Context, c *cli.Command) error {
	log := *cmd.log

	cfg, path, err := config.Load(cmd.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Info().Str("path", path).Msg("config loaded")

	cmd.flags.Apply(cfg, c.IsSet)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cmd.flags.PrintConfig {
		out, err := config.Encode(cfg, path)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
	if cmd.flags.WriteConfig {
		target, err := WriteConfig(cfg, cmd.flags.ConfigPath)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		log.Info().Str("path", target).Msg("config written")
		fmt.Fprintf(os.Stdout, "wrote %s\n", target)
		return nil
	}

	sources, err := Sources(c.Args().Slice(), cmd.flags, isTerminal(os.Stdin))
	if err != nil {
		return err
	}

	opts := source.OpenOptions{
		Squeeze:       cfg.Display.SqueezeBlankLines,
		MarkdownWidth: cmd.flags.Columns,
	}
	if !isTerminal(os.Stdout) {
		return Cat(ctx, os.Stdout, sources, opts, log)
	}
	return cmd.page(ctx, cfg, sources, opts, log)
}

func (cmd *PagerCmd) page(ctx context.Context, cfg *config.Config, sources []source.Source, opts source.OpenOptions, log zerolog.Logger) error {
	renderer, err := NewRenderer(cfg, log)
	if err != nil {
		return err
	}

	ctrl, err := pager.NewController(ctx, pager.Options{
		Sources:         sources,
		Open:            opts,
		Renderer:        renderer,
		KeyMap:          pager.NewKeyMap(cfg.Keybindings),
		Rows:            cmd.flags.Lines,
		Cols:            cmd.flags.Columns,
		Prompt:          cfg.Display.Prompt,
		CaseInsensitive: cfg.Display.CaseInsensitive,
		ClearOnExit:     cfg.Display.ClearOnExit,
		ShowChyron:      cfg.Display.ShowChyron,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close documents")
		}
	}()

	log.Info().
		Str("screen", cfg.Display.Screen).
		Int("files", len(sources)).
		Msg("starting pager")

	if cfg.Display.Screen == config.ScreenTcell {
		screen, err := term.New(renderer.Pairs(), log)
		if err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		runErr := ctrl.Run(screen)
		closeErr := screen.Close(ctrl.ClearOnExit(), os.Stdout)
		return errors.Join(runErr, closeErr)
	}
	return ui.Run(ctrl, renderer.Pairs(), log)
}

// Cat copies every source to w unchanged. Sources that fail to open are
// reported and skipped; the first failure is returned at the end.
func Cat(ctx context.Context, w io.Writer, sources []source.Source, opts source.OpenOptions, log zerolog.Logger) error {
	var first error
	for _, src := range sources {
		if err := catOne(ctx, w, src, opts); err != nil {
			if errs.Is(err, errs.IO) && errors.Is(err, errs.ErrEmptyInput) {
				continue
			}
			log.Warn().Err(err).Stringer("source", src).Msg("cat failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func catOne(ctx context.Context, w io.Writer, src source.Source, opts source.OpenOptions) error {
	doc, err := source.Open(ctx, src, opts)
	if err != nil {
		return err
	}
	defer func() { _ = doc.Close() }()

	data, err := doc.Bytes(source.BeginningOfDocument, source.EndOfDocument)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteConfig saves cfg to path, or to the default config location when path
// is empty, and returns where it went.
func WriteConfig(cfg *config.Config, path string) (string, error) {
	target := path
	if target == "" {
		target = config.GetConfigPath()
	}
	if target == "" {
		return "", errors.New("no config location; pass --config")
	}
	if err := config.Save(cfg, target); err != nil {
		return "", err
	}
	return target, nil
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
