package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/render"
	"github.com/TimelordUK/mpage/internal/source"
	"github.com/TimelordUK/mpage/pkg/logformat"
)

// ErrNoInput is returned when there is nothing to page.
var ErrNoInput = errors.New("missing filename (\"mpage --help\" for help)")

// Sources turns the command line into the session's file list. With no
// file arguments a piped standard input is paged.
func Sources(args []string, f *Flags, stdinIsTerminal bool) ([]source.Source, error) {
	var out []source.Source
	if f.Command != "" {
		out = append(out, source.Source{Kind: source.KindCommand, Name: f.Command})
	}
	for _, arg := range args {
		src := source.FileSource(arg)
		if src.Kind == source.KindFile && (f.Markdown || source.IsMarkdown(arg)) {
			src.Kind = source.KindMarkdown
		}
		out = append(out, src)
	}
	if len(args) == 0 && !stdinIsTerminal {
		out = append(out, source.FileSource("-"))
	}
	if len(out) == 0 {
		return nil, ErrNoInput
	}
	return out, nil
}

// NewRenderer builds the line renderer and its color pipeline from cfg.
func NewRenderer(cfg *config.Config, log zerolog.Logger) (*render.LineRenderer, error) {
	d := cfg.Display

	palette, err := color.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette: %w", err)
	}
	depth, err := color.ParseDepth(d.ColorDepth)
	if err != nil {
		return nil, err
	}
	gamma := color.Gamma{
		Red:   cfg.Gamma.Red,
		Green: cfg.Gamma.Green,
		Blue:  cfg.Gamma.Blue,
		Gray:  cfg.Gamma.Gray,
	}

	charsetName := d.Charset
	if charsetName == "" {
		charsetName = ansi.CharsetFromEnv()
	}
	charset, err := ansi.LookupCharset(charsetName)
	if err != nil {
		log.Warn().Err(err).Str("charset", charsetName).Msg("falling back to UTF-8")
		charset = nil
	}

	opts := render.Options{
		Decoder: ansi.NewDecoder(ansi.Options{
			TabWidth:    d.TabWidth,
			MaxRowWidth: d.MaxRowWidth,
			Charset:     charset,
		}),
		Resolver: color.NewResolver(palette, gamma, depth),
		Pairs:    color.NewPairTable(d.ColorPairs),
		Syntax:   d.SyntaxHighlight,
		Logger:   log,
	}
	if d.LevelColors {
		colors, err := LevelColors(cfg.Theme.Levels)
		if err != nil {
			return nil, err
		}
		opts.Tint = render.NewLevelTint(logformat.NewLevelDetector(LevelPatterns(cfg.LogLevels)), colors)
	}

	log.Debug().
		Stringer("depth", depth).
		Str("charset", charsetName).
		Int("pairs", d.ColorPairs).
		Bool("syntax", d.SyntaxHighlight).
		Msg("renderer configured")
	return render.New(opts), nil
}

// LevelPatterns maps the configured detection markers to levels.
func LevelPatterns(c config.LogLevelConfig) map[logformat.Level][]string {
	return map[logformat.Level][]string{
		logformat.LevelTrace: c.TracePatterns,
		logformat.LevelDebug: c.DebugPatterns,
		logformat.LevelInfo:  c.InfoPatterns,
		logformat.LevelWarn:  c.WarnPatterns,
		logformat.LevelError: c.ErrorPatterns,
		logformat.LevelFatal: c.FatalPatterns,
	}
}

// LevelColors parses the theme colors. Empty entries leave a level untinted.
func LevelColors(c config.LogLevelColors) (map[logformat.Level]color.Color, error) {
	out := make(map[logformat.Level]color.Color)
	for level, s := range map[logformat.Level]string{
		logformat.LevelTrace: c.Trace,
		logformat.LevelDebug: c.Debug,
		logformat.LevelInfo:  c.Info,
		logformat.LevelWarn:  c.Warn,
		logformat.LevelError: c.Error,
		logformat.LevelFatal: c.Fatal,
	} {
		col, err := color.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("theme.levels.%s: %w", level, err)
		}
		if !col.IsDefault() {
			out[level] = col
		}
	}
	return out, nil
}
