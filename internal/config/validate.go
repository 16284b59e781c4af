package config

import (
	"fmt"
	"sort"

	"github.com/hay-kot/criterio"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
)

// Validate checks value ranges, color strings and option names.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.validatePalette(),
		c.validateGamma(),
		between("display.tab_width", c.Display.TabWidth, 1, 32),
		between("display.color_pairs", c.Display.ColorPairs, color.MinPairCapacity, color.MaxPairCapacity),
		between("display.max_row_width", c.Display.MaxRowWidth, 80, 1<<16),
		criterio.Run("display.prompt", c.Display.Prompt, oneOf(PromptShort, PromptMedium, PromptLong)),
		criterio.Run("display.color_depth", c.Display.ColorDepth, oneOf("auto", "16", "256", "truecolor")),
		criterio.Run("display.screen", c.Display.Screen, oneOf(ScreenTea, ScreenTcell)),
		criterio.Run("display.charset", c.Display.Charset, knownCharset),
		c.validateLevelColors(),
	)
}

func (c *Config) validatePalette() error {
	names := make([]string, 0, len(c.Palette))
	for name := range c.Palette {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs criterio.FieldErrorsBuilder
	for _, name := range names {
		field := fmt.Sprintf("palette.%s", name)
		if !color.IsKnownName(name) {
			errs = errs.Append(field, fmt.Errorf("unknown color name"))
			continue
		}
		if _, err := color.ParseHex(c.Palette[name]); err != nil {
			errs = errs.Append(field, err)
		}
	}
	return errs.ToError()
}

func (c *Config) validateGamma() error {
	var errs criterio.FieldErrorsBuilder
	for _, g := range []struct {
		field string
		value float64
	}{
		{"gamma.red", c.Gamma.Red},
		{"gamma.green", c.Gamma.Green},
		{"gamma.blue", c.Gamma.Blue},
		{"gamma.gray", c.Gamma.Gray},
	} {
		if g.value < 0 {
			errs = errs.Append(g.field, fmt.Errorf("must not be negative, got %g", g.value))
		}
	}
	return errs.ToError()
}

func (c *Config) validateLevelColors() error {
	var errs criterio.FieldErrorsBuilder
	levels := c.Theme.Levels
	for _, lc := range []struct {
		field string
		value string
	}{
		{"theme.levels.trace", levels.Trace},
		{"theme.levels.debug", levels.Debug},
		{"theme.levels.info", levels.Info},
		{"theme.levels.warn", levels.Warn},
		{"theme.levels.error", levels.Error},
		{"theme.levels.fatal", levels.Fatal},
	} {
		if _, err := color.Parse(lc.value); err != nil {
			errs = errs.Append(lc.field, err)
		}
	}
	return errs.ToError()
}

func between(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return criterio.NewFieldErrors(field, fmt.Errorf("must be between %d and %d, got %d", lo, hi, v))
	}
	return nil
}

func oneOf(allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %v, got %q", allowed, v)
	}
}

func knownCharset(name string) error {
	_, err := ansi.LookupCharset(name)
	return err
}
