package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Display.TabWidth)
	assert.Equal(t, "config.toml", filepath.Base(path))
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[palette]
red = "#ff1010"
search_bg = "#00ff00"

[gamma]
red = 2.2

[display]
tab_width = 4
squeeze_blank_lines = true
prompt = "long"

[keybindings]
quit = ["x"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, used, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "#ff1010", cfg.Palette["red"])
	assert.Equal(t, 2.2, cfg.Gamma.Red)
	assert.Equal(t, 4, cfg.Display.TabWidth)
	assert.True(t, cfg.Display.SqueezeBlankLines)
	assert.Equal(t, PromptLong, cfg.Display.Prompt)
	assert.Equal(t, []string{"x"}, cfg.Keybindings.Quit)
	assert.Equal(t, []string{"/"}, cfg.Keybindings.Search, "unset bindings keep defaults")
	assert.Equal(t, 256, cfg.Display.ColorPairs)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
display:
  tab_width: 2
  case_insensitive: true
theme:
  levels:
    error: "#ff0000"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Display.TabWidth)
	assert.True(t, cfg.Display.CaseInsensitive)
	assert.Equal(t, "#ff0000", cfg.Theme.Levels.Error)
	assert.Equal(t, "214", cfg.Theme.Levels.Warn)
}

func TestValidateReportsFieldErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette["red"] = "not-a-color"
	cfg.Palette["orange"] = "#ffa500"
	cfg.Gamma.Blue = -1
	cfg.Display.TabWidth = 0
	cfg.Display.ColorPairs = 4
	cfg.Display.Prompt = "verbose"
	cfg.Display.ColorDepth = "lots"
	cfg.Display.Charset = "klingon"
	cfg.Theme.Levels.Warn = "999"

	err := cfg.Validate()

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	var fields strings.Builder
	for _, fe := range fieldErrs {
		fields.WriteString(fe.Field)
		fields.WriteString("\n")
	}
	for _, want := range []string{
		"palette.orange",
		"palette.red",
		"gamma.blue",
		"display.tab_width",
		"display.color_pairs",
		"display.prompt",
		"display.color_depth",
		"display.charset",
		"theme.levels.warn",
	} {
		assert.Contains(t, fields.String(), want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.toml", "out.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := DefaultConfig()
			cfg.Display.TabWidth = 3
			cfg.Palette["blue"] = "#0000aa"

			require.NoError(t, Save(cfg, path))
			loaded, _, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 3, loaded.Display.TabWidth)
			assert.Equal(t, "#0000aa", loaded.Palette["blue"])
		})
	}
}
