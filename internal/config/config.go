package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Palette     map[string]string `toml:"palette" yaml:"palette"`
	Gamma       GammaConfig       `toml:"gamma" yaml:"gamma"`
	Display     DisplayConfig     `toml:"display" yaml:"display"`
	Theme       ThemeConfig       `toml:"theme" yaml:"theme"`
	LogLevels   LogLevelConfig    `toml:"log_levels" yaml:"log_levels"`
	Keybindings KeybindingConfig  `toml:"keybindings" yaml:"keybindings"`
}

// GammaConfig holds per-channel gamma exponents. 0 or 1 disables correction.
type GammaConfig struct {
	Red   float64 `toml:"red" yaml:"red"`
	Green float64 `toml:"green" yaml:"green"`
	Blue  float64 `toml:"blue" yaml:"blue"`
	Gray  float64 `toml:"gray" yaml:"gray"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Levels LogLevelColors `toml:"levels" yaml:"levels"`
}

// LogLevelColors defines colors for each log level
type LogLevelColors struct {
	Trace string `toml:"trace" yaml:"trace"`
	Debug string `toml:"debug" yaml:"debug"`
	Info  string `toml:"info" yaml:"info"`
	Warn  string `toml:"warn" yaml:"warn"`
	Error string `toml:"error" yaml:"error"`
	Fatal string `toml:"fatal" yaml:"fatal"`
}

// LogLevelConfig defines log level detection patterns
type LogLevelConfig struct {
	TracePatterns []string `toml:"trace_patterns" yaml:"trace_patterns"`
	DebugPatterns []string `toml:"debug_patterns" yaml:"debug_patterns"`
	InfoPatterns  []string `toml:"info_patterns" yaml:"info_patterns"`
	WarnPatterns  []string `toml:"warn_patterns" yaml:"warn_patterns"`
	ErrorPatterns []string `toml:"error_patterns" yaml:"error_patterns"`
	FatalPatterns []string `toml:"fatal_patterns" yaml:"fatal_patterns"`
}

// KeybindingConfig allows customizing keybindings. Each list replaces the
// default keys of its command.
type KeybindingConfig struct {
	Quit         []string `toml:"quit" yaml:"quit"`
	ScrollUp     []string `toml:"scroll_up" yaml:"scroll_up"`
	ScrollDown   []string `toml:"scroll_down" yaml:"scroll_down"`
	PageUp       []string `toml:"page_up" yaml:"page_up"`
	PageDown     []string `toml:"page_down" yaml:"page_down"`
	HalfPageUp   []string `toml:"half_page_up" yaml:"half_page_up"`
	HalfPageDown []string `toml:"half_page_down" yaml:"half_page_down"`
	ScrollLeft   []string `toml:"scroll_left" yaml:"scroll_left"`
	ScrollRight  []string `toml:"scroll_right" yaml:"scroll_right"`
	Top          []string `toml:"top" yaml:"top"`
	Bottom       []string `toml:"bottom" yaml:"bottom"`
	Percent      []string `toml:"percent" yaml:"percent"`
	SetMark      []string `toml:"set_mark" yaml:"set_mark"`
	GotoMark     []string `toml:"goto_mark" yaml:"goto_mark"`
	Search       []string `toml:"search" yaml:"search"`
	SearchBack   []string `toml:"search_back" yaml:"search_back"`
	NextMatch    []string `toml:"next_match" yaml:"next_match"`
	PrevMatch    []string `toml:"prev_match" yaml:"prev_match"`
	Examine      []string `toml:"examine" yaml:"examine"`
	Colon        []string `toml:"colon" yaml:"colon"`
	Edit         []string `toml:"edit" yaml:"edit"`
	Shell        []string `toml:"shell" yaml:"shell"`
	Toggle       []string `toml:"toggle" yaml:"toggle"`
	Write        []string `toml:"write" yaml:"write"`
	Repaint      []string `toml:"repaint" yaml:"repaint"`
	Reload       []string `toml:"reload" yaml:"reload"`
	Info         []string `toml:"info" yaml:"info"`
	ClearSearch  []string `toml:"clear_search" yaml:"clear_search"`
	Help         []string `toml:"help" yaml:"help"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	TabWidth          int    `toml:"tab_width" yaml:"tab_width"`
	SqueezeBlankLines bool   `toml:"squeeze_blank_lines" yaml:"squeeze_blank_lines"`
	CaseInsensitive   bool   `toml:"case_insensitive" yaml:"case_insensitive"`
	ClearOnExit       bool   `toml:"clear_on_exit" yaml:"clear_on_exit"`
	Prompt            string `toml:"prompt" yaml:"prompt"`
	ColorPairs        int    `toml:"color_pairs" yaml:"color_pairs"`
	ColorDepth        string `toml:"color_depth" yaml:"color_depth"`
	SyntaxHighlight   bool   `toml:"syntax_highlight" yaml:"syntax_highlight"`
	LevelColors       bool   `toml:"level_colors" yaml:"level_colors"`
	ShowChyron        bool   `toml:"show_chyron" yaml:"show_chyron"`
	Charset           string `toml:"charset" yaml:"charset"`
	Screen            string `toml:"screen" yaml:"screen"`
	MaxRowWidth       int    `toml:"max_row_width" yaml:"max_row_width"`
}

// Prompt styles.
const (
	PromptShort  = "short"
	PromptMedium = "medium"
	PromptLong   = "long"
)

// Screen backends.
const (
	ScreenTea   = "tea"
	ScreenTcell = "tcell"
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Palette: map[string]string{},
		Theme: ThemeConfig{
			Levels: LogLevelColors{
				Trace: "240", // Dark gray
				Debug: "244", // Medium gray
				Info:  "",    // Terminal default
				Warn:  "214", // Orange
				Error: "167", // Soft red
				Fatal: "196", // Bright red
			},
		},
		LogLevels: LogLevelConfig{
			TracePatterns: []string{"[TRC]", "[TRACE]", "TRACE"},
			DebugPatterns: []string{"[DBG]", "[DEBUG]", "DEBUG"},
			InfoPatterns:  []string{"[INF]", "[INFO]", "INFO"},
			WarnPatterns:  []string{"[WRN]", "[WARN]", "[WARNING]", "WARN", "WARNING"},
			ErrorPatterns: []string{"[ERR]", "[ERROR]", "ERROR"},
			FatalPatterns: []string{"[FTL]", "[FATAL]", "FATAL", "[CRIT]", "CRITICAL"},
		},
		Keybindings: KeybindingConfig{
			Quit:         []string{"q", "Q"},
			ScrollUp:     []string{"k", "up", "ctrl+p", "ctrl+y"},
			ScrollDown:   []string{"j", "down", "enter", "ctrl+n", "ctrl+e"},
			PageUp:       []string{"b", "pgup", "ctrl+b", "alt+v"},
			PageDown:     []string{"f", " ", "pgdown", "ctrl+f", "ctrl+v"},
			HalfPageUp:   []string{"u", "ctrl+u"},
			HalfPageDown: []string{"d", "ctrl+d"},
			ScrollLeft:   []string{"left"},
			ScrollRight:  []string{"right"},
			Top:          []string{"g", "home", "<"},
			Bottom:       []string{"G", "end", ">"},
			Percent:      []string{"p", "%"},
			SetMark:      []string{"m"},
			GotoMark:     []string{"'"},
			Search:       []string{"/"},
			SearchBack:   []string{"?"},
			NextMatch:    []string{"n"},
			PrevMatch:    []string{"N"},
			Examine:      []string{"E"},
			Colon:        []string{":"},
			Edit:         []string{"v"},
			Shell:        []string{"!"},
			Toggle:       []string{"-"},
			Write:        []string{"s"},
			Repaint:      []string{"r", "ctrl+l"},
			Reload:       []string{"R"},
			Info:         []string{"=", "ctrl+g"},
			ClearSearch:  []string{"alt+u"},
			Help:         []string{"h", "H"},
		},
		Display: DisplayConfig{
			TabWidth:        8,
			Prompt:          PromptMedium,
			ColorPairs:      256,
			ColorDepth:      "auto",
			SyntaxHighlight: false,
			LevelColors:     true,
			ShowChyron:      true,
			ClearOnExit:     true,
			Screen:          ScreenTea,
			MaxRowWidth:     4096,
		},
	}
}

// Load reads the config at path, or at the default location when path is
// empty. A missing file yields the defaults. It returns the path it used.
func Load(path string) (*Config, string, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = findConfigPath()
	}
	if path == "" {
		return cfg, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, path, nil
		}
		return nil, path, err
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, path, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return toml.Unmarshal(data, cfg)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Encode writes cfg as TOML, or YAML when path names a YAML file
func Encode(cfg *Config, path string) ([]byte, error) {
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return toml.Marshal(cfg)
}

// Save saves config to file
func Save(cfg *Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	if path == "" {
		return nil
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := Encode(cfg, path)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// configDir returns $XDG_CONFIG_HOME/mpage or ~/.config/mpage
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mpage")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "mpage")
}

// findConfigPath prefers config.toml and falls back to an existing config.yaml
func findConfigPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return tomlPath
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return findConfigPath()
}
