package commands

import (
	"github.com/TimelordUK/mpage/internal/config"
)

// Flags holds the parsed command line. Zero values mean "use the config".
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	Lines       int
	Columns     int
	Command     string
	Tabs        int
	IgnoreCase  bool
	Squeeze     bool
	NoClear     bool
	Prompt      string
	Screen      string
	Syntax      bool
	Markdown    bool
	PrintConfig bool
	WriteConfig bool
}

// Apply copies the options given on the command line over cfg. isSet
// reports whether a flag was passed explicitly.
func (f *Flags) Apply(cfg *config.Config, isSet func(name string) bool) {
	d := &cfg.Display
	if isSet("tabs") {
		d.TabWidth = f.Tabs
	}
	if isSet("ignore-case") {
		d.CaseInsensitive = f.IgnoreCase
	}
	if isSet("squeeze") {
		d.SqueezeBlankLines = f.Squeeze
	}
	if isSet("no-clear") {
		d.ClearOnExit = !f.NoClear
	}
	if isSet("prompt") {
		d.Prompt = f.Prompt
	}
	if isSet("screen") {
		d.Screen = f.Screen
	}
	if isSet("syntax") {
		d.SyntaxHighlight = f.Syntax
	}
}
