package render

import (
	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/pkg/logformat"
)

// LevelTint colors lines that carry no escape sequences of their own by the
// log level they mention.
type LevelTint struct {
	detector *logformat.LevelDetector
	colors   map[logformat.Level]color.Color
}

// NewLevelTint creates a tint from a detector and per-level colors.
func NewLevelTint(detector *logformat.LevelDetector, colors map[logformat.Level]color.Color) *LevelTint {
	return &LevelTint{detector: detector, colors: colors}
}

// Apply sets the foreground of cells that use the default color.
func (t *LevelTint) Apply(content []byte, row ansi.Row) {
	level := t.detector.Detect(content)
	c, ok := t.colors[level]
	if !ok || c.IsDefault() {
		return
	}
	row.Restyle(0, len(row.Cells), func(s ansi.Style) ansi.Style {
		if s.Fg.IsDefault() {
			s.Fg = c
		}
		return s
	})
}
