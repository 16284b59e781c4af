package color

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// BaseNames are the configuration names of the 16 base colors, in index order.
var BaseNames = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright_black", "bright_red", "bright_green", "bright_yellow",
	"bright_blue", "bright_magenta", "bright_cyan", "bright_white",
}

// Accent color names.
const (
	StatusFg = "status_fg"
	StatusBg = "status_bg"
	SearchFg = "search_fg"
	SearchBg = "search_bg"
)

// Palette holds the overridable base colors and the pager's accent colors.
type Palette struct {
	Base     [16]RGB
	StatusFg RGB
	StatusBg RGB
	SearchFg RGB
	SearchBg RGB
}

// DefaultPalette returns the stock xterm base colors.
func DefaultPalette() Palette {
	return Palette{
		Base: [16]RGB{
			{0x00, 0x00, 0x00}, {0xcd, 0x00, 0x00}, {0x00, 0xcd, 0x00}, {0xcd, 0xcd, 0x00},
			{0x00, 0x00, 0xee}, {0xcd, 0x00, 0xcd}, {0x00, 0xcd, 0xcd}, {0xe5, 0xe5, 0xe5},
			{0x7f, 0x7f, 0x7f}, {0xff, 0x00, 0x00}, {0x00, 0xff, 0x00}, {0xff, 0xff, 0x00},
			{0x5c, 0x5c, 0xff}, {0xff, 0x00, 0xff}, {0x00, 0xff, 0xff}, {0xff, 0xff, 0xff},
		},
		StatusFg: RGB{0x1c, 0x1c, 0x1c},
		StatusBg: RGB{0xd0, 0xd0, 0xd0},
		SearchFg: RGB{0x00, 0x00, 0x00},
		SearchBg: RGB{0xff, 0xd7, 0x00},
	}
}

// ParseHex parses a "#RRGGBB" string.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// IsKnownName reports whether name is a base or accent color name.
func IsKnownName(name string) bool {
	return slot(&Palette{}, name) != nil
}

// ParsePalette overlays the named hex colors on the default palette.
func ParsePalette(named map[string]string) (Palette, error) {
	p := DefaultPalette()
	for name, hex := range named {
		dst := slot(&p, name)
		if dst == nil {
			return p, fmt.Errorf("unknown palette color %q", name)
		}
		c, err := ParseHex(hex)
		if err != nil {
			return p, fmt.Errorf("palette %s: %w", name, err)
		}
		*dst = c
	}
	return p, nil
}

func slot(p *Palette, name string) *RGB {
	switch name {
	case StatusFg:
		return &p.StatusFg
	case StatusBg:
		return &p.StatusBg
	case SearchFg:
		return &p.SearchFg
	case SearchBg:
		return &p.SearchBg
	}
	for i, base := range BaseNames {
		if base == name {
			return &p.Base[i]
		}
	}
	return nil
}

// Nearest16 returns the base palette index perceptually closest to c.
func (p Palette) Nearest16(c RGB) uint8 {
	target := toColorful(c)
	best, bestDist := 0, -1.0
	for i, base := range p.Base {
		d := target.DistanceLab(toColorful(base))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Parse reads a color written as "default", an xterm-256 index such as "214",
// or "#RRGGBB".
func Parse(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, "default"):
		return Default, nil
	case strings.HasPrefix(s, "#"):
		rgb, err := ParseHex(s)
		if err != nil {
			return Default, err
		}
		return FromRGB(rgb.R, rgb.G, rgb.B), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return Default, fmt.Errorf("invalid color %q: want default, 0-255 or #RRGGBB", s)
	}
	return Indexed(uint8(n)), nil
}
