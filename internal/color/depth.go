package color

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// Depth is the number of colors the output terminal can show.
type Depth int

const (
	Depth16 Depth = iota
	Depth256
	DepthTrueColor
)

func (d Depth) String() string {
	switch d {
	case Depth256:
		return "256"
	case DepthTrueColor:
		return "truecolor"
	default:
		return "16"
	}
}

// ParseDepth parses "auto", "16", "256" or "truecolor". auto detects the
// terminal's profile.
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectDepth(), nil
	case "16", "ansi":
		return Depth16, nil
	case "256", "ansi256":
		return Depth256, nil
	case "truecolor", "24bit", "16m":
		return DepthTrueColor, nil
	}
	return Depth16, fmt.Errorf("unknown color depth %q", s)
}

// DetectDepth asks termenv for the terminal's color profile.
func DetectDepth() Depth {
	return depthOf(termenv.ColorProfile())
}

func depthOf(p termenv.Profile) Depth {
	switch p {
	case termenv.TrueColor:
		return DepthTrueColor
	case termenv.ANSI256:
		return Depth256
	default:
		return Depth16
	}
}

// Resolver turns decoded colors into what the output terminal can display.
// It is owned by one session and is not safe for concurrent use.
type Resolver struct {
	Palette Palette
	Gamma   Gamma
	Depth   Depth
}

// NewResolver returns a resolver for the given palette, gamma and depth.
func NewResolver(p Palette, g Gamma, d Depth) *Resolver {
	return &Resolver{Palette: p, Gamma: g, Depth: d}
}

// ToRGB resolves any non-default color to 24 bits using the palette.
func (r *Resolver) ToRGB(c Color) RGB {
	if c.Kind == KindRGB {
		return c.RGB
	}
	return r.Palette.Xterm256ToRGB(c.Index)
}

// Output downgrades c to the resolver's depth. Truecolor output goes through
// the palette and gamma so base-color overrides take effect.
func (r *Resolver) Output(c Color) Color {
	if c.IsDefault() {
		return c
	}
	switch r.Depth {
	case DepthTrueColor:
		rgb := r.Gamma.Apply(r.ToRGB(c))
		return FromRGB(rgb.R, rgb.G, rgb.B)
	case Depth256:
		if c.Kind == KindIndexed {
			return c
		}
		return Indexed(RGBToXterm256(r.Gamma.Apply(c.RGB)))
	default:
		if c.Kind == KindIndexed && c.Index < 16 {
			return c
		}
		return Indexed(r.Palette.Nearest16(r.Gamma.Apply(r.ToRGB(c))))
	}
}
