// Package color converts between the 16-color, 256-color and 24-bit color
// spaces, applies gamma correction and owns the bounded color-pair table.
package color

import "fmt"

// Kind says how a Color is expressed.
type Kind uint8

const (
	KindDefault Kind = iota
	KindIndexed
	KindRGB
)

// RGB is a 24-bit color.
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Color is a terminal color reference: the terminal default, an xterm-256
// index, or a truecolor value. Color is comparable and usable as a map key.
type Color struct {
	Kind  Kind
	Index uint8
	RGB   RGB
}

// Default is the terminal's default foreground or background.
var Default = Color{}

// Indexed returns the xterm-256 color idx.
func Indexed(idx uint8) Color {
	return Color{Kind: KindIndexed, Index: idx}
}

// FromRGB returns a truecolor Color.
func FromRGB(r, g, b uint8) Color {
	return Color{Kind: KindRGB, RGB: RGB{R: r, G: g, B: b}}
}

// IsDefault reports whether c is the terminal default.
func (c Color) IsDefault() bool {
	return c.Kind == KindDefault
}

func (c Color) String() string {
	switch c.Kind {
	case KindIndexed:
		return fmt.Sprintf("%d", c.Index)
	case KindRGB:
		return c.RGB.String()
	default:
		return "default"
	}
}
