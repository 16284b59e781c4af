// Package ansi decodes raw line bytes carrying SGR escape sequences into
// styled display cells and a plain-text shadow used for searching.
package ansi

import "github.com/TimelordUK/mpage/internal/color"

// Attr is a bitset of text attributes.
type Attr uint8

const (
	Bold Attr = 1 << iota
	Dim
	Italic
	Underline
	Blink
	Reverse
	Invisible
)

// Has reports whether all bits of a are set.
func (s Attr) Has(a Attr) bool {
	return s&a == a
}

// Style is the attribute set plus foreground and background colors.
type Style struct {
	Attrs Attr
	Fg    color.Color
	Bg    color.Color
}

// Normal is the style every line starts with.
var Normal = Style{}

// Cell is one display character. Width is the number of terminal columns it
// occupies; zero-width runes that follow it are carried in Comb.
type Cell struct {
	Rune  rune
	Comb  []rune
	Width int
	Style Style
}
