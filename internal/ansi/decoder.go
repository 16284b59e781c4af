package ansi

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding"

	"github.com/TimelordUK/mpage/internal/color"
)

const (
	esc = 0x1b

	// DefaultMaxRowWidth caps the number of columns decoded from one line.
	DefaultMaxRowWidth = 4096
	DefaultTabWidth    = 8

	// Placeholder replaces bytes the charset cannot decode.
	Placeholder = '\uFFFD'
)

// Options configures a Decoder.
type Options struct {
	TabWidth    int
	MaxRowWidth int
	// Charset is nil for UTF-8.
	Charset encoding.Encoding
}

// Stats counts the malformed input seen by a Decoder. Neither condition is
// reported as an error.
type Stats struct {
	InvalidEscapes int
	InvalidBytes   int
}

// Decoder turns raw line bytes into a Row. It is not safe for concurrent use.
type Decoder struct {
	tabWidth int
	maxWidth int
	charset  *encoding.Decoder
	stats    Stats
}

// NewDecoder builds a decoder, filling zero options with defaults.
func NewDecoder(opts Options) *Decoder {
	d := &Decoder{
		tabWidth: opts.TabWidth,
		maxWidth: opts.MaxRowWidth,
	}
	if d.tabWidth <= 0 {
		d.tabWidth = DefaultTabWidth
	}
	if d.maxWidth <= 0 {
		d.maxWidth = DefaultMaxRowWidth
	}
	if opts.Charset != nil {
		d.charset = opts.Charset.NewDecoder()
	}
	return d
}

// TabWidth returns the tab stop interval.
func (d *Decoder) TabWidth() int {
	return d.tabWidth
}

// SetTabWidth changes the tab stop interval; values below 1 are ignored.
func (d *Decoder) SetTabWidth(n int) {
	if n > 0 {
		d.tabWidth = n
	}
}

// Stats returns the malformed input counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

type rowBuilder struct {
	row      Row
	stripped strings.Builder
	style    Style
	max      int
}

// emit appends one cell and records src as the stripped text it came from.
// It returns false once the row is full.
func (b *rowBuilder) emit(c Cell, src string) bool {
	if b.row.Width+c.Width > b.max {
		b.row.Truncated = true
		return false
	}
	idx := len(b.row.Cells)
	b.row.Cells = append(b.row.Cells, c)
	b.row.Width += c.Width
	for i := 0; i < len(src); i++ {
		b.row.cellOf = append(b.row.cellOf, idx)
	}
	b.stripped.WriteString(src)
	return true
}

// attach adds a zero-width rune to the previous cell.
func (b *rowBuilder) attach(r rune, src string) {
	n := len(b.row.Cells)
	if n == 0 {
		return
	}
	b.row.Cells[n-1].Comb = append(b.row.Cells[n-1].Comb, r)
	for i := 0; i < len(src); i++ {
		b.row.cellOf = append(b.row.cellOf, n-1)
	}
	b.stripped.WriteString(src)
}

// Decode converts one line. The style always starts as Normal: SGR state does
// not carry over from the previous line.
func (d *Decoder) Decode(line []byte) Row {
	b := &rowBuilder{style: Normal, max: d.maxWidth}

	for i := 0; i < len(line) && !b.row.Truncated; {
		c := line[i]
		switch {
		case c == esc:
			if n, ok := d.escape(b, line[i:]); ok {
				i += n
				continue
			}
			d.stats.InvalidEscapes++
			d.control(b, c)
			i++
		case c == '\t':
			d.tab(b)
			i++
		case c < 0x20 || c == 0x7f:
			d.control(b, c)
			i++
		default:
			i += d.text(b, line[i:])
		}
	}

	b.row.End = b.style
	b.row.Stripped = b.stripped.String()
	b.row.cellOf = append(b.row.cellOf, len(b.row.Cells))
	return b.row
}

// tab fills with spaces up to the next tab stop. The tab byte maps to the
// first of them.
func (d *Decoder) tab(b *rowBuilder) {
	spaces := d.tabWidth - b.row.Width%d.tabWidth
	for k := 0; k < spaces; k++ {
		src := ""
		if k == 0 {
			src = "\t"
		}
		if !b.emit(Cell{Rune: ' ', Width: 1, Style: b.style}, src) {
			return
		}
	}
}

// control shows a control byte in caret notation.
func (d *Decoder) control(b *rowBuilder, c byte) {
	shown := c + '@'
	if c == 0x7f {
		shown = '?'
	}
	if b.row.Width+2 > b.max {
		b.row.Truncated = true
		return
	}
	b.emit(Cell{Rune: '^', Width: 1, Style: b.style}, string(rune(c)))
	b.emit(Cell{Rune: rune(shown), Width: 1, Style: b.style}, "")
}

// text decodes one character and returns the number of bytes consumed.
func (d *Decoder) text(b *rowBuilder, buf []byte) int {
	r, size, ok := d.decodeRune(buf)
	if !ok {
		d.stats.InvalidBytes++
	}
	src := string(r)

	w := runewidth.RuneWidth(r)
	if w == 0 {
		b.attach(r, src)
		return size
	}
	b.emit(Cell{Rune: r, Width: w, Style: b.style}, src)
	return size
}

// decodeRune decodes one character; ok is false when the placeholder was
// substituted for an undecodable byte.
func (d *Decoder) decodeRune(buf []byte) (rune, int, bool) {
	if d.charset == nil {
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			return Placeholder, 1, false
		}
		return r, size, true
	}

	for n := 1; n <= 4 && n <= len(buf); n++ {
		if buf[n-1] == esc && n > 1 {
			break
		}
		out, err := d.charset.Bytes(buf[:n])
		if err != nil || len(out) == 0 {
			continue
		}
		r, size := utf8.DecodeRune(out)
		if r == utf8.RuneError || size != len(out) {
			continue
		}
		return r, n, true
	}
	return Placeholder, 1, false
}

// escape parses a CSI sequence at the start of buf. ok is false when buf does
// not hold a complete, well-formed sequence, or holds an SGR sequence whose
// parameters cannot be applied; such bytes are shown literally.
func (d *Decoder) escape(b *rowBuilder, buf []byte) (int, bool) {
	if len(buf) < 2 || buf[1] != '[' {
		return 0, false
	}

	j := 2
	for j < len(buf) && buf[j] >= 0x30 && buf[j] <= 0x3f {
		j++
	}
	paramEnd := j
	for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x2f {
		j++
	}
	if j >= len(buf) || buf[j] < 0x40 || buf[j] > 0x7e {
		return 0, false
	}

	if buf[j] == 'm' && paramEnd == j {
		style, ok := applySGR(b.style, string(buf[2:paramEnd]))
		if !ok {
			return 0, false
		}
		b.style = style
		b.row.Styled = true
	}
	return j + 1, true
}

// applySGR applies a ';'-separated parameter list to s.
func applySGR(s Style, params string) (Style, bool) {
	if params == "" {
		return Normal, true
	}

	fields := strings.Split(params, ";")
	nums := make([]int, len(fields))
	for i, f := range fields {
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return s, false
		}
		nums[i] = n
	}

	for i := 0; i < len(nums); i++ {
		n := nums[i]
		switch {
		case n == 0:
			s = Normal
		case n == 1:
			s.Attrs |= Bold
		case n == 2:
			s.Attrs |= Dim
		case n == 3:
			s.Attrs |= Italic
		case n == 4:
			s.Attrs |= Underline
		case n == 5 || n == 6:
			s.Attrs |= Blink
		case n == 7:
			s.Attrs |= Reverse
		case n == 8:
			s.Attrs |= Invisible
		case n == 22:
			s.Attrs &^= Bold | Dim
		case n == 23:
			s.Attrs &^= Italic
		case n == 24:
			s.Attrs &^= Underline
		case n == 25:
			s.Attrs &^= Blink
		case n == 27:
			s.Attrs &^= Reverse
		case n == 28:
			s.Attrs &^= Invisible
		case n >= 30 && n <= 37:
			s.Fg = color.Indexed(uint8(n - 30))
		case n == 38 || n == 48:
			c, used, ok := extendedColor(nums[i+1:])
			if !ok {
				return s, false
			}
			if n == 38 {
				s.Fg = c
			} else {
				s.Bg = c
			}
			i += used
		case n == 39:
			s.Fg = color.Default
		case n >= 40 && n <= 47:
			s.Bg = color.Indexed(uint8(n - 40))
		case n == 49:
			s.Bg = color.Default
		case n >= 90 && n <= 97:
			s.Fg = color.Indexed(uint8(n - 90 + 8))
		case n >= 100 && n <= 107:
			s.Bg = color.Indexed(uint8(n - 100 + 8))
		}
	}
	return s, true
}

// extendedColor reads "5;n" or "2;r;g;b" and returns how many params it used.
func extendedColor(rest []int) (color.Color, int, bool) {
	if len(rest) == 0 {
		return color.Color{}, 0, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 || !inByte(rest[1]) {
			return color.Color{}, 0, false
		}
		return color.Indexed(uint8(rest[1])), 2, true
	case 2:
		if len(rest) < 4 || !inByte(rest[1]) || !inByte(rest[2]) || !inByte(rest[3]) {
			return color.Color{}, 0, false
		}
		return color.FromRGB(uint8(rest[1]), uint8(rest[2]), uint8(rest[3])), 4, true
	}
	return color.Color{}, 0, false
}

func inByte(n int) bool {
	return n >= 0 && n <= 255
}
