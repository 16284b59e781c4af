package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/render"
)

// Frame is an in-memory screen the controller draws on. bubbletea renders
// it as a string on every View.
type Frame struct {
	rows, cols int
	grid       [][]render.Cell
	cursorY    int
	cursorX    int

	pairs    *color.PairTable
	renderer *lipgloss.Renderer
	styles   map[styleKey]lipgloss.Style
}

type styleKey struct {
	pair  color.PairID
	attrs ansi.Attr
}

// NewFrame creates a frame whose cells refer to pairs. Styles are rendered
// with r; nil means the default lipgloss renderer.
func NewFrame(rows, cols int, pairs *color.PairTable, r *lipgloss.Renderer) *Frame {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	f := &Frame{pairs: pairs, renderer: r, styles: make(map[styleKey]lipgloss.Style)}
	f.Resize(rows, cols)
	return f
}

// Resize changes the frame size and blanks it.
func (f *Frame) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	f.rows, f.cols = rows, cols
	f.grid = make([][]render.Cell, rows)
}

// Size implements pager.Surface
func (f *Frame) Size() (int, int) {
	return f.rows, f.cols
}

// DrawRow implements pager.Surface
func (f *Frame) DrawRow(y int, cells []render.Cell) {
	if y < 0 || y >= f.rows {
		return
	}
	f.grid[y] = append(f.grid[y][:0], cells...)
}

// Clear implements pager.Surface. Pair registrations may have been reset,
// so cached styles are dropped too.
func (f *Frame) Clear() {
	for i := range f.grid {
		f.grid[i] = f.grid[i][:0]
	}
	f.styles = make(map[styleKey]lipgloss.Style)
}

// MoveCursor implements pager.Surface
func (f *Frame) MoveCursor(y, x int) {
	f.cursorY, f.cursorX = y, x
}

// Show implements pager.Surface; bubbletea flushes on its own schedule.
func (f *Frame) Show() {}

// Row returns the plain text of row y.
func (f *Frame) Row(y int) string {
	if y < 0 || y >= f.rows {
		return ""
	}
	var b strings.Builder
	for _, c := range f.grid[y] {
		writeCell(&b, c)
	}
	return b.String()
}

func writeCell(b *strings.Builder, c render.Cell) {
	if c.Attrs.Has(ansi.Invisible) {
		b.WriteString(strings.Repeat(" ", max(c.Width, 1)))
		return
	}
	b.WriteRune(c.Rune)
	for _, r := range c.Comb {
		b.WriteRune(r)
	}
}

// Render draws every row with its styles. The cursor cell is shown in
// reverse video.
func (f *Frame) Render() string {
	var out strings.Builder
	for y := 0; y < f.rows; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		cells := f.grid[y]
		if y == f.cursorY {
			cells = f.withCursor(cells)
		}
		f.renderRow(&out, cells)
	}
	return out.String()
}

func (f *Frame) withCursor(cells []render.Cell) []render.Cell {
	col := 0
	for i, c := range cells {
		if col >= f.cursorX {
			out := append([]render.Cell(nil), cells...)
			out[i].Attrs |= ansi.Reverse
			return out
		}
		col += c.Width
	}
	if col >= f.cols {
		return cells
	}
	out := append([]render.Cell(nil), cells...)
	for ; col < f.cursorX; col++ {
		out = append(out, render.Cell{Rune: ' ', Width: 1})
	}
	return append(out, render.Cell{Rune: ' ', Width: 1, Attrs: ansi.Reverse})
}

// renderRow groups runs of identically styled cells.
func (f *Frame) renderRow(out *strings.Builder, cells []render.Cell) {
	var run strings.Builder
	var key styleKey
	flush := func() {
		if run.Len() == 0 {
			return
		}
		out.WriteString(f.style(key).Render(run.String()))
		run.Reset()
	}
	for i, c := range cells {
		k := styleKey{pair: c.Pair, attrs: c.Attrs}
		if i > 0 && k != key {
			flush()
		}
		key = k
		writeCell(&run, c)
	}
	flush()
}

func (f *Frame) style(k styleKey) lipgloss.Style {
	if s, ok := f.styles[k]; ok {
		return s
	}
	s := f.renderer.NewStyle().
		Bold(k.attrs.Has(ansi.Bold)).
		Faint(k.attrs.Has(ansi.Dim)).
		Italic(k.attrs.Has(ansi.Italic)).
		Underline(k.attrs.Has(ansi.Underline)).
		Blink(k.attrs.Has(ansi.Blink)).
		Reverse(k.attrs.Has(ansi.Reverse))
	if f.pairs != nil {
		p := f.pairs.Pair(k.pair)
		if fg, ok := terminalColor(p.Fg); ok {
			s = s.Foreground(fg)
		}
		if bg, ok := terminalColor(p.Bg); ok {
			s = s.Background(bg)
		}
	}
	f.styles[k] = s
	return s
}

// terminalColor converts a resolved color for lipgloss. The default color
// sets nothing.
func terminalColor(c color.Color) (lipgloss.Color, bool) {
	switch c.Kind {
	case color.KindIndexed:
		return lipgloss.Color(strconv.Itoa(int(c.Index))), true
	case color.KindRGB:
		return lipgloss.Color(c.RGB.String()), true
	}
	return "", false
}
