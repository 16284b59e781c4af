package ansi

// Row is one decoded line.
type Row struct {
	Cells []Cell
	// Stripped is the line text with escape sequences removed, as UTF-8.
	Stripped string
	// Width is the total column width of Cells.
	Width int
	// Truncated is set when the line was cut at the maximum row width.
	Truncated bool
	// Styled is set when at least one SGR sequence was applied.
	Styled bool
	// End is the style in effect after the last byte. It is discarded: the
	// next line starts from Normal again.
	End Style

	cellOf []int
}

// CellSpan converts a byte range of Stripped into a cell index range.
func (r Row) CellSpan(start, end int) (int, int) {
	return r.cellAt(start), r.cellAt(end)
}

func (r Row) cellAt(i int) int {
	switch {
	case i <= 0:
		return 0
	case i >= len(r.cellOf):
		return len(r.Cells)
	}
	return r.cellOf[i]
}

// Restyle applies fn to the style of each cell in [from, to).
func (r Row) Restyle(from, to int, fn func(Style) Style) {
	if from < 0 {
		from = 0
	}
	if to > len(r.Cells) {
		to = len(r.Cells)
	}
	for i := from; i < to; i++ {
		r.Cells[i].Style = fn(r.Cells[i].Style)
	}
}

// Slice returns the cells that fall into columns [left, left+width). A wide
// cell cut by the left edge is replaced by spaces.
func (r Row) Slice(left, width int) []Cell {
	if width <= 0 {
		return nil
	}
	out := make([]Cell, 0, width)
	col, used := 0, 0
	for _, c := range r.Cells {
		end := col + c.Width
		switch {
		case end <= left:
		case col < left:
			for i := left; i < end && used < width; i++ {
				out = append(out, Cell{Rune: ' ', Width: 1, Style: c.Style})
				used++
			}
		default:
			if used+c.Width > width {
				return out
			}
			out = append(out, c)
			used += c.Width
		}
		if used >= width {
			break
		}
		col = end
	}
	return out
}
