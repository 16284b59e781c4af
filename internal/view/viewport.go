// Package view keeps the visible window onto a document as byte positions.
// Moving the window walks line boundaries; nothing is indexed.
package view

import "github.com/TimelordUK/mpage/internal/source"

// Lines is the scanning surface the viewport moves over
type Lines interface {
	Size() int64
	NextLineEnd(pos source.Position) source.Position
	PrevLineStart(pos source.Position) source.Position
	LineStart(pos source.Position) source.Position
}

// ViewPort is the visible row/column window. Top is the first displayed
// line; Bottom is the first line below the page, or EOF.
type ViewPort struct {
	Rows int
	Cols int

	Top    source.Position
	Bottom source.Position

	Left     int
	MaxWidth int
}

// New creates a viewport with rows text rows and cols columns
func New(rows, cols int) *ViewPort {
	v := &ViewPort{Bottom: source.EndOfDocument}
	v.SetSize(rows, cols)
	return v
}

// SetSize updates dimensions; at least one row and column is kept
func (v *ViewPort) SetSize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	v.Rows = rows
	v.Cols = cols
	v.clampLeft()
}

// Reset moves to the top-left of a new document
func (v *ViewPort) Reset() {
	v.Top = 0
	v.Bottom = source.EndOfDocument
	v.Left = 0
	v.MaxWidth = 0
}

// LastPageTop returns the top position that shows the final Rows lines.
func (v *ViewPort) LastPageTop(doc Lines) source.Position {
	p := source.EndOfDocument
	for i := 0; i < v.Rows; i++ {
		prev := doc.PrevLineStart(p)
		if prev.IsBOF() {
			return 0
		}
		p = prev
	}
	if p.IsEOF() {
		return 0
	}
	return p
}

// clamp keeps Top at a line start no later than the last full page
func (v *ViewPort) clamp(doc Lines) {
	if v.Top.IsBOF() || v.Top < 0 {
		v.Top = 0
	}
	last := v.LastPageTop(doc)
	if v.Top.IsEOF() || v.Top > last {
		v.Top = last
	}
}

// ScrollDown moves the top down n lines
func (v *ViewPort) ScrollDown(doc Lines, n int) {
	last := v.LastPageTop(doc)
	for i := 0; i < n && v.Top < last; i++ {
		next := doc.NextLineEnd(v.Top)
		if next.IsEOF() {
			break
		}
		v.Top = next
	}
	v.clamp(doc)
}

// ScrollUp moves the top up n lines
func (v *ViewPort) ScrollUp(doc Lines, n int) {
	for i := 0; i < n; i++ {
		prev := doc.PrevLineStart(v.Top)
		if prev.IsBOF() {
			v.Top = 0
			break
		}
		v.Top = prev
	}
}

// PageDown scrolls down by one page
func (v *ViewPort) PageDown(doc Lines) {
	v.ScrollDown(doc, v.Rows)
}

// PageUp scrolls up by one page
func (v *ViewPort) PageUp(doc Lines) {
	v.ScrollUp(doc, v.Rows)
}

// HalfPage returns the number of lines in half a page
func (v *ViewPort) HalfPage() int {
	if v.Rows < 2 {
		return 1
	}
	return v.Rows / 2
}

// GotoTop scrolls to the beginning
func (v *ViewPort) GotoTop() {
	v.Top = 0
}

// GotoBottom shows the last page
func (v *ViewPort) GotoBottom(doc Lines) {
	v.Top = v.LastPageTop(doc)
}

// GotoPosition puts the line containing pos on top
func (v *ViewPort) GotoPosition(doc Lines, pos source.Position) {
	if pos.IsEOF() {
		v.GotoBottom(doc)
		return
	}
	if pos.IsBOF() || pos <= 0 {
		v.Top = 0
		return
	}
	v.Top = doc.LineStart(pos)
	v.clamp(doc)
}

// GotoPercent puts the line containing pct percent of the bytes on top
func (v *ViewPort) GotoPercent(doc Lines, pct int) {
	if pct <= 0 {
		v.Top = 0
		return
	}
	if pct >= 100 {
		v.GotoBottom(doc)
		return
	}
	v.GotoPosition(doc, source.Position(doc.Size()*int64(pct)/100))
}

// Percent returns how far through the document the bottom of the page is
func (v *ViewPort) Percent(doc Lines) int {
	size := doc.Size()
	if size == 0 || v.Bottom.IsEOF() {
		return 100
	}
	return int(int64(v.Bottom) * 100 / size)
}

// AtEnd reports whether the last line is on the page
func (v *ViewPort) AtEnd() bool {
	return v.Bottom.IsEOF()
}

// ScrollRight moves the horizontal offset right by n columns
func (v *ViewPort) ScrollRight(n int) {
	v.Left += n
	v.clampLeft()
}

// ScrollLeft moves the horizontal offset left by n columns
func (v *ViewPort) ScrollLeft(n int) {
	v.Left -= n
	v.clampLeft()
}

// ObserveWidth records the width of a displayed row
func (v *ViewPort) ObserveWidth(w int) {
	if w > v.MaxWidth {
		v.MaxWidth = w
	}
}

func (v *ViewPort) clampLeft() {
	limit := v.MaxWidth - v.Cols
	if limit < 0 {
		limit = 0
	}
	if v.Left > limit {
		v.Left = limit
	}
	if v.Left < 0 {
		v.Left = 0
	}
}
