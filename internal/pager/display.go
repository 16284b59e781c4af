package pager

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/index"
	"github.com/TimelordUK/mpage/internal/source"
)

// Draw paints the page, the chyron and the status line onto s.
func (c *Controller) Draw(s Surface) {
	if c.needClear {
		s.Clear()
		c.needClear = false
	}

	doc := c.doc()
	y := 0
	filler := "~"
	switch {
	case c.showHelp:
		y = c.drawHelp(s)
		filler = ""
	case doc != nil:
		pos := c.view.Top
		for ; y < c.view.Rows; y++ {
			line, row, ok := c.renderer.Decode(pos)
			if !ok {
				break
			}
			c.search.Highlight(row)
			c.view.ObserveWidth(row.Width)
			s.DrawRow(y, c.renderer.Resolve(row.Slice(c.view.Left, c.view.Cols)))
			pos = line.Next
		}
		c.view.Bottom = pos
		if y < c.view.Rows {
			c.view.Bottom = source.EndOfDocument
		}
	}
	for ; y < c.view.Rows; y++ {
		s.DrawRow(y, c.renderer.Text(filler, ansi.Normal))
	}

	if err := c.renderer.PairError(); err != nil && c.status == "" {
		c.status = err.Error()
	}

	if c.chyronVisible() {
		text := c.help.ShortHelpView(c.keys.ShortHelp())
		s.DrawRow(c.rows-2, c.renderer.Text(truncate(text, c.cols), ansi.Style{Attrs: ansi.Dim}))
	}

	status, cursor := c.statusLine()
	s.DrawRow(c.rows-1, c.renderer.Text(status, c.statusStyle))
	if cursor > c.cols-1 {
		cursor = c.cols - 1
	}
	s.MoveCursor(c.rows-1, cursor)
	s.Show()
}

// drawHelp paints every binding over the text rows and returns the number of
// rows used.
func (c *Controller) drawHelp(s Surface) int {
	y := 0
	for _, line := range strings.Split(c.help.FullHelpView(c.keys.FullHelp()), "\n") {
		if y >= c.view.Rows {
			break
		}
		s.DrawRow(y, c.renderer.Text(truncate(line, c.cols), ansi.Normal))
		y++
	}
	return y
}

// statusLine returns the bottom row text and the cursor column on it.
func (c *Controller) statusLine() (string, int) {
	if c.state == StateArgument {
		p := c.input.Prompt
		if c.arg.single() {
			return truncate(p, c.cols), uniseg.StringWidth(p)
		}
		value := []rune(c.input.Value())
		before := p + string(value[:c.input.Position()])
		text := p + string(value)
		return tail(text, c.cols), min(uniseg.StringWidth(before), c.cols-1)
	}

	var text string
	switch {
	case c.status != "":
		text = c.status
	case c.state == StateNumericPrefix:
		text = fmt.Sprintf(":%d", c.count)
	default:
		text = c.promptText()
	}
	text = truncate(text, c.cols)
	return text, uniseg.StringWidth(text)
}

// promptText renders the idle prompt in the configured verbosity.
func (c *Controller) promptText() string {
	doc := c.doc()
	if doc == nil {
		return ":"
	}
	switch c.prompt {
	case config.PromptShort:
		if c.view.AtEnd() {
			return "(END)"
		}
		return ":"
	case config.PromptLong:
		return c.longPrompt(doc)
	}

	var b strings.Builder
	b.WriteString(c.session.Current().String())
	if n := c.session.Count(); n > 1 {
		fmt.Fprintf(&b, " (file %d of %d)", c.session.Index()+1, n)
	}
	if c.view.AtEnd() {
		b.WriteString(" (END)")
	} else {
		fmt.Fprintf(&b, " %d%%", c.view.Percent(doc))
	}
	return b.String()
}

// longPrompt describes the file, the displayed lines and the byte offset.
func (c *Controller) longPrompt(doc *source.Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.session.Current().String())
	if n := c.session.Count(); n > 1 {
		fmt.Fprintf(&b, " (file %d of %d)", c.session.Index()+1, n)
	}

	m := doc.Mapped()
	top := int64(doc.Resolve(c.view.Top))
	bottom := int64(doc.Resolve(c.view.Bottom))
	first, err := index.LineNumber(m, top)
	if err == nil {
		last := first
		if bottom > top {
			if n, err := index.LineNumber(m, bottom-1); err == nil {
				last = n
			}
		}
		fmt.Fprintf(&b, " lines %d-%d", first, last)
		if total, err := index.TotalLines(m); err == nil {
			fmt.Fprintf(&b, "/%d", total)
		}
	}
	fmt.Fprintf(&b, " byte %d/%d", bottom, doc.Size())
	if c.view.AtEnd() {
		b.WriteString(" (END)")
	} else {
		fmt.Fprintf(&b, " %d%%", c.view.Percent(doc))
	}
	return b.String()
}

// truncate cuts s to at most width columns, keeping whole graphemes.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String()
}

// tail keeps the rightmost width columns of s, so the end of a long
// argument stays visible while it is typed.
func tail(s string, width int) string {
	if width <= 1 {
		return ""
	}
	if uniseg.StringWidth(s) < width {
		return s
	}
	var clusters []string
	var widths []int
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
		widths = append(widths, g.Width())
	}
	used := 0
	i := len(clusters)
	for i > 0 && used+widths[i-1] < width {
		i--
		used += widths[i]
	}
	return strings.Join(clusters[i:], "")
}
