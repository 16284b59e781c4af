// Package term is the tcell frontend. It implements pager.Terminal on a
// tcell screen so the controller can run its own blocking loop.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/pager"
	"github.com/TimelordUK/mpage/internal/render"
)

// Screen draws controller rows on a tcell screen.
type Screen struct {
	screen tcell.Screen
	pairs  *color.PairTable
	log    zerolog.Logger

	styles map[styleKey]tcell.Style
	// rows keeps the plain text of every drawn row so the last page can be
	// left on the terminal after the screen is finalized.
	rows []string
}

type styleKey struct {
	pair  color.PairID
	attrs ansi.Attr
}

// New initializes the terminal. pairs must be the table the controller's
// renderer registers colors in.
func New(pairs *color.PairTable, log zerolog.Logger) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.EnableMouse()
	return Wrap(s, pairs, log), nil
}

// Wrap uses an already initialized tcell screen.
func Wrap(s tcell.Screen, pairs *color.PairTable, log zerolog.Logger) *Screen {
	_, h := s.Size()
	return &Screen{
		screen: s,
		pairs:  pairs,
		log:    log.With().Str("component", "term").Logger(),
		styles: make(map[styleKey]tcell.Style),
		rows:   make([]string, h),
	}
}

// Size implements pager.Surface
func (s *Screen) Size() (int, int) {
	w, h := s.screen.Size()
	if len(s.rows) != h {
		s.rows = make([]string, h)
	}
	return h, w
}

// DrawRow implements pager.Surface
func (s *Screen) DrawRow(y int, cells []render.Cell) {
	w, h := s.screen.Size()
	if y < 0 || y >= h {
		return
	}

	var plain strings.Builder
	x := 0
	for _, c := range cells {
		width := max(c.Width, 1)
		if x+width > w {
			break
		}
		st := s.style(styleKey{pair: c.Pair, attrs: c.Attrs})
		if c.Attrs.Has(ansi.Invisible) {
			for i := 0; i < width; i++ {
				s.screen.SetContent(x+i, y, ' ', nil, st)
			}
			plain.WriteString(strings.Repeat(" ", width))
		} else {
			s.screen.SetContent(x, y, c.Rune, c.Comb, st)
			plain.WriteRune(c.Rune)
			for _, r := range c.Comb {
				plain.WriteRune(r)
			}
		}
		x += width
	}
	for ; x < w; x++ {
		s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
	}
	if y < len(s.rows) {
		s.rows[y] = plain.String()
	}
}

// Clear implements pager.Surface. The pair table may have been reset, so
// cached styles go too.
func (s *Screen) Clear() {
	s.screen.Clear()
	s.styles = make(map[styleKey]tcell.Style)
	for i := range s.rows {
		s.rows[i] = ""
	}
}

// MoveCursor implements pager.Surface
func (s *Screen) MoveCursor(y, x int) {
	s.screen.ShowCursor(x, y)
}

// Show implements pager.Surface
func (s *Screen) Show() {
	s.screen.Show()
}

// NextEvent implements pager.EventSource. Events the pager has no use for
// are skipped. io.EOF is returned once the screen is finalized.
func (s *Screen) NextEvent() (pager.Event, error) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return pager.Event{}, io.EOF
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			w, h := ev.Size()
			return pager.ResizeEvent(h, w), nil
		case *tcell.EventKey:
			if name := KeyName(ev); name != "" {
				return pager.KeyEvent(name), nil
			}
		case *tcell.EventMouse:
			switch {
			case ev.Buttons()&tcell.WheelUp != 0:
				return pager.Event{Kind: pager.EventWheelUp}, nil
			case ev.Buttons()&tcell.WheelDown != 0:
				return pager.Event{Kind: pager.EventWheelDown}, nil
			}
		}
	}
}

// Suspend implements pager.Suspender
func (s *Screen) Suspend() error {
	s.log.Debug().Msg("suspending screen")
	return s.screen.Suspend()
}

// Resume implements pager.Suspender
func (s *Screen) Resume() error {
	s.log.Debug().Msg("resuming screen")
	return s.screen.Resume()
}

// Close finalizes the screen. Unless clearOnExit is set, the last page is
// written to w so it stays visible after the terminal is restored.
func (s *Screen) Close(clearOnExit bool, w io.Writer) error {
	s.screen.Fini()
	if clearOnExit || w == nil {
		return nil
	}
	last := len(s.rows)
	for last > 0 && s.rows[last-1] == "" {
		last--
	}
	for _, row := range s.rows[:last] {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Screen) style(k styleKey) tcell.Style {
	if st, ok := s.styles[k]; ok {
		return st
	}
	st := tcell.StyleDefault.
		Bold(k.attrs.Has(ansi.Bold)).
		Dim(k.attrs.Has(ansi.Dim)).
		Italic(k.attrs.Has(ansi.Italic)).
		Blink(k.attrs.Has(ansi.Blink)).
		Reverse(k.attrs.Has(ansi.Reverse))
	if k.attrs.Has(ansi.Underline) {
		st = st.Underline(true)
	}
	if s.pairs != nil {
		p := s.pairs.Pair(k.pair)
		st = st.Foreground(tcellColor(p.Fg)).Background(tcellColor(p.Bg))
	}
	s.styles[k] = st
	return st
}

func tcellColor(c color.Color) tcell.Color {
	switch c.Kind {
	case color.KindIndexed:
		return tcell.PaletteColor(int(c.Index))
	case color.KindRGB:
		return tcell.NewRGBColor(int32(c.RGB.R), int32(c.RGB.G), int32(c.RGB.B))
	}
	return tcell.ColorDefault
}
