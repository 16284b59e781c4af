// Package search scans a document line by line for a regular expression,
// wrapping around its ends, and highlights every match on displayed rows.
package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/TimelordUK/mpage/internal/source"
)

// Direction of a scan.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Forward {
		return Backward
	}
	return Forward
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Status messages.
const (
	StatusComplete     = "search complete"
	StatusWrappedEnd   = "search hit BOTTOM, continuing at TOP"
	StatusWrappedStart = "search hit TOP, continuing at BOTTOM"
)

// ErrNoPattern is returned when repeating before any search.
var ErrNoPattern = errors.New("no previous search pattern")

// Lines gives the engine stripped line text and line boundaries.
type Lines interface {
	Stripped(pos source.Position) (string, source.Position, bool)
	PrevLineStart(pos source.Position) source.Position
	Size() int64
}

// Page is the part of the viewport a search starts from.
type Page struct {
	Top    source.Position
	Bottom source.Position
}

// Result describes the outcome of one search.
type Result struct {
	Found   bool
	Line    source.Position
	Wrapped bool
	Status  string
}

// Engine holds the current pattern and the position of the last match.
// It is not safe for concurrent use.
type Engine struct {
	re              *regexp.Regexp
	pattern         string
	caseInsensitive bool
	dir             Direction
	lastMatch       source.Position
	lastTop         source.Position
	hasMatch        bool
	style           func(ansi.Style) ansi.Style
	log             zerolog.Logger
}

// New creates an engine. style is applied to matched cells when rows are
// highlighted.
func New(style func(ansi.Style) ansi.Style, log zerolog.Logger) *Engine {
	return &Engine{
		style: style,
		log:   log.With().Str("component", "search").Logger(),
	}
}

// Active reports whether a pattern is set.
func (e *Engine) Active() bool {
	return e.re != nil
}

// Pattern returns the current pattern text.
func (e *Engine) Pattern() string {
	return e.pattern
}

// Direction returns the direction of the last new search.
func (e *Engine) Direction() Direction {
	return e.dir
}

// CaseInsensitive reports the default used for new patterns.
func (e *Engine) CaseInsensitive() bool {
	return e.caseInsensitive
}

// SetCaseInsensitive changes case folding and recompiles the current pattern.
func (e *Engine) SetCaseInsensitive(on bool) error {
	e.caseInsensitive = on
	if e.re == nil {
		return nil
	}
	return e.compile(e.pattern)
}

// Clear drops the pattern and its highlighting.
func (e *Engine) Clear() {
	e.re = nil
	e.pattern = ""
	e.hasMatch = false
}

// Forget drops the remembered match, e.g. after switching documents.
func (e *Engine) Forget() {
	e.hasMatch = false
}

func (e *Engine) compile(pattern string) error {
	expr := pattern
	if e.caseInsensitive {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		e.log.Debug().Err(err).Str("pattern", pattern).Msg("pattern rejected")
		return errs.E(errs.InvalidPattern, "compile "+pattern, err)
	}
	e.re = re
	e.pattern = pattern
	return nil
}

// Search starts a new search. An empty pattern reuses the previous one.
// An invalid pattern leaves the engine unchanged.
func (e *Engine) Search(lines Lines, page Page, dir Direction, pattern string) (Result, error) {
	if pattern == "" {
		if e.re == nil {
			return Result{}, ErrNoPattern
		}
	} else {
		prev, prevPattern := e.re, e.pattern
		if err := e.compile(pattern); err != nil {
			e.re, e.pattern = prev, prevPattern
			return Result{}, err
		}
	}
	e.dir = dir
	e.hasMatch = false

	var start source.Position
	if dir == Forward {
		start = page.Bottom
		if start.IsEOF() || int64(start) >= lines.Size() {
			start = 0
		}
	} else {
		start = lines.PrevLineStart(page.Top)
		if start.IsBOF() {
			start = lines.PrevLineStart(source.EndOfDocument)
		}
	}

	res := e.scan(lines, start, start, dir, true)
	if !res.Found {
		res.Status = fmt.Sprintf("Pattern not found: %s", e.pattern)
	}
	return e.record(res), nil
}

// Repeat continues the last search from the last match. reverse flips the
// direction for this call only.
func (e *Engine) Repeat(lines Lines, page Page, reverse bool) (Result, error) {
	if e.re == nil {
		return Result{}, ErrNoPattern
	}
	dir := e.dir
	if reverse {
		dir = dir.Reverse()
	}

	anchor := page.Top
	if e.hasMatch && e.lastTop == page.Top {
		anchor = e.lastMatch
	}
	start, wrapped := advance(lines, anchor, dir)

	res := e.scan(lines, start, anchor, dir, start != anchor)
	res.Wrapped = res.Wrapped || wrapped && res.Found
	if !res.Found {
		res.Status = StatusComplete
	} else if res.Wrapped {
		res.Status = wrapStatus(dir)
	}
	return e.record(res), nil
}

// scan tests lines from start until a match or until it arrives back at
// anchor. testStart says whether start itself is examined.
func (e *Engine) scan(lines Lines, start, anchor source.Position, dir Direction, testStart bool) Result {
	cur := start
	wrapped := false
	wraps := 0
	first := true
	for {
		if !first && cur == anchor {
			return Result{}
		}
		if !first || testStart {
			text, _, ok := lines.Stripped(cur)
			if ok && e.re.MatchString(text) {
				res := Result{Found: true, Line: cur, Wrapped: wrapped}
				if wrapped {
					res.Status = wrapStatus(dir)
				}
				return res
			}
		}
		first = false

		next, w := advance(lines, cur, dir)
		if w {
			wrapped = true
			wraps++
		}
		if next == cur || wraps > 1 {
			return Result{}
		}
		cur = next
	}
}

// advance moves one line in dir, wrapping at either end.
func advance(lines Lines, cur source.Position, dir Direction) (source.Position, bool) {
	if dir == Forward {
		_, next, ok := lines.Stripped(cur)
		if !ok || next.IsEOF() || int64(next) >= lines.Size() {
			return 0, true
		}
		return next, false
	}
	prev := lines.PrevLineStart(cur)
	if prev.IsBOF() {
		return lines.PrevLineStart(source.EndOfDocument), true
	}
	return prev, false
}

func wrapStatus(dir Direction) string {
	if dir == Backward {
		return StatusWrappedStart
	}
	return StatusWrappedEnd
}

func (e *Engine) record(res Result) Result {
	if res.Found {
		e.hasMatch = true
		e.lastMatch = res.Line
	}
	return res
}

// Settle remembers where the viewport ended up after showing a match so a
// repeat continues from the match rather than from the clamped top.
func (e *Engine) Settle(top source.Position) {
	e.lastTop = top
}

// Highlight restyles every match on row.
func (e *Engine) Highlight(row ansi.Row) {
	if e.re == nil || e.style == nil || row.Stripped == "" {
		return
	}
	for _, m := range e.re.FindAllStringIndex(row.Stripped, -1) {
		if m[0] == m[1] {
			continue
		}
		from, to := row.CellSpan(m[0], m[1])
		row.Restyle(from, to, e.style)
	}
}
