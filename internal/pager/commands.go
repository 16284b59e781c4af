package pager

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/TimelordUK/mpage/internal/index"
	"github.com/TimelordUK/mpage/internal/search"
	"github.com/TimelordUK/mpage/internal/source"
)

func osGetenv(name string) string {
	return os.Getenv(name)
}

// handleKey runs a command in the idle and numeric prefix states.
func (c *Controller) handleKey(ev Event) Outcome {
	if c.showHelp {
		c.takeCount(0)
		c.showHelp = false
		c.needClear = true
		return Outcome{}
	}
	k := ev.Key
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		c.count = c.count*10 + int(k[0]-'0')
		c.hasCount = true
		c.state = StateNumericPrefix
		return Outcome{}
	}
	if c.state == StateNumericPrefix && (k == "esc" || k == "ctrl+c" || k == "backspace") {
		c.takeCount(0)
		return Outcome{}
	}

	doc := c.doc()
	v := c.view

	switch {
	case matches(ev, c.keys.Quit):
		c.takeCount(0)
		return Outcome{Quit: true}

	case matches(ev, c.keys.ScrollDown):
		n, _ := c.takeCount(1)
		v.ScrollDown(doc, n)
	case matches(ev, c.keys.ScrollUp):
		n, _ := c.takeCount(1)
		v.ScrollUp(doc, n)
	case matches(ev, c.keys.PageDown):
		if n, ok := c.takeCount(0); ok {
			v.ScrollDown(doc, n)
		} else {
			v.PageDown(doc)
		}
	case matches(ev, c.keys.PageUp):
		if n, ok := c.takeCount(0); ok {
			v.ScrollUp(doc, n)
		} else {
			v.PageUp(doc)
		}
	case matches(ev, c.keys.HalfPageDown):
		n, _ := c.takeCount(v.HalfPage())
		v.ScrollDown(doc, n)
	case matches(ev, c.keys.HalfPageUp):
		n, _ := c.takeCount(v.HalfPage())
		v.ScrollUp(doc, n)
	case matches(ev, c.keys.ScrollRight):
		n, _ := c.takeCount(c.cols / 2)
		v.ObserveWidth(c.renderer.MaxWidth())
		v.ScrollRight(n)
	case matches(ev, c.keys.ScrollLeft):
		n, _ := c.takeCount(c.cols / 2)
		v.ScrollLeft(n)

	case matches(ev, c.keys.Top):
		n, _ := c.takeCount(1)
		c.remember()
		c.gotoLine(n)
	case matches(ev, c.keys.Bottom):
		n, ok := c.takeCount(0)
		c.remember()
		if ok {
			c.gotoLine(n)
		} else {
			v.GotoBottom(doc)
		}
	case matches(ev, c.keys.Percent):
		n, _ := c.takeCount(0)
		c.remember()
		v.GotoPercent(doc, n)

	case matches(ev, c.keys.SetMark):
		c.takeCount(0)
		c.beginChar(argSetMark)
	case matches(ev, c.keys.GotoMark):
		c.takeCount(0)
		c.beginChar(argGotoMark)

	case matches(ev, c.keys.Search):
		c.takeCount(0)
		c.beginLine(argSearchForward, "/")
	case matches(ev, c.keys.SearchBack):
		c.takeCount(0)
		c.beginLine(argSearchBackward, "?")
	case matches(ev, c.keys.NextMatch):
		n, _ := c.takeCount(1)
		c.repeatSearch(n, false)
	case matches(ev, c.keys.PrevMatch):
		n, _ := c.takeCount(1)
		c.repeatSearch(n, true)

	case matches(ev, c.keys.Examine):
		c.takeCount(0)
		c.beginLine(argExamine, "Examine: ")
	case matches(ev, c.keys.Colon):
		n, ok := c.takeCount(0)
		c.pendingCount, c.pendingHasCount = n, ok
		c.beginChar(argColon)
	case matches(ev, c.keys.Edit):
		c.takeCount(0)
		return c.edit()
	case matches(ev, c.keys.Shell):
		c.takeCount(0)
		c.beginLine(argShell, "!")
	case matches(ev, c.keys.Toggle):
		c.takeCount(0)
		c.beginChar(argToggle)
	case matches(ev, c.keys.Write):
		c.takeCount(0)
		c.beginLine(argWrite, "Write to: ")

	case matches(ev, c.keys.Repaint):
		c.takeCount(0)
		c.needClear = true
	case matches(ev, c.keys.Reload):
		c.takeCount(0)
		c.reload()
	case matches(ev, c.keys.Info):
		c.takeCount(0)
		c.status = c.longPrompt(doc)
	case matches(ev, c.keys.ClearSearch):
		c.takeCount(0)
		c.clearSearch()
	case matches(ev, c.keys.Help):
		c.takeCount(0)
		c.showHelp = true
		c.needClear = true

	default:
		c.takeCount(0)
	}
	return Outcome{}
}

// handleChar consumes the single character argument of m, ', : and -.
func (c *Controller) handleChar(kind argKind, k string) Outcome {
	c.endArgument()
	if k == "esc" || k == "ctrl+c" || utf8.RuneCountInString(k) != 1 {
		return Outcome{}
	}
	r, _ := utf8.DecodeRuneInString(k)

	switch kind {
	case argSetMark:
		if r < 'a' || r > 'z' {
			c.message("Choose a letter between 'a' and 'z'")
			return Outcome{}
		}
		c.session.SetMark(r, c.view.Top)
	case argGotoMark:
		c.gotoMark(r)
	case argColon:
		return c.colon(r)
	case argToggle:
		c.toggle(r)
	}
	return Outcome{}
}

func (c *Controller) gotoMark(r rune) {
	doc := c.doc()
	switch r {
	case '^':
		c.remember()
		c.view.GotoTop()
		return
	case '$':
		c.remember()
		c.view.GotoBottom(doc)
		return
	case '\'':
		if !c.hasPrevious {
			c.message("No previous position")
			return
		}
		c.jumpTo(c.previous)
		return
	}

	m, ok := c.session.Mark(r)
	if !ok {
		c.message("Mark not set: %c", r)
		return
	}
	c.jumpTo(m)
}

// jumpTo moves to a mark, switching files when it belongs to another one.
func (c *Controller) jumpTo(m Mark) {
	here := Mark{File: c.session.Index(), Pos: c.view.Top}
	if m.File != c.session.Index() {
		if err := c.session.Switch(m.File); err != nil {
			c.fail(err)
			return
		}
		c.attach()
	}
	c.previous, c.hasPrevious = here, true
	c.view.GotoPosition(c.doc(), m.Pos)
}

func (c *Controller) colon(r rune) Outcome {
	n, ok := c.pendingCount, c.pendingHasCount
	c.pendingCount, c.pendingHasCount = 0, false
	if !ok {
		n = 1
	}

	switch r {
	case 'e':
		c.beginLine(argExamine, "Examine: ")
	case 'n':
		c.step(n)
	case 'p':
		c.step(-n)
	case 'x':
		target := 0
		if ok {
			target = n - 1
		}
		c.switchTo(target)
	case 'd':
		c.removeCurrent()
		if c.session.Count() == 0 {
			return Outcome{Quit: true}
		}
	case 'q', 'Q':
		return Outcome{Quit: true}
	case 'f':
		c.status = c.longPrompt(c.doc())
	default:
		c.message("Unknown command :%c", r)
	}
	return Outcome{}
}

func (c *Controller) step(n int) {
	failed, err := c.session.Step(n)
	if err != nil {
		c.fail(err)
		return
	}
	c.attach()
	c.reportSkipped(failed)
}

func (c *Controller) switchTo(i int) {
	if err := c.session.Switch(i); err != nil {
		c.fail(err)
		return
	}
	c.attach()
}

func (c *Controller) removeCurrent() {
	if err := c.session.Remove(); err != nil {
		c.fail(err)
		return
	}
	if c.session.Count() > 0 {
		c.attach()
	}
}

func (c *Controller) toggle(r rune) {
	switch r {
	case 's':
		on := !c.doc().Squeeze()
		c.session.SetSqueeze(on)
		c.view.GotoPosition(c.doc(), c.view.Top)
		c.message("Squeeze blank lines %s", onOff(on))
	case 'i':
		on := !c.search.CaseInsensitive()
		if err := c.search.SetCaseInsensitive(on); err != nil {
			c.fail(err)
			return
		}
		c.message("Ignore case in searches %s", onOff(on))
	case 'c':
		c.clearOnExit = !c.clearOnExit
		c.message("Clear screen on exit %s", onOff(c.clearOnExit))
	case 'm':
		switch c.prompt {
		case config.PromptShort:
			c.prompt = config.PromptMedium
		case config.PromptMedium:
			c.prompt = config.PromptLong
		default:
			c.prompt = config.PromptShort
		}
		c.message("Prompt style %s", c.prompt)
	case 'x':
		c.beginLine(argTabWidth, "Tab stops: ")
	default:
		c.message("No option -%c", r)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (c *Controller) setTabWidth(value string) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 32 {
		c.message("Tab stops must be between 1 and 32")
		return
	}
	c.renderer.Decoder().SetTabWidth(n)
	c.message("Tab stops %d", n)
}

// gotoLine puts 1-based file line n on top, or shows the last page when the
// document is shorter. Squeezed blank lines still count.
func (c *Controller) gotoLine(n int) {
	doc := c.doc()
	off, ok, err := index.LineOffset(doc.Mapped(), n)
	if err != nil {
		c.fail(errs.E(errs.IO, "goto line", err))
		return
	}
	if !ok {
		c.view.GotoBottom(doc)
		return
	}
	c.view.GotoPosition(doc, source.Position(off))
}

func (c *Controller) startSearch(dir search.Direction, pattern string) {
	res, err := c.search.Search(c.lines(), c.page(), dir, pattern)
	if err != nil {
		c.fail(err)
		return
	}
	c.log.Debug().
		Str("pattern", c.search.Pattern()).
		Stringer("direction", c.search.Direction()).
		Bool("found", res.Found).
		Msg("search")
	c.showMatch(res)
}

// clearSearch drops the pattern so matches are no longer highlighted.
func (c *Controller) clearSearch() {
	if !c.search.Active() {
		c.message("No previous regular expression")
		return
	}
	c.search.Clear()
	c.message("Search cleared")
}

func (c *Controller) repeatSearch(n int, reverse bool) {
	if n < 1 {
		n = 1
	}
	if !c.search.Active() {
		c.fail(search.ErrNoPattern)
		return
	}
	for i := 0; i < n; i++ {
		res, err := c.search.Repeat(c.lines(), c.page(), reverse)
		if err != nil {
			c.fail(err)
			return
		}
		c.showMatch(res)
		if !res.Found {
			return
		}
		c.layout()
	}
}

// showMatch puts a matching line at the top of the page; the page is filled
// from there.
func (c *Controller) showMatch(res search.Result) {
	if !res.Found {
		c.message("%s", res.Status)
		return
	}
	c.remember()
	c.view.GotoPosition(c.doc(), res.Line)
	c.search.Settle(c.view.Top)
	if res.Status != "" {
		c.message("%s", res.Status)
	}
}

func (c *Controller) examine(pattern string) {
	failed, err := c.session.Examine(strings.TrimSpace(pattern))
	if err != nil {
		if len(failed) > 0 {
			err = failed[0]
		}
		c.fail(err)
		return
	}
	c.attach()
	c.reportSkipped(failed)
}

func (c *Controller) writeOut(target string) {
	info, err := c.exporter.Write(c.doc(), target)
	if err != nil {
		c.fail(err)
		return
	}
	c.log.Info().
		Str("source", info.SourceName).
		Str("target", info.TargetPath).
		Int64("bytes", info.Bytes).
		Msg("document written")
	c.message("Wrote %d bytes to %s", info.Bytes, info.TargetPath)
}

func (c *Controller) reload() {
	top := c.view.Top
	if err := c.session.Reload(); err != nil {
		c.fail(err)
		return
	}
	c.renderer.SetDocument(c.doc())
	c.search.Forget()
	c.view.GotoPosition(c.doc(), top)
	c.needClear = true
}

// edit runs the user's editor on the current file, opened at the top line.
func (c *Controller) edit() Outcome {
	src := c.session.Current()
	if src.Kind != source.KindFile && src.Kind != source.KindMarkdown {
		c.message("Cannot edit %s", src)
		return Outcome{}
	}

	editor := c.getenv("VISUAL")
	if editor == "" {
		editor = c.getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}
	argv := strings.Fields(editor)
	if line, err := index.LineNumber(c.doc().Mapped(), int64(c.doc().Resolve(c.view.Top))); err == nil {
		argv = append(argv, "+"+strconv.Itoa(line))
	}
	argv = append(argv, src.Name)
	return Outcome{Exec: exec.CommandContext(c.ctx, argv[0], argv[1:]...)}
}

// shell runs line with the user's shell; an empty line starts an
// interactive shell. A % is replaced by the current file name.
func (c *Controller) shell(line string) Outcome {
	sh := c.getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Outcome{Exec: exec.CommandContext(c.ctx, sh)}
	}
	if src := c.session.Current(); src.Kind == source.KindFile || src.Kind == source.KindMarkdown {
		line = expandPercent(line, src.Name)
	}
	return Outcome{Exec: exec.CommandContext(c.ctx, sh, "-c", line)}
}

// expandPercent replaces each unescaped % with name; %% stays a single %.
func expandPercent(line, name string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			b.WriteByte(line[i])
			continue
		}
		if i+1 < len(line) && line[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		b.WriteString(name)
	}
	return b.String()
}
