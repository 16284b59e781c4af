package pager

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/render"
	"github.com/TimelordUK/mpage/internal/source"
)

// fakeScreen records what the controller draws.
type fakeScreen struct {
	rows, cols int
	lines      map[int]string
	cursorY    int
	cursorX    int
	clears     int
	shows      int
	events     []Event
	suspends   int
	resumes    int
}

func newFakeScreen(rows, cols int) *fakeScreen {
	return &fakeScreen{rows: rows, cols: cols, lines: map[int]string{}}
}

func (f *fakeScreen) Size() (int, int) { return f.rows, f.cols }

func (f *fakeScreen) DrawRow(y int, cells []render.Cell) {
	var b strings.Builder
	for _, c := range cells {
		b.WriteRune(c.Rune)
		for _, r := range c.Comb {
			b.WriteRune(r)
		}
	}
	f.lines[y] = b.String()
}

func (f *fakeScreen) Clear() {
	f.clears++
	f.lines = map[int]string{}
}

func (f *fakeScreen) MoveCursor(y, x int) { f.cursorY, f.cursorX = y, x }
func (f *fakeScreen) Show()               { f.shows++ }

func (f *fakeScreen) NextEvent() (Event, error) {
	if len(f.events) == 0 {
		return Event{}, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeScreen) Suspend() error { f.suspends++; return nil }
func (f *fakeScreen) Resume() error  { f.resumes++; return nil }

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %03d\n", i)
	}
	return b.String()
}

// lineStart is the offset of 1-based line n in numbered content.
func lineStart(n int) source.Position {
	return source.Position((n - 1) * len("line 001\n"))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newController(t *testing.T, opts Options, paths ...string) *Controller {
	t.Helper()
	for _, p := range paths {
		opts.Sources = append(opts.Sources, source.FileSource(p))
	}
	if opts.Rows == 0 {
		opts.Rows, opts.Cols = 10, 80
	}
	opts.Logger = zerolog.Nop()
	c, err := NewController(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func press(c *Controller, keys ...string) Outcome {
	var out Outcome
	for _, k := range keys {
		out = c.Handle(KeyEvent(k))
	}
	return out
}

func typeLine(c *Controller, s string) Outcome {
	for _, r := range s {
		c.Handle(KeyEvent(string(r)))
	}
	return c.Handle(KeyEvent("enter"))
}

func TestScrollDownThenUpEqualsGotoLine(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))

	scrolled := newController(t, Options{}, path)
	press(scrolled, "1", "0", "j", "5", "k")

	jumped := newController(t, Options{}, path)
	press(jumped, "6", "g")

	assert.Equal(t, jumped.ViewPort().Top, scrolled.ViewPort().Top)
	assert.Equal(t, lineStart(6), scrolled.ViewPort().Top)
	assert.Equal(t, StateIdle, scrolled.State())
}

func TestGotoLineCountsFileLines(t *testing.T) {
	path := writeTemp(t, "doc.txt", "one\n\n\n\n\nsix\n"+numbered(30))
	c := newController(t, Options{Open: source.OpenOptions{Squeeze: true}}, path)

	press(c, "6", "g")
	assert.Equal(t, source.Position(len("one\n\n\n\n\n")), c.ViewPort().Top)

	press(c, "1", "G")
	assert.Equal(t, source.Position(0), c.ViewPort().Top)

	press(c, "5", "0", "0", "g")
	assert.True(t, c.ViewPort().AtEnd())
	assert.Empty(t, c.Status())
}

func TestPageKeysTakeCount(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "3", "f")
	assert.Equal(t, lineStart(4), c.ViewPort().Top)
	press(c, "f")
	assert.Equal(t, lineStart(4+c.ViewPort().Rows), c.ViewPort().Top)
	press(c, "2", "b")
	assert.Equal(t, lineStart(2+c.ViewPort().Rows), c.ViewPort().Top)
}

func TestHelpPage(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)
	screen := newFakeScreen(10, 80)

	press(c, "h")
	require.True(t, c.HelpVisible())
	c.Draw(screen)
	var page strings.Builder
	for y := 0; y < c.ViewPort().Rows; y++ {
		page.WriteString(screen.lines[y])
		page.WriteString("\n")
	}
	assert.Contains(t, page.String(), "page down")
	assert.Contains(t, page.String(), "clear search")
	assert.NotContains(t, page.String(), "line 001")

	press(c, "j")
	assert.False(t, c.HelpVisible())
	assert.Equal(t, source.Position(0), c.ViewPort().Top, "the dismissing key is not a command")
	c.Draw(screen)
	assert.Equal(t, "line 001", screen.lines[0])
}

func TestPagingAndBounds(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)
	rows := c.ViewPort().Rows
	assert.Equal(t, 9, rows)

	press(c, "f")
	assert.Equal(t, lineStart(1+rows), c.ViewPort().Top)

	press(c, "b")
	assert.Equal(t, source.Position(0), c.ViewPort().Top)

	press(c, "k")
	assert.Equal(t, source.Position(0), c.ViewPort().Top)

	press(c, "G")
	assert.Equal(t, lineStart(100-rows+1), c.ViewPort().Top)
	assert.True(t, c.ViewPort().AtEnd())

	press(c, "j")
	assert.Equal(t, lineStart(100-rows+1), c.ViewPort().Top)

	press(c, "5", "0", "%")
	assert.Equal(t, lineStart(51), c.ViewPort().Top)

	press(c, "d")
	assert.Equal(t, lineStart(51+rows/2), c.ViewPort().Top)
}

func TestWheelAndResize(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	c.Handle(Event{Kind: EventWheelDown})
	assert.Equal(t, lineStart(1+WheelLines), c.ViewPort().Top)
	c.Handle(Event{Kind: EventWheelUp})
	assert.Equal(t, source.Position(0), c.ViewPort().Top)

	c.Handle(ResizeEvent(30, 40))
	assert.Equal(t, 29, c.ViewPort().Rows)
	assert.Equal(t, 40, c.ViewPort().Cols)
}

func TestSearchThroughKeys(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "/")
	assert.Equal(t, StateArgument, c.State())
	typeLine(c, "042")

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, lineStart(42), c.ViewPort().Top)
	assert.Empty(t, c.Status())

	press(c, "n")
	assert.Equal(t, "search complete", c.Status())
	assert.Equal(t, lineStart(42), c.ViewPort().Top)
}

func TestClearSearch(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "alt+u")
	assert.Equal(t, "No previous regular expression", c.Status())

	press(c, "/")
	typeLine(c, "042")
	require.Equal(t, lineStart(42), c.ViewPort().Top)

	press(c, "alt+u")
	assert.Equal(t, "Search cleared", c.Status())

	press(c, "n")
	assert.Equal(t, "no previous search pattern", c.Status())
	assert.Equal(t, lineStart(42), c.ViewPort().Top)
}

func TestSearchBackwardAndReverse(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "5", "0", "g", "?")
	typeLine(c, "line 0[12]0")
	assert.Equal(t, lineStart(20), c.ViewPort().Top)

	press(c, "n")
	assert.Equal(t, lineStart(10), c.ViewPort().Top)

	press(c, "N")
	assert.Equal(t, lineStart(20), c.ViewPort().Top)
}

func TestCaseInsensitiveSearch(t *testing.T) {
	content := strings.Replace(numbered(100), "line 030", "line ABC", 1)
	path := writeTemp(t, "doc.txt", content)

	t.Run("from config", func(t *testing.T) {
		c := newController(t, Options{CaseInsensitive: true}, path)
		press(c, "/")
		typeLine(c, "abc")
		assert.Equal(t, lineStart(30), c.ViewPort().Top)
	})

	t.Run("toggled", func(t *testing.T) {
		c := newController(t, Options{}, path)
		press(c, "/")
		typeLine(c, "abc")
		assert.Equal(t, "Pattern not found: abc", c.Status())
		assert.Equal(t, source.Position(0), c.ViewPort().Top)

		press(c, "-", "i")
		assert.Contains(t, c.Status(), "on")
		press(c, "/")
		typeLine(c, "abc")
		assert.Equal(t, lineStart(30), c.ViewPort().Top)
	})
}

func TestInvalidPatternKeepsPosition(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)
	press(c, "2", "0", "g")
	top := c.ViewPort().Top

	press(c, "/")
	typeLine(c, "(")
	assert.NotEmpty(t, c.Status())
	assert.Equal(t, top, c.ViewPort().Top)
	assert.Equal(t, StateIdle, c.State())

	press(c, "j")
	assert.Empty(t, c.Status())
}

func TestArgumentEditing(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "/", "0", "4", "3", "backspace", "2", "enter")
	assert.Equal(t, lineStart(42), c.ViewPort().Top)

	press(c, "/", "x", "esc")
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, lineStart(42), c.ViewPort().Top)

	press(c, "/", "backspace")
	assert.Equal(t, StateIdle, c.State())
}

func TestMarks(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	c := newController(t, Options{}, path)

	press(c, "5", "g", "m", "a")
	press(c, "G")
	bottom := c.ViewPort().Top

	press(c, "'", "a")
	assert.Equal(t, lineStart(5), c.ViewPort().Top)

	press(c, "'", "'")
	assert.Equal(t, bottom, c.ViewPort().Top)

	press(c, "'", "^")
	assert.Equal(t, source.Position(0), c.ViewPort().Top)

	press(c, "'", "z")
	assert.Equal(t, "Mark not set: z", c.Status())
	assert.Equal(t, source.Position(0), c.ViewPort().Top)
}

func TestToggles(t *testing.T) {
	path := writeTemp(t, "doc.txt", "a\n\n\n\nb\n")
	r := render.New(render.Options{Logger: zerolog.Nop()})
	c := newController(t, Options{Renderer: r, ClearOnExit: true, Rows: 2, Cols: 80}, path)

	press(c, "-", "x")
	typeLine(c, "4")
	assert.Equal(t, 4, r.Decoder().TabWidth())

	press(c, "-", "x")
	typeLine(c, "99")
	assert.Equal(t, 4, r.Decoder().TabWidth())
	assert.Contains(t, c.Status(), "between 1 and 32")

	press(c, "-", "c")
	assert.False(t, c.ClearOnExit())

	press(c, "-", "s")
	assert.True(t, c.Session().Doc().Squeeze())
	press(c, "j", "j")
	assert.Equal(t, source.Position(5), c.ViewPort().Top)

	press(c, "-", "m")
	assert.Equal(t, "Prompt style long", c.Status())
}

func TestWriteOut(t *testing.T) {
	content := numbered(20)
	path := writeTemp(t, "doc.txt", content)
	c := newController(t, Options{}, path)
	press(c, "5", "g")
	top := c.ViewPort().Top

	target := filepath.Join(t.TempDir(), "copy.txt")
	press(c, "s")
	typeLine(c, target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Contains(t, c.Status(), "Wrote")

	press(c, "s")
	typeLine(c, target)
	assert.Contains(t, c.Status(), "exists")
	assert.Equal(t, top, c.ViewPort().Top)
}

func TestEditAndShellSuspend(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	env := map[string]string{"EDITOR": "myedit -w", "SHELL": "/bin/zsh"}
	c := newController(t, Options{Getenv: func(k string) string { return env[k] }}, path)
	press(c, "1", "1", "g")

	out := press(c, "v")
	require.NotNil(t, out.Exec)
	assert.Equal(t, []string{"myedit", "-w", "+11", path}, out.Exec.Args)
	assert.Equal(t, StateSuspended, c.State())

	assert.Equal(t, Outcome{}, c.Handle(KeyEvent("q")))

	require.NoError(t, os.WriteFile(path, []byte(numbered(50)), 0o644))
	c.Resumed(nil)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, int64(len(numbered(50))), c.Session().Doc().Size())
	assert.Equal(t, lineStart(11), c.ViewPort().Top)

	press(c, "!")
	out = typeLine(c, "wc -l %")
	require.NotNil(t, out.Exec)
	assert.Equal(t, []string{"/bin/zsh", "-c", "wc -l " + path}, out.Exec.Args)
	c.Resumed(fmt.Errorf("exit status 1"))
	assert.Equal(t, "exit status 1", c.Status())
}

func TestStartCommandRunsOnce(t *testing.T) {
	runs := filepath.Join(t.TempDir(), "runs")
	cmd := "echo x >> " + runs + "; echo hello"
	other := writeTemp(t, "other.txt", "other\n")

	c := newController(t, Options{Sources: []source.Source{{Kind: source.KindCommand, Name: cmd}}}, other)
	countRuns := func() int {
		data, err := os.ReadFile(runs)
		require.NoError(t, err)
		return strings.Count(string(data), "x")
	}
	assert.Equal(t, 1, countRuns())

	c.Resumed(nil)
	assert.Equal(t, 1, countRuns())
	screen := newFakeScreen(10, 80)
	c.Draw(screen)
	assert.Equal(t, "hello", screen.lines[0])

	press(c, "R")
	assert.Equal(t, 1, countRuns())
	assert.Empty(t, c.Status())

	press(c, ":", "n")
	press(c, ":", "p")
	assert.Equal(t, 0, c.Session().Index())
	assert.Equal(t, 1, countRuns())
	assert.Equal(t, int64(len("hello\n")), c.Session().Doc().Size())
}

func TestExpandPercent(t *testing.T) {
	assert.Equal(t, "cat f.txt", expandPercent("cat %", "f.txt"))
	assert.Equal(t, "echo 100%", expandPercent("echo 100%%", "f.txt"))
}

func TestFileList(t *testing.T) {
	first := writeTemp(t, "one.txt", "one\n")
	second := writeTemp(t, "two.txt", "two\n")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	c := newController(t, Options{}, first, missing, second)
	assert.Equal(t, 0, c.Session().Index())

	press(c, ":", "n")
	assert.Equal(t, 2, c.Session().Index())
	assert.Equal(t, second, c.Session().Doc().Name())
	assert.Contains(t, c.Status(), "missing.txt")

	press(c, ":", "n")
	assert.Equal(t, "no next file", c.Status())
	assert.Equal(t, 2, c.Session().Index())

	press(c, ":", "x")
	assert.Equal(t, 0, c.Session().Index())

	press(c, ":", "d")
	assert.Equal(t, 2, c.Session().Count())
	assert.Equal(t, 1, c.Session().Index())
	assert.Equal(t, second, c.Session().Current().Name)

	out := press(c, ":", "q")
	assert.True(t, out.Quit)
}

func TestOpenSkipsUnreadableSources(t *testing.T) {
	good := writeTemp(t, "good.txt", "ok\n")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	c := newController(t, Options{}, missing, good)
	assert.Equal(t, 1, c.Session().Index())
	assert.Contains(t, c.Status(), "missing.txt")

	_, err := NewController(context.Background(), Options{
		Sources: []source.Source{source.FileSource(missing)},
		Logger:  zerolog.Nop(),
	})
	assert.Error(t, err)
}

func TestExamineGlob(t *testing.T) {
	dir := t.TempDir()
	start := writeTemp(t, "start.txt", "start\n")
	for _, name := range []string{"a.log", "b.log", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name+"\n"), 0o644))
	}

	c := newController(t, Options{}, start)
	press(c, "E")
	typeLine(c, filepath.Join(dir, "*.log"))

	assert.Equal(t, 3, c.Session().Count())
	assert.Equal(t, 1, c.Session().Index())
	assert.Equal(t, filepath.Join(dir, "a.log"), c.Session().Doc().Name())

	press(c, ":", "e")
	typeLine(c, filepath.Join(dir, "nothing-*.md"))
	assert.NotEmpty(t, c.Status())
	assert.Equal(t, 1, c.Session().Index())
}

func TestDraw(t *testing.T) {
	path := writeTemp(t, "doc.txt", "first\tx\nsecond\n")
	screen := newFakeScreen(6, 120)
	c := newController(t, Options{Rows: 6, Cols: 120, ShowChyron: true, Prompt: config.PromptMedium}, path)

	c.Draw(screen)
	assert.Equal(t, 1, screen.clears)
	assert.Equal(t, "first   x", screen.lines[0])
	assert.Equal(t, "second", screen.lines[1])
	assert.Equal(t, "~", screen.lines[2])
	assert.Contains(t, screen.lines[4], "quit")
	assert.Equal(t, path+" (END)", screen.lines[5])
	assert.Equal(t, 5, screen.cursorY)

	press(c, "4")
	c.Draw(screen)
	assert.Equal(t, ":4", screen.lines[5])

	press(c, "esc", "/", "s", "e")
	c.Draw(screen)
	assert.Equal(t, "/se", screen.lines[5])
	assert.Equal(t, 3, screen.cursorX)
}

func TestPromptStyles(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	screen := newFakeScreen(10, 120)

	c := newController(t, Options{Rows: 10, Cols: 120, Prompt: config.PromptLong}, path)
	c.Draw(screen)
	assert.Equal(t, fmt.Sprintf("%s lines 1-9/100 byte 81/900 9%%", path), screen.lines[9])

	c = newController(t, Options{Rows: 10, Cols: 120, Prompt: config.PromptShort}, path)
	c.Draw(screen)
	assert.Equal(t, ":", screen.lines[9])
}

func TestRunLoop(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	screen := newFakeScreen(10, 80)
	c := newController(t, Options{}, path)

	screen.events = []Event{KeyEvent("j"), KeyEvent("j"), KeyEvent("q")}
	require.NoError(t, c.Run(screen))
	assert.Equal(t, lineStart(3), c.ViewPort().Top)
	assert.True(t, c.Done())
	assert.Equal(t, "line 003", screen.lines[0])

	screen.events = nil
	assert.ErrorIs(t, c.Run(screen), io.EOF)
}

func TestRunSuspendedReadsFromTerminal(t *testing.T) {
	dir := t.TempDir()
	ttyPath := filepath.Join(dir, "tty")
	require.NoError(t, os.WriteFile(ttyPath, []byte("typed at the terminal\n"), 0o644))

	var opened *os.File
	orig := openTTY
	t.Cleanup(func() { openTTY = orig })
	openTTY = func() (*os.File, error) {
		f, err := os.Open(ttyPath)
		opened = f
		return f, err
	}

	screen := newFakeScreen(10, 80)
	out := filepath.Join(dir, "out")
	cmd := exec.Command("sh", "-c", "cat > "+out)
	require.NoError(t, RunSuspended(screen, cmd))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "typed at the terminal\n", string(got))
	assert.Equal(t, 1, screen.suspends)
	assert.Equal(t, 1, screen.resumes)
	require.NotNil(t, opened)
	_, err = opened.Stat()
	assert.ErrorIs(t, err, os.ErrClosed, "terminal handle is closed after the subprocess")

	openTTY = func() (*os.File, error) { return nil, os.ErrNotExist }
	cmd = exec.Command("true")
	require.NoError(t, RunSuspended(screen, cmd))
	assert.Equal(t, os.Stdin, cmd.Stdin)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "日", truncate("日本", 3))
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, "def", tail("abcdef", 4))
	assert.Equal(t, "ab", tail("ab", 4))
}

func TestKeyMsg(t *testing.T) {
	assert.Equal(t, "x", keyMsg("x").String())
	assert.Equal(t, " ", keyMsg(" ").String())
	assert.Equal(t, "backspace", keyMsg("backspace").String())
	assert.Equal(t, "alt+b", keyMsg("alt+b").String())
	assert.Equal(t, "ctrl+w", keyMsg("ctrl+w").String())
}

func TestCustomKeyMap(t *testing.T) {
	path := writeTemp(t, "doc.txt", numbered(100))
	kb := config.DefaultConfig().Keybindings
	kb.ScrollDown = []string{"x"}
	c := newController(t, Options{KeyMap: NewKeyMap(kb)}, path)

	press(c, "j")
	assert.Equal(t, source.Position(0), c.ViewPort().Top)
	press(c, "x")
	assert.Equal(t, lineStart(2), c.ViewPort().Top)
}
