// Package pager drives a document session from input events: it owns the
// viewport, the search engine, marks and the file list, and paints the page,
// status line and chyron onto a Surface.
package pager

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/TimelordUK/mpage/internal/export"
	"github.com/TimelordUK/mpage/internal/render"
	"github.com/TimelordUK/mpage/internal/search"
	"github.com/TimelordUK/mpage/internal/source"
	"github.com/TimelordUK/mpage/internal/view"
)

// State is the input mode of the controller.
type State int

const (
	StateIdle State = iota
	StateNumericPrefix
	StateArgument
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateNumericPrefix:
		return "prefix"
	case StateArgument:
		return "argument"
	case StateSuspended:
		return "suspended"
	default:
		return "idle"
	}
}

// WheelLines is how far one mouse wheel notch scrolls.
const WheelLines = 3

// Options configures a Controller.
type Options struct {
	Sources []source.Source
	Open    source.OpenOptions

	Renderer *render.LineRenderer
	KeyMap   KeyMap
	Exporter *export.Exporter

	// Rows and Cols are the initial screen size; a resize event replaces them.
	Rows int
	Cols int

	Prompt          string
	CaseInsensitive bool
	ClearOnExit     bool
	ShowChyron      bool

	// Getenv looks up EDITOR, VISUAL and SHELL. Nil means os.Getenv.
	Getenv func(string) string
	Logger zerolog.Logger
}

// Controller is the pager state machine. It is not safe for concurrent use;
// frontends feed it events from a single goroutine.
type Controller struct {
	ctx      context.Context
	log      zerolog.Logger
	keys     KeyMap
	session  *Session
	renderer *render.LineRenderer
	view     *view.ViewPort
	search   *search.Engine
	exporter *export.Exporter
	help     help.Model
	getenv   func(string) string

	rows, cols int

	state    State
	count    int
	hasCount bool
	arg      argKind
	input    textinput.Model

	// pendingCount carries a prefix across the ':' argument.
	pendingCount    int
	pendingHasCount bool

	status      string
	prompt      string
	clearOnExit bool
	showChyron  bool
	showHelp    bool
	quit        bool
	needClear   bool

	// previous is the position the last jump left from, for the '' mark.
	previous    Mark
	hasPrevious bool

	statusStyle ansi.Style
}

// NewController opens the first usable source and prepares the first page.
func NewController(ctx context.Context, opts Options) (*Controller, error) {
	if len(opts.Sources) == 0 {
		return nil, errs.E(errs.IO, "open", errors.New("no input"))
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = render.New(render.Options{Logger: opts.Logger})
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.NewExporter("")
	}
	keys := opts.KeyMap
	if !keys.Quit.Enabled() {
		keys = DefaultKeyMap()
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = osGetenv
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = config.PromptMedium
	}

	palette := renderer.Resolver().Palette
	searchFg := rgbColor(palette.SearchFg)
	searchBg := rgbColor(palette.SearchBg)
	engine := search.New(func(st ansi.Style) ansi.Style {
		st.Fg = searchFg
		st.Bg = searchBg
		return st
	}, opts.Logger)
	if err := engine.SetCaseInsensitive(opts.CaseInsensitive); err != nil {
		return nil, err
	}

	h := help.New()
	h.Styles = help.Styles{}

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 1024

	c := &Controller{
		ctx:         ctx,
		log:         opts.Logger.With().Str("component", "pager").Logger(),
		keys:        keys,
		session:     NewSession(ctx, opts.Sources, opts.Open, opts.Logger),
		renderer:    renderer,
		search:      engine,
		exporter:    exporter,
		help:        h,
		getenv:      getenv,
		input:       input,
		prompt:      prompt,
		clearOnExit: opts.ClearOnExit,
		showChyron:  opts.ShowChyron,
		needClear:   true,
		statusStyle: ansi.Style{
			Fg: rgbColor(palette.StatusFg),
			Bg: rgbColor(palette.StatusBg),
		},
	}
	c.view = view.New(1, 1)
	c.resize(opts.Rows, opts.Cols)

	failed, err := c.session.OpenFirst()
	if err != nil {
		if len(failed) > 0 {
			return nil, errs.E(errs.IO, "open", errors.Join(failed...))
		}
		return nil, errs.E(errs.IO, "open", err)
	}
	c.reportSkipped(failed)
	c.attach()
	return c, nil
}

func rgbColor(rgb color.RGB) color.Color {
	return color.FromRGB(rgb.R, rgb.G, rgb.B)
}

// State returns the current input mode.
func (c *Controller) State() State {
	return c.state
}

// ViewPort exposes the page geometry and positions.
func (c *Controller) ViewPort() *view.ViewPort {
	return c.view
}

// Session exposes the file list and marks.
func (c *Controller) Session() *Session {
	return c.session
}

// Status returns the transient status message, if any.
func (c *Controller) Status() string {
	return c.status
}

// ClearOnExit reports whether the screen should be cleared when quitting.
func (c *Controller) ClearOnExit() bool {
	return c.clearOnExit
}

// HelpVisible reports whether the help page covers the document.
func (c *Controller) HelpVisible() bool {
	return c.showHelp
}

// Done reports whether the user quit.
func (c *Controller) Done() bool {
	return c.quit
}

// Close releases all documents.
func (c *Controller) Close() error {
	return c.session.Close()
}

// Handle processes one event. The returned Outcome asks the frontend to quit
// or to run a subprocess with the terminal released.
func (c *Controller) Handle(ev Event) Outcome {
	if c.state == StateSuspended {
		return Outcome{}
	}

	switch ev.Kind {
	case EventResize:
		c.resize(ev.Rows, ev.Cols)
		c.view.GotoPosition(c.doc(), c.view.Top)
		c.needClear = true
		c.layout()
		return Outcome{}
	case EventWheelUp, EventWheelDown:
		if c.state != StateIdle {
			return Outcome{}
		}
		if ev.Kind == EventWheelUp {
			c.view.ScrollUp(c.doc(), WheelLines)
		} else {
			c.view.ScrollDown(c.doc(), WheelLines)
		}
		c.layout()
		return Outcome{}
	}

	c.status = ""
	var out Outcome
	switch c.state {
	case StateArgument:
		out = c.handleArgument(ev)
	default:
		out = c.handleKey(ev)
	}
	if out.Exec != nil {
		c.state = StateSuspended
		c.log.Info().Str("command", out.Exec.String()).Msg("running subprocess")
	}
	if out.Quit {
		c.quit = true
	}
	c.layout()
	return out
}

// Resumed is called by the frontend once the subprocess of an Exec outcome
// has finished and the terminal is back in raw mode. The document is read
// again since the subprocess may have changed it.
func (c *Controller) Resumed(runErr error) {
	c.state = StateIdle
	c.renderer.ResetPairs()
	c.needClear = true

	if runErr != nil {
		c.log.Warn().Err(runErr).Msg("subprocess failed")
		c.status = runErr.Error()
	} else {
		c.log.Info().Msg("subprocess finished")
	}

	top := c.view.Top
	if err := c.session.Reload(); err != nil {
		c.fail(err)
	} else {
		c.renderer.SetDocument(c.doc())
		c.search.Forget()
	}
	c.view.GotoPosition(c.doc(), top)
	c.layout()
}

func (c *Controller) doc() *source.Document {
	return c.session.Doc()
}

func (c *Controller) lines() docLines {
	return docLines{LineRenderer: c.renderer, Document: c.doc()}
}

// docLines joins rendered line text and document scanning for the search
// engine.
type docLines struct {
	*render.LineRenderer
	*source.Document
}

func (c *Controller) page() search.Page {
	return search.Page{Top: c.view.Top, Bottom: c.view.Bottom}
}

// resize splits the screen into text rows, the optional chyron and the
// status line.
func (c *Controller) resize(rows, cols int) {
	if rows < 1 {
		rows = 24
	}
	if cols < 1 {
		cols = 80
	}
	c.rows, c.cols = rows, cols
	c.help.Width = cols
	c.input.Width = cols
	c.view.SetSize(c.textRows(), cols)
}

func (c *Controller) textRows() int {
	n := c.rows - 1
	if c.chyronVisible() {
		n--
	}
	return n
}

func (c *Controller) chyronVisible() bool {
	return c.showChyron && c.rows >= 4
}

// attach points the renderer at the current document and starts at its top.
func (c *Controller) attach() {
	c.renderer.SetDocument(c.doc())
	c.view.Reset()
	c.search.Forget()
	c.needClear = true
	c.layout()
}

// layout recomputes the bottom of the page from its top.
func (c *Controller) layout() {
	doc := c.doc()
	if doc == nil {
		return
	}
	pos := c.view.Top
	for i := 0; i < c.view.Rows && !pos.IsEOF(); i++ {
		pos = doc.NextLineEnd(pos)
	}
	c.view.Bottom = pos
}

// message sets the transient status line.
func (c *Controller) message(format string, args ...any) {
	c.status = fmt.Sprintf(format, args...)
}

// fail reports err on the status line. Document and position are untouched.
func (c *Controller) fail(err error) {
	kind := errs.KindOf(err)
	c.log.Warn().Err(err).Str("kind", kind.String()).Msg("command failed")
	c.status = err.Error()
	c.state = StateIdle
}

func (c *Controller) reportSkipped(failed []error) {
	if len(failed) == 0 {
		return
	}
	c.fail(failed[0])
}

// remember records the current position for the '' mark before a jump.
func (c *Controller) remember() {
	c.previous = Mark{File: c.session.Index(), Pos: c.view.Top}
	c.hasPrevious = true
}

// takeCount returns the numeric prefix, or def when none was typed, and
// resets the prefix.
func (c *Controller) takeCount(def int) (int, bool) {
	n, ok := c.count, c.hasCount
	c.count, c.hasCount = 0, false
	if c.state == StateNumericPrefix {
		c.state = StateIdle
	}
	if !ok {
		return def, false
	}
	return n, true
}

func matches(ev Event, b key.Binding) bool {
	return key.Matches(ev, b)
}
