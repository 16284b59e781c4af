// Package ui runs the pager inside a bubbletea program. The controller draws
// on an in-memory Frame which View renders with lipgloss.
package ui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/pager"
)

// execDoneMsg reports that a subprocess started with tea.ExecProcess ended.
type execDoneMsg struct {
	err error
}

// Model is the main application model
type Model struct {
	ctrl  *pager.Controller
	frame *Frame
	log   zerolog.Logger

	altScreen bool
	quitting  bool
}

// NewModel creates a model over ctrl. pairs must be the table the
// controller's renderer registers colors in.
func NewModel(ctrl *pager.Controller, pairs *color.PairTable, r *lipgloss.Renderer, log zerolog.Logger) *Model {
	rows, cols := initialSize()
	m := &Model{
		ctrl:      ctrl,
		frame:     NewFrame(rows, cols, pairs, r),
		log:       log.With().Str("component", "ui").Logger(),
		altScreen: ctrl.ClearOnExit(),
	}
	m.resize(rows, cols)
	return m
}

// initialSize asks the terminal for its size so the first frame is right
// before bubbletea delivers a WindowSizeMsg.
func initialSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return h, w
	}
	return 24, 80
}

// ProgramOptions returns the bubbletea options the model expects.
func (m *Model) ProgramOptions() []tea.ProgramOption {
	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if m.altScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return opts
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Height, msg.Width)
		return m, nil

	case tea.KeyMsg:
		if msg.Paste {
			var cmd tea.Cmd
			for _, r := range msg.Runes {
				if cmd = m.handle(pager.KeyEvent(string(r))); cmd != nil {
					break
				}
			}
			return m, cmd
		}
		return m, m.handle(pager.KeyEvent(msg.String()))

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m, m.handle(pager.Event{Kind: pager.EventWheelUp})
		case tea.MouseButtonWheelDown:
			return m, m.handle(pager.Event{Kind: pager.EventWheelDown})
		}
		return m, nil

	case execDoneMsg:
		m.ctrl.Resumed(msg.err)
		m.ctrl.Draw(m.frame)
		return m, nil
	}

	return m, nil
}

func (m *Model) resize(rows, cols int) {
	m.frame.Resize(rows, cols)
	m.ctrl.Handle(pager.ResizeEvent(rows, cols))
	m.ctrl.Draw(m.frame)
}

// handle passes ev to the controller and turns its outcome into a command.
func (m *Model) handle(ev pager.Event) tea.Cmd {
	out := m.ctrl.Handle(ev)
	switch {
	case out.Quit:
		m.quitting = true
		if m.altScreen && !m.ctrl.ClearOnExit() {
			return tea.Sequence(tea.ExitAltScreen, tea.Quit)
		}
		return tea.Quit
	case out.Exec != nil:
		m.log.Debug().Str("command", out.Exec.String()).Msg("releasing terminal")
		return tea.ExecProcess(out.Exec, func(err error) tea.Msg {
			return execDoneMsg{err: err}
		})
	}
	m.ctrl.Draw(m.frame)
	return nil
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting && m.ctrl.ClearOnExit() {
		return ""
	}
	return m.frame.Render()
}

// Frame exposes the drawn screen.
func (m *Model) Frame() *Frame {
	return m.frame
}

// Run pages with bubbletea until the user quits.
func Run(ctrl *pager.Controller, pairs *color.PairTable, log zerolog.Logger) error {
	m := NewModel(ctrl, pairs, nil, log)
	p := tea.NewProgram(m, m.ProgramOptions()...)
	_, err := p.Run()
	return err
}
