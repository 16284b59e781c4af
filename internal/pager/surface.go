package pager

import (
	"fmt"
	"os/exec"

	"github.com/TimelordUK/mpage/internal/render"
)

// Surface is the drawing side of the terminal.
type Surface interface {
	// Size returns the visible rows and columns.
	Size() (rows, cols int)
	// DrawRow replaces row y with cells and clears the rest of the line.
	DrawRow(y int, cells []render.Cell)
	// Clear blanks the whole screen and forces the next Show to repaint fully.
	Clear()
	// MoveCursor places the cursor at row y, column x.
	MoveCursor(y, x int)
	// Show flushes pending drawing.
	Show()
}

// EventSource blocks until the next input event.
type EventSource interface {
	NextEvent() (Event, error)
}

// Suspender hands the terminal to a subprocess and takes it back.
type Suspender interface {
	Suspend() error
	Resume() error
}

// Terminal is everything the blocking loop needs.
type Terminal interface {
	Surface
	EventSource
	Suspender
}

// EventKind says what an Event carries.
type EventKind int

const (
	EventKey EventKind = iota
	EventResize
	EventWheelUp
	EventWheelDown
)

// Event is one input event. Key names follow bubbletea's spelling, e.g.
// "j", "ctrl+f", "pgdown", "enter", "esc", " ".
type Event struct {
	Kind EventKind
	Key  string
	Rows int
	Cols int
}

// KeyEvent returns a key press event.
func KeyEvent(name string) Event {
	return Event{Kind: EventKey, Key: name}
}

// ResizeEvent returns a resize notification.
func ResizeEvent(rows, cols int) Event {
	return Event{Kind: EventResize, Rows: rows, Cols: cols}
}

// String returns the key name so events can be matched against key bindings.
func (e Event) String() string {
	switch e.Kind {
	case EventKey:
		return e.Key
	case EventResize:
		return fmt.Sprintf("resize %dx%d", e.Cols, e.Rows)
	case EventWheelUp:
		return "wheel up"
	default:
		return "wheel down"
	}
}

// Outcome tells the frontend what to do after an event was handled.
type Outcome struct {
	Quit bool
	// Exec must be run with the terminal released. The frontend reports
	// completion through Controller.Resumed.
	Exec *exec.Cmd
}
