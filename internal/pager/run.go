package pager

import (
	"os"
	"os/exec"
)

// Run drives the controller from a blocking terminal until the user quits.
func (c *Controller) Run(t Terminal) error {
	rows, cols := t.Size()
	c.Handle(ResizeEvent(rows, cols))
	c.Draw(t)

	for {
		ev, err := t.NextEvent()
		if err != nil {
			return err
		}

		out := c.Handle(ev)
		if out.Exec != nil {
			c.Resumed(RunSuspended(t, out.Exec))
		}
		if out.Quit {
			c.log.Info().Msg("quit")
			return nil
		}
		c.Draw(t)
	}
}

// openTTY opens the controlling terminal for subprocess input.
var openTTY = func() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

// RunSuspended releases the terminal, runs cmd and takes the terminal back.
// Input comes from the controlling terminal, since standard input may be the
// pipe being paged; output goes to the process's standard streams. The
// subprocess error is returned unless reclaiming the terminal failed.
func RunSuspended(t Suspender, cmd *exec.Cmd) error {
	if err := t.Suspend(); err != nil {
		return err
	}
	if cmd.Stdin == nil {
		if tty, err := openTTY(); err == nil {
			defer tty.Close()
			cmd.Stdin = tty
		} else {
			cmd.Stdin = os.Stdin
		}
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	runErr := cmd.Run()
	if err := t.Resume(); err != nil {
		return err
	}
	return runErr
}
