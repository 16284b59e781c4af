package io

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/pkg/errors"

	"github.com/TimelordUK/mpage/internal/errs"
)

const spoolPattern = "mpage-spool-*"

// Spool copies a non-seekable stream into a temporary file so it can be
// mapped. The caller owns the returned path and must remove it.
func Spool(r io.Reader, dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, spoolPattern)
	if err != nil {
		return "", errs.E(errs.IO, "spool", errors.WithStack(err))
	}
	path := f.Name()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errs.E(errs.IO, "spool", errors.Wrap(err, "copy input"))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", errs.E(errs.IO, "spool", errors.WithStack(err))
	}
	return path, nil
}

// SpoolCommand runs command through the shell and spools its standard output.
// A non-zero exit is not an error as long as some output was produced.
func SpoolCommand(ctx context.Context, command, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = nil
	cmd.Stderr = io.Discard

	out, err := cmd.StdoutPipe()
	if err != nil {
		return "", errs.E(errs.IO, "start command", errors.WithStack(err))
	}
	if err := cmd.Start(); err != nil {
		return "", errs.E(errs.IO, "start command", errors.Wrap(err, command))
	}

	path, spoolErr := Spool(out, dir)
	waitErr := cmd.Wait()
	if spoolErr != nil {
		return "", spoolErr
	}
	if waitErr != nil {
		info, statErr := os.Stat(path)
		if statErr != nil || info.Size() == 0 {
			_ = os.Remove(path)
			return "", errs.E(errs.IO, "run command", errors.Wrap(waitErr, command))
		}
	}
	return path, nil
}
