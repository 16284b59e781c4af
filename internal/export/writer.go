// Package export copies the bytes of an open document to a new file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TimelordUK/mpage/internal/errs"
	"github.com/TimelordUK/mpage/internal/source"
)

// Info describes a completed export
type Info struct {
	SourceName string
	TargetPath string
	Bytes      int64
}

// Exporter writes documents to files. Relative targets are resolved against
// its directory.
type Exporter struct {
	dir string
}

// NewExporter creates an exporter rooted at dir; empty means the working directory
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Resolve expands a leading ~ and makes target absolute
func (e *Exporter) Resolve(target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("no file name")
	}
	if target == "~" || strings.HasPrefix(target, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		target = filepath.Join(home, strings.TrimPrefix(target, "~"))
	}
	if !filepath.IsAbs(target) && e.dir != "" {
		target = filepath.Join(e.dir, target)
	}
	return filepath.Abs(target)
}

// Write copies all of doc to target. An existing target is never overwritten.
func (e *Exporter) Write(doc *source.Document, target string) (*Info, error) {
	path, err := e.Resolve(target)
	if err != nil {
		return nil, errs.E(errs.IO, "write", err)
	}

	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, errs.E(errs.IO, "write "+target, err)
	}

	n, err := doc.Mapped().WriteTo(outFile)
	if cerr := outFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, errs.E(errs.IO, "write "+target, fmt.Errorf("failed after %d bytes: %w", n, err))
	}

	return &Info{
		SourceName: doc.Name(),
		TargetPath: path,
		Bytes:      n,
	}, nil
}
