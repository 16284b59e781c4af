package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/TimelordUK/mpage/internal/errs"
	mpageio "github.com/TimelordUK/mpage/internal/io"
)

// Kind selects how a Source is turned into mapped bytes.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindCommand
	KindMarkdown
)

// Source identifies one input: a file path, standard input, a start command
// whose output is paged, or a markdown file rendered before paging.
type Source struct {
	Kind Kind
	// Name is the path for files and markdown, the shell command for commands.
	Name string
	// Reader supplies the bytes for KindStdin.
	Reader io.Reader
}

// FileSource returns a source for path, treating "-" as standard input.
func FileSource(path string) Source {
	if path == "-" {
		return Source{Kind: KindStdin, Name: "-", Reader: os.Stdin}
	}
	return Source{Kind: KindFile, Name: path}
}

func (s Source) String() string {
	switch s.Kind {
	case KindStdin:
		return "(standard input)"
	case KindCommand:
		return "!" + s.Name
	default:
		return s.Name
	}
}

// Reopenable reports whether the source can be read again after a subprocess
// may have changed it.
func (s Source) Reopenable() bool {
	return s.Kind == KindFile || s.Kind == KindMarkdown
}

// OpenOptions controls document creation.
type OpenOptions struct {
	// TempDir receives spool files. Empty means os.TempDir().
	TempDir string
	// Squeeze collapses runs of blank lines.
	Squeeze bool
	// MarkdownWidth is the wrap width used when rendering markdown sources.
	MarkdownWidth int
}

// Open maps src into a Document. Regular files are mapped in place; pipes,
// character devices, commands and rendered markdown are spooled first.
func Open(ctx context.Context, src Source, opts OpenOptions) (*Document, error) {
	path, temp, err := materialize(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	file, err := mpageio.OpenMapped(path)
	if err != nil {
		if temp {
			_ = os.Remove(path)
		}
		return nil, fmt.Errorf("%s: %w", src, err)
	}

	tempPath := ""
	if temp {
		tempPath = path
	}
	doc := newDocument(file, src, tempPath)
	doc.SetSqueeze(opts.Squeeze)
	return doc, nil
}

func materialize(ctx context.Context, src Source, opts OpenOptions) (string, bool, error) {
	switch src.Kind {
	case KindStdin:
		r := src.Reader
		if r == nil {
			r = os.Stdin
		}
		path, err := mpageio.Spool(r, opts.TempDir)
		return path, true, err

	case KindCommand:
		if strings.TrimSpace(src.Name) == "" {
			return "", false, errs.E(errs.IO, "run command", fmt.Errorf("empty command"))
		}
		path, err := mpageio.SpoolCommand(ctx, src.Name, opts.TempDir)
		return path, true, err

	case KindMarkdown:
		rendered, err := RenderMarkdown(src.Name, opts.MarkdownWidth)
		if err != nil {
			return "", false, err
		}
		path, err := mpageio.Spool(strings.NewReader(rendered), opts.TempDir)
		return path, true, err

	default:
		info, err := os.Stat(src.Name)
		if err != nil {
			return "", false, errs.E(errs.IO, "stat "+src.Name, err)
		}
		if info.Mode().IsRegular() {
			return filepath.Clean(src.Name), false, nil
		}
		if info.IsDir() {
			return "", false, errs.E(errs.IO, "open "+src.Name, fmt.Errorf("is a directory"))
		}
		f, err := os.Open(src.Name)
		if err != nil {
			return "", false, errs.E(errs.IO, "open "+src.Name, err)
		}
		defer f.Close()
		path, err := mpageio.Spool(f, opts.TempDir)
		return path, true, err
	}
}
