package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/TimelordUK/mpage/internal/errs"
)

const defaultMarkdownWidth = 100

// IsMarkdown reports whether path looks like a markdown document
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".mkd":
		return true
	}
	return false
}

// RenderMarkdown renders the file at path to ANSI-styled text. The output is
// paged like any other pre-colored input.
func RenderMarkdown(path string, width int) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.E(errs.IO, "read "+path, err)
	}
	if len(data) == 0 {
		return "", errs.E(errs.IO, "read "+path, errs.ErrEmptyInput)
	}
	if width <= 0 {
		width = defaultMarkdownWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(string(data))
	if err != nil {
		return "", errs.E(errs.IO, "render "+path, err)
	}
	return out, nil
}
