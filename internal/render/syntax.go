package render

import (
	"bytes"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"

	"github.com/TimelordUK/mpage/internal/color"
)

// SyntaxHighlighter colors source lines with chroma. The output is fed back
// through the ANSI decoder like any other pre-colored text.
type SyntaxHighlighter struct {
	lexerName   string
	formatter   string
	syntaxTheme string
}

// NewSyntaxHighlighter returns a highlighter for filename, or nil when chroma
// has no lexer for it.
func NewSyntaxHighlighter(filename string, depth color.Depth) *SyntaxHighlighter {
	lexer := lexers.Match(filename)
	if lexer == nil {
		return nil
	}

	formatter := "terminal256"
	switch depth {
	case color.DepthTrueColor:
		formatter = "terminal16m"
	case color.Depth16:
		formatter = "terminal16"
	}

	return &SyntaxHighlighter{
		lexerName:   lexer.Config().Name,
		formatter:   formatter,
		syntaxTheme: "monokai",
	}
}

// Lexer returns the chroma lexer name in use.
func (h *SyntaxHighlighter) Lexer() string {
	return h.lexerName
}

// Highlight returns content with SGR sequences added. On failure the content
// is returned unchanged.
func (h *SyntaxHighlighter) Highlight(content []byte) []byte {
	if len(content) == 0 {
		return content
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(content), h.lexerName, h.formatter, h.syntaxTheme); err != nil {
		return content
	}

	// chroma terminates the last token with a newline
	out := bytes.ReplaceAll(buf.Bytes(), []byte{'\n'}, nil)
	return bytes.ReplaceAll(out, []byte{'\r'}, nil)
}
