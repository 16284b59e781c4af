package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openString(t *testing.T, content string, squeeze bool) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	doc, err := Open(context.Background(), FileSource(path), OpenOptions{Squeeze: squeeze})
	require.NoError(t, err)
	t.Cleanup(func() { _ = doc.Close() })
	return doc
}

// lineStartOf is the reference answer: the offset after the last '\n' before p.
func lineStartOf(content string, p int) Position {
	return Position(strings.LastIndexByte(content[:p], '\n') + 1)
}

func TestNextLineEnd(t *testing.T) {
	doc := openString(t, "ab\r\ncd\nef", false)

	assert.Equal(t, Position(4), doc.NextLineEnd(0))
	assert.Equal(t, Position(4), doc.NextLineEnd(2))
	assert.Equal(t, Position(7), doc.NextLineEnd(4))
	assert.Equal(t, EndOfDocument, doc.NextLineEnd(7))
	assert.Equal(t, EndOfDocument, doc.NextLineEnd(EndOfDocument))
	assert.Equal(t, Position(4), doc.NextLineEnd(BeginningOfDocument))
}

func TestNextLineEndTrailingNewline(t *testing.T) {
	doc := openString(t, "one\ntwo\n", false)
	assert.Equal(t, Position(4), doc.NextLineEnd(0))
	assert.Equal(t, EndOfDocument, doc.NextLineEnd(4))
}

func TestPrevLineStart(t *testing.T) {
	doc := openString(t, "ab\ncd\nef", false)

	assert.Equal(t, BeginningOfDocument, doc.PrevLineStart(0))
	assert.Equal(t, BeginningOfDocument, doc.PrevLineStart(BeginningOfDocument))
	assert.Equal(t, Position(0), doc.PrevLineStart(1))
	assert.Equal(t, Position(0), doc.PrevLineStart(3))
	assert.Equal(t, Position(3), doc.PrevLineStart(6))
	assert.Equal(t, Position(6), doc.PrevLineStart(EndOfDocument))
}

func TestRoundTripLineBoundaries(t *testing.T) {
	contents := []string{
		"alpha\nbeta\ngamma\n",
		"x\n\n\ny\nzz\n",
		"\r\nwindows\r\nline\r\n",
		"no trailing newline\nlast",
	}

	for _, content := range contents {
		doc := openString(t, content, false)
		for p := 0; p < len(content); p++ {
			next := doc.NextLineEnd(Position(p))
			if next.IsEOF() && !strings.HasSuffix(content, "\n") {
				// the final unterminated line has no terminator to back over
				continue
			}
			got := doc.PrevLineStart(next)
			assert.Equal(t, lineStartOf(content, p), got, "content %q pos %d", content, p)
		}
	}
}

func TestLineContent(t *testing.T) {
	doc := openString(t, "first\r\nsec\rond\nlast", false)

	line, ok := doc.Line(0)
	require.True(t, ok)
	assert.Equal(t, "first", string(line.Content))
	assert.Equal(t, Position(7), line.Next)

	line, ok = doc.Line(line.Next)
	require.True(t, ok)
	assert.Equal(t, "second", string(line.Content))

	line, ok = doc.Line(line.Next)
	require.True(t, ok)
	assert.Equal(t, "last", string(line.Content))
	assert.True(t, line.Next.IsEOF())

	_, ok = doc.Line(EndOfDocument)
	assert.False(t, ok)
}

func TestSqueeze(t *testing.T) {
	content := "a\n\n\n\nb\n\n\nc\n"
	doc := openString(t, content, true)

	var forward []string
	for pos := Position(0); !pos.IsEOF(); {
		line, ok := doc.Line(pos)
		require.True(t, ok)
		forward = append(forward, string(line.Content))
		pos = line.Next
	}
	assert.Equal(t, []string{"a", "", "b", "", "c"}, forward)

	var backward []string
	for pos := EndOfDocument; ; {
		pos = doc.PrevLineStart(pos)
		if pos.IsBOF() {
			break
		}
		line, _ := doc.Line(pos)
		backward = append(backward, string(line.Content))
	}
	assert.Equal(t, []string{"c", "", "b", "", "a"}, backward)

	doc.SetSqueeze(false)
	assert.Equal(t, Position(3), doc.NextLineEnd(2))
}

func TestLineStart(t *testing.T) {
	doc := openString(t, "ab\ncd\nef\n", false)
	assert.Equal(t, Position(0), doc.LineStart(0))
	assert.Equal(t, Position(0), doc.LineStart(2))
	assert.Equal(t, Position(3), doc.LineStart(4))
	assert.Equal(t, Position(6), doc.LineStart(EndOfDocument))
}

func TestResolve(t *testing.T) {
	doc := openString(t, "12345", false)
	assert.Equal(t, Position(0), doc.Resolve(BeginningOfDocument))
	assert.Equal(t, Position(5), doc.Resolve(EndOfDocument))
	assert.Equal(t, Position(5), doc.Resolve(99))
	assert.Equal(t, Position(3), doc.Resolve(3))
}

func TestPositionString(t *testing.T) {
	assert.Equal(t, "BOF", BeginningOfDocument.String())
	assert.Equal(t, "EOF", EndOfDocument.String())
	assert.Equal(t, "42", Position(42).String())
}
