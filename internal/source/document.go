package source

import (
	"bytes"
	"os"

	mpageio "github.com/TimelordUK/mpage/internal/io"
)

// Document is an immutable mapped byte buffer for one input source.
type Document struct {
	file     *mpageio.MappedFile
	source   Source
	tempPath string
	squeeze  bool
}

// Line is one presented line: the bytes between Start and its terminator with
// carriage returns removed, and Next, the position of the following line.
type Line struct {
	Start   Position
	Next    Position
	Content []byte
}

func newDocument(file *mpageio.MappedFile, src Source, tempPath string) *Document {
	return &Document{
		file:     file,
		source:   src,
		tempPath: tempPath,
	}
}

// Source returns the source the document was opened from
func (d *Document) Source() Source {
	return d.source
}

// Name returns a display name for the document
func (d *Document) Name() string {
	return d.source.String()
}

// IsPipe reports whether the bytes came from a stream that was spooled
func (d *Document) IsPipe() bool {
	return d.tempPath != ""
}

// Size returns the number of bytes in the document
func (d *Document) Size() int64 {
	return d.file.Size()
}

// Squeeze reports whether runs of blank lines are collapsed
func (d *Document) Squeeze() bool {
	return d.squeeze
}

// SetSqueeze toggles collapsing of consecutive blank lines in both scan directions
func (d *Document) SetSqueeze(on bool) {
	d.squeeze = on
}

// Resolve maps the sentinels onto concrete offsets and clamps p into [0, size].
func (d *Document) Resolve(p Position) Position {
	size := Position(d.file.Size())
	switch {
	case p == BeginningOfDocument || p < 0 && p != EndOfDocument:
		return 0
	case p == EndOfDocument || p > size:
		return size
	}
	return p
}

// Line returns the line starting at pos. ok is false when pos is at or past
// the end of the document.
func (d *Document) Line(pos Position) (Line, bool) {
	start := d.Resolve(pos)
	size := Position(d.file.Size())
	if pos.IsEOF() || start >= size {
		return Line{}, false
	}

	end := start
	for end < size && d.file.At(int64(end)) != '\n' {
		end++
	}

	content, err := d.file.ReadRange(int64(start), int64(end))
	if err != nil {
		content = nil
	}
	if bytes.IndexByte(content, '\r') >= 0 {
		content = bytes.ReplaceAll(content, []byte{'\r'}, nil)
	}

	return Line{
		Start:   start,
		Next:    d.NextLineEnd(start),
		Content: content,
	}, true
}

// Bytes copies the byte range [start, end) out of the mapping.
func (d *Document) Bytes(start, end Position) ([]byte, error) {
	return d.file.ReadRange(int64(d.Resolve(start)), int64(d.Resolve(end)))
}

// Mapped exposes the underlying mapping for bulk readers.
func (d *Document) Mapped() *mpageio.MappedFile {
	return d.file
}

// Close unmaps the document and removes any spool file backing it
func (d *Document) Close() error {
	err := d.file.Close()
	if d.tempPath != "" {
		_ = os.Remove(d.tempPath)
	}
	return err
}
