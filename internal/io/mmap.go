package io

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"

	"github.com/TimelordUK/mpage/internal/errs"
)

// MappedFile provides read-only memory-mapped access to a file
type MappedFile struct {
	reader *mmap.ReaderAt
	size   int64
	path   string
}

// OpenMapped maps a regular file read-only. Empty files are rejected because
// there is nothing to page.
func OpenMapped(path string) (*MappedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errs.E(errs.IO, "stat "+path, errors.WithStack(err))
	}
	if info.IsDir() {
		return nil, errs.E(errs.IO, "open "+path, errors.New("is a directory"))
	}
	if info.Size() == 0 {
		return nil, errs.E(errs.IO, "open "+path, errs.ErrEmptyInput)
	}

	reader, err := mmap.Open(path)
	if err != nil {
		return nil, errs.E(errs.IO, "map "+path, errors.Wrap(err, "mmap"))
	}

	return &MappedFile{
		reader: reader,
		size:   int64(reader.Len()),
		path:   path,
	}, nil
}

// At returns the byte at offset i without copying
func (m *MappedFile) At(i int64) byte {
	return m.reader.At(int(i))
}

// ReadAt reads len(p) bytes at offset
func (m *MappedFile) ReadAt(p []byte, off int64) (int, error) {
	return m.reader.ReadAt(p, off)
}

// Size returns the file size
func (m *MappedFile) Size() int64 {
	return m.size
}

// Path returns the file path
func (m *MappedFile) Path() string {
	return m.path
}

// Close closes the memory mapping
func (m *MappedFile) Close() error {
	return m.reader.Close()
}

// ReadRange reads bytes from start to end
func (m *MappedFile) ReadRange(start, end int64) ([]byte, error) {
	if end > m.size {
		end = m.size
	}
	if start >= end {
		return nil, nil
	}

	buf := make([]byte, end-start)
	_, err := m.reader.ReadAt(buf, start)
	if err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "read %d-%d", start, end)
	}
	return buf, nil
}

// WriteTo copies the whole mapping to w
func (m *MappedFile) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, io.NewSectionReader(m.reader, 0, m.size))
}
