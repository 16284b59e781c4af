// Package index answers line-number questions by scanning the mapping in
// chunks on demand. Nothing is cached: every call is O(distance).
package index

import (
	"bytes"
	stdio "io"
)

const chunkSize = 64 * 1024 // 64KB chunks

// Mapping is the read surface the counters need
type Mapping interface {
	ReadAt(p []byte, off int64) (int, error)
	Size() int64
}

// CountLines returns the number of newline bytes in [0, upto).
func CountLines(m Mapping, upto int64) (int, error) {
	if upto > m.Size() {
		upto = m.Size()
	}

	buf := make([]byte, chunkSize)
	count := 0
	var pos int64
	for pos < upto {
		readSize := chunkSize
		if pos+int64(readSize) > upto {
			readSize = int(upto - pos)
		}

		n, err := m.ReadAt(buf[:readSize], pos)
		if err != nil && err != stdio.EOF {
			return count, err
		}
		if n == 0 {
			break
		}
		count += bytes.Count(buf[:n], []byte{'\n'})
		pos += int64(n)
	}
	return count, nil
}

// LineNumber returns the 1-based number of the line containing offset.
func LineNumber(m Mapping, offset int64) (int, error) {
	n, err := CountLines(m, offset)
	return n + 1, err
}

// TotalLines returns the number of lines, counting a final unterminated line.
func TotalLines(m Mapping) (int, error) {
	size := m.Size()
	n, err := CountLines(m, size)
	if err != nil || size == 0 {
		return n, err
	}
	last := make([]byte, 1)
	if _, err := m.ReadAt(last, size-1); err != nil && err != stdio.EOF {
		return n, err
	}
	if last[0] != '\n' {
		n++
	}
	return n, nil
}

// LineOffset returns the byte offset where 1-based line number starts. ok is
// false when the document has fewer lines; the offset of the last line start is
// returned in that case.
func LineOffset(m Mapping, line int) (int64, bool, error) {
	if line <= 1 {
		return 0, true, nil
	}

	size := m.Size()
	buf := make([]byte, chunkSize)
	seen := 1
	lastStart := int64(0)
	var pos int64
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := m.ReadAt(buf[:readSize], pos)
		if err != nil && err != stdio.EOF {
			return lastStart, false, err
		}
		if n == 0 {
			break
		}

		chunk := buf[:n]
		offset := 0
		for {
			idx := bytes.IndexByte(chunk[offset:], '\n')
			if idx == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(idx) + 1
			offset += idx + 1
			if lineStart >= size {
				return lastStart, false, nil
			}
			seen++
			lastStart = lineStart
			if seen == line {
				return lineStart, true, nil
			}
		}
		pos += int64(n)
	}
	return lastStart, false, nil
}
