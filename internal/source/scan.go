package source

// NextLineEnd scans forward from pos to the end of its line and returns the
// position just past the terminator. EndOfDocument is returned when the scan
// reaches the end of the mapping. In squeeze mode a blank line swallows the
// blank lines that follow it.
func (d *Document) NextLineEnd(pos Position) Position {
	size := Position(d.file.Size())
	if pos.IsEOF() {
		return EndOfDocument
	}
	p := d.Resolve(pos)
	if p >= size {
		return EndOfDocument
	}

	blank := true
	for p < size {
		b := d.file.At(int64(p))
		p++
		if b == '\n' {
			break
		}
		if b != '\r' {
			blank = false
		}
	}

	if d.squeeze && blank {
		for p < size {
			next, ok := d.blankLineEnd(p)
			if !ok {
				break
			}
			p = next
		}
	}

	if p >= size {
		return EndOfDocument
	}
	return p
}

// PrevLineStart scans backward to the start of the line containing pos-1.
// BeginningOfDocument is returned when there is nothing before pos.
func (d *Document) PrevLineStart(pos Position) Position {
	if pos.IsBOF() {
		return BeginningOfDocument
	}
	p := d.Resolve(pos)
	if p <= 0 {
		return BeginningOfDocument
	}

	start := d.lineStartBefore(p)
	if d.squeeze && d.isBlank(start, p) {
		for start > 0 {
			prev := d.lineStartBefore(start)
			if !d.isBlank(prev, start) {
				break
			}
			start = prev
		}
	}
	return start
}

// LineStart returns the start of the line containing pos. The end sentinel
// resolves to the start of the last line.
func (d *Document) LineStart(pos Position) Position {
	p := d.Resolve(pos)
	size := Position(d.file.Size())
	if pos.IsEOF() || p >= size {
		start := d.PrevLineStart(EndOfDocument)
		if start.IsBOF() {
			return 0
		}
		return start
	}
	start := d.PrevLineStart(p + 1)
	if start.IsBOF() {
		return 0
	}
	return start
}

// lineStartBefore returns the start of the line that contains p-1, skipping
// the terminator at p-1 itself. p must be > 0.
func (d *Document) lineStartBefore(p Position) Position {
	j := p - 1
	for j > 0 && d.file.At(int64(j-1)) != '\n' {
		j--
	}
	return j
}

// blankLineEnd reports whether the line starting at p holds nothing but
// carriage returns before its newline, and returns the position past it.
func (d *Document) blankLineEnd(p Position) (Position, bool) {
	size := Position(d.file.Size())
	for p < size {
		switch d.file.At(int64(p)) {
		case '\n':
			return p + 1, true
		case '\r':
			p++
		default:
			return 0, false
		}
	}
	return 0, false
}

// isBlank reports whether [start, end) contains only line terminators.
func (d *Document) isBlank(start, end Position) bool {
	for i := start; i < end; i++ {
		b := d.file.At(int64(i))
		if b != '\n' && b != '\r' {
			return false
		}
	}
	return true
}
