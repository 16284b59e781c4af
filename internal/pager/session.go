package pager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/source"
)

// Mark is a bookmarked position in one of the session's files.
type Mark struct {
	File int
	Pos  source.Position
}

// Session owns the file list, the open document and the marks.
type Session struct {
	ctx     context.Context
	sources []source.Source
	index   int
	doc     *source.Document
	opts    source.OpenOptions
	log     zerolog.Logger

	// Standard input and start commands are read once; their documents stay
	// open while the user visits other files.
	streams map[int]*source.Document

	// Marks (a-z) - store file index and position
	marks map[rune]Mark
}

// ErrNoFiles is returned when no source in the list could be opened.
var ErrNoFiles = errors.New("no file could be opened")

// NewSession creates a session over sources. Nothing is opened yet.
func NewSession(ctx context.Context, sources []source.Source, opts source.OpenOptions, log zerolog.Logger) *Session {
	return &Session{
		ctx:     ctx,
		sources: sources,
		index:   -1,
		opts:    opts,
		log:     log.With().Str("component", "session").Logger(),
		streams: make(map[int]*source.Document),
		marks:   make(map[rune]Mark),
	}
}

// OpenFirst opens the first source that can be opened. Failures of the
// sources it skipped are returned alongside.
func (s *Session) OpenFirst() ([]error, error) {
	var failed []error
	for i := range s.sources {
		if err := s.Switch(i); err != nil {
			failed = append(failed, err)
			continue
		}
		return failed, nil
	}
	return failed, ErrNoFiles
}

// Doc returns the open document
func (s *Session) Doc() *source.Document {
	return s.doc
}

// Index returns the position of the open document in the file list
func (s *Session) Index() int {
	return s.index
}

// Count returns the length of the file list
func (s *Session) Count() int {
	return len(s.sources)
}

// Current returns the source of the open document
func (s *Session) Current() source.Source {
	if s.index < 0 {
		return source.Source{}
	}
	return s.sources[s.index]
}

// SetSqueeze applies squeeze mode to the open and future documents
func (s *Session) SetSqueeze(on bool) {
	s.opts.Squeeze = on
	if s.doc != nil {
		s.doc.SetSqueeze(on)
	}
	for _, d := range s.streams {
		d.SetSqueeze(on)
	}
}

// Switch makes sources[i] the open document. On failure the current
// document stays open.
func (s *Session) Switch(i int) error {
	if i < 0 || i >= len(s.sources) {
		return fmt.Errorf("no file %d", i+1)
	}
	if i == s.index && s.doc != nil {
		return nil
	}

	doc, err := s.open(i)
	if err != nil {
		s.log.Warn().Err(err).Str("source", s.sources[i].String()).Msg("open failed")
		return err
	}

	s.release()
	s.doc = doc
	s.index = i
	s.log.Info().
		Str("source", doc.Name()).
		Str("mapped", doc.Mapped().Path()).
		Int64("size", doc.Size()).
		Bool("pipe", doc.IsPipe()).
		Msg("document opened")
	return nil
}

func (s *Session) open(i int) (*source.Document, error) {
	if d, ok := s.streams[i]; ok {
		d.SetSqueeze(s.opts.Squeeze)
		return d, nil
	}
	doc, err := source.Open(s.ctx, s.sources[i], s.opts)
	if err != nil {
		return nil, err
	}
	if !s.sources[i].Reopenable() {
		s.streams[i] = doc
	}
	return doc, nil
}

// release closes the open document unless it is a kept stream.
func (s *Session) release() {
	if s.doc == nil {
		return
	}
	if _, kept := s.streams[s.index]; kept {
		return
	}
	if err := s.doc.Close(); err != nil {
		s.log.Warn().Err(err).Str("source", s.doc.Name()).Msg("close failed")
	}
}

// Step moves n files forward (negative n moves back). Files that fail to
// open are skipped; their errors are returned.
func (s *Session) Step(n int) ([]error, error) {
	if n == 0 {
		return nil, nil
	}
	dir := 1
	if n < 0 {
		dir = -1
	}
	target := s.index + n
	if target < 0 || target >= len(s.sources) {
		if dir > 0 {
			return nil, errors.New("no next file")
		}
		return nil, errors.New("no previous file")
	}

	var failed []error
	for i := target; i >= 0 && i < len(s.sources); i += dir {
		if err := s.Switch(i); err != nil {
			failed = append(failed, err)
			continue
		}
		return failed, nil
	}
	return failed, ErrNoFiles
}

// Reload reads the open document again. Standard input and start commands
// are not read twice; their spooled document is kept.
func (s *Session) Reload() error {
	if s.doc == nil {
		return ErrNoFiles
	}
	src := s.sources[s.index]
	if !src.Reopenable() {
		return nil
	}

	doc, err := source.Open(s.ctx, src, s.opts)
	if err != nil {
		return err
	}
	if err := s.doc.Close(); err != nil {
		s.log.Warn().Err(err).Msg("close before reload failed")
	}
	s.doc = doc
	s.log.Info().Str("source", doc.Name()).Int64("size", doc.Size()).Msg("document reloaded")
	return nil
}

// Examine expands pattern as a glob and inserts the matches after the
// current file. It switches to the first match that opens.
func (s *Session) Examine(pattern string) ([]error, error) {
	paths, err := expand(pattern)
	if err != nil {
		return nil, err
	}

	at := s.index + 1
	added := make([]source.Source, 0, len(paths))
	for _, p := range paths {
		if source.IsMarkdown(p) && s.opts.MarkdownWidth > 0 {
			added = append(added, source.Source{Kind: source.KindMarkdown, Name: p})
			continue
		}
		added = append(added, source.FileSource(p))
	}
	s.insert(at, added)

	var failed []error
	for i := at; i < at+len(added); i++ {
		if err := s.Switch(i); err != nil {
			failed = append(failed, err)
			continue
		}
		return failed, nil
	}
	return failed, ErrNoFiles
}

func (s *Session) insert(at int, added []source.Source) {
	rest := append([]source.Source{}, s.sources[at:]...)
	s.sources = append(append(s.sources[:at], added...), rest...)

	shifted := make(map[int]*source.Document, len(s.streams))
	for i, d := range s.streams {
		if i >= at {
			i += len(added)
		}
		shifted[i] = d
	}
	s.streams = shifted

	for r, m := range s.marks {
		if m.File >= at {
			m.File += len(added)
			s.marks[r] = m
		}
	}
}

// expand returns the files matching pattern, or pattern itself when it has
// no glob syntax.
func expand(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, errors.New("no file name")
	}
	if pattern == "~" || len(pattern) > 1 && pattern[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			pattern = filepath.Join(home, pattern[1:])
		}
	}

	base, rel := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(base), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		if _, err := os.Stat(pattern); err != nil {
			return nil, fmt.Errorf("%s: no such file", pattern)
		}
		return []string{pattern}, nil
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(base, filepath.FromSlash(m)))
	}
	return paths, nil
}

// SetMark records pos in the current file under letter r
func (s *Session) SetMark(r rune, pos source.Position) {
	s.marks[r] = Mark{File: s.index, Pos: pos}
}

// Mark looks up a mark
func (s *Session) Mark(r rune) (Mark, bool) {
	m, ok := s.marks[r]
	return m, ok
}

// Close releases every open document
func (s *Session) Close() error {
	var errs []error
	if s.doc != nil {
		if _, kept := s.streams[s.index]; !kept {
			errs = append(errs, s.doc.Close())
		}
	}
	for _, d := range s.streams {
		errs = append(errs, d.Close())
	}
	s.doc = nil
	s.streams = map[int]*source.Document{}
	return errors.Join(errs...)
}

// Remove drops the current file from the list and opens its successor, or
// its predecessor when it was the last one.
func (s *Session) Remove() error {
	if s.index < 0 {
		return ErrNoFiles
	}
	if len(s.sources) == 1 {
		s.release()
		if d, ok := s.streams[0]; ok {
			_ = d.Close()
		}
		s.sources, s.streams, s.doc, s.index = nil, map[int]*source.Document{}, nil, -1
		return nil
	}

	gone := s.index
	s.release()
	if d, ok := s.streams[gone]; ok {
		_ = d.Close()
		delete(s.streams, gone)
	}
	s.doc = nil
	s.sources = append(s.sources[:gone], s.sources[gone+1:]...)

	shifted := make(map[int]*source.Document, len(s.streams))
	for i, d := range s.streams {
		if i > gone {
			i--
		}
		shifted[i] = d
	}
	s.streams = shifted
	for r, m := range s.marks {
		switch {
		case m.File == gone:
			delete(s.marks, r)
		case m.File > gone:
			m.File--
			s.marks[r] = m
		}
	}

	next := gone
	if next >= len(s.sources) {
		next = len(s.sources) - 1
	}
	s.index = -1
	var failed []error
	order := make([]int, 0, len(s.sources))
	for i := next; i < len(s.sources); i++ {
		order = append(order, i)
	}
	for i := next - 1; i >= 0; i-- {
		order = append(order, i)
	}
	for _, i := range order {
		err := s.Switch(i)
		if err == nil {
			return nil
		}
		failed = append(failed, err)
	}
	return errors.Join(append(failed, ErrNoFiles)...)
}
