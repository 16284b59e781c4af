// Package render turns document lines into rows of styled cells whose colors
// have been registered in the session's color-pair table.
package render

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/TimelordUK/mpage/internal/ansi"
	"github.com/TimelordUK/mpage/internal/color"
	"github.com/TimelordUK/mpage/internal/source"
)

// Cell is a display character ready for a Surface.
type Cell struct {
	Rune  rune
	Comb  []rune
	Width int
	Attrs ansi.Attr
	Pair  color.PairID
}

// Highlighter marks up a decoded row before its colors are resolved.
type Highlighter interface {
	Highlight(row ansi.Row)
}

// Options configures a LineRenderer.
type Options struct {
	Decoder  *ansi.Decoder
	Resolver *color.Resolver
	Pairs    *color.PairTable
	// Syntax enables chroma highlighting for documents with a known lexer.
	Syntax bool
	// Tint colors plain lines by detected log level; nil disables it.
	Tint   *LevelTint
	Logger zerolog.Logger
}

// LineRenderer fetches lines from the current document, decodes them and
// tracks the widest row seen.
type LineRenderer struct {
	doc      *source.Document
	decoder  *ansi.Decoder
	resolver *color.Resolver
	pairs    *color.PairTable
	syntaxOn bool
	syntax   *SyntaxHighlighter
	tint     *LevelTint
	log      zerolog.Logger

	maxWidth int
	pairErr  error
	reported bool
}

// New creates a renderer. A document must be attached with SetDocument
// before lines can be rendered.
func New(opts Options) *LineRenderer {
	dec := opts.Decoder
	if dec == nil {
		dec = ansi.NewDecoder(ansi.Options{})
	}
	pairs := opts.Pairs
	if pairs == nil {
		pairs = color.NewPairTable(color.DefaultPairCapacity)
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = color.NewResolver(color.DefaultPalette(), color.Gamma{}, color.Depth256)
	}
	return &LineRenderer{
		decoder:  dec,
		resolver: resolver,
		pairs:    pairs,
		syntaxOn: opts.Syntax,
		tint:     opts.Tint,
		log:      opts.Logger.With().Str("component", "render").Logger(),
	}
}

// SetDocument switches to doc and forgets the widest row of the previous one.
// A full pair table is reported again for the new document.
func (r *LineRenderer) SetDocument(doc *source.Document) {
	r.doc = doc
	r.maxWidth = 0
	r.pairErr = nil
	r.reported = false
	r.syntax = nil
	if r.syntaxOn && doc != nil && doc.Source().Kind != source.KindMarkdown {
		r.syntax = NewSyntaxHighlighter(doc.Source().Name, r.resolver.Depth)
		if r.syntax != nil {
			r.log.Debug().Str("file", doc.Name()).Str("lexer", r.syntax.Lexer()).Msg("syntax highlighting")
		}
	}
}

// Decoder exposes the decoder for option toggles such as tab width.
func (r *LineRenderer) Decoder() *ansi.Decoder {
	return r.decoder
}

// Pairs returns the color-pair table cells refer to.
func (r *LineRenderer) Pairs() *color.PairTable {
	return r.pairs
}

// Resolver returns the color resolver.
func (r *LineRenderer) Resolver() *color.Resolver {
	return r.resolver
}

// MaxWidth is the widest row decoded since the document was attached.
func (r *LineRenderer) MaxWidth() int {
	return r.maxWidth
}

// Decode fetches and decodes the line at pos.
func (r *LineRenderer) Decode(pos source.Position) (source.Line, ansi.Row, bool) {
	if r.doc == nil {
		return source.Line{}, ansi.Row{}, false
	}
	line, ok := r.doc.Line(pos)
	if !ok {
		return line, ansi.Row{}, false
	}

	content := line.Content
	if r.syntax != nil && bytes.IndexByte(content, 0x1b) < 0 {
		content = r.syntax.Highlight(content)
	}
	row := r.decoder.Decode(content)
	if r.tint != nil && !row.Styled {
		r.tint.Apply(line.Content, row)
	}

	if row.Width > r.maxWidth {
		r.maxWidth = row.Width
	}
	return line, row, true
}

// Stripped returns the escape-free text of the line at pos and the position
// of the following line.
func (r *LineRenderer) Stripped(pos source.Position) (string, source.Position, bool) {
	if r.doc == nil {
		return "", source.EndOfDocument, false
	}
	line, ok := r.doc.Line(pos)
	if !ok {
		return "", source.EndOfDocument, false
	}
	return r.decoder.Decode(line.Content).Stripped, line.Next, true
}

// Resolve registers the colors of cells in the pair table. A full table
// maps the remaining cells onto the default pair.
func (r *LineRenderer) Resolve(cells []ansi.Cell) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		fg := r.resolver.Output(c.Style.Fg)
		bg := r.resolver.Output(c.Style.Bg)
		id, err := r.pairs.Resolve(fg, bg)
		if err != nil && r.pairErr == nil {
			r.pairErr = err
			r.log.Warn().Err(err).Int("capacity", r.pairs.Capacity()).Msg("color pair table full, using default colors")
		}
		out[i] = Cell{Rune: c.Rune, Comb: c.Comb, Width: c.Width, Attrs: c.Style.Attrs, Pair: id}
	}
	return out
}

// Text renders a literal string in style st, for status and prompt rows.
func (r *LineRenderer) Text(s string, st ansi.Style) []Cell {
	row := ansi.NewDecoder(ansi.Options{TabWidth: r.decoder.TabWidth()}).Decode([]byte(s))
	row.Restyle(0, len(row.Cells), func(ansi.Style) ansi.Style { return st })
	return r.Resolve(row.Cells)
}

// PairError returns the pair exhaustion error the first time it is called
// after the table filled up on the current document, and nil afterwards.
func (r *LineRenderer) PairError() error {
	if r.pairErr == nil || r.reported {
		return nil
	}
	r.reported = true
	return r.pairErr
}

// ResetPairs clears the pair table, for example after the terminal was
// handed to a subprocess.
func (r *LineRenderer) ResetPairs() {
	r.pairs.Reset()
	r.pairErr = nil
	r.reported = false
}
