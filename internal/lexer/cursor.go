package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"cooklang/internal/source"
)

// Cursor is a rune-aware position inside a file.
type Cursor struct {
	File *source.File
	Off  uint32
	// Limit is the exclusive upper bound for Off; defaults to len(File.Content).
	Limit uint32
}

// NewCursor creates a cursor over the whole file.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{
		File:  f,
		Off:   0,
		Limit: limit,
	}
}

// NewCursorAt creates a cursor starting at off, used to skip frontmatter.
func NewCursorAt(f *source.File, off uint32) Cursor {
	c := NewCursor(f)
	if off > c.Limit {
		off = c.Limit
	}
	c.Off = off
	return c
}

// EOF reports whether the end of input was reached.
func (c *Cursor) EOF() bool {
	return c.Off >= c.Limit
}

// Peek decodes the rune at the current offset without consuming it.
// Invalid UTF-8 decodes as utf8.RuneError with size 1, so the lexer always
// makes progress on arbitrary byte input.
func (c *Cursor) Peek() (rune, uint32) {
	if c.EOF() {
		return 0, 0
	}
	r, size := utf8.DecodeRune(c.File.Content[c.Off:c.Limit])
	return r, uint32(size)
}

// Peek2 decodes the rune after the current one.
func (c *Cursor) Peek2() rune {
	if c.EOF() {
		return 0
	}
	_, size := utf8.DecodeRune(c.File.Content[c.Off:c.Limit])
	next := c.Off + uint32(size)
	if next >= c.Limit {
		return 0
	}
	r, _ := utf8.DecodeRune(c.File.Content[next:c.Limit])
	return r
}

// Bump consumes and returns the current rune.
func (c *Cursor) Bump() rune {
	if c.EOF() {
		return 0
	}
	r, size := utf8.DecodeRune(c.File.Content[c.Off:c.Limit])
	c.Off += uint32(size)
	return r
}

// EatWhile consumes runes while pred holds.
func (c *Cursor) EatWhile(pred func(rune) bool) {
	for !c.EOF() {
		r, size := c.Peek()
		if !pred(r) {
			return
		}
		c.Off += size
	}
}

// Mark is a saved cursor position for building spans.
type Mark uint32

// Mark saves the current position.
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// SpanFrom builds a span from the mark to the current position.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{
		File:  c.File.ID,
		Start: uint32(m),
		End:   c.Off,
	}
}
