// Package document holds the engine's text buffer and cursor.
//
// Lines are '\n'-terminated. A line's text includes its trailing newline
// when it has one, and the offset just past a newline belongs to the next
// line, so a document ending in '\n' has an empty last line.
package document

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

// Document is a rune buffer with an insertion cursor. It is owned by a
// single goroutine and is not safe for concurrent use.
type Document struct {
	text   []rune
	starts []int // starts[i] is the offset of the first character of line i
	cursor int
}

// New returns an empty document with the cursor at 0.
func New() *Document {
	return &Document{starts: []int{0}}
}

// Len returns the number of characters in the document.
func (d *Document) Len() int {
	return len(d.text)
}

// Cursor returns the insertion offset.
func (d *Document) Cursor() int {
	return d.cursor
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.starts)
}

// String returns the full document text.
func (d *Document) String() string {
	return string(d.text)
}

// Insert places r at offset and shifts the cursor when it sits at or
// after offset.
func (d *Document) Insert(offset int, r rune) error {
	if offset < 0 || offset > len(d.text) {
		return errors.NewValidationError(fmt.Sprintf("offset out of range [0, %d]", len(d.text))).
			WithField("offset").WithValue(offset)
	}
	if !utf8.ValidRune(r) {
		return errors.NewValidationError("invalid character").WithField("char").WithValue(r)
	}

	d.text = slices.Insert(d.text, offset, r)

	// A line starting exactly at offset absorbs the new character.
	first := sort.SearchInts(d.starts, offset+1)
	for i := first; i < len(d.starts); i++ {
		d.starts[i]++
	}
	if r == '\n' {
		d.starts = slices.Insert(d.starts, first, offset+1)
	}

	if d.cursor >= offset {
		d.cursor++
	}
	return nil
}

// CharToLine returns the index of the line containing offset. Offsets past
// the end map to the last line.
func (d *Document) CharToLine(offset int) int {
	if offset <= 0 {
		return 0
	}
	return sort.SearchInts(d.starts, offset+1) - 1
}

// Line returns the text of line i, including its trailing newline.
func (d *Document) Line(i int) (string, error) {
	if i < 0 || i >= len(d.starts) {
		return "", errors.NewValidationError(fmt.Sprintf("line out of range [0, %d)", len(d.starts))).
			WithField("line").WithValue(i)
	}
	end := len(d.text)
	if i+1 < len(d.starts) {
		end = d.starts[i+1]
	}
	return string(d.text[d.starts[i]:end]), nil
}

// Lines returns every line with trailing newlines removed.
func (d *Document) Lines() []string {
	return strings.Split(string(d.text), "\n")
}

// InsertChar inserts r at the cursor, advances it, and returns the
// command that redraws the line the cursor ends up on.
func (d *Document) InsertChar(r rune) (protocol.RenderLine, error) {
	if err := d.Insert(d.cursor, r); err != nil {
		return protocol.RenderLine{}, err
	}
	line := d.CharToLine(d.cursor)
	text, err := d.Line(line)
	if err != nil {
		return protocol.RenderLine{}, err
	}
	return protocol.RenderLine{Line: line, Text: text}, nil
}

// Apply executes op and returns the draw command it produces.
func (d *Document) Apply(op protocol.Operation) (protocol.DrawCommand, error) {
	switch op := op.(type) {
	case protocol.InsertChar:
		return d.InsertChar(op.Char)
	default:
		return nil, errors.NewValidationError("unsupported operation").WithValue(fmt.Sprintf("%T", op))
	}
}
