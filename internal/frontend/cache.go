package frontend

import (
	"slices"

	"github.com/Iron-Ham/firefly/internal/protocol"
)

// MaxLines bounds the cache so a corrupt line index cannot exhaust memory.
const MaxLines = 1 << 20

// LineCache is the front end's view of the document, one string per line.
// It is not safe for concurrent use on its own.
type LineCache struct {
	lines []string
}

// Apply stores the text of a RenderLine, growing the cache with empty
// lines as needed. It reports false, leaving the cache unchanged, for a
// negative index or one at or beyond MaxLines.
func (c *LineCache) Apply(cmd protocol.RenderLine) bool {
	if cmd.Line < 0 || cmd.Line >= MaxLines {
		return false
	}
	if n := cmd.Line + 1 - len(c.lines); n > 0 {
		old := len(c.lines)
		c.lines = slices.Grow(c.lines, n)[:cmd.Line+1]
		clear(c.lines[old:])
	}
	c.lines[cmd.Line] = cmd.Text
	return true
}

// Len returns the number of cached lines.
func (c *LineCache) Len() int {
	return len(c.lines)
}

// Line returns line i, or "" when i is out of range.
func (c *LineCache) Line(i int) string {
	if i < 0 || i >= len(c.lines) {
		return ""
	}
	return c.lines[i]
}

// Lines returns a copy of all cached lines.
func (c *LineCache) Lines() []string {
	return append([]string(nil), c.lines...)
}
