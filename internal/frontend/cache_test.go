package frontend

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/firefly/internal/protocol"
)

func TestLineCache_Apply(t *testing.T) {
	tests := []struct {
		name string
		cmds []protocol.RenderLine
		want []string
	}{
		{
			name: "replace in place",
			cmds: []protocol.RenderLine{{Line: 0, Text: "h"}, {Line: 0, Text: "hi"}},
			want: []string{"hi"},
		},
		{
			name: "new line",
			cmds: []protocol.RenderLine{{Line: 0, Text: "a"}, {Line: 1, Text: ""}, {Line: 1, Text: "b"}},
			want: []string{"a", "b"},
		},
		{
			name: "gap filled with empty lines",
			cmds: []protocol.RenderLine{{Line: 3, Text: "d"}},
			want: []string{"", "", "", "d"},
		},
		{
			name: "negative ignored",
			cmds: []protocol.RenderLine{{Line: -1, Text: "x"}},
			want: nil,
		},
		{
			name: "index beyond limit ignored",
			cmds: []protocol.RenderLine{{Line: 0, Text: "a"}, {Line: MaxLines, Text: "x"}, {Line: math.MaxInt32, Text: "y"}},
			want: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c LineCache
			for _, cmd := range tt.cmds {
				c.Apply(cmd)
			}
			if diff := cmp.Diff(tt.want, c.Lines()); diff != "" {
				t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
			}
			if c.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", c.Len(), len(tt.want))
			}
		})
	}
}

func TestLineCache_Line(t *testing.T) {
	var c LineCache
	c.Apply(protocol.RenderLine{Line: 1, Text: "b"})
	if c.Line(1) != "b" || c.Line(0) != "" || c.Line(5) != "" || c.Line(-1) != "" {
		t.Errorf("Line() lookups wrong: %q", c.Lines())
	}

	lines := c.Lines()
	lines[1] = "mutated"
	if c.Line(1) != "b" {
		t.Error("Lines() should return a copy")
	}
}

func TestLineCache_ApplyReportsRejected(t *testing.T) {
	var c LineCache
	if !c.Apply(protocol.RenderLine{Line: MaxLines - 1, Text: "last"}) {
		t.Fatal("Apply() at MaxLines-1 = false, want true")
	}
	if c.Len() != MaxLines || c.Line(MaxLines-1) != "last" {
		t.Errorf("Len() = %d, want %d", c.Len(), MaxLines)
	}
	if c.Apply(protocol.RenderLine{Line: MaxLines, Text: "over"}) {
		t.Error("Apply() at MaxLines = true, want false")
	}
	if c.Apply(protocol.RenderLine{Line: -3}) {
		t.Error("Apply() with a negative index = true, want false")
	}
}
