package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/protocol"
)

type fakeEditor struct {
	submitted []rune
	lines     []string
	err       error
}

func (f *fakeEditor) Submit(op protocol.Operation) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, op.(protocol.InsertChar).Char)
	return nil
}

func (f *fakeEditor) Lines() []string {
	return append([]string(nil), f.lines...)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestUpdate_KeysSubmitCharacters(t *testing.T) {
	ed := &fakeEditor{}
	m := NewModel(ed, ThemeByName("default"), true)

	msgs := []tea.Msg{
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")},
		tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyTab},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("界")},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true},
	}
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = update(t, m, msg)
		if cmd != nil {
			t.Errorf("Update(%v) returned a command", msg)
		}
	}

	if diff := cmp.Diff([]rune("hi \n\t界"), ed.submitted); diff != "" {
		t.Errorf("submitted mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdate_Quit(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		m := NewModel(&fakeEditor{}, ThemeByName("nord"), false)
		m, cmd := update(t, m, tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("%v should quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v command = %T, want tea.QuitMsg", k, cmd())
		}
		if m.View() != "" {
			t.Error("View() should be empty while quitting")
		}
	}
}

func TestUpdate_SubmitErrorShown(t *testing.T) {
	ed := &fakeEditor{err: errors.NewPayloadError(100, 12)}
	m := NewModel(ed, ThemeByName("default"), false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 10})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	if !strings.Contains(m.View(), "too large") {
		t.Errorf("View() should report the rejected character:\n%s", m.View())
	}

	ed.err = nil
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if strings.Contains(m.View(), "too large") {
		t.Error("status should clear after a successful submit")
	}
}

func TestUpdate_Redraw(t *testing.T) {
	ed := &fakeEditor{}
	m := NewModel(ed, ThemeByName("default"), false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})

	ed.lines = []string{"hello", "world"}
	if strings.Contains(m.View(), "hello") {
		t.Fatal("lines should not change before a redraw message")
	}
	m, _ = update(t, m, redrawMsg{})

	view := m.View()
	for _, want := range []string{"hello", "world", "2 lines"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestView_ScrollsToLastLines(t *testing.T) {
	ed := &fakeEditor{}
	for i := range 20 {
		ed.lines = append(ed.lines, strings.Repeat("x", i+1))
	}
	m := NewModel(ed, ThemeByName("default"), true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 6})

	view := m.View()
	if got := strings.Count(view, "\n") + 1; got != 6 {
		t.Errorf("View() has %d rows, want 6:\n%s", got, view)
	}
	if !strings.Contains(view, strings.Repeat("x", 20)) {
		t.Error("last line should be visible")
	}
	if strings.Contains(view, "15 ") || !strings.Contains(view, "16 ") {
		t.Errorf("lines 1-15 should have scrolled off:\n%s", view)
	}
}

func TestUpdate_EngineExited(t *testing.T) {
	ed := &fakeEditor{}
	m := NewModel(ed, ThemeByName("default"), false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 5})
	m, _ = update(t, m, engineExitedMsg{err: errors.New("exit status 1")})

	if !strings.Contains(m.View(), "engine exited: exit status 1") {
		t.Errorf("View() should show the engine failure:\n%s", m.View())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	if len(ed.submitted) != 0 {
		t.Error("keys should be ignored once the engine is gone")
	}
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Error("quit should still work after the engine exited")
	}
}

func TestThemeByName_Fallback(t *testing.T) {
	if ThemeByName("missing").Text.GetForeground() != ThemeByName("default").Text.GetForeground() {
		t.Error("unknown theme should fall back to default")
	}
}

func TestView_FitsLongLines(t *testing.T) {
	ed := &fakeEditor{lines: []string{
		strings.Repeat("a", 50) + "\n",
		strings.Repeat("b", 45) + "END",
	}}
	m := NewModel(ed, ThemeByName("default"), false)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 5})

	view := m.View()
	for _, row := range strings.Split(view, "\n") {
		if w := lipgloss.Width(row); w > 20 {
			t.Errorf("row %q is %d columns wide, want at most 20", row, w)
		}
	}
	if !strings.Contains(view, "END") {
		t.Errorf("the line being typed should show its end:\n%s", view)
	}
}
