package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/firefly/internal/errors"
	"github.com/Iron-Ham/firefly/internal/protocol"
	"github.com/Iron-Ham/firefly/internal/util"
)

// Editor is the part of the front-end client the model drives.
type Editor interface {
	Submit(op protocol.Operation) error
	Lines() []string
}

// Messages

// redrawMsg tells the model the line cache changed.
type redrawMsg struct{}

// engineExitedMsg reports that the engine process is gone.
type engineExitedMsg struct {
	err error
}

// Model holds the TUI application state
type Model struct {
	editor      Editor
	keys        keyMap
	theme       Theme
	lineNumbers bool

	lines    []string
	width    int
	height   int
	status   string
	failed   bool
	quitting bool
}

// NewModel creates a model over editor.
func NewModel(editor Editor, theme Theme, lineNumbers bool) Model {
	return Model{
		editor:      editor,
		keys:        defaultKeyMap(),
		theme:       theme,
		lineNumbers: lineNumbers,
		lines:       editor.Lines(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case redrawMsg:
		m.lines = m.editor.Lines()
		return m, nil

	case engineExitedMsg:
		m.failed = true
		m.status = "engine exited"
		if msg.err != nil {
			m.status = fmt.Sprintf("engine exited: %v", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.failed {
		return m, nil
	}

	var chars []rune
	switch {
	case key.Matches(msg, m.keys.Newline):
		chars = []rune{'\n'}
	case key.Matches(msg, m.keys.Tab):
		chars = []rune{'\t'}
	case key.Matches(msg, m.keys.Space):
		chars = []rune{' '}
	case msg.Type == tea.KeyRunes && !msg.Alt:
		chars = msg.Runes
	default:
		return m, nil
	}

	m.status = ""
	for _, r := range chars {
		if err := m.editor.Submit(protocol.InsertChar{Char: r}); err != nil {
			m.status = describe(err)
			break
		}
	}
	return m, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, errors.ErrPayloadTooLarge):
		return "character too large for the mailbox"
	case errors.Is(err, errors.ErrMailboxClosed):
		return "connection to engine closed"
	default:
		return err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := m.lines
	if len(lines) == 0 {
		lines = []string{""}
	}

	bodyHeight := m.height - 1
	first := 0
	if bodyHeight > 0 && len(lines) > bodyHeight {
		first = len(lines) - bodyHeight
	}
	gutterWidth := len(fmt.Sprint(len(lines)))

	// Columns left for text after the gutter and the cursor cell.
	textWidth := m.width - 1
	if m.lineNumbers {
		textWidth -= gutterWidth + m.theme.Gutter.GetHorizontalFrameSize()
	}

	var b strings.Builder
	for i := first; i < len(lines); i++ {
		if m.lineNumbers {
			b.WriteString(m.theme.Gutter.Render(fmt.Sprintf("%*d", gutterWidth, i+1)))
		}
		text := strings.TrimSuffix(lines[i], "\n")
		last := i == len(lines)-1
		if m.width > 0 {
			if last {
				text = util.TailANSI(text, textWidth)
			} else {
				text = util.TruncateANSI(text, textWidth)
			}
		}
		b.WriteString(m.theme.Text.Render(text))
		if last {
			b.WriteString(m.theme.Cursor.Render(" "))
		}
		b.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left, strings.TrimSuffix(b.String(), "\n"), m.statusBar(len(lines)))
}

func (m Model) statusBar(lineCount int) string {
	left := fmt.Sprintf("firefly · %d lines", lineCount)
	if m.status != "" {
		left += " · " + m.theme.Error.Render(m.status)
	}
	right := m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc

	bar := left
	if gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2; gap > 0 {
		bar = left + strings.Repeat(" ", gap) + right
	}
	return m.theme.StatusBar.Render(bar)
}
