package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles the editor view is drawn with.
type Theme struct {
	Text      lipgloss.Style
	Gutter    lipgloss.Style
	Cursor    lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style
}

type palette struct {
	text, muted, accent, surface, errorColor lipgloss.Color
}

var palettes = map[string]palette{
	"default": {text: "#E5E7EB", muted: "#6B7280", accent: "#A78BFA", surface: "#1F2937", errorColor: "#F87171"},
	"monokai": {text: "#F8F8F2", muted: "#75715E", accent: "#A6E22E", surface: "#272822", errorColor: "#F92672"},
	"nord":    {text: "#ECEFF4", muted: "#4C566A", accent: "#88C0D0", surface: "#3B4252", errorColor: "#BF616A"},
}

// ThemeByName returns the named theme, falling back to "default".
func ThemeByName(name string) Theme {
	p, ok := palettes[name]
	if !ok {
		p = palettes["default"]
	}
	return Theme{
		Text:      lipgloss.NewStyle().Foreground(p.text),
		Gutter:    lipgloss.NewStyle().Foreground(p.muted).PaddingRight(1),
		Cursor:    lipgloss.NewStyle().Foreground(p.surface).Background(p.accent),
		StatusBar: lipgloss.NewStyle().Foreground(p.text).Background(p.surface).Padding(0, 1),
		Error:     lipgloss.NewStyle().Foreground(p.errorColor).Bold(true),
	}
}
