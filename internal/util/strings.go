// Package util provides shared text helpers for terminal rendering.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks text cut off by TruncateANSI or TailANSI.
const Ellipsis = "…"

// TruncateANSI truncates a string to maxWidth visual columns, ending it with
// Ellipsis if truncated. ANSI escape codes and wide characters are handled.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail in the final width
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// TailANSI keeps the last maxWidth visual columns of s, starting it with
// Ellipsis if anything was cut. Used for the line being typed, whose end
// is where the cursor sits.
func TailANSI(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	width := lipgloss.Width(s)
	if width <= maxWidth {
		return s
	}
	return ansi.TruncateLeft(s, width-maxWidth+lipgloss.Width(Ellipsis), Ellipsis)
}
